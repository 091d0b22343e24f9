package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestUnitPrice(t *testing.T) {
	assert.Equal(t, int64(4000), UnitPrice(4000, Options{}))
	assert.Equal(t, int64(4500), UnitPrice(4000, Options{AddShot: true}))
	assert.Equal(t, int64(4000), UnitPrice(4000, Options{AddSyrup: true}))
	assert.Equal(t, int64(4500), UnitPrice(4000, Options{AddShot: true, AddSyrup: true}))
}

func genLine(t *rapid.T) LineItem {
	opts := Options{AddShot: rapid.Bool().Draw(t, "shot"), AddSyrup: rapid.Bool().Draw(t, "syrup")}
	base := rapid.Int64Range(1, 100_000).Draw(t, "base")
	return LineItem{
		MenuID:   rapid.Int64Range(1, 20).Draw(t, "menu"),
		MenuName: "menu",
		Quantity: rapid.IntRange(1, 50).Draw(t, "qty"),
		Price:    UnitPrice(base, opts),
		Options:  opts,
	}
}

func TestTotal_IsSumOfLines(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lines := rapid.SliceOfN(rapid.Custom(genLine), 1, 10).Draw(t, "lines")

		var want int64
		for _, l := range lines {
			want += l.Price * int64(l.Quantity)
		}
		if got := Total(lines); got != want {
			t.Fatalf("Total = %d, want %d", got, want)
		}

		// a request built from priced lines always passes validation
		req := PlaceOrderRequest{Items: lines, TotalAmount: Total(lines)}
		if err := ValidatePlaceOrder(req); err != nil {
			t.Fatalf("unexpected validation error: %v", err)
		}
	})
}
