package orders

import (
	"math"
	"strings"

	"github.com/ariefcatur/go-cafe-orders/internal/apperr"
)

const (
	RuleItemsRequired     = "items_required"
	RuleItemIncomplete    = "item_incomplete"
	RuleItemPositive      = "item_quantity_price_positive"
	RuleTotalAmount       = "total_amount_positive"
	RuleAmountRange       = "amount_out_of_range"
	RuleLinePriceMismatch = "line_price_mismatch"
	RuleTotalMismatch     = "total_mismatch"
)

// MaxAmount is the largest quantity, price or total the database can hold.
const MaxAmount = math.MaxInt32

// ValidatePlaceOrder checks the request shape before anything is read or
// written. Rules are checked in a fixed order and the first failure wins.
func ValidatePlaceOrder(req PlaceOrderRequest) error {
	if len(req.Items) == 0 {
		return apperr.Invalid(RuleItemsRequired, "order items are required")
	}
	for i, it := range req.Items {
		if it.MenuID <= 0 || strings.TrimSpace(it.MenuName) == "" {
			return apperr.Invalid(RuleItemIncomplete, "order item %d is incomplete", i)
		}
	}
	for i, it := range req.Items {
		if it.Quantity <= 0 || it.Price <= 0 {
			return apperr.Invalid(RuleItemPositive, "order item %d: quantity and price must be greater than 0", i)
		}
	}
	if req.TotalAmount <= 0 {
		return apperr.Invalid(RuleTotalAmount, "invalid total amount")
	}
	// price, quantity and total_amount are INTEGER columns
	for i, it := range req.Items {
		if it.Quantity > MaxAmount || it.Price > MaxAmount {
			return apperr.Invalid(RuleAmountRange, "order item %d: quantity or price is too large", i)
		}
	}
	if req.TotalAmount > MaxAmount {
		return apperr.Invalid(RuleAmountRange, "total amount is too large")
	}
	return nil
}
