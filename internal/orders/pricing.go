package orders

const (
	ExtraShotPrice  int64 = 500
	ExtraSyrupPrice int64 = 0
)

// UnitPrice is the price of one unit of a menu with the given options.
func UnitPrice(base int64, o Options) int64 {
	p := base
	if o.AddShot {
		p += ExtraShotPrice
	}
	if o.AddSyrup {
		p += ExtraSyrupPrice
	}
	return p
}

func (l LineItem) Total() int64 { return l.Price * int64(l.Quantity) }

// Total sums price x quantity over lines.
func Total(lines []LineItem) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.Total()
	}
	return sum
}
