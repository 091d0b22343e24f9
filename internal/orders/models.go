package orders

import "time"

// Options is the option combination picked for a line. It is stored as JSONB.
type Options struct {
	AddShot  bool `json:"addShot"`
	AddSyrup bool `json:"addSyrup"`
}

// LineItem is one (menu, options, quantity) entry. MenuName and Price are
// snapshots taken when the order was placed.
type LineItem struct {
	MenuID   int64   `json:"menuId"`
	MenuName string  `json:"menuName"`
	Quantity int     `json:"quantity"`
	Price    int64   `json:"price"`
	Options  Options `json:"options"`
}

type Order struct {
	ID          int64      `json:"id"`
	OrderDate   time.Time  `json:"orderDate"`
	TotalAmount int64      `json:"totalAmount"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Items       []LineItem `json:"items"`
}

type PlaceOrderRequest struct {
	Items       []LineItem `json:"items"`
	TotalAmount int64      `json:"totalAmount"`
}

type StatusUpdate struct {
	ID     int64  `json:"id"`
	Status Status `json:"status"`
}

// StockLevel is a menu's stock right after a placement committed.
type StockLevel struct {
	MenuID   int64
	MenuName string
	Stock    int
}

// Placement is the outcome of a committed order transaction.
type Placement struct {
	Order Order
	Stock []StockLevel
}
