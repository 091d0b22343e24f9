// Package cart is the kiosk's in-memory cart. State is a value; every
// operation returns a new State and leaves its input untouched.
package cart

import (
	"errors"
	"fmt"

	"github.com/ariefcatur/go-cafe-orders/internal/orders"
)

var (
	ErrOutOfStock = errors.New("not enough stock")
	ErrEmptyCart  = errors.New("cart is empty")
)

// Key identifies a cart line. Adding a candidate with an existing key bumps
// that line's quantity instead of appending a new line.
type Key struct {
	MenuID  int64
	Options orders.Options
}

// ID is stable for a key, so a line keeps its id across merges.
func (k Key) ID() string {
	return fmt.Sprintf("%d-%t-%t", k.MenuID, k.Options.AddShot, k.Options.AddSyrup)
}

type Candidate struct {
	MenuID    int64
	MenuName  string
	BasePrice int64
	Options   orders.Options
}

type Line struct {
	ID        string
	MenuID    int64
	MenuName  string
	BasePrice int64
	Options   orders.Options
	Quantity  int
}

func (l Line) Key() Key { return Key{MenuID: l.MenuID, Options: l.Options} }

func (l Line) UnitPrice() int64 { return orders.UnitPrice(l.BasePrice, l.Options) }

func (l Line) Total() int64 { return l.UnitPrice() * int64(l.Quantity) }

// Stock is the last known stock per menu id. Missing menus count as zero.
type Stock map[int64]int

type State struct {
	Lines []Line
}

// Add puts one unit of c in the cart.
func Add(s State, c Candidate, stock Stock) (State, error) {
	if s.menuQuantity(c.MenuID) >= stock[c.MenuID] {
		return s, ErrOutOfStock
	}
	k := Key{MenuID: c.MenuID, Options: c.Options}
	out := s.clone()
	for i := range out.Lines {
		if out.Lines[i].Key() == k {
			out.Lines[i].Quantity++
			return out, nil
		}
	}
	out.Lines = append(out.Lines, Line{
		ID:        k.ID(),
		MenuID:    c.MenuID,
		MenuName:  c.MenuName,
		BasePrice: c.BasePrice,
		Options:   c.Options,
		Quantity:  1,
	})
	return out, nil
}

// SetQuantity changes a line's quantity. Zero or less removes the line. An
// unknown id leaves the cart as is.
func SetQuantity(s State, lineID string, qty int, stock Stock) (State, error) {
	if qty <= 0 {
		return Remove(s, lineID), nil
	}
	i := s.index(lineID)
	if i < 0 {
		return s, nil
	}
	l := s.Lines[i]
	if s.menuQuantity(l.MenuID)-l.Quantity+qty > stock[l.MenuID] {
		return s, ErrOutOfStock
	}
	out := s.clone()
	out.Lines[i].Quantity = qty
	return out, nil
}

func Remove(s State, lineID string) State {
	out := State{Lines: make([]Line, 0, len(s.Lines))}
	for _, l := range s.Lines {
		if l.ID != lineID {
			out.Lines = append(out.Lines, l)
		}
	}
	return out
}

func Clear() State { return State{} }

func (s State) Total() int64 {
	var sum int64
	for _, l := range s.Lines {
		sum += l.Total()
	}
	return sum
}

func (s State) Empty() bool { return len(s.Lines) == 0 }

// OrderRequest turns the cart into the body of a place-order call.
func (s State) OrderRequest() (orders.PlaceOrderRequest, error) {
	if s.Empty() {
		return orders.PlaceOrderRequest{}, ErrEmptyCart
	}
	req := orders.PlaceOrderRequest{Items: make([]orders.LineItem, 0, len(s.Lines))}
	for _, l := range s.Lines {
		req.Items = append(req.Items, orders.LineItem{
			MenuID:   l.MenuID,
			MenuName: l.MenuName,
			Quantity: l.Quantity,
			Price:    l.UnitPrice(),
			Options:  l.Options,
		})
	}
	req.TotalAmount = s.Total()
	return req, nil
}

// menuQuantity counts units of a menu across all its option combinations;
// they draw from the same stock.
func (s State) menuQuantity(menuID int64) int {
	n := 0
	for _, l := range s.Lines {
		if l.MenuID == menuID {
			n += l.Quantity
		}
	}
	return n
}

func (s State) index(lineID string) int {
	for i, l := range s.Lines {
		if l.ID == lineID {
			return i
		}
	}
	return -1
}

func (s State) clone() State {
	return State{Lines: append([]Line(nil), s.Lines...)}
}
