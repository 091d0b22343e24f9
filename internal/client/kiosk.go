package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-cafe-orders/internal/cart"
	"github.com/ariefcatur/go-cafe-orders/internal/menus"
	"github.com/ariefcatur/go-cafe-orders/internal/orders"
)

var ErrUnknownMenu = errors.New("menu is not in the loaded catalog")

// Kiosk is the customer flow: browse the catalog, fill a cart, check out.
// It is not safe for concurrent use.
type Kiosk struct {
	api   *Client
	Menus []menus.MenuItem
	Cart  cart.State
	stock cart.Stock
}

func NewKiosk(api *Client) *Kiosk {
	return &Kiosk{api: api, stock: cart.Stock{}}
}

// Load replaces the catalog and the known stock with the server's.
func (k *Kiosk) Load(ctx context.Context) error {
	items, err := k.api.Menus(ctx)
	if err != nil {
		return err
	}
	k.Menus = items
	k.stock = menus.Inventory(items)
	return nil
}

func (k *Kiosk) Add(menuID int64, opts orders.Options) error {
	m, ok := k.menu(menuID)
	if !ok {
		return ErrUnknownMenu
	}
	s, err := cart.Add(k.Cart, cart.Candidate{MenuID: m.ID, MenuName: m.Name, BasePrice: m.Price, Options: opts}, k.stock)
	if err != nil {
		return err
	}
	k.Cart = s
	return nil
}

func (k *Kiosk) SetQuantity(lineID string, qty int) error {
	s, err := cart.SetQuantity(k.Cart, lineID, qty, k.stock)
	if err != nil {
		return err
	}
	k.Cart = s
	return nil
}

func (k *Kiosk) Remove(lineID string) {
	k.Cart = cart.Remove(k.Cart, lineID)
}

// Checkout submits the cart as one order and then reloads the catalog so
// the shown stock is the server's. The cart is cleared once the order is
// accepted. A failed submission leaves the cart intact and is not retried.
// If only the reload fails, the order is returned together with the error.
func (k *Kiosk) Checkout(ctx context.Context) (orders.Order, error) {
	req, err := k.Cart.OrderRequest()
	if err != nil {
		return orders.Order{}, err
	}
	o, err := k.api.PlaceOrder(ctx, req, uuid.NewString())
	if err != nil {
		return orders.Order{}, err
	}
	k.Cart = cart.Clear()
	if err := k.Load(ctx); err != nil {
		return o, fmt.Errorf("reload catalog: %w", err)
	}
	return o, nil
}

func (k *Kiosk) menu(id int64) (menus.MenuItem, bool) {
	for _, m := range k.Menus {
		if m.ID == id {
			return m, true
		}
	}
	return menus.MenuItem{}, false
}
