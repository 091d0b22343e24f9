package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-cafe-orders/internal/apperr"
)

type Repo struct{ DB *pgxpool.Pool }

type lockedMenu struct {
	name  string
	price int64
	stock int
}

// PlaceOrderTx checks and decrements stock for every line, then inserts the
// order and its items, all in one transaction. Menu rows are locked in id
// order so concurrent placements queue on the same rows instead of
// deadlocking. Any error leaves no trace.
func (r *Repo) PlaceOrderTx(ctx context.Context, req PlaceOrderRequest, verifyTotals bool) (Placement, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return Placement{}, fmt.Errorf("begin place order: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ids := menuIDs(req.Items)
	locked, err := lockMenus(ctx, tx, ids)
	if err != nil {
		return Placement{}, err
	}

	remaining := make(map[int64]int, len(locked))
	for id, m := range locked {
		remaining[id] = m.stock
	}
	for _, it := range req.Items {
		m, ok := locked[it.MenuID]
		if !ok {
			return Placement{}, apperr.NotFound("menu", it.MenuID)
		}
		if remaining[it.MenuID] < it.Quantity {
			return Placement{}, &apperr.InsufficientStockError{
				MenuID:    it.MenuID,
				MenuName:  m.name,
				Available: remaining[it.MenuID],
				Requested: it.Quantity,
			}
		}
		remaining[it.MenuID] -= it.Quantity
	}

	if verifyTotals {
		if err := verifyPrices(req, locked); err != nil {
			return Placement{}, err
		}
	}

	stock := make([]StockLevel, 0, len(ids))
	for _, id := range ids {
		demand := locked[id].stock - remaining[id]
		var left int
		if err := tx.QueryRow(ctx,
			`UPDATE menus SET stock = stock - $1 WHERE id=$2 RETURNING stock`, demand, id,
		).Scan(&left); err != nil {
			return Placement{}, fmt.Errorf("decrement stock %d: %w", id, err)
		}
		stock = append(stock, StockLevel{MenuID: id, MenuName: locked[id].name, Stock: left})
	}

	var o Order
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (total_amount, status)
		VALUES ($1, $2)
		RETURNING id, order_date, total_amount, status, created_at, updated_at
	`, req.TotalAmount, string(StatusReceived)).
		Scan(&o.ID, &o.OrderDate, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Placement{}, fmt.Errorf("insert order: %w", err)
	}

	o.Items = make([]LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		line := it
		line.MenuName = locked[it.MenuID].name
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, menu_id, menu_name, quantity, unit_price, options)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			o.ID, line.MenuID, line.MenuName, line.Quantity, line.Price, line.Options,
		); err != nil {
			return Placement{}, fmt.Errorf("insert order item: %w", err)
		}
		o.Items = append(o.Items, line)
	}

	if err := tx.Commit(ctx); err != nil {
		return Placement{}, fmt.Errorf("commit place order: %w", err)
	}
	return Placement{Order: o, Stock: stock}, nil
}

func menuIDs(items []LineItem) []int64 {
	seen := make(map[int64]bool, len(items))
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if !seen[it.MenuID] {
			seen[it.MenuID] = true
			ids = append(ids, it.MenuID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func lockMenus(ctx context.Context, tx pgx.Tx, ids []int64) (map[int64]lockedMenu, error) {
	rows, err := tx.Query(ctx,
		`SELECT id, name, price, stock FROM menus WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return nil, fmt.Errorf("lock menus: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]lockedMenu, len(ids))
	for rows.Next() {
		var id int64
		var m lockedMenu
		if err := rows.Scan(&id, &m.name, &m.price, &m.stock); err != nil {
			return nil, fmt.Errorf("scan locked menu: %w", err)
		}
		out[id] = m
	}
	return out, rows.Err()
}

// verifyPrices recomputes each line from the locked menu price and compares
// it, and the order total, with what the client sent.
func verifyPrices(req PlaceOrderRequest, locked map[int64]lockedMenu) error {
	for i, it := range req.Items {
		want := UnitPrice(locked[it.MenuID].price, it.Options)
		if it.Price != want {
			return apperr.Invalid(RuleLinePriceMismatch,
				"order item %d: price %d does not match current price %d", i, it.Price, want)
		}
	}
	if sum := Total(req.Items); sum != req.TotalAmount {
		return apperr.Invalid(RuleTotalMismatch,
			"total amount %d does not match sum of items %d", req.TotalAmount, sum)
	}
	return nil
}

const selectOrder = `SELECT id, order_date, total_amount, status, created_at, updated_at FROM orders`

func (r *Repo) GetOrder(ctx context.Context, id int64) (Order, error) {
	var o Order
	err := r.DB.QueryRow(ctx, selectOrder+` WHERE id=$1`, id).
		Scan(&o.ID, &o.OrderDate, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, apperr.NotFound("order", id)
	}
	if err != nil {
		return Order{}, fmt.Errorf("get order %d: %w", id, err)
	}
	out := []Order{o}
	if err := r.attachItems(ctx, out); err != nil {
		return Order{}, err
	}
	return out[0], nil
}

// ListOrders returns the newest orders first, each with its items.
func (r *Repo) ListOrders(ctx context.Context, q ListQuery) ([]Order, error) {
	sql := selectOrder
	args := []any{}
	if q.Status != "" {
		sql += ` WHERE status=$1`
		args = append(args, string(q.Status))
	}
	sql += fmt.Sprintf(` ORDER BY order_date DESC, id DESC LIMIT $%d`, len(args)+1)
	args = append(args, q.Limit)

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.OrderDate, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := r.attachItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) attachItems(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Items = []LineItem{}
	}

	rows, err := r.DB.Query(ctx, `
		SELECT order_id, menu_id, menu_name, quantity, unit_price, options
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int64
		var it LineItem
		if err := rows.Scan(&orderID, &it.MenuID, &it.MenuName, &it.Quantity, &it.Price, &it.Options); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		i := index[orderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return rows.Err()
}

// UpdateStatus overwrites the status of an order. It does not check that
// the move is forward; see CanAdvance.
func (r *Repo) UpdateStatus(ctx context.Context, id int64, s Status) (StatusUpdate, error) {
	var u StatusUpdate
	err := r.DB.QueryRow(ctx, `UPDATE orders SET status=$1 WHERE id=$2 RETURNING id, status`, string(s), id).
		Scan(&u.ID, &u.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return StatusUpdate{}, apperr.NotFound("order", id)
	}
	if err != nil {
		return StatusUpdate{}, fmt.Errorf("update order status %d: %w", id, err)
	}
	return u, nil
}
