package menus

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-cafe-orders/internal/apperr"
)

const selectMenu = `SELECT id, name, description, price, image_url, stock, created_at, updated_at FROM menus`

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) ListMenus(ctx context.Context) ([]MenuItem, error) {
	rows, err := r.DB.Query(ctx, selectMenu+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	defer rows.Close()

	out := []MenuItem{}
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			return nil, fmt.Errorf("scan menu: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repo) GetMenu(ctx context.Context, id int64) (MenuItem, error) {
	m, err := scanMenu(r.DB.QueryRow(ctx, selectMenu+` WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return MenuItem{}, apperr.NotFound("menu", id)
	}
	if err != nil {
		return MenuItem{}, fmt.Errorf("get menu %d: %w", id, err)
	}
	return m, nil
}

// UpdateStock overwrites the stock of a menu. Concurrent writers race and the
// last one wins.
func (r *Repo) UpdateStock(ctx context.Context, id int64, stock int) (StockUpdate, error) {
	var u StockUpdate
	err := r.DB.QueryRow(ctx, `UPDATE menus SET stock=$1 WHERE id=$2 RETURNING id, stock, name`, stock, id).
		Scan(&u.ID, &u.Stock, &u.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return StockUpdate{}, apperr.NotFound("menu", id)
	}
	if err != nil {
		return StockUpdate{}, fmt.Errorf("update stock %d: %w", id, err)
	}
	return u, nil
}

func scanMenu(row pgx.Row) (MenuItem, error) {
	var m MenuItem
	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.ImageURL, &m.Stock, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}
