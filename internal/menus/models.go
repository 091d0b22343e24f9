package menus

import "time"

type MenuItem struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	ImageURL    string    `json:"imageUrl"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// StockUpdate is the result of an overwrite: the menu id and its new stock.
type StockUpdate struct {
	ID    int64  `json:"id"`
	Stock int    `json:"stock"`
	Name  string `json:"-"`
}

// Inventory maps menu id to the stock the caller last saw.
func Inventory(items []MenuItem) map[int64]int {
	out := make(map[int64]int, len(items))
	for _, m := range items {
		out[m.ID] = m.Stock
	}
	return out
}
