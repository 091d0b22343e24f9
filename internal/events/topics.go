package events

import "strconv"

const (
	TopicOrderPlaced        = "cafe.order.placed"
	TopicOrderStatusChanged = "cafe.order.status_changed"
	TopicStockAdjusted      = "cafe.menu.stock_adjusted"
)

// Order events are keyed by order id, stock events by menu id, so each
// partition keeps per-entity ordering.
func OrderKey(orderID int64) []byte { return []byte("order-" + strconv.FormatInt(orderID, 10)) }

func MenuKey(menuID int64) []byte { return []byte("menu-" + strconv.FormatInt(menuID, 10)) }
