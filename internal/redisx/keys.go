package redisx

import "time"

const (
	// Cached catalog: menus:all -> JSON []MenuItem
	KeyMenus = "menus:all"

	// Catalog generation, bumped on every invalidation: menus:gen -> counter
	KeyMenusGen = "menus:gen"

	// Idempotent order placement: idem:order:place:{key} -> "pending" | order id
	KeyIdemOrderPlace = "idem:order:place:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Stock alert board: hash menu id -> JSON alert
	KeyStockAlerts = "stock:alerts"

	// Observation time of the last applied level: hash menu id -> unix micros
	KeyStockAlertsSeen = "stock:alerts:seen"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
)
