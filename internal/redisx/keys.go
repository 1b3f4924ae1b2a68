package redisx

import "time"

const (
	// Placed order as seen by its owner: order_view:{user_id}:{number} -> JSON placement
	KeyOrderView = "order_view:%s:%d"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLOrderView = 10 * time.Minute
	TTLDedup     = 48 * time.Hour
)
