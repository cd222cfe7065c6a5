package redisx

import "time"

const (
	// Cached order status, scoped to the owning buyer so one buyer can never
	// read another's entry:
	// order_status:{buyer_id}:{order_id} -> {"status":"...","payment_status":"..."}
	KeyOrderStatus = "order_status:%s:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
