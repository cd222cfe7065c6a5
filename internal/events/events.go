package events

import (
	"encoding/json"
	"time"
)

const (
	TopicOrderPlaced    = "order.placed"
	TopicOrderCancelled = "order.cancelled"
	TopicAccountDeleted = "account.deleted"
	TopicInconsistency  = "ops.inconsistency"
)

const (
	EventOrderPlaced    = "OrderPlaced"
	EventOrderCancelled = "OrderCancelled"
	EventAccountDeleted = "AccountDeleted"
	EventInconsistency  = "InconsistencyDetected"
)

// Envelope is the versioned wrapper every published event rides in.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// PartitionKey keeps every event for one entity on one partition, in order.
func PartitionKey(id string) []byte { return []byte(id) }

type OrderPlacedPayload struct {
	OrderID     string  `json:"order_id"`
	BuyerID     string  `json:"buyer_id"`
	ListingID   string  `json:"listing_id"`
	Quantity    int     `json:"quantity"`
	TotalAmount float64 `json:"total_amount"`
}

type OrderCancelledPayload struct {
	OrderID   string `json:"order_id"`
	ListingID string `json:"listing_id"`
	Quantity  int    `json:"quantity"`
}

type AccountDeletedPayload struct {
	AccountID       string `json:"account_id"`
	Role            string `json:"role"`
	ListingsDeleted int64  `json:"listings_deleted"`
	OrdersCancelled int64  `json:"orders_cancelled"`
}

type InconsistencyPayload struct {
	Kind      string `json:"kind"` // e.g. "unreleased_reservation"
	OrderID   string `json:"order_id,omitempty"`
	ListingID string `json:"listing_id,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
	Cause     string `json:"cause"`
}
