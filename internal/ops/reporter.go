// Package ops is the operator-visible channel for detected inconsistencies.
// Compensation failures land here instead of being rolled back or retried:
// the system favors a recorded inconsistency over ambiguous state.
package ops

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/thangabali/suitcase-market/internal/events"
	kafkax "github.com/thangabali/suitcase-market/internal/kafka"
)

type Report struct {
	Kind      string
	OrderID   string
	ListingID string
	Quantity  int
	Cause     string
}

type Reporter interface {
	Report(ctx context.Context, r Report)
}

// KafkaReporter logs the report and publishes it on the inconsistency topic
// so an auditor can pick it up.
type KafkaReporter struct {
	Producer *kafkax.Producer
	Service  string
}

func (k *KafkaReporter) Report(_ context.Context, r Report) {
	log.Printf("INCONSISTENCY kind=%s order=%s listing=%s qty=%d cause=%s",
		r.Kind, r.OrderID, r.ListingID, r.Quantity, r.Cause)

	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     events.EventInconsistency,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      k.Service,
		CorrelationID: r.OrderID,
		Payload: kafkax.MustMarshal(events.InconsistencyPayload{
			Kind:      r.Kind,
			OrderID:   r.OrderID,
			ListingID: r.ListingID,
			Quantity:  r.Quantity,
			Cause:     r.Cause,
		}),
	}
	k.Producer.Publish(events.PartitionKey(r.OrderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventInconsistency)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// LogReporter is the fallback when no broker is wired (tests, dev).
type LogReporter struct{}

func (LogReporter) Report(_ context.Context, r Report) {
	log.Printf("INCONSISTENCY kind=%s order=%s listing=%s qty=%d cause=%s",
		r.Kind, r.OrderID, r.ListingID, r.Quantity, r.Cause)
}
