// The auditor tails the operator-inconsistency topic. Reports land in the
// log with enough context to reconcile the listing by hand; redis keeps the
// consumer idempotent across redelivery.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/thangabali/suitcase-market/internal/config"
	"github.com/thangabali/suitcase-market/internal/events"
	kafkax "github.com/thangabali/suitcase-market/internal/kafka"
	"github.com/thangabali/suitcase-market/internal/redisx"
)

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	group := getenv("AUDITOR_GROUP", "ops-auditor")
	workers := mustAtoi(os.Getenv("AUDITOR_WORKERS"), "2")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, events.TopicInconsistency, workers)

	handler := func(ctx context.Context, m kafkago.Message) error {
		var env events.Envelope
		if err := kafkax.UnmarshalEnvelope(m.Value, &env); err != nil {
			return err
		}
		if env.EventType != events.EventInconsistency {
			return nil
		}

		// dedup on event_id so redelivery doesn't double-log
		dkey := fmt.Sprintf(redisx.KeyDedup, "auditor", env.EventID)
		exists, _ := redisx.Exists(ctx, rdb, dkey)
		if exists {
			return nil
		}
		_ = rdb.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

		p, err := kafkax.UnwrapPayload[events.InconsistencyPayload](env.Payload)
		if err != nil {
			return err
		}
		log.Printf("AUDIT %s: order=%s listing=%s qty=%d cause=%s (reported by %s at %s)",
			p.Kind, p.OrderID, p.ListingID, p.Quantity, p.Cause, env.Producer, env.OccurredAt)
		return nil
	}

	go func() {
		log.Printf("auditor consumer started: group=%s topic=%s workers=%d", group, events.TopicInconsistency, workers)
		if err := cons.Start(ctx, handler); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down auditor...")
	cancel()
}
