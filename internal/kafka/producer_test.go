package kafka

import (
	"context"
	"testing"
	"time"
)

func waitClosed(t *testing.T, p *Producer) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		p.WaitClosed()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("flush loop did not exit")
	}
}

// The api binary closes every producer and then cancels the root context, so
// both signals race against the flush loop. Neither order may panic or hang.
func TestProducerCloseThenCancel(t *testing.T) {
	for i := 0; i < 50; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		p := NewProducer([]string{"localhost:1"}, "shutdown-test", 8)
		p.Start(ctx)
		p.Close()
		cancel()
		waitClosed(t, p)
	}
}

func TestProducerCancelThenClose(t *testing.T) {
	for i := 0; i < 50; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		p := NewProducer([]string{"localhost:1"}, "shutdown-test", 8)
		p.Start(ctx)
		cancel()
		p.Close()
		waitClosed(t, p)
	}
}

func TestProducerCloseIdempotent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := NewProducer([]string{"localhost:1"}, "shutdown-test", 8)
	p.Start(ctx)
	p.Close()
	p.Close()
	waitClosed(t, p)
}
