package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/thangabali/suitcase-market/internal/listings"
	"github.com/thangabali/suitcase-market/internal/ops"
)

// Inventory is the slice of the ledger the lifecycle manager drives.
type Inventory interface {
	Reserve(ctx context.Context, listingID string, qty int) (float64, error)
	Release(ctx context.Context, listingID string, qty int) error
}

// Store is the order persistence surface. Implemented by Repo.
type Store interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	GetForBuyer(ctx context.Context, id, buyerID string) (*Order, error)
	CancelPending(ctx context.Context, id, buyerID string) (*Order, error)
	AdvanceStatus(ctx context.Context, id string, from, to Status) (bool, error)
}

// Service coordinates order state with the inventory ledger so the two never
// drift: placement reserves before it persists, cancellation releases after
// the status write.
type Service struct {
	Store     Store
	Inventory Inventory
	Reporter  ops.Reporter
}

type PlaceOrderInput struct {
	BuyerID         string
	ListingID       string
	Quantity        int
	PaymentMethod   PaymentMethod
	ShippingAddress string
	OrderNotes      string
}

// PlaceOrder reserves stock, then persists the order with the total
// snapshotted from the reservation-time rate. A failed reservation surfaces
// unchanged and no order is created. If persisting fails after the
// reservation succeeded, the reservation is released best-effort; a release
// failure is reported to the operator channel, never silently dropped.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*Order, error) {
	rate, err := s.Inventory.Reserve(ctx, in.ListingID, in.Quantity)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ID:              uuid.NewString(),
		BuyerID:         in.BuyerID,
		ListingID:       in.ListingID,
		Quantity:        in.Quantity,
		TotalAmount:     rate * float64(in.Quantity),
		PaymentMethod:   in.PaymentMethod,
		Status:          StatusPending,
		PaymentStatus:   PaymentStatusPending,
		ShippingAddress: in.ShippingAddress,
		OrderNotes:      in.OrderNotes,
	}
	if err := s.Store.Create(ctx, o); err != nil {
		if relErr := s.Inventory.Release(ctx, in.ListingID, in.Quantity); relErr != nil && !errors.Is(relErr, listings.ErrNotFound) {
			s.Reporter.Report(ctx, ops.Report{
				Kind:      "unreleased_reservation",
				OrderID:   o.ID,
				ListingID: in.ListingID,
				Quantity:  in.Quantity,
				Cause:     relErr.Error(),
			})
		}
		return nil, fmt.Errorf("create order: %w", err)
	}
	return o, nil
}

// CancelOrder cancels the buyer's pending order and releases its stock.
// A gone listing is not an error (the seller may have deleted it); any other
// release failure leaves the order cancelled and goes to the operator
// channel rather than being rolled back.
func (s *Service) CancelOrder(ctx context.Context, orderID, buyerID string) (*Order, error) {
	o, err := s.Store.CancelPending(ctx, orderID, buyerID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		// Didn't match: distinguish a missing order from a wrong state.
		if _, err := s.Store.GetForBuyer(ctx, orderID, buyerID); err != nil {
			return nil, err
		}
		return nil, ErrInvalidTransition
	}

	if relErr := s.Inventory.Release(ctx, o.ListingID, o.Quantity); relErr != nil && !errors.Is(relErr, listings.ErrNotFound) {
		s.Reporter.Report(ctx, ops.Report{
			Kind:      "release_failed",
			OrderID:   o.ID,
			ListingID: o.ListingID,
			Quantity:  o.Quantity,
			Cause:     relErr.Error(),
		})
	}
	return o, nil
}

// Advance applies an administrative forward transition
// (pending→confirmed→shipped→delivered). Cancellation is not an advance;
// it only happens through CancelOrder.
func (s *Service) Advance(ctx context.Context, orderID string, to Status) (*Order, error) {
	if to == StatusCancelled {
		return nil, ErrInvalidTransition
	}
	o, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, to) {
		return nil, ErrInvalidTransition
	}
	ok, err := s.Store.AdvanceStatus(ctx, orderID, o.Status, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a race with another transition; the precondition no longer holds.
		return nil, ErrInvalidTransition
	}
	o.Status = to
	return o, nil
}
