// Package admin holds the multi-entity mutations that must succeed or fail
// as a unit.
package admin

import (
	"context"
	"errors"

	"github.com/thangabali/suitcase-market/internal/accounts"
)

type AccountGetter interface {
	GetByID(ctx context.Context, id string) (*accounts.Account, error)
}

type CascadeStore interface {
	DeleteCascade(ctx context.Context, id string, role accounts.Role) (listingsDeleted, ordersCancelled int64, err error)
}

type Service struct {
	Accounts AccountGetter
	Store    CascadeStore
}

// DeleteResult reports what a completed cascade touched.
type DeleteResult struct {
	AccountID       string
	Role            accounts.Role
	ListingsDeleted int64
	OrdersCancelled int64
}

// DeleteAccount removes an account and cascades per its role, all-or-nothing.
// Admins cannot delete themselves. A missing account surfaces as plain
// NotFound; anything that fails mid-cascade comes back as a CascadeError
// after full rollback.
func (s *Service) DeleteAccount(ctx context.Context, accountID, requestingAdminID string) (*DeleteResult, error) {
	if accountID == requestingAdminID {
		return nil, ErrSelfDeletion
	}
	a, err := s.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	listingsDeleted, ordersCancelled, err := s.Store.DeleteCascade(ctx, a.ID, a.Role)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			// The account vanished between the lookup and the cascade.
			return nil, accounts.ErrNotFound
		}
		return nil, &CascadeError{Cause: err}
	}
	return &DeleteResult{
		AccountID:       a.ID,
		Role:            a.Role,
		ListingsDeleted: listingsDeleted,
		OrdersCancelled: ordersCancelled,
	}, nil
}
