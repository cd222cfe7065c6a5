package admin

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thangabali/suitcase-market/internal/accounts"
)

type Repo struct{ DB *pgxpool.Pool }

// executor is the slice of pgx.Tx the cascade statements run on.
type executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// DeleteCascade removes the account and its dependent records in a single
// transaction. Any failure rolls the whole thing back.
func (r *Repo) DeleteCascade(ctx context.Context, id string, role accounts.Role) (listingsDeleted, ordersCancelled int64, err error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	listingsDeleted, ordersCancelled, err = cascade(ctx, tx, id, role)
	if err != nil {
		return 0, 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, 0, err
	}
	return listingsDeleted, ordersCancelled, nil
}

// cascade runs the role-dependent deletes followed by the account removal.
// Role decides the cascade:
//
//   - seller: every owned listing is deleted
//   - buyer: every pending order is force-cancelled; reserved stock is
//     deliberately NOT released (the listings may be going away too, and
//     reconciliation is the seller's problem)
//   - admin: nothing beyond the account row
//
// The first error aborts, so the account removal never runs after a failed
// step and the caller never commits.
func cascade(ctx context.Context, tx executor, id string, role accounts.Role) (listingsDeleted, ordersCancelled int64, err error) {
	switch role {
	case accounts.RoleSeller:
		ct, err := tx.Exec(ctx, `DELETE FROM listings WHERE seller_id=$1`, id)
		if err != nil {
			return 0, 0, err
		}
		listingsDeleted = ct.RowsAffected()
	case accounts.RoleBuyer:
		ct, err := tx.Exec(ctx, `
			UPDATE orders SET status='cancelled', updated_at=now()
			WHERE buyer_id=$1 AND status='pending'`, id)
		if err != nil {
			return 0, 0, err
		}
		ordersCancelled = ct.RowsAffected()
	case accounts.RoleAdmin:
		// no cascading effect
	default:
		return 0, 0, fmt.Errorf("unknown role %q", role)
	}

	ct, err := tx.Exec(ctx, `DELETE FROM accounts WHERE id=$1`, id)
	if err != nil {
		return 0, 0, err
	}
	if ct.RowsAffected() == 0 {
		return 0, 0, accounts.ErrNotFound
	}
	return listingsDeleted, ordersCancelled, nil
}
