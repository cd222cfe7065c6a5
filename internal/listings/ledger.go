package listings

import (
	"context"
	"errors"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ledger owns every write to a listing's stock/is_sold pair. Each operation
// is a single conditional UPDATE, so concurrent callers serialize on the row
// and the invariant is_sold == (stock == 0) holds after every write.
type Ledger struct{ DB *pgxpool.Pool }

// Reserve decrements stock by qty and flips is_sold when it reaches zero, in
// one statement. It returns the unit rate in effect at reservation time so
// the caller can snapshot the order total.
func (l *Ledger) Reserve(ctx context.Context, listingID string, qty int) (float64, error) {
	if qty < 1 {
		return 0, ErrBadQuantity
	}
	var rate float64
	err := l.DB.QueryRow(ctx, `
		UPDATE listings
		SET stock = stock - $2, is_sold = (stock - $2 = 0), updated_at = now()
		WHERE id = $1 AND is_sold = false AND stock >= $2
		RETURNING rate`,
		listingID, qty).Scan(&rate)
	if err == nil {
		return rate, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	// The conditional update matched nothing; read the row to say why.
	var stock int
	var isSold bool
	err = l.DB.QueryRow(ctx, `SELECT stock, is_sold FROM listings WHERE id=$1`, listingID).Scan(&stock, &isSold)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	if isSold {
		return 0, ErrAlreadySold
	}
	return 0, ErrInsufficientStock
}

// Release returns qty units to the listing and clears is_sold. The clear is
// unconditional: the stock arithmetic stays correct under concurrent orders,
// but a release can mark a listing available while other reservations are
// still outstanding. Accepted behavior.
//
// ErrNotFound means the listing was deleted in the meantime; callers treat
// that as "nothing to restore".
func (l *Ledger) Release(ctx context.Context, listingID string, qty int) error {
	if qty < 1 {
		return ErrBadQuantity
	}
	ct, err := l.DB.Exec(ctx, `
		UPDATE listings SET stock = stock + $2, is_sold = false, updated_at = now()
		WHERE id = $1`,
		listingID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ForceSold delists manually: stock drops to zero and is_sold is set,
// regardless of remaining stock. Only the owning seller may do this.
func (l *Ledger) ForceSold(ctx context.Context, listingID, ownerID string) error {
	ct, err := l.DB.Exec(ctx, `
		UPDATE listings SET stock = 0, is_sold = true, updated_at = now()
		WHERE id = $1 AND seller_id = $2`,
		listingID, ownerID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := l.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM listings WHERE id=$1)`, listingID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrNotOwner
}

// BulkAdjustRate reprices every listing the owner has in the given material.
// An additive delta goes out as one batched UPDATE; a percentage adjustment
// recomputes each rate in Go (round half away from zero, 2 decimals) under
// row locks in one transaction. Returns the number of listings modified;
// zero matches is ErrNoMatch, not a hard failure.
func (l *Ledger) BulkAdjustRate(ctx context.Context, ownerID string, material Material, adj RateAdjustment) (int64, error) {
	if (adj.Delta == nil) == (adj.Percent == nil) {
		return 0, ErrBadAdjustment
	}

	if adj.Delta != nil {
		ct, err := l.DB.Exec(ctx, `
			UPDATE listings SET rate = rate + $3, updated_at = now()
			WHERE seller_id = $1 AND material = $2`,
			ownerID, material, *adj.Delta)
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			return 0, ErrNoMatch
		}
		return ct.RowsAffected(), nil
	}

	tx, err := l.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT id, rate FROM listings
		WHERE seller_id = $1 AND material = $2
		FOR UPDATE`,
		ownerID, material)
	if err != nil {
		return 0, err
	}
	type repriced struct {
		id   string
		rate float64
	}
	var updates []repriced
	for rows.Next() {
		var r repriced
		if err := rows.Scan(&r.id, &r.rate); err != nil {
			rows.Close()
			return 0, err
		}
		r.rate = applyPercentage(r.rate, *adj.Percent)
		updates = append(updates, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(updates) == 0 {
		return 0, ErrNoMatch
	}

	for _, u := range updates {
		if _, err := tx.Exec(ctx, `UPDATE listings SET rate = $2, updated_at = now() WHERE id = $1`, u.id, u.rate); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return int64(len(updates)), nil
}

// applyPercentage computes round(rate * (1 + pct/100), 2).
func applyPercentage(rate, pct float64) float64 {
	return math.Round(rate*(1+pct/100)*100) / 100
}
