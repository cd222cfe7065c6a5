package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const orderCols = `id, buyer_id, listing_id, quantity, total_amount, payment_method, status, payment_status, shipping_address, order_notes, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.BuyerID, &o.ListingID, &o.Quantity, &o.TotalAmount, &o.PaymentMethod,
		&o.Status, &o.PaymentStatus, &o.ShippingAddress, &o.OrderNotes, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) Create(ctx context.Context, o *Order) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO orders(id, buyer_id, listing_id, quantity, total_amount, payment_method, status, payment_status, shipping_address, order_notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		o.ID, o.BuyerID, o.ListingID, o.Quantity, o.TotalAmount, o.PaymentMethod,
		o.Status, o.PaymentStatus, o.ShippingAddress, o.OrderNotes)
	return err
}

func (r *Repo) Get(ctx context.Context, id string) (*Order, error) {
	return scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id))
}

func (r *Repo) GetForBuyer(ctx context.Context, id, buyerID string) (*Order, error) {
	return scanOrder(r.DB.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE id=$1 AND buyer_id=$2`, id, buyerID))
}

// CancelPending flips a pending order of this buyer to cancelled in one
// conditional update and returns the fresh row. A nil, nil return means the
// condition matched nothing: no such order, wrong buyer, or not pending.
func (r *Repo) CancelPending(ctx context.Context, id, buyerID string) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `
		UPDATE orders SET status='cancelled', updated_at=now()
		WHERE id=$1 AND buyer_id=$2 AND status='pending'
		RETURNING `+orderCols,
		id, buyerID))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return o, err
}

// AdvanceStatus applies a forward transition keyed on the current status, so
// two concurrent advances cannot both win.
func (r *Repo) AdvanceStatus(ctx context.Context, id string, from, to Status) (bool, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status=$3, updated_at=now()
		WHERE id=$1 AND status=$2`,
		id, from, to)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func (r *Repo) ListByBuyer(ctx context.Context, buyerID string, status Status) ([]Order, error) {
	q := `SELECT ` + orderCols + ` FROM orders WHERE buyer_id=$1 ORDER BY created_at DESC`
	args := []any{buyerID}
	if status != "" {
		q = `SELECT ` + orderCols + ` FROM orders WHERE buyer_id=$1 AND status=$2 ORDER BY created_at DESC`
		args = append(args, status)
	}
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.BuyerID, &o.ListingID, &o.Quantity, &o.TotalAmount, &o.PaymentMethod,
			&o.Status, &o.PaymentStatus, &o.ShippingAddress, &o.OrderNotes, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
