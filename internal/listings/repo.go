package listings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo covers listing CRUD. Stock/is_sold writes live on Ledger, not here.
type Repo struct{ DB *pgxpool.Pool }

const listingCols = `id, seller_id, name, description, height_cm, width_cm, depth_cm, material, color, features, rate, stock, is_sold, created_at, updated_at`

func scanListing(row pgx.Row) (*Listing, error) {
	var l Listing
	err := row.Scan(&l.ID, &l.SellerID, &l.Name, &l.Description, &l.HeightCM, &l.WidthCM, &l.DepthCM,
		&l.Material, &l.Color, &l.Features, &l.Rate, &l.Stock, &l.IsSold, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Repo) Create(ctx context.Context, l *Listing) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO listings(id, seller_id, name, description, height_cm, width_cm, depth_cm, material, color, features, rate, stock, is_sold)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$12=0)`,
		l.ID, l.SellerID, l.Name, l.Description, l.HeightCM, l.WidthCM, l.DepthCM,
		l.Material, l.Color, l.Features, l.Rate, l.Stock)
	if err != nil {
		return err
	}
	l.IsSold = l.Stock == 0
	return nil
}

func (r *Repo) GetOwned(ctx context.Context, id, sellerID string) (*Listing, error) {
	return scanListing(r.DB.QueryRow(ctx,
		`SELECT `+listingCols+` FROM listings WHERE id=$1 AND seller_id=$2`, id, sellerID))
}

func (r *Repo) Get(ctx context.Context, id string) (*Listing, error) {
	return scanListing(r.DB.QueryRow(ctx,
		`SELECT `+listingCols+` FROM listings WHERE id=$1`, id))
}

// Update patches the owner's listing and returns the fresh row.
func (r *Repo) Update(ctx context.Context, id, sellerID string, upd ListingUpdate) (*Listing, error) {
	return scanListing(r.DB.QueryRow(ctx, `
		UPDATE listings SET
			name        = COALESCE($3, name),
			description = COALESCE($4, description),
			color       = COALESCE($5, color),
			rate        = COALESCE($6, rate),
			updated_at  = now()
		WHERE id=$1 AND seller_id=$2
		RETURNING `+listingCols,
		id, sellerID, upd.Name, upd.Description, upd.Color, upd.Rate))
}

// DeleteOwned removes a single listing. No cross-entity effect: orders keep
// their snapshot, and a later release against the gone listing is a no-op.
func (r *Repo) DeleteOwned(ctx context.Context, id, sellerID string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM listings WHERE id=$1 AND seller_id=$2`, id, sellerID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBySeller filters the seller's listings by material and/or sold state.
func (r *Repo) ListBySeller(ctx context.Context, sellerID string, material Material, isSold *bool) ([]Listing, error) {
	q := `SELECT ` + listingCols + ` FROM listings WHERE seller_id=$1`
	args := []any{sellerID}
	if material != "" {
		args = append(args, material)
		q += fmt.Sprintf(` AND material=$%d`, len(args))
	}
	if isSold != nil {
		args = append(args, *isSold)
		q += fmt.Sprintf(` AND is_sold=$%d`, len(args))
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Listing
	for rows.Next() {
		var l Listing
		if err := rows.Scan(&l.ID, &l.SellerID, &l.Name, &l.Description, &l.HeightCM, &l.WidthCM, &l.DepthCM,
			&l.Material, &l.Color, &l.Features, &l.Rate, &l.Stock, &l.IsSold, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
