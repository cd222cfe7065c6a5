package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const accountCols = `id, email, password_hash, role, is_verified, otp_code, otp_expires_at, last_login_at, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.IsVerified,
		&a.OTPCode, &a.OTPExpiresAt, &a.LastLoginAt, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) Create(ctx context.Context, a *Account) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO accounts(id, email, password_hash, role, is_verified)
		VALUES ($1, $2, $3, $4, false)`,
		a.ID, a.Email, a.PasswordHash, a.Role)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailTaken
	}
	return err
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Account, error) {
	return scanAccount(r.DB.QueryRow(ctx, `SELECT `+accountCols+` FROM accounts WHERE id=$1`, id))
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return scanAccount(r.DB.QueryRow(ctx, `SELECT `+accountCols+` FROM accounts WHERE email=$1`, email))
}

// SetChallenge overwrites any previous code; only unverified accounts hold one.
func (r *Repo) SetChallenge(ctx context.Context, id, code string, expiresAt time.Time) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE accounts SET otp_code=$2, otp_expires_at=$3, updated_at=now()
		WHERE id=$1 AND is_verified=false`,
		id, code, expiresAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrAlreadyVerified
	}
	return nil
}

// CompleteVerification flips is_verified and clears both OTP fields in one
// conditional update. Under concurrent verifies exactly one caller matches;
// the loser sees false and reports an invalid code.
func (r *Repo) CompleteVerification(ctx context.Context, id, code string) (bool, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE accounts SET is_verified=true, otp_code=NULL, otp_expires_at=NULL, updated_at=now()
		WHERE id=$1 AND is_verified=false AND otp_code=$2 AND otp_expires_at > now()`,
		id, code)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func (r *Repo) TouchLogin(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `UPDATE accounts SET last_login_at=now(), updated_at=now() WHERE id=$1`, id)
	return err
}

// SetVerified is the administrative toggle; verifying clears any pending code.
func (r *Repo) SetVerified(ctx context.Context, id string, verified bool) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE accounts SET is_verified=$2,
		       otp_code=CASE WHEN $2 THEN NULL ELSE otp_code END,
		       otp_expires_at=CASE WHEN $2 THEN NULL ELSE otp_expires_at END,
		       updated_at=now()
		WHERE id=$1`, id, verified)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns accounts, optionally filtered by role ("" means all).
func (r *Repo) List(ctx context.Context, role Role) ([]Account, error) {
	q := `SELECT ` + accountCols + ` FROM accounts ORDER BY created_at DESC`
	args := []any{}
	if role != "" {
		q = `SELECT ` + accountCols + ` FROM accounts WHERE role=$1 ORDER BY created_at DESC`
		args = append(args, role)
	}
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.IsVerified,
			&a.OTPCode, &a.OTPExpiresAt, &a.LastLoginAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
