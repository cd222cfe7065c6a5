package accounts

import "errors"

var (
	ErrNotFound         = errors.New("account not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrAlreadyVerified  = errors.New("account already verified")
	ErrNotVerified      = errors.New("account not verified")
	ErrBadCredentials   = errors.New("invalid email or password")
	ErrChallengeInvalid = errors.New("invalid verification code")
	ErrChallengeExpired = errors.New("verification code expired")
)
