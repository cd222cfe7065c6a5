package accounts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thangabali/suitcase-market/internal/auth"
	"github.com/thangabali/suitcase-market/internal/notifier"
)

// Store is the persistence surface the signup/verification flows need.
// Implemented by Repo.
type Store interface {
	Create(ctx context.Context, a *Account) error
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	SetChallenge(ctx context.Context, id, code string, expiresAt time.Time) error
	CompleteVerification(ctx context.Context, id, code string) (bool, error)
	TouchLogin(ctx context.Context, id string) error
}

const challengeTTL = 10 * time.Minute

type Service struct {
	Store    Store
	Notifier notifier.Notifier

	now     func() time.Time
	newCode func() string
}

func NewService(store Store, n notifier.Notifier) *Service {
	return &Service{Store: store, Notifier: n, now: time.Now, newCode: newCode}
}

// newCode produces a fixed-length 6-digit code. Brute-force resistance over
// the 10-minute window is all that is asked of it.
func newCode() string {
	return fmt.Sprintf("%06d", rand.IntN(1_000_000))
}

func displayName(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}

// Signup registers an unverified account and mails it a challenge. If the
// email already belongs to an unverified account, a fresh challenge is issued
// for it instead (the previous code is overwritten). A challenge that cannot
// be delivered fails the whole call: the user has no other way to get the code.
func (s *Service) Signup(ctx context.Context, email, password string, role Role) (*Account, error) {
	existing, err := s.Store.GetByEmail(ctx, email)
	if err == nil {
		if existing.IsVerified {
			return nil, ErrEmailTaken
		}
		if err := s.sendNewChallenge(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	a := &Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.Store.Create(ctx, a); err != nil {
		return nil, err
	}
	if err := s.sendNewChallenge(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// IssueChallenge generates and persists a new code for an unverified account,
// overwriting any prior one, and returns it for delivery.
func (s *Service) IssueChallenge(ctx context.Context, a *Account) (string, error) {
	if a.IsVerified {
		return "", ErrAlreadyVerified
	}
	code := s.newCode()
	expiresAt := s.now().Add(challengeTTL)
	if err := s.Store.SetChallenge(ctx, a.ID, code, expiresAt); err != nil {
		return "", err
	}
	a.OTPCode = &code
	a.OTPExpiresAt = &expiresAt
	return code, nil
}

func (s *Service) sendNewChallenge(ctx context.Context, a *Account) error {
	code, err := s.IssueChallenge(ctx, a)
	if err != nil {
		return err
	}
	if err := s.Notifier.SendChallenge(ctx, a.Email, code, displayName(a.Email)); err != nil {
		return fmt.Errorf("send challenge: %w", err)
	}
	return nil
}

// ResendChallenge re-enters the challenge-issued state for an unverified account.
func (s *Service) ResendChallenge(ctx context.Context, email string) error {
	a, err := s.Store.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if a.IsVerified {
		return ErrAlreadyVerified
	}
	return s.sendNewChallenge(ctx, a)
}

// VerifyChallenge checks the submitted code and, on success, marks the
// account verified and clears the challenge in a single conditional update,
// so of two concurrent calls with the same valid code exactly one wins; the
// other observes the cleared state and gets ErrChallengeInvalid.
func (s *Service) VerifyChallenge(ctx context.Context, email, code string) (*Account, error) {
	a, err := s.Store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if a.IsVerified {
		return nil, ErrAlreadyVerified
	}
	if a.OTPCode == nil || a.OTPExpiresAt == nil {
		return nil, ErrChallengeInvalid
	}
	if s.now().After(*a.OTPExpiresAt) {
		return nil, ErrChallengeExpired
	}
	ok, err := s.Store.CompleteVerification(ctx, a.ID, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrChallengeInvalid
	}
	a.IsVerified = true
	a.OTPCode = nil
	a.OTPExpiresAt = nil

	// Welcome mail is best-effort; verification already succeeded.
	if err := s.Notifier.SendWelcome(ctx, a.Email, displayName(a.Email), string(a.Role)); err != nil {
		log.Printf("welcome mail to %s: %v", a.Email, err)
	}
	return a, nil
}

// Login authenticates a verified account. Unverified accounts can never
// authenticate, regardless of credentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Account, error) {
	a, err := s.Store.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if !a.IsVerified {
		return nil, ErrNotVerified
	}
	if !auth.VerifyPassword(password, a.PasswordHash) {
		return nil, ErrBadCredentials
	}
	if err := s.Store.TouchLogin(ctx, a.ID); err != nil {
		log.Printf("touch login %s: %v", a.ID, err)
	}
	return a, nil
}
