package accounts

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/thangabali/suitcase-market/internal/auth"
)

// memAccounts implements Store with the same conditional-update semantics the
// SQL repo has: CompleteVerification only flips the row if it is still
// unverified and the code matches.
type memAccounts struct {
	mu   sync.Mutex
	byID map[string]*Account
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: map[string]*Account{}}
}

func (m *memAccounts) put(a *Account) {
	m.byID[a.ID] = a
}

func (m *memAccounts) Create(_ context.Context, a *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range m.byID {
		if ex.Email == a.Email {
			return ErrEmailTaken
		}
	}
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memAccounts) GetByID(_ context.Context, id string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAccounts) SetChallenge(_ context.Context, id, code string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	if a.IsVerified {
		return ErrAlreadyVerified
	}
	c, e := code, expiresAt
	a.OTPCode = &c
	a.OTPExpiresAt = &e
	return nil
}

func (m *memAccounts) CompleteVerification(_ context.Context, id, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return false, nil
	}
	if a.IsVerified || a.OTPCode == nil || *a.OTPCode != code {
		return false, nil
	}
	a.IsVerified = true
	a.OTPCode = nil
	a.OTPExpiresAt = nil
	return true, nil
}

func (m *memAccounts) TouchLogin(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.byID[id]; ok {
		now := time.Now()
		a.LastLoginAt = &now
	}
	return nil
}

type memMail struct {
	mu           sync.Mutex
	challenges   []string // codes handed out
	welcomes     []string // addresses welcomed
	challengeErr error
	welcomeErr   error
}

func (m *memMail) SendChallenge(_ context.Context, _, code, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.challengeErr != nil {
		return m.challengeErr
	}
	m.challenges = append(m.challenges, code)
	return nil
}

func (m *memMail) SendWelcome(_ context.Context, addr, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.welcomeErr != nil {
		return m.welcomeErr
	}
	m.welcomes = append(m.welcomes, addr)
	return nil
}

func newTestService() (*Service, *memAccounts, *memMail) {
	store := newMemAccounts()
	mail := &memMail{}
	return NewService(store, mail), store, mail
}

func TestNewCodeShape(t *testing.T) {
	pat := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 200; i++ {
		assert.Regexp(t, pat, newCode())
	}
}

func TestSignupIssuesChallenge(t *testing.T) {
	svc, store, mail := newTestService()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	svc.newCode = func() string { return "123456" }

	a, err := svc.Signup(context.Background(), "kim@example.com", "hunter22", RoleSeller)
	require.NoError(t, err)
	assert.False(t, a.IsVerified)

	stored := store.byID[a.ID]
	require.NotNil(t, stored.OTPCode)
	assert.Equal(t, "123456", *stored.OTPCode)
	assert.Equal(t, base.Add(10*time.Minute), *stored.OTPExpiresAt)
	assert.Equal(t, []string{"123456"}, mail.challenges)
}

func TestSignupVerifiedEmailTaken(t *testing.T) {
	svc, store, _ := newTestService()
	store.put(&Account{ID: "a1", Email: "kim@example.com", IsVerified: true})

	_, err := svc.Signup(context.Background(), "kim@example.com", "pw", RoleBuyer)
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Len(t, store.byID, 1)
}

func TestSignupUnverifiedReissues(t *testing.T) {
	svc, store, mail := newTestService()
	old := "111111"
	store.put(&Account{ID: "a1", Email: "kim@example.com", OTPCode: &old})
	svc.newCode = func() string { return "222222" }

	a, err := svc.Signup(context.Background(), "kim@example.com", "pw", RoleBuyer)
	require.NoError(t, err)
	assert.Equal(t, "a1", a.ID, "no second account for the same address")
	assert.Len(t, store.byID, 1)
	assert.Equal(t, "222222", *store.byID["a1"].OTPCode)
	assert.Equal(t, []string{"222222"}, mail.challenges)
}

func TestSignupUndeliverableChallengeFails(t *testing.T) {
	svc, _, mail := newTestService()
	mail.challengeErr = errors.New("smtp refused")

	_, err := svc.Signup(context.Background(), "kim@example.com", "pw", RoleBuyer)
	assert.Error(t, err)
}

func TestVerifyChallengeSuccess(t *testing.T) {
	svc, store, mail := newTestService()
	svc.newCode = func() string { return "654321" }

	a, err := svc.Signup(context.Background(), "kim@example.com", "pw", RoleBuyer)
	require.NoError(t, err)

	got, err := svc.VerifyChallenge(context.Background(), "kim@example.com", "654321")
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	assert.Nil(t, got.OTPCode)
	assert.Nil(t, got.OTPExpiresAt)

	stored := store.byID[a.ID]
	assert.True(t, stored.IsVerified)
	assert.Nil(t, stored.OTPCode)
	assert.Equal(t, []string{"kim@example.com"}, mail.welcomes)
}

func TestVerifyChallengeWrongCode(t *testing.T) {
	svc, store, _ := newTestService()
	svc.newCode = func() string { return "654321" }

	a, err := svc.Signup(context.Background(), "kim@example.com", "pw", RoleBuyer)
	require.NoError(t, err)

	_, err = svc.VerifyChallenge(context.Background(), "kim@example.com", "000000")
	assert.ErrorIs(t, err, ErrChallengeInvalid)
	assert.False(t, store.byID[a.ID].IsVerified)
}

func TestVerifyChallengeExpired(t *testing.T) {
	svc, store, _ := newTestService()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	svc.newCode = func() string { return "654321" }

	a, err := svc.Signup(context.Background(), "kim@example.com", "pw", RoleBuyer)
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(11 * time.Minute) }
	_, err = svc.VerifyChallenge(context.Background(), "kim@example.com", "654321")
	assert.ErrorIs(t, err, ErrChallengeExpired)
	assert.False(t, store.byID[a.ID].IsVerified)
}

func TestVerifyChallengeAlreadyVerified(t *testing.T) {
	svc, store, _ := newTestService()
	store.put(&Account{ID: "a1", Email: "kim@example.com", IsVerified: true})

	_, err := svc.VerifyChallenge(context.Background(), "kim@example.com", "654321")
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestVerifyChallengeNoneIssued(t *testing.T) {
	svc, store, _ := newTestService()
	store.put(&Account{ID: "a1", Email: "kim@example.com"})

	_, err := svc.VerifyChallenge(context.Background(), "kim@example.com", "654321")
	assert.ErrorIs(t, err, ErrChallengeInvalid)
}

func TestVerifyChallengeWelcomeFailureTolerated(t *testing.T) {
	svc, _, mail := newTestService()
	svc.newCode = func() string { return "654321" }
	mail.welcomeErr = errors.New("smtp refused")

	_, err := svc.Signup(context.Background(), "kim@example.com", "pw", RoleBuyer)
	require.NoError(t, err)

	got, err := svc.VerifyChallenge(context.Background(), "kim@example.com", "654321")
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
}

func TestVerifyChallengeSingleWinner(t *testing.T) {
	svc, _, _ := newTestService()
	svc.newCode = func() string { return "654321" }

	_, err := svc.Signup(context.Background(), "kim@example.com", "pw", RoleBuyer)
	require.NoError(t, err)

	var g errgroup.Group
	results := make([]error, 4)
	for i := range results {
		i := i
		g.Go(func() error {
			_, err := svc.VerifyChallenge(context.Background(), "kim@example.com", "654321")
			results[i] = err
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var wins int
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		if !errors.Is(err, ErrChallengeInvalid) && !errors.Is(err, ErrAlreadyVerified) {
			t.Fatalf("unexpected loser error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestResendChallengeAlreadyVerified(t *testing.T) {
	svc, store, _ := newTestService()
	store.put(&Account{ID: "a1", Email: "kim@example.com", IsVerified: true})

	err := svc.ResendChallenge(context.Background(), "kim@example.com")
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestLoginRequiresVerification(t *testing.T) {
	svc, store, _ := newTestService()
	hash, err := auth.HashPassword("pw")
	require.NoError(t, err)
	store.put(&Account{ID: "a1", Email: "kim@example.com", PasswordHash: hash})

	_, err = svc.Login(context.Background(), "kim@example.com", "pw")
	assert.ErrorIs(t, err, ErrNotVerified)
}

func TestLoginBadCredentials(t *testing.T) {
	svc, store, _ := newTestService()
	hash, err := auth.HashPassword("pw")
	require.NoError(t, err)
	store.put(&Account{ID: "a1", Email: "kim@example.com", PasswordHash: hash, IsVerified: true})

	_, err = svc.Login(context.Background(), "kim@example.com", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = svc.Login(context.Background(), "nobody@example.com", "pw")
	assert.ErrorIs(t, err, ErrBadCredentials, "unknown address must not be distinguishable")
}

func TestLoginSuccessTouchesTimestamp(t *testing.T) {
	svc, store, _ := newTestService()
	hash, err := auth.HashPassword("pw")
	require.NoError(t, err)
	store.put(&Account{ID: "a1", Email: "kim@example.com", PasswordHash: hash, IsVerified: true, Role: RoleBuyer})

	a, err := svc.Login(context.Background(), "kim@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "a1", a.ID)
	assert.NotNil(t, store.byID["a1"].LastLoginAt)
}
