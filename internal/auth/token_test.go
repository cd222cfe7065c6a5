package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tk := &Tokens{Secret: []byte("s3cret"), TTL: time.Hour}

	tok, err := tk.Sign("a1", "seller")
	require.NoError(t, err)

	c, err := tk.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "a1", c.AccountID)
	assert.Equal(t, "seller", c.Role)
}

func TestTokenTamperedBody(t *testing.T) {
	tk := &Tokens{Secret: []byte("s3cret"), TTL: time.Hour}
	tok, err := tk.Sign("a1", "buyer")
	require.NoError(t, err)

	body, sig, _ := strings.Cut(tok, ".")
	_, err = tk.Parse(body + "x." + sig)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWrongSecret(t *testing.T) {
	tok, err := (&Tokens{Secret: []byte("one"), TTL: time.Hour}).Sign("a1", "buyer")
	require.NoError(t, err)

	_, err = (&Tokens{Secret: []byte("two"), TTL: time.Hour}).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpired(t *testing.T) {
	tk := &Tokens{Secret: []byte("s3cret"), TTL: -time.Minute}
	tok, err := tk.Sign("a1", "buyer")
	require.NoError(t, err)

	_, err = tk.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbage(t *testing.T) {
	tk := &Tokens{Secret: []byte("s3cret"), TTL: time.Hour}
	for _, tok := range []string{"", "no-dot", "a.b.c", "!!!.???"} {
		_, err := tk.Parse(tok)
		assert.ErrorIsf(t, err, ErrInvalidToken, "token %q", tok)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("pw123")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", hash)
	assert.True(t, VerifyPassword("pw123", hash))
	assert.False(t, VerifyPassword("wrong", hash))
}
