package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the signed bearer-token body handed out on login/verify.
type Claims struct {
	AccountID string `json:"sub"`
	Role      string `json:"role"`
	ExpiresAt int64  `json:"exp"`
}

// Tokens mints and checks HMAC-SHA256 signed tokens of the form
// base64(claims).base64(mac).
type Tokens struct {
	Secret []byte
	TTL    time.Duration
}

func (t *Tokens) Sign(accountID, role string) (string, error) {
	c := Claims{AccountID: accountID, Role: role, ExpiresAt: time.Now().Add(t.TTL).Unix()}
	body, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, t.Secret)
	mac.Write(body)
	return base64.RawURLEncoding.EncodeToString(body) + "." +
		base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), nil
}

func (t *Tokens) Parse(token string) (*Claims, error) {
	body64, sig64, ok := strings.Cut(token, ".")
	if !ok {
		return nil, ErrInvalidToken
	}
	body, err := base64.RawURLEncoding.DecodeString(body64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	sig, err := base64.RawURLEncoding.DecodeString(sig64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	mac := hmac.New(sha256.New, t.Secret)
	mac.Write(body)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return nil, ErrInvalidToken
	}
	var c Claims
	if err := json.Unmarshal(body, &c); err != nil {
		return nil, ErrInvalidToken
	}
	if time.Now().Unix() > c.ExpiresAt {
		return nil, ErrInvalidToken
	}
	return &c, nil
}
