package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thangabali/suitcase-market/internal/accounts"
	"github.com/thangabali/suitcase-market/internal/admin"
	"github.com/thangabali/suitcase-market/internal/listings"
	"github.com/thangabali/suitcase-market/internal/orders"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{accounts.ErrNotFound, http.StatusNotFound},
		{listings.ErrNotFound, http.StatusNotFound},
		{listings.ErrNoMatch, http.StatusNotFound},
		{orders.ErrNotFound, http.StatusNotFound},
		{accounts.ErrBadCredentials, http.StatusUnauthorized},
		{accounts.ErrNotVerified, http.StatusUnauthorized},
		{listings.ErrNotOwner, http.StatusForbidden},
		{accounts.ErrEmailTaken, http.StatusBadRequest},
		{accounts.ErrAlreadyVerified, http.StatusBadRequest},
		{accounts.ErrChallengeInvalid, http.StatusBadRequest},
		{accounts.ErrChallengeExpired, http.StatusBadRequest},
		{listings.ErrAlreadySold, http.StatusBadRequest},
		{listings.ErrInsufficientStock, http.StatusBadRequest},
		{listings.ErrBadAdjustment, http.StatusBadRequest},
		{listings.ErrBadQuantity, http.StatusBadRequest},
		{orders.ErrInvalidTransition, http.StatusBadRequest},
		{admin.ErrSelfDeletion, http.StatusBadRequest},
		{&admin.CascadeError{Cause: errors.New("boom")}, http.StatusInternalServerError},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equalf(t, c.want, statusFor(c.err), "%v", c.err)
	}
}

func TestStatusForWrappedErrors(t *testing.T) {
	err := fmt.Errorf("create order: %w", listings.ErrInsufficientStock)
	assert.Equal(t, http.StatusBadRequest, statusFor(err))
}

func TestWriteErrBody(t *testing.T) {
	rec := httptest.NewRecorder()
	writeErr(rec, orders.ErrInvalidTransition)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"invalid order status transition"}`, rec.Body.String())
}
