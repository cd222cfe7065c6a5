package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/thangabali/suitcase-market/internal/accounts"
	"github.com/thangabali/suitcase-market/internal/admin"
	"github.com/thangabali/suitcase-market/internal/listings"
	"github.com/thangabali/suitcase-market/internal/orders"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

// statusFor maps the domain's expected-outcome errors onto HTTP codes;
// anything unrecognized is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, accounts.ErrNotFound),
		errors.Is(err, listings.ErrNotFound),
		errors.Is(err, listings.ErrNoMatch),
		errors.Is(err, orders.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, accounts.ErrBadCredentials),
		errors.Is(err, accounts.ErrNotVerified):
		return http.StatusUnauthorized
	case errors.Is(err, listings.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, accounts.ErrEmailTaken),
		errors.Is(err, accounts.ErrAlreadyVerified),
		errors.Is(err, accounts.ErrChallengeInvalid),
		errors.Is(err, accounts.ErrChallengeExpired),
		errors.Is(err, listings.ErrAlreadySold),
		errors.Is(err, listings.ErrInsufficientStock),
		errors.Is(err, listings.ErrBadAdjustment),
		errors.Is(err, listings.ErrBadQuantity),
		errors.Is(err, orders.ErrInvalidTransition),
		errors.Is(err, admin.ErrSelfDeletion):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
