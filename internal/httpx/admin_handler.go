package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/thangabali/suitcase-market/internal/accounts"
	"github.com/thangabali/suitcase-market/internal/admin"
	"github.com/thangabali/suitcase-market/internal/events"
	kafkax "github.com/thangabali/suitcase-market/internal/kafka"
)

type AdminHandler struct {
	Service  *admin.Service
	Accounts *accounts.Repo
	Deleted  *kafkax.Producer
	Auth     *AuthMiddleware
	Name     string
}

func (h *AdminHandler) Register(r *chi.Mux) {
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(h.Auth.Protect(accounts.RoleAdmin))
		r.Get("/users", h.listUsers)
		r.Get("/users/{id}", h.getUser)
		r.Delete("/users/{id}", h.deleteUser)
		r.Patch("/users/{id}/status", h.setVerified)
	})
}

// userView strips the credential and challenge fields from responses.
type userView struct {
	ID         string        `json:"id"`
	Email      string        `json:"email"`
	Role       accounts.Role `json:"role"`
	IsVerified bool          `json:"is_verified"`
	CreatedAt  time.Time     `json:"created_at"`
}

func toUserView(a *accounts.Account) userView {
	return userView{ID: a.ID, Email: a.Email, Role: a.Role, IsVerified: a.IsVerified, CreatedAt: a.CreatedAt}
}

func (h *AdminHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	role := accounts.Role(r.URL.Query().Get("role"))
	if role != "" && !role.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid role"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	all, err := h.Accounts.List(ctx, role)
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]userView, 0, len(all))
	for i := range all {
		out = append(out, toUserView(&all[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) getUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	a, err := h.Accounts.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(a))
}

func (h *AdminHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Service.DeleteAccount(ctx, chi.URLParam(r, "id"), caller.ID)
	if err != nil {
		writeErr(w, err)
		return
	}

	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     events.EventAccountDeleted,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Name,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: res.AccountID,
		Payload: kafkax.MustMarshal(events.AccountDeletedPayload{
			AccountID:       res.AccountID,
			Role:            string(res.Role),
			ListingsDeleted: res.ListingsDeleted,
			OrdersCancelled: res.OrdersCancelled,
		}),
	}
	h.Deleted.Publish(events.PartitionKey(res.AccountID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventAccountDeleted)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"message":          "user and related data deleted",
		"listings_deleted": res.ListingsDeleted,
		"orders_cancelled": res.OrdersCancelled,
	})
}

func (h *AdminHandler) setVerified(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsVerified *bool `json:"isVerified"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsVerified == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "isVerified must be a boolean"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := chi.URLParam(r, "id")
	if err := h.Accounts.SetVerified(ctx, id, *req.IsVerified); err != nil {
		writeErr(w, err)
		return
	}
	a, err := h.Accounts.GetByID(ctx, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(a))
}
