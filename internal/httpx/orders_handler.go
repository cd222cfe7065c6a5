package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/thangabali/suitcase-market/internal/accounts"
	"github.com/thangabali/suitcase-market/internal/events"
	kafkax "github.com/thangabali/suitcase-market/internal/kafka"
	"github.com/thangabali/suitcase-market/internal/orders"
	"github.com/thangabali/suitcase-market/internal/redisx"
)

type OrdersHandler struct {
	Service *orders.Service
	Repo    *orders.Repo
	// One producer per topic, as the writers are topic-bound.
	Placed    *kafkax.Producer
	Cancelled *kafkax.Producer
	Redis     *redis.Client
	Auth      *AuthMiddleware
	Name      string // producer name stamped on envelopes
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.Protect(accounts.RoleBuyer))
			r.Post("/", h.place)
			r.Get("/", h.list)
			r.Get("/{id}", h.get)
			r.Get("/{id}/status", h.getStatus)
			r.Patch("/{id}/cancel", h.cancel)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.Protect(accounts.RoleAdmin))
			r.Patch("/{id}/status", h.advance)
		})
	})
}

type placeOrderReq struct {
	ListingID       string `json:"product"`
	Quantity        int    `json:"quantity"`
	PaymentMethod   string `json:"payment_method"`
	ShippingAddress string `json:"shipping_address"`
	OrderNotes      string `json:"order_notes"`
}

func (h *OrdersHandler) place(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	var req placeOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	method := orders.PaymentMethod(req.PaymentMethod)
	if req.ListingID == "" || req.Quantity < 1 || !method.Valid() || req.ShippingAddress == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product, quantity, payment_method and shipping_address are required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.PlaceOrder(ctx, orders.PlaceOrderInput{
		BuyerID:         caller.ID,
		ListingID:       req.ListingID,
		Quantity:        req.Quantity,
		PaymentMethod:   method,
		ShippingAddress: req.ShippingAddress,
		OrderNotes:      req.OrderNotes,
	})
	if err != nil {
		writeErr(w, err)
		return
	}

	h.cacheStatus(ctx, o)
	h.publish(h.Placed, events.EventOrderPlaced, o.ID, r.Header.Get("X-Request-Id"), events.OrderPlacedPayload{
		OrderID:     o.ID,
		BuyerID:     o.BuyerID,
		ListingID:   o.ListingID,
		Quantity:    o.Quantity,
		TotalAmount: o.TotalAmount,
	})

	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	status := orders.Status(r.URL.Query().Get("status"))

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Repo.ListByBuyer(ctx, caller.ID, status)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Repo.GetForBuyer(ctx, chi.URLParam(r, "id"), caller.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// getStatus serves from the redis cache first and falls back to the store.
func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, caller.ID, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	o, err := h.Repo.GetForBuyer(ctx, orderID, caller.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.cacheStatus(ctx, o)
	writeJSON(w, http.StatusOK, map[string]any{"status": o.Status, "payment_status": o.PaymentStatus})
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.CancelOrder(ctx, chi.URLParam(r, "id"), caller.ID)
	if err != nil {
		writeErr(w, err)
		return
	}

	h.cacheStatus(ctx, o)
	h.publish(h.Cancelled, events.EventOrderCancelled, o.ID, r.Header.Get("X-Request-Id"), events.OrderCancelledPayload{
		OrderID:   o.ID,
		ListingID: o.ListingID,
		Quantity:  o.Quantity,
	})

	writeJSON(w, http.StatusOK, o)
}

type advanceReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) advance(w http.ResponseWriter, r *http.Request) {
	var req advanceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.Advance(ctx, chi.URLParam(r, "id"), orders.Status(req.Status))
	if err != nil {
		writeErr(w, err)
		return
	}
	h.cacheStatus(ctx, o)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, o *orders.Order) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, o.BuyerID, o.ID)
	body := kafkax.MustMarshal(map[string]any{"status": o.Status, "payment_status": o.PaymentStatus})
	_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) publish(p *kafkax.Producer, eventType, orderID, traceID string, payload any) {
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Name,
		TraceID:       traceID,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(events.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
