package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/thangabali/suitcase-market/internal/accounts"
	"github.com/thangabali/suitcase-market/internal/listings"
)

type SellerHandler struct {
	Repo   *listings.Repo
	Ledger *listings.Ledger
	Auth   *AuthMiddleware
}

func (h *SellerHandler) Register(r *chi.Mux) {
	r.Route("/api/v1/seller", func(r chi.Router) {
		r.Use(h.Auth.Protect(accounts.RoleSeller))
		r.Post("/products", h.create)
		r.Get("/products", h.list)
		r.Get("/products/{id}", h.get)
		r.Patch("/products/{id}", h.update)
		r.Patch("/products/{id}/sold", h.markSold)
		r.Delete("/products/{id}", h.delete)
		r.Patch("/rates", h.bulkRates)
	})
}

type createListingReq struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	HeightCM    int      `json:"height"`
	WidthCM     int      `json:"width"`
	DepthCM     *int     `json:"depth"`
	Material    string   `json:"material"`
	Color       string   `json:"color"`
	Features    []string `json:"features"`
	Rate        float64  `json:"rate"`
	Stock       *int     `json:"stock"`
}

func (h *SellerHandler) create(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	var req createListingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	material := listings.Material(req.Material)
	if req.Name == "" || req.HeightCM < 1 || req.WidthCM < 1 || !material.Valid() || req.Rate < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, height, width, material and a non-negative rate are required"})
		return
	}
	stock := 1
	if req.Stock != nil {
		if *req.Stock < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "stock cannot be negative"})
			return
		}
		stock = *req.Stock
	}
	if req.Features == nil {
		req.Features = []string{}
	}

	l := &listings.Listing{
		ID:          uuid.NewString(),
		SellerID:    caller.ID,
		Name:        req.Name,
		Description: req.Description,
		HeightCM:    req.HeightCM,
		WidthCM:     req.WidthCM,
		DepthCM:     req.DepthCM,
		Material:    material,
		Color:       req.Color,
		Features:    req.Features,
		Rate:        req.Rate,
		Stock:       stock,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.Create(ctx, l); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *SellerHandler) list(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	material := listings.Material(r.URL.Query().Get("material"))
	if material != "" && !material.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid material"})
		return
	}
	var isSold *bool
	if v := r.URL.Query().Get("isSold"); v != "" {
		b := v == "true"
		isSold = &b
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Repo.ListBySeller(ctx, caller.ID, material, isSold)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *SellerHandler) get(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	l, err := h.Repo.GetOwned(ctx, chi.URLParam(r, "id"), caller.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *SellerHandler) update(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	var upd listings.ListingUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if upd.Rate != nil && *upd.Rate < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "rate cannot be negative"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	l, err := h.Repo.Update(ctx, chi.URLParam(r, "id"), caller.ID, upd)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *SellerHandler) markSold(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := chi.URLParam(r, "id")
	if err := h.Ledger.ForceSold(ctx, id, caller.ID); err != nil {
		writeErr(w, err)
		return
	}
	l, err := h.Repo.GetOwned(ctx, id, caller.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *SellerHandler) delete(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.DeleteOwned(ctx, chi.URLParam(r, "id"), caller.ID); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "listing deleted"})
}

// bulkRates adjusts every listing of one material: ?material=leather with
// either &increase=5.00 (additive) or &percentage=10 (multiplier), never both.
func (h *SellerHandler) bulkRates(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	material := listings.Material(r.URL.Query().Get("material"))
	if !material.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "a valid material parameter is required"})
		return
	}

	var adj listings.RateAdjustment
	if v := r.URL.Query().Get("increase"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid increase"})
			return
		}
		adj.Delta = &d
	}
	if v := r.URL.Query().Get("percentage"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid percentage"})
			return
		}
		adj.Percent = &p
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	n, err := h.Ledger.BulkAdjustRate(ctx, caller.ID, material, adj)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"material":         material,
		"products_updated": n,
	})
}
