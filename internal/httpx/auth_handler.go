package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/thangabali/suitcase-market/internal/accounts"
	"github.com/thangabali/suitcase-market/internal/auth"
)

type AuthHandler struct {
	Service *accounts.Service
	Tokens  *auth.Tokens
}

func (h *AuthHandler) Register(r *chi.Mux) {
	r.Post("/api/v1/auth/signup", h.signup)
	r.Post("/api/v1/auth/verify", h.verify)
	r.Post("/api/v1/auth/login", h.login)
	r.Post("/api/v1/auth/resend-otp", h.resend)
}

type signupReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	role := accounts.Role(req.Role)
	if req.Email == "" || len(req.Password) < 8 || !role.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email, password (min 8 chars) and a valid role are required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	a, err := h.Service.Signup(ctx, req.Email, req.Password, role)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"email":       a.Email,
		"role":        a.Role,
		"is_verified": a.IsVerified,
	})
}

type verifyReq struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (h *AuthHandler) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Email == "" || req.OTP == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and otp are required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	a, err := h.Service.VerifyChallenge(ctx, strings.ToLower(strings.TrimSpace(req.Email)), req.OTP)
	if err != nil {
		writeErr(w, err)
		return
	}
	token, err := h.Tokens.Sign(a.ID, string(a.Role))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user": map[string]any{
			"id":          a.ID,
			"email":       a.Email,
			"role":        a.Role,
			"is_verified": a.IsVerified,
		},
	})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	a, err := h.Service.Login(ctx, strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	token, err := h.Tokens.Sign(a.ID, string(a.Role))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user": map[string]any{
			"id":          a.ID,
			"email":       a.Email,
			"role":        a.Role,
			"is_verified": a.IsVerified,
		},
	})
}

func (h *AuthHandler) resend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.Service.ResendChallenge(ctx, strings.ToLower(strings.TrimSpace(req.Email))); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "new code sent"})
}
