package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/example/ec-shop/internal/auth"
	"github.com/example/ec-shop/internal/infrastructure/store"
	"github.com/example/ec-shop/internal/model"
	"github.com/google/uuid"
)

// AuthHandlers issues tokens for the rest of the API.
type AuthHandlers struct {
	customers  store.CustomerStore
	jwtService *auth.JWTService
}

func NewAuthHandlers(customers store.CustomerStore, jwtService *auth.JWTService) *AuthHandlers {
	return &AuthHandlers{customers: customers, jwtService: jwtService}
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Customer    any       `json:"customer"`
}

func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respondError(w, "a valid email is required", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		respondError(w, "name is required", http.StatusBadRequest)
		return
	}

	if _, err := h.customers.GetByEmail(r.Context(), req.Email); err == nil {
		respondError(w, "email already registered", http.StatusConflict)
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		respondError(w, "registration failed", http.StatusInternalServerError)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondError(w, "registration failed", http.StatusInternalServerError)
		return
	}

	customer := model.Customer{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         auth.RoleCustomer,
	}
	if err := h.customers.Create(r.Context(), &customer); err != nil {
		respondError(w, "registration failed", http.StatusInternalServerError)
		return
	}

	h.respondWithToken(w, http.StatusCreated, &customer)
}

func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	customer, err := h.customers.GetByEmail(r.Context(), req.Email)
	if err != nil {
		// Same response for unknown email and wrong password.
		respondError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if !auth.CheckPassword(req.Password, customer.PasswordHash) {
		respondError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	h.respondWithToken(w, http.StatusOK, customer)
}

func (h *AuthHandlers) respondWithToken(w http.ResponseWriter, status int, customer *model.Customer) {
	token, expiresAt, err := h.jwtService.GenerateToken(customer.ID, customer.Email, customer.Role)
	if err != nil {
		respondError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	respondJSON(w, status, tokenResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Customer: map[string]string{
			"id":    customer.ID,
			"email": customer.Email,
			"name":  customer.Name,
			"role":  customer.Role,
		},
	})
}
