package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/ec-shop/internal/api/middleware"
	"github.com/example/ec-shop/internal/checkout"
	"github.com/example/ec-shop/internal/infrastructure/store"
	"github.com/example/ec-shop/internal/model"
	"github.com/example/ec-shop/internal/order"
	"github.com/google/uuid"
)

type Handlers struct {
	coordinator *checkout.Coordinator
	resolver    *checkout.Resolver
	workflow    *order.Workflow
	baskets     store.BasketStore
	orders      store.OrderStore
	addresses   store.AddressStore
}

func NewHandlers(
	coordinator *checkout.Coordinator,
	resolver *checkout.Resolver,
	workflow *order.Workflow,
	baskets store.BasketStore,
	orders store.OrderStore,
	addresses store.AddressStore,
) *Handlers {
	return &Handlers{
		coordinator: coordinator,
		resolver:    resolver,
		workflow:    workflow,
		baskets:     baskets,
		orders:      orders,
		addresses:   addresses,
	}
}

// Checkout

// Checkout resolves the submitted discount codes and runs one checkout
// attempt for the authenticated customer.
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.GetCustomerID(r.Context())

	var req struct {
		ShippingAddressID string   `json:"shipping_address_id"`
		DiscountCodes     []string `json:"discount_codes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ShippingAddressID == "" {
		respondError(w, "shipping_address_id is required", http.StatusBadRequest)
		return
	}

	// Resolution happens here, before the coordinator: an invalid code set
	// is the caller's fault and must not reach the commit path.
	discounts, err := h.resolver.Resolve(r.Context(), req.DiscountCodes)
	if err != nil {
		var invalid *checkout.InvalidDiscountError
		switch {
		case errors.As(err, &invalid):
			respondError(w, invalid.Error(), http.StatusBadRequest)
		case errors.Is(err, checkout.ErrNotStackable):
			respondError(w, "these discount codes cannot be combined", http.StatusBadRequest)
		default:
			respondError(w, "could not verify discount codes", http.StatusInternalServerError)
		}
		return
	}

	orderID, result := h.coordinator.PlaceOrder(r.Context(), customerID, req.ShippingAddressID, discounts)
	switch result {
	case checkout.ResultOK:
		respondJSON(w, http.StatusCreated, map[string]string{"order_id": orderID})
	case checkout.ResultBasketInvalid:
		respondError(w, "your basket changed, please review it", http.StatusConflict)
	case checkout.ResultAddressInvalid:
		// Treated as an authorization failure, not "address not found".
		respondError(w, "forbidden", http.StatusForbidden)
	default:
		respondError(w, "checkout failed, please try again", http.StatusInternalServerError)
	}
}

// Basket

func (h *Handlers) GetBasket(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.GetCustomerID(r.Context())
	lines, err := h.baskets.GetLines(r.Context(), customerID)
	if err != nil {
		respondError(w, "failed to load basket", http.StatusInternalServerError)
		return
	}
	if lines == nil {
		lines = []model.BasketLine{}
	}
	respondJSON(w, http.StatusOK, lines)
}

func (h *Handlers) AddToBasket(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.GetCustomerID(r.Context())

	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProductID == "" || req.Quantity <= 0 {
		respondError(w, "product_id and a positive quantity are required", http.StatusBadRequest)
		return
	}

	line := model.BasketLine{CustomerID: customerID, ProductID: req.ProductID, Quantity: req.Quantity}
	if err := h.baskets.UpsertLine(r.Context(), line); err != nil {
		if errors.Is(err, store.ErrForeignKey) {
			respondError(w, "product not found", http.StatusNotFound)
			return
		}
		respondError(w, "failed to update basket", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) RemoveFromBasket(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.GetCustomerID(r.Context())
	productID := extractPathParam(r.URL.Path, "/basket/items/")
	if err := h.baskets.DeleteLine(r.Context(), customerID, productID); err != nil {
		respondError(w, "failed to update basket", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Orders

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.GetCustomerID(r.Context())
	orders, err := h.orders.ListByCustomer(r.Context(), customerID)
	if err != nil {
		respondError(w, "failed to load orders", http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/orders/")
	id = strings.TrimSuffix(id, "/status")

	o, lines, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, "order not found", http.StatusNotFound)
			return
		}
		respondError(w, "failed to load order", http.StatusInternalServerError)
		return
	}

	// Customers only see their own orders; staff see all.
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if o.CustomerID != claims.CustomerID && claims.Role != "staff" {
		respondError(w, "forbidden", http.StatusForbidden)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"order": o, "lines": lines})
}

// UpdateOrderStatus is the staff-facing entry into the status workflow.
func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/orders/")
	id := strings.TrimSuffix(path, "/status")

	var req struct {
		StatusID int `json:"status_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.workflow.UpdateStatus(r.Context(), id, req.StatusID)
	if err != nil {
		respondError(w, "failed to update order status", http.StatusInternalServerError)
		return
	}
	switch result {
	case order.StatusUpdated:
		w.WriteHeader(http.StatusOK)
	case order.OrderNotFound:
		respondError(w, "order not found", http.StatusNotFound)
	case order.StatusNotFound:
		respondError(w, "unknown status "+strconv.Itoa(req.StatusID), http.StatusUnprocessableEntity)
	}
}

// Addresses

func (h *Handlers) GetAddresses(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.GetCustomerID(r.Context())
	addresses, err := h.addresses.ListByCustomer(r.Context(), customerID)
	if err != nil {
		respondError(w, "failed to load addresses", http.StatusInternalServerError)
		return
	}
	if addresses == nil {
		addresses = []model.ShippingAddress{}
	}
	respondJSON(w, http.StatusOK, addresses)
}

func (h *Handlers) CreateAddress(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.GetCustomerID(r.Context())

	var a model.ShippingAddress
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if a.Line1 == "" || a.City == "" || a.PostalCode == "" || a.Country == "" {
		respondError(w, "line1, city, postal_code and country are required", http.StatusBadRequest)
		return
	}

	a.ID = uuid.New().String()
	a.CustomerID = customerID
	if err := h.addresses.Create(r.Context(), &a); err != nil {
		respondError(w, "failed to create address", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, a)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}
