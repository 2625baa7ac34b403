package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/ec-shop/internal/infrastructure/store"
	"github.com/example/ec-shop/internal/model"
	"github.com/google/uuid"
)

// CatalogHandlers is the plain CRUD surface over products and discount
// codes. Checkout never goes through here; it reads live catalog state via
// the basket snapshot join.
type CatalogHandlers struct {
	catalog   store.CatalogStore
	discounts store.DiscountStore
}

func NewCatalogHandlers(catalog store.CatalogStore, discounts store.DiscountStore) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog, discounts: discounts}
}

// Products

func (h *CatalogHandlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		respondError(w, "failed to load products", http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *CatalogHandlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	p, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, "product not found", http.StatusNotFound)
			return
		}
		respondError(w, "failed to load product", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *CatalogHandlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var p model.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if p.Name == "" || p.Price <= 0 || p.Stock < 0 {
		respondError(w, "name, a positive price and non-negative stock are required", http.StatusBadRequest)
		return
	}

	p.ID = uuid.New().String()
	if err := h.catalog.CreateProduct(r.Context(), &p); err != nil {
		respondError(w, "failed to create product", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *CatalogHandlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")

	var p model.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p.ID = id

	if err := h.catalog.UpdateProduct(r.Context(), &p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, "product not found", http.StatusNotFound)
			return
		}
		respondError(w, "failed to update product", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *CatalogHandlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, "product not found", http.StatusNotFound)
			return
		}
		respondError(w, "failed to delete product", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Discount codes (staff only; checkout only ever reads these)

func (h *CatalogHandlers) ListDiscounts(w http.ResponseWriter, r *http.Request) {
	codes, err := h.discounts.List(r.Context())
	if err != nil {
		respondError(w, "failed to load discount codes", http.StatusInternalServerError)
		return
	}
	if codes == nil {
		codes = []model.DiscountCode{}
	}
	respondJSON(w, http.StatusOK, codes)
}

func (h *CatalogHandlers) CreateDiscount(w http.ResponseWriter, r *http.Request) {
	var dc model.DiscountCode
	if err := json.NewDecoder(r.Body).Decode(&dc); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if dc.Code == "" || dc.Percent <= 0 || dc.Percent > 100 {
		respondError(w, "code and a percent between 0 and 100 are required", http.StatusBadRequest)
		return
	}
	if dc.RemainingUses < -1 {
		respondError(w, "remaining_uses must be -1 (unlimited) or non-negative", http.StatusBadRequest)
		return
	}

	dc.ID = uuid.New().String()
	if err := h.discounts.Create(r.Context(), &dc); err != nil {
		respondError(w, "failed to create discount code", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, dc)
}
