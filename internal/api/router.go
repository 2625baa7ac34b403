package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/example/ec-shop/internal/api/middleware"
	"github.com/example/ec-shop/internal/auth"
)

// RouterConfig bundles the handler groups for NewRouter
type RouterConfig struct {
	Handlers        *Handlers
	AuthHandlers    *AuthHandlers
	CatalogHandlers *CatalogHandlers
	JWTService      *auth.JWTService
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	requireAuth := middleware.AuthMiddleware(cfg.JWTService)
	requireStaff := func(h http.Handler) http.Handler {
		return requireAuth(middleware.RequireRole(auth.RoleStaff)(h))
	}

	// Auth
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		cfg.AuthHandlers.Register(w, r)
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		cfg.AuthHandlers.Login(w, r)
	})

	// Products (reads public, writes staff-only)
	mux.Handle("/products", methodSplit(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(cfg.CatalogHandlers.ListProducts),
		http.MethodPost: requireStaff(http.HandlerFunc(cfg.CatalogHandlers.CreateProduct)),
	}))
	mux.Handle("/products/", methodSplit(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(cfg.CatalogHandlers.GetProduct),
		http.MethodPut:    requireStaff(http.HandlerFunc(cfg.CatalogHandlers.UpdateProduct)),
		http.MethodDelete: requireStaff(http.HandlerFunc(cfg.CatalogHandlers.DeleteProduct)),
	}))

	// Discount administration
	mux.Handle("/discounts", requireStaff(methodSplit(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(cfg.CatalogHandlers.ListDiscounts),
		http.MethodPost: http.HandlerFunc(cfg.CatalogHandlers.CreateDiscount),
	})))

	// Basket
	mux.Handle("/basket", requireAuth(methodSplit(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(cfg.Handlers.GetBasket),
	})))
	mux.Handle("/basket/items", requireAuth(methodSplit(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(cfg.Handlers.AddToBasket),
	})))
	mux.Handle("/basket/items/", requireAuth(methodSplit(map[string]http.Handler{
		http.MethodDelete: http.HandlerFunc(cfg.Handlers.RemoveFromBasket),
	})))

	// Checkout
	mux.Handle("/checkout", requireAuth(methodSplit(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(cfg.Handlers.Checkout),
	})))

	// Orders
	mux.Handle("/orders", requireAuth(methodSplit(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(cfg.Handlers.GetOrders),
	})))
	mux.Handle("/orders/", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/status") && r.Method == http.MethodPost:
			middleware.RequireRole(auth.RoleStaff)(http.HandlerFunc(cfg.Handlers.UpdateOrderStatus)).ServeHTTP(w, r)
		case r.Method == http.MethodGet:
			cfg.Handlers.GetOrder(w, r)
		default:
			respondError(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Addresses
	mux.Handle("/addresses", requireAuth(methodSplit(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(cfg.Handlers.GetAddresses),
		http.MethodPost: http.HandlerFunc(cfg.Handlers.CreateAddress),
	})))

	return withLogging(mux)
}

// methodSplit dispatches by HTTP method
func methodSplit(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.Method]; ok {
			h.ServeHTTP(w, r)
			return
		}
		respondError(w, "method not allowed", http.StatusMethodNotAllowed)
	})
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[API] %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
