package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cartH *CartHandler, checkoutH *CheckoutHandler, orderH *OrderHandler, catalogH *CatalogHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", healthHandler)

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", catalogH.ListProducts)
		r.Post("/", catalogH.CreateProduct)
		r.Get("/{productId}", catalogH.GetProduct)
		r.Post("/{productId}/stock", catalogH.AdjustStock)
	})

	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", cartH.GetCart)
		r.Post("/items", cartH.AddItem)
		r.Put("/items/{productId}", cartH.UpdateItem)
		r.Delete("/items/{productId}", cartH.RemoveItem)
		r.Delete("/", cartH.ClearCart)
	})

	r.Post("/api/checkout", checkoutH.Checkout)

	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/{orderId}", orderH.GetOrder)
		r.Patch("/{orderId}/status", orderH.UpdateStatus)
	})
	r.Get("/api/users/{userId}/orders", orderH.ListOrdersByUser)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "storefront",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
