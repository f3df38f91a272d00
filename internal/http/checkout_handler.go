package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/printpoint/storefront/internal/cart"
	"github.com/printpoint/storefront/internal/checkout"
	"github.com/printpoint/storefront/internal/order"
)

type CheckoutHandler struct {
	store cart.Store
	svc   *checkout.Service
}

func NewCheckoutHandler(store cart.Store, svc *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{store: store, svc: svc}
}

type checkoutRequest struct {
	ShippingName       string `json:"shippingName"`
	ShippingEmail      string `json:"shippingEmail"`
	ShippingPhone      string `json:"shippingPhone"`
	ShippingAddress    string `json:"shippingAddress"`
	ShippingCity       string `json:"shippingCity"`
	ShippingPostalCode string `json:"shippingPostalCode"`
	ShippingCountry    string `json:"shippingCountry"`
	Notes              string `json:"notes"`
	UserID             string `json:"userId"`
}

// Checkout converts the session cart into an order. On success the cart is
// cleared, so an immediate resubmit fails the empty-cart check.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(w, r)

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	c, err := h.store.Get(ctx, sid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	shipping := order.ShippingDetails{
		Name:       req.ShippingName,
		Email:      req.ShippingEmail,
		Phone:      req.ShippingPhone,
		Address:    req.ShippingAddress,
		City:       req.ShippingCity,
		PostalCode: req.ShippingPostalCode,
		Country:    req.ShippingCountry,
	}

	o, err := h.svc.PlaceOrder(ctx, c, shipping, req.UserID, req.Notes)
	if err != nil {
		var stockErr *checkout.InsufficientStockError
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			writeError(w, http.StatusUnprocessableEntity, "cart is empty")
		case errors.Is(err, checkout.ErrProductUnavailable):
			writeError(w, http.StatusUnprocessableEntity, "one or more products are unavailable")
		case errors.As(err, &stockErr):
			writeError(w, http.StatusUnprocessableEntity, stockErr.Error())
		case errors.Is(err, order.ErrInvalidShipping):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to process order, please try again")
		}
		return
	}

	// The cart is only cleared after the transaction committed; a failure
	// here leaves a stale cart behind, never a lost order.
	_ = h.store.Clear(ctx, sid)

	writeJSON(w, http.StatusCreated, o)
}
