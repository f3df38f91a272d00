package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/printpoint/storefront/internal/cart"
	"github.com/printpoint/storefront/internal/catalog"
)

// SessionHeader carries the cart session id. Writes without it get a fresh
// session echoed back in the response header.
const SessionHeader = "X-Session-Id"

type CartHandler struct {
	store    cart.Store
	products catalog.Repository
}

func NewCartHandler(store cart.Store, products catalog.Repository) *CartHandler {
	return &CartHandler{store: store, products: products}
}

// sessionID returns the request's session id, minting one when absent, and
// always echoes it so clients can hold on to it.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	sid := r.Header.Get(SessionHeader)
	if sid == "" {
		sid = uuid.NewString()
	}
	w.Header().Set(SessionHeader, sid)
	return sid
}

func (h *CartHandler) loadOrNewCart(ctx context.Context, sid string) (*cart.Cart, error) {
	c, err := h.store.Get(ctx, sid)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = cart.New(sid)
	}
	return c, nil
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.loadOrNewCart(ctx, sid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	writeJSON(w, http.StatusOK, cartResponse(c))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(w, r)

	var body struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.ProductID == "" || body.Quantity < 1 {
		writeError(w, http.StatusUnprocessableEntity, "productId and a quantity of at least 1 are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.products.GetByID(ctx, body.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	if !p.Available() {
		writeError(w, http.StatusUnprocessableEntity, "product is unavailable")
		return
	}

	c, err := h.loadOrNewCart(ctx, sid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	// Snapshot the current catalog price; checkout charges this, not the
	// price at checkout time.
	if err := c.AddLine(p.ID, body.Quantity, p.Price); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.store.Save(ctx, c); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save cart")
		return
	}

	writeJSON(w, http.StatusOK, cartResponse(c))
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(w, r)
	productID := chi.URLParam(r, "productId")

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.store.Get(ctx, sid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "cart is empty")
		return
	}

	found, err := c.SetQuantity(productID, body.Quantity)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "product not in cart")
		return
	}

	if err := h.store.Save(ctx, c); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save cart")
		return
	}

	writeJSON(w, http.StatusOK, cartResponse(c))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(w, r)
	productID := chi.URLParam(r, "productId")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.store.Get(ctx, sid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	if c == nil || !c.RemoveLine(productID) {
		writeError(w, http.StatusNotFound, "product not in cart")
		return
	}

	if err := h.store.Save(ctx, c); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save cart")
		return
	}

	writeJSON(w, http.StatusOK, cartResponse(c))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.store.Clear(ctx, sid); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func cartResponse(c *cart.Cart) map[string]any {
	lines := c.Lines
	if lines == nil {
		lines = []cart.Line{}
	}
	return map[string]any{
		"sessionId": c.SessionID,
		"lines":     lines,
		"subtotal":  c.Subtotal(),
		"updatedAt": c.UpdatedAt,
	}
}
