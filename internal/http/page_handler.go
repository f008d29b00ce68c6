package http

import (
	"bytes"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/view"
	"go.uber.org/zap"
)

// Index renders the whole storefront page for the visitor's session.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r.Context())
	defer cancel()

	ws, err := h.open(ctx)
	if err != nil {
		h.handlePageError(w, r, err)
		return
	}
	defer ws.close()

	var buf bytes.Buffer
	err = h.renderer.Page(&buf, view.Page{
		Cards: ws.cards.Cards(),
		Cart:  view.NewCartView(ws.store),
		Order: ws.order.Pending(),
	})
	if err != nil {
		h.handlePageError(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

// CartBadge renders just the item-count badge, for pages that poll it.
func (h *Handler) CartBadge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r.Context())
	defer cancel()

	ws, err := h.open(ctx)
	if err != nil {
		h.handlePageError(w, r, err)
		return
	}
	defer ws.close()

	var buf bytes.Buffer
	if err := h.renderer.Badge(&buf, ws.store.ItemCount()); err != nil {
		h.handlePageError(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	h.cardAction(w, r, (*cart.Controller).PressAdd)
}

func (h *Handler) Increment(w http.ResponseWriter, r *http.Request) {
	h.cardAction(w, r, (*cart.Controller).Increment)
}

func (h *Handler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.cardAction(w, r, (*cart.Controller).Decrement)
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	h.cardAction(w, r, (*cart.Controller).RemoveFromPanel)
}

func (h *Handler) cardAction(w http.ResponseWriter, r *http.Request, action func(*cart.Controller, string) error) {
	ctx, cancel := h.context(r.Context())
	defer cancel()

	product := r.PostFormValue("product")
	ws, err := h.mutate(ctx, func(ws *workspace) error {
		return action(ws.cards, product)
	})
	if err != nil {
		h.handlePageError(w, r, err)
		return
	}
	defer ws.close()

	h.logger.Debug("cart updated",
		zap.String("product", product),
		zap.Int("quantity", ws.store.Quantity(product)),
		zap.Int("item_count", ws.store.ItemCount()),
	)

	if !isFragmentRequest(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	// re-render only what the mutation touched: the card, the panel and its badge
	var buf bytes.Buffer
	if card, err := ws.cards.Card(product); err == nil {
		if err := h.renderer.Card(&buf, card); err != nil {
			h.handlePageError(w, r, err)
			return
		}
	}
	if err := h.renderer.CartPanel(&buf, view.NewCartView(ws.store)); err != nil {
		h.handlePageError(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

func (h *Handler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r.Context())
	defer cancel()

	ws, err := h.mutate(ctx, func(ws *workspace) error {
		_, err := ws.order.Confirm(h.now())
		return err
	})
	if err != nil {
		h.handlePageError(w, r, err)
		return
	}
	defer ws.close()

	pending := ws.order.Pending()
	h.logger.Info("order confirmed",
		zap.String("order_id", pending.ID),
		zap.Int("item_count", pending.ItemCount),
		zap.String("total", pending.Total.StringFixed(2)),
	)

	if !isFragmentRequest(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.OrderModal(&buf, pending); err != nil {
		h.handlePageError(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

func (h *Handler) StartNewOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r.Context())
	defer cancel()

	ws, err := h.mutate(ctx, func(ws *workspace) error {
		ws.order.StartNew()
		return nil
	})
	if err != nil {
		h.handlePageError(w, r, err)
		return
	}
	ws.close()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// isFragmentRequest reports whether the client asked for partial markup
// (htmx sends HX-Request) rather than a full page round trip.
func isFragmentRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}
