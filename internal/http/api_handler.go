package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.uber.org/zap"
)

const maxItemQuantity = 99

type ProductDTO struct {
	Name     string       `json:"name"`
	Category string       `json:"category"`
	Price    string       `json:"price"`
	Image    domain.Image `json:"image"`
}

type CartItemDTO struct {
	Product   string `json:"product"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

type OrderLineDTO struct {
	Product   string `json:"product"`
	Thumbnail string `json:"thumbnail"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

type OrderDTO struct {
	ID         string         `json:"id"`
	Lines      []OrderLineDTO `json:"lines"`
	ItemCount  int            `json:"item_count"`
	Total      string         `json:"total"`
	CapturedAt time.Time      `json:"captured_at"`
}

type CartDTO struct {
	Items      []CartItemDTO `json:"items"`
	ItemCount  int           `json:"item_count"`
	OrderTotal string        `json:"order_total"`
	Order      *OrderDTO     `json:"order,omitempty"`
}

type ItemRequestDTO struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

func toProductDTO(p domain.Product) ProductDTO {
	return ProductDTO{
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price.StringFixed(2),
		Image:    p.Image,
	}
}

func toOrderDTO(o *domain.OrderSnapshot) *OrderDTO {
	if o == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:         o.ID,
		Lines:      make([]OrderLineDTO, 0, len(o.Lines)),
		ItemCount:  o.ItemCount,
		Total:      o.Total.StringFixed(2),
		CapturedAt: o.CapturedAt,
	}
	for _, l := range o.Lines {
		dto.Lines = append(dto.Lines, OrderLineDTO{
			Product:   l.Name,
			Thumbnail: l.Thumbnail,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.StringFixed(2),
			LineTotal: l.LineTotal.StringFixed(2),
		})
	}
	return dto
}

func toCartDTO(ws *workspace) CartDTO {
	entries := ws.store.Entries()
	totals := ws.store.Totals()
	dto := CartDTO{
		Items:      make([]CartItemDTO, 0, len(entries)),
		ItemCount:  totals.ItemCount,
		OrderTotal: totals.OrderTotal.StringFixed(2),
		Order:      toOrderDTO(ws.order.Pending()),
	}
	for _, e := range entries {
		dto.Items = append(dto.Items, CartItemDTO{
			Product:   e.Product.Name,
			Quantity:  e.Quantity,
			UnitPrice: e.Product.Price.StringFixed(2),
			LineTotal: e.LineTotal().StringFixed(2),
		})
	}
	return dto
}

// decodeItemRequest reads a {product, quantity} body, bounded by the handler's
// body size limit.
func (h *Handler) decodeItemRequest(w http.ResponseWriter, r *http.Request) (ItemRequestDTO, bool) {
	var req ItemRequestDTO
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return req, false
	}
	if req.Product == "" {
		respondError(w, http.StatusBadRequest, "invalid_product", "product is required")
		return req, false
	}
	return req, true
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := h.catalog.Products()
	out := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, toProductDTO(p))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r.Context())
	defer cancel()

	ws, err := h.open(ctx)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	defer ws.close()

	respondJSON(w, http.StatusOK, toCartDTO(ws))
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r.Context())
	defer cancel()

	req, ok := h.decodeItemRequest(w, r)
	if !ok {
		return
	}
	if req.Quantity <= 0 || req.Quantity > maxItemQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	ws, err := h.mutate(ctx, func(ws *workspace) error {
		p, ok := h.catalog.Product(req.Product)
		if !ok {
			return cart.ErrUnknownProduct
		}
		return ws.store.Add(p, req.Quantity)
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	defer ws.close()

	h.logger.Debug("item added",
		zap.String("product", req.Product),
		zap.Int("quantity", req.Quantity),
		zap.String("request_id", getRequestID(r.Context())),
	)
	respondJSON(w, http.StatusCreated, toCartDTO(ws))
}

// UpdateItem sets an entry's quantity; zero removes the entry.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r.Context())
	defer cancel()

	req, ok := h.decodeItemRequest(w, r)
	if !ok {
		return
	}
	if req.Quantity < 0 || req.Quantity > maxItemQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 0 and 99")
		return
	}

	ws, err := h.mutate(ctx, func(ws *workspace) error {
		p, known := h.catalog.Product(req.Product)
		inCart := ws.store.Quantity(req.Product) > 0
		switch {
		case !known && !inCart:
			return cart.ErrUnknownProduct
		case !inCart:
			return cart.ErrNotInCart
		case !known:
			p = domain.Product{Name: req.Product}
		}
		ws.store.Update(p, req.Quantity)
		return nil
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	defer ws.close()

	respondJSON(w, http.StatusOK, toCartDTO(ws))
}

// RemoveItem drops the entry named by the product query parameter. Removing
// an entry that is not in the cart succeeds and changes nothing.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r.Context())
	defer cancel()

	name := r.URL.Query().Get("product")
	if name == "" {
		respondError(w, http.StatusBadRequest, "invalid_product", "product is required")
		return
	}

	ws, err := h.mutate(ctx, func(ws *workspace) error {
		ws.store.Remove(domain.Product{Name: name})
		return nil
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	defer ws.close()

	respondJSON(w, http.StatusOK, toCartDTO(ws))
}

func (h *Handler) ConfirmCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r.Context())
	defer cancel()

	var snapshot *domain.OrderSnapshot
	ws, err := h.mutate(ctx, func(ws *workspace) error {
		var err error
		snapshot, err = ws.order.Confirm(h.now())
		return err
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	defer ws.close()

	h.logger.Info("order confirmed",
		zap.String("order_id", snapshot.ID),
		zap.Int("item_count", snapshot.ItemCount),
		zap.String("total", snapshot.Total.StringFixed(2)),
	)
	respondJSON(w, http.StatusCreated, toOrderDTO(snapshot))
}

// ClearCart starts a new order: the cart is emptied and any pending
// confirmation is dismissed.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r.Context())
	defer cancel()

	ws, err := h.mutate(ctx, func(ws *workspace) error {
		ws.order.StartNew()
		return nil
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	defer ws.close()

	respondJSON(w, http.StatusOK, toCartDTO(ws))
}
