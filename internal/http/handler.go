package http

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/order"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/internal/view"
	"go.uber.org/zap"
)

// Catalog is the read side of the loaded product list.
type Catalog interface {
	Products() []domain.Product
	Product(name string) (domain.Product, bool)
}

type Handler struct {
	catalog  Catalog
	sessions session.Store
	renderer *view.Renderer
	logger   *zap.Logger
	timeout  time.Duration
	maxBody  int64
	now      func() time.Time
}

type HandlerParams struct {
	Catalog  Catalog
	Sessions session.Store
	Renderer *view.Renderer
	Logger   *zap.Logger
	Timeout  time.Duration

	// MaxBodySize caps JSON request bodies; zero means 1MB.
	MaxBodySize int64
}

func NewHandler(params HandlerParams) *Handler {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxBody := params.MaxBodySize
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	return &Handler{
		catalog:  params.Catalog,
		sessions: params.Sessions,
		renderer: params.Renderer,
		logger:   logger,
		timeout:  params.Timeout,
		maxBody:  maxBody,
		now:      time.Now,
	}
}

// workspace is one request's view of a session: the restored cart store,
// the card controller on top of it and the pending order confirmation.
type workspace struct {
	sess  *session.Session
	store *cart.Store
	cards *cart.Controller
	order *order.Confirmation
}

func (w *workspace) close() {
	w.order.Close()
	w.cards.Close()
}

func (h *Handler) context(parent context.Context) (context.Context, context.CancelFunc) {
	if h.timeout > 0 {
		return context.WithTimeout(parent, h.timeout)
	}
	return context.WithCancel(parent)
}

func (h *Handler) open(ctx context.Context) (*workspace, error) {
	id := getSessionID(ctx)
	if id == "" {
		return nil, errMissingSession
	}

	sess, err := h.sessions.Get(ctx, id)
	if errors.Is(err, session.ErrNotFound) {
		sess = &session.Session{ID: id}
	} else if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return h.restore(sess), nil
}

func (h *Handler) restore(sess *session.Session) *workspace {
	store := cart.Restore(sess.Entries)
	return &workspace{
		sess:  sess,
		store: store,
		cards: cart.NewController(store, h.catalog.Products()),
		order: order.Watch(store, sess.Order),
	}
}

// mutate applies fn to the session inside a store update, so two requests
// on one session apply their changes one after the other. The store may
// retry fn, in which case every attempt starts from a fresh workspace.
func (h *Handler) mutate(ctx context.Context, fn func(*workspace) error) (*workspace, error) {
	id := getSessionID(ctx)
	if id == "" {
		return nil, errMissingSession
	}

	var ws *workspace
	_, err := h.sessions.Update(ctx, id, func(sess *session.Session) error {
		if ws != nil {
			ws.close()
		}
		ws = h.restore(sess)
		if err := fn(ws); err != nil {
			return err
		}
		sess.Entries = ws.store.Entries()
		sess.Order = ws.order.Pending()
		sess.UpdatedAt = h.now()
		return nil
	})
	if err != nil {
		if ws != nil {
			ws.close()
		}
		return nil, err
	}
	return ws, nil
}
