package order

import (
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Confirmation tracks the order shown in the confirmation modal. Any cart
// mutation after confirming dismisses the pending order.
type Confirmation struct {
	store *cart.Store

	mu          sync.Mutex
	pending     *domain.OrderSnapshot
	unsubscribe func()
}

func Watch(store *cart.Store, pending *domain.OrderSnapshot) *Confirmation {
	c := &Confirmation{store: store, pending: pending}
	c.unsubscribe = store.Subscribe(func(cart.Event) {
		c.mu.Lock()
		c.pending = nil
		c.mu.Unlock()
	})
	return c
}

func (c *Confirmation) Confirm(now time.Time) (*domain.OrderSnapshot, error) {
	snapshot, err := NewSnapshot(c.store.Entries(), now)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.pending = snapshot
	c.mu.Unlock()
	return snapshot, nil
}

// Pending returns nil when no confirmation is open.
func (c *Confirmation) Pending() *domain.OrderSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// StartNew empties the cart and closes the modal.
func (c *Confirmation) StartNew() {
	c.store.Clear()

	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
}

func (c *Confirmation) Close() {
	c.unsubscribe()
}
