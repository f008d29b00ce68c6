package cart

import (
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type CardMode int

const (
	// CardIdle shows the "Add to Cart" button.
	CardIdle CardMode = iota
	// CardActive shows the minus/quantity/plus stepper.
	CardActive
)

func (m CardMode) String() string {
	if m == CardActive {
		return "active"
	}
	return "idle"
}

// CardState is the view state of one product card.
type CardState struct {
	Product  domain.Product
	Mode     CardMode
	Quantity int
}

// Controller drives the product card counters on top of a Store. Card state is
// refreshed from the store on every store event and is never counted locally.
// Like Store it may be shared between goroutines.
type Controller struct {
	store    *Store
	products []domain.Product
	byName   map[string]domain.Product

	mu          sync.RWMutex
	cards       map[string]*CardState
	unsubscribe func()
}

func NewController(store *Store, products []domain.Product) *Controller {
	c := &Controller{
		store:    store,
		products: products,
		byName:   make(map[string]domain.Product, len(products)),
		cards:    make(map[string]*CardState, len(products)),
	}
	for _, p := range products {
		c.byName[p.Name] = p
		c.cards[p.Name] = &CardState{Product: p}
		c.refresh(p.Name)
	}
	c.unsubscribe = store.Subscribe(c.onEvent)
	return c
}

func (c *Controller) Store() *Store {
	return c.store
}

// Close detaches the controller from its store.
func (c *Controller) Close() {
	c.unsubscribe()
}

func (c *Controller) onEvent(ev Event) {
	if ev.Kind == EventCleared {
		for _, p := range c.products {
			c.refresh(p.Name)
		}
		return
	}
	c.refresh(ev.Product)
}

func (c *Controller) refresh(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	card, ok := c.cards[name]
	if !ok {
		return
	}
	card.Quantity = c.store.Quantity(name)
	if card.Quantity > 0 {
		card.Mode = CardActive
	} else {
		card.Mode = CardIdle
	}
}

func (c *Controller) lookup(name string) (domain.Product, error) {
	p, ok := c.byName[name]
	if !ok {
		return domain.Product{}, ErrUnknownProduct
	}
	return p, nil
}

// PressAdd moves an idle card to active by adding one unit.
func (c *Controller) PressAdd(name string) error {
	p, err := c.lookup(name)
	if err != nil {
		return err
	}
	return c.store.Add(p, 1)
}

func (c *Controller) Increment(name string) error {
	p, err := c.lookup(name)
	if err != nil {
		return err
	}
	return c.store.Step(p, 1)
}

// Decrement lowers the quantity by one; at quantity 1 the entry is removed
// and the card returns to idle.
func (c *Controller) Decrement(name string) error {
	p, err := c.lookup(name)
	if err != nil {
		return err
	}
	return c.store.Step(p, -1)
}

// RemoveFromPanel removes the entry regardless of quantity. Entries restored
// for products that have since left the catalog can still be removed.
func (c *Controller) RemoveFromPanel(name string) error {
	p, err := c.lookup(name)
	if err != nil {
		if c.store.Quantity(name) == 0 {
			return err
		}
		p = domain.Product{Name: name}
	}
	c.store.Remove(p)
	return nil
}

func (c *Controller) Card(name string) (CardState, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	card, ok := c.cards[name]
	if !ok {
		return CardState{}, ErrUnknownProduct
	}
	return *card, nil
}

// Cards returns the card states in catalog order.
func (c *Controller) Cards() []CardState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]CardState, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, *c.cards[p.Name])
	}
	return out
}

// Active reports whether the card shows the quantity stepper.
func (c CardState) Active() bool {
	return c.Mode == CardActive
}
