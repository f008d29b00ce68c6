package cart

import (
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// Store maps product names to cart entries and keeps them in insertion order.
// It is safe for concurrent use. The HTTP handlers build one per request
// and serialize requests per session in the session store, so the locks
// only matter when a Store is shared by other callers.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*domain.CartEntry
	order   []string

	subsMu sync.Mutex
	subs   []subscription
	nextID int
}

func NewStore() *Store {
	return &Store{
		entries: make(map[string]*domain.CartEntry),
	}
}

// Restore rebuilds a store from saved entries without emitting events.
// Entries below quantity 1 are dropped and repeated products are merged.
func Restore(entries []domain.CartEntry) *Store {
	s := NewStore()
	for _, e := range entries {
		if e.Quantity < 1 {
			continue
		}
		if existing, ok := s.entries[e.Product.Name]; ok {
			existing.Quantity += e.Quantity
			continue
		}
		entry := e
		s.entries[e.Product.Name] = &entry
		s.order = append(s.order, e.Product.Name)
	}
	return s
}

// Subscribe registers a listener and returns a func that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(ev Event) {
	s.subsMu.Lock()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.subsMu.Unlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}

// Add increments the quantity of an existing entry or inserts a new one.
func (s *Store) Add(product domain.Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	var ev Event
	if entry, ok := s.entries[product.Name]; ok {
		entry.Quantity += quantity
		ev = Event{Kind: EventUpdated, Product: product.Name, Quantity: entry.Quantity}
	} else {
		s.entries[product.Name] = &domain.CartEntry{Product: product, Quantity: quantity}
		s.order = append(s.order, product.Name)
		ev = Event{Kind: EventAdded, Product: product.Name, Quantity: quantity}
	}
	s.mu.Unlock()

	s.notify(ev)
	return nil
}

// Update sets the quantity of an entry that is already in the cart. A quantity
// below 1 removes the entry. Absent products are ignored.
func (s *Store) Update(product domain.Product, quantity int) {
	if quantity < 1 {
		s.Remove(product)
		return
	}

	s.mu.Lock()
	entry, ok := s.entries[product.Name]
	if !ok {
		s.mu.Unlock()
		return
	}
	entry.Quantity = quantity
	s.mu.Unlock()

	s.notify(Event{Kind: EventUpdated, Product: product.Name, Quantity: quantity})
}

// Step changes the quantity of an entry already in the cart by delta under
// one lock. An entry that drops below 1 is removed.
func (s *Store) Step(product domain.Product, delta int) error {
	s.mu.Lock()
	entry, ok := s.entries[product.Name]
	if !ok {
		s.mu.Unlock()
		return ErrNotInCart
	}
	var ev Event
	if q := entry.Quantity + delta; q < 1 {
		s.removeLocked(product.Name)
		ev = Event{Kind: EventRemoved, Product: product.Name}
	} else {
		entry.Quantity = q
		ev = Event{Kind: EventUpdated, Product: product.Name, Quantity: q}
	}
	s.mu.Unlock()

	s.notify(ev)
	return nil
}

// Remove deletes the entry if present.
func (s *Store) Remove(product domain.Product) {
	s.mu.Lock()
	if _, ok := s.entries[product.Name]; !ok {
		s.mu.Unlock()
		return
	}
	s.removeLocked(product.Name)
	s.mu.Unlock()

	s.notify(Event{Kind: EventRemoved, Product: product.Name})
}

func (s *Store) removeLocked(name string) {
	delete(s.entries, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Clear empties the cart. It emits EventCleared only when something was removed.
func (s *Store) Clear() {
	s.mu.Lock()
	if len(s.order) == 0 {
		s.mu.Unlock()
		return
	}
	s.entries = make(map[string]*domain.CartEntry)
	s.order = nil
	s.mu.Unlock()

	s.notify(Event{Kind: EventCleared})
}

// Quantity returns zero for products that are not in the cart.
func (s *Store) Quantity(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if entry, ok := s.entries[name]; ok {
		return entry.Quantity
	}
	return 0
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Entries returns a copy of the entries in insertion order.
func (s *Store) Entries() []domain.CartEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CartEntry, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, *s.entries[name])
	}
	return out
}

func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, entry := range s.entries {
		count += entry.Quantity
	}
	return count
}

func (s *Store) OrderTotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, entry := range s.entries {
		total = total.Add(entry.LineTotal())
	}
	return total
}

func (s *Store) Totals() domain.Totals {
	return domain.Totals{
		ItemCount:  s.ItemCount(),
		OrderTotal: s.OrderTotal(),
	}
}
