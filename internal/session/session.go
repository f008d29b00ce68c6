package session

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("session not found")

	// ErrConflict is returned when Update keeps losing to concurrent writers.
	ErrConflict = errors.New("session changed concurrently")
)

// Session is the per-visitor cart state. It lives only as long as its TTL.
type Session struct {
	ID        string                `json:"id"`
	Entries   []domain.CartEntry    `json:"entries"`
	Order     *domain.OrderSnapshot `json:"order,omitempty"`
	UpdatedAt time.Time             `json:"updated_at"`
}

func New() *Session {
	return &Session{ID: uuid.NewString()}
}

// Store is implemented by MemoryStore and RedisStore.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error

	// Update applies fn to the current session (a fresh one if id is unknown)
	// and stores the result. Updates to one id never interleave; fn may run
	// more than once and must not keep the session it was given.
	Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error)
}

func clone(s *Session) *Session {
	c := *s
	c.Entries = append([]domain.CartEntry(nil), s.Entries...)
	return &c
}
