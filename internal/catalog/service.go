package catalog

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Service loads the catalog once and serves it from memory afterwards.
type Service struct {
	source  Source
	logger  *zap.Logger
	timeout time.Duration
	sfg     singleflight.Group // concurrent first loads share one fetch

	mu       sync.RWMutex
	loaded   bool
	products []domain.Product
	byName   map[string]domain.Product
}

func NewService(source Source, logger *zap.Logger, timeout time.Duration) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:  source,
		logger:  logger,
		timeout: timeout,
		byName:  map[string]domain.Product{},
	}
}

// Load fetches the catalog on the first call. A failed fetch is logged and
// leaves the product list empty; later calls do not retry. Use Refresh or Run
// to fetch again.
func (s *Service) Load(ctx context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	if s.loaded {
		products := s.products
		s.mu.RUnlock()
		return products, nil
	}
	s.mu.RUnlock()

	_, err, _ := s.sfg.Do("catalog", func() (interface{}, error) {
		s.mu.RLock()
		done := s.loaded
		s.mu.RUnlock()
		if done {
			return nil, nil
		}

		products, err := s.fetch(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.loaded = true
		if err != nil {
			s.logger.Error("error fetching products", zap.Error(err))
			return nil, err
		}
		s.replaceLocked(products)
		s.logger.Info("fetched products", zap.Int("count", len(products)))
		return nil, nil
	})

	return s.Products(), err
}

// Refresh fetches the catalog again and swaps it in. A failed refresh is
// logged and keeps the products already served.
func (s *Service) Refresh(ctx context.Context) error {
	products, err := s.fetch(ctx)
	if err != nil {
		s.logger.Warn("catalog refresh failed", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.loaded = true
	s.replaceLocked(products)
	s.mu.Unlock()

	s.logger.Debug("refreshed products", zap.Int("count", len(products)))
	return nil
}

// Run refreshes the catalog every interval until ctx is done. HTTP sources
// stop calling a failing upstream once their circuit breaker opens.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = s.Refresh(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Service) replaceLocked(products []domain.Product) {
	byName := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byName[p.Name] = p
	}
	s.products = products
	s.byName = byName
}

func (s *Service) fetch(ctx context.Context) ([]domain.Product, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	products, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := Validate(products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Service) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products
}

func (s *Service) Product(name string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byName[name]
	return p, ok
}

// NewSource picks a Source from a config value: "embedded" (or empty),
// an http(s) URL, "sqlite://<path>", or a JSON file path. The returned closer
// releases whatever the source opened.
func NewSource(location string) (Source, io.Closer, error) {
	switch {
	case location == "" || location == "embedded":
		return EmbeddedSource{}, nopCloser{}, nil
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return NewHTTPSource(location, &http.Client{Timeout: 10 * time.Second}), nopCloser{}, nil
	case strings.HasPrefix(location, "sqlite://"):
		repo, err := OpenRepository(strings.TrimPrefix(location, "sqlite://"))
		if err != nil {
			return nil, nil, err
		}
		return repo, repo, nil
	default:
		return FileSource{Path: location}, nopCloser{}, nil
	}
}

// OpenRepository opens the SQLite catalog and brings its schema up to date.
func OpenRepository(path string) (*Repository, error) {
	repo, err := NewRepository(path)
	if err != nil {
		return nil, err
	}
	if err := repo.RunMigrations(); err != nil {
		repo.Close()
		return nil, err
	}
	return repo, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
