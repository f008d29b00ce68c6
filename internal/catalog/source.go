package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"gopkg.in/yaml.v3"
)

var ErrInvalidCatalog = errors.New("invalid catalog")

// Source fetches the full product list.
type Source interface {
	Fetch(ctx context.Context) ([]domain.Product, error)
}

func decode(r io.Reader) ([]domain.Product, error) {
	var products []domain.Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return products, nil
}

func decodeYAML(r io.Reader) ([]domain.Product, error) {
	var products []domain.Product
	if err := yaml.NewDecoder(r).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return products, nil
}

// Validate checks that names are present and unique and that no price is negative.
func Validate(products []domain.Product) error {
	seen := make(map[string]struct{}, len(products))
	for i, p := range products {
		if p.Name == "" {
			return fmt.Errorf("%w: product %d has no name", ErrInvalidCatalog, i)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("%w: duplicate product %q", ErrInvalidCatalog, p.Name)
		}
		if p.Price.IsNegative() {
			return fmt.Errorf("%w: negative price for %q", ErrInvalidCatalog, p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}
