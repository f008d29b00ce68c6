package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

//go:embed data.json
var defaultCatalog []byte

// FileSource reads a catalog file: YAML for .yaml/.yml, JSON otherwise.
type FileSource struct {
	Path string
}

func (f FileSource) Fetch(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".yaml", ".yml":
		return decodeYAML(file)
	default:
		return decode(file)
	}
}

// EmbeddedSource serves the dessert catalog bundled with the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Fetch(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return decode(bytes.NewReader(defaultCatalog))
}
