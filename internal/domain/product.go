package domain

import "github.com/shopspring/decimal"

type Product struct {
	Name     string          `json:"name" yaml:"name"`
	Category string          `json:"category" yaml:"category"`
	Price    decimal.Decimal `json:"price" yaml:"price"`
	Image    Image           `json:"image" yaml:"image"`
}

// Image holds the responsive image URLs shipped with the catalog.
type Image struct {
	Thumbnail string `json:"thumbnail" yaml:"thumbnail"`
	Mobile    string `json:"mobile,omitempty" yaml:"mobile,omitempty"`
	Tablet    string `json:"tablet,omitempty" yaml:"tablet,omitempty"`
	Desktop   string `json:"desktop" yaml:"desktop"`
}
