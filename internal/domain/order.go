package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderLine struct {
	Name      string          `json:"name"`
	Thumbnail string          `json:"thumbnail"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderSnapshot represents the cart state at confirmation time
type OrderSnapshot struct {
	ID         string          `json:"id"`
	Lines      []OrderLine     `json:"lines"`
	ItemCount  int             `json:"item_count"`
	Total      decimal.Decimal `json:"total"`
	CapturedAt time.Time       `json:"captured_at"`
}
