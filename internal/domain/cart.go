package domain

import "github.com/shopspring/decimal"

// CartEntry is a product plus the quantity selected by the user. Quantity is always >= 1.
type CartEntry struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

func (e CartEntry) LineTotal() decimal.Decimal {
	return e.Product.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Totals are derived from the entries on every read and never stored.
type Totals struct {
	ItemCount  int             `json:"item_count"`
	OrderTotal decimal.Decimal `json:"order_total"`
}
