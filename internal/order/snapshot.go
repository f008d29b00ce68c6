package order

import (
	"errors"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrEmptyCart = errors.New("cart is empty, nothing to confirm")

// NewSnapshot copies the entries into a frozen order view. Later cart changes
// do not affect the returned snapshot.
func NewSnapshot(entries []domain.CartEntry, now time.Time) (*domain.OrderSnapshot, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCart
	}

	snapshot := &domain.OrderSnapshot{
		ID:         uuid.NewString(),
		Lines:      make([]domain.OrderLine, 0, len(entries)),
		Total:      decimal.Zero,
		CapturedAt: now,
	}
	for _, e := range entries {
		lineTotal := e.LineTotal()
		snapshot.Lines = append(snapshot.Lines, domain.OrderLine{
			Name:      e.Product.Name,
			Thumbnail: e.Product.Image.Thumbnail,
			Quantity:  e.Quantity,
			UnitPrice: e.Product.Price,
			LineTotal: lineTotal,
		})
		snapshot.ItemCount += e.Quantity
		snapshot.Total = snapshot.Total.Add(lineTotal)
	}
	return snapshot, nil
}
