package cart

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrUnknownProduct  = errors.New("product is not in the catalog")
	ErrNotInCart       = errors.New("product is not in the cart")
)
