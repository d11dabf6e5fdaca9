package pantry

import "errors"

// Domain errors for pantry operations
var (
	ErrNameRequired    = errors.New("item name is required")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrItemNotFound    = errors.New("pantry item not found")
	ErrDuplicateName   = errors.New("pantry item with this name already exists")
)
