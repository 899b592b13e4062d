package models

import "errors"

// Sentinel errors shared between the stores and the checkout services.
// Handlers map these onto HTTP status codes; everything else is a 500.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrStoryNotFound     = errors.New("story not found")
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrOrderFinal        = errors.New("order already in a terminal state")
	ErrGateway           = errors.New("payment gateway error")
)
