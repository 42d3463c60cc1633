package errors

import (
	"errors"
)

// Domain errors returned by the store and translated into chat replies by handlers.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrCooldown          = errors.New("cooldown is active")
	ErrLimitReached      = errors.New("limit reached")
	ErrAlreadyMarried    = errors.New("already married")
	ErrNotMarried        = errors.New("not married")
	ErrAlreadyOwned      = errors.New("already owned")
	ErrSelfTarget        = errors.New("self target")
)
