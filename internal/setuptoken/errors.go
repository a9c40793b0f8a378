package setuptoken

import "errors"

var (
	// ErrNotFound indicates the presented value matches no issued token.
	ErrNotFound = errors.New("setup token not found")
	// ErrExpired indicates the token exists but its validity window has passed.
	ErrExpired = errors.New("setup token expired")
	// ErrAlreadyConsumed indicates the token was already redeemed.
	ErrAlreadyConsumed = errors.New("setup token already consumed")
)
