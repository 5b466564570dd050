package qbo

import "errors"

var (
	// ErrNotConnected means no QuickBooks company has completed the
	// OAuth2 flow yet.
	ErrNotConnected = errors.New("qbo_not_connected")

	// ErrReauthorize means the stored refresh token was rejected; the
	// user must go through the consent flow again.
	ErrReauthorize = errors.New("qbo_reauthorize")

	// ErrUpstream wraps any other failure talking to QuickBooks.
	ErrUpstream = errors.New("qbo_upstream")

	// ErrInvalidState means the OAuth2 redirect carried a state value
	// that does not match the one issued at connect time.
	ErrInvalidState = errors.New("qbo_invalid_state")
)
