// Package auth provides JWT session management and password hashing.
package auth

import "errors"

// Token validation errors
var (
	// ErrInvalidToken is returned when an access token is malformed,
	// has an invalid signature, or fails validation for any reason
	// other than expiry.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when an access token has expired.
	ErrExpiredToken = errors.New("token expired")

	// ErrTokenNotYetValid is returned when a token's NotBefore claim
	// is in the future.
	ErrTokenNotYetValid = errors.New("token not yet valid")

	// ErrWrongTokenType is returned when a token of one type is presented
	// where the other is required (e.g. a refresh token used as an
	// access token).
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrInvalidRefreshToken is returned when a refresh token is malformed
	// or fails validation for any reason other than expiry.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrExpiredRefreshToken is returned when a refresh token has expired.
	ErrExpiredRefreshToken = errors.New("refresh token expired")
)
