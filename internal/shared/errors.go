// Package shared holds the error sentinels used across the library.
package shared

import "errors"

var (

	// repository errors
	ErrNotFound = errors.New("not found")

	// activity token errors
	ErrTokenInvalid = errors.New("invalid activity token")
	ErrTokenExpired = errors.New("activity token expired")

	// company context errors
	ErrCompanyNotServed    = errors.New("company is not served here")
	ErrCompanyConfigBroken = errors.New("company config is malformed")

	// cache bus errors
	ErrSessionNotFound = errors.New("session not found")
	ErrBusUnavailable  = errors.New("cache bus request failed")
)
