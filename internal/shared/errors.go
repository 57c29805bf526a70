package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrEntropy            = fmt.Errorf("entropy source unavailable")

	// Authorization flow errors
	ErrAuthDenied    = fmt.Errorf("authorization denied")
	ErrStateMismatch = fmt.Errorf("state verification failed")
	ErrTokenExchange = fmt.Errorf("token exchange failed")
	ErrTokenExpired  = fmt.Errorf("access token expired")
	ErrNetwork       = fmt.Errorf("no response from server")
	ErrTimeout       = fmt.Errorf("operation timed out")

	// API errors
	ErrAPIRequest = fmt.Errorf("API request failed")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
