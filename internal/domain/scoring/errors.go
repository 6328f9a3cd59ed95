package scoring

import "errors"

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	// ErrInvalidConfiguration reports an unknown mode or sport at the call boundary.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
