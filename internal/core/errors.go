package core

import (
	"errors"
	"fmt"
)

var (
	ErrRegistry       = errors.New("registry error")
	ErrNotFound       = fmt.Errorf("%w: company not found", ErrRegistry)
	ErrSchemaMismatch = fmt.Errorf("%w: schema mismatch", ErrRegistry)
	ErrMalformed      = fmt.Errorf("%w: malformed value", ErrRegistry)
	ErrSource         = fmt.Errorf("%w: source unavailable", ErrRegistry)
	ErrTooLarge       = fmt.Errorf("%w: size limit exceeded", ErrSource)
	ErrDecode         = fmt.Errorf("%w: invalid csv", ErrRegistry)

	// ErrInvalidQuery marks search input rejected before it reaches the registry.
	ErrInvalidQuery = fmt.Errorf("%w: invalid query", ErrRegistry)

	// ErrRateLimited is returned to clients over the per-IP request budget.
	ErrRateLimited = errors.New("rate limit exceeded")
)
