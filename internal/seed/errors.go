package seed

import "errors"

// ErrInvalidConfig is returned for unusable dataset sizes.
var ErrInvalidConfig = errors.New("invalid seed config")
