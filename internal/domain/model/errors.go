package model

import "errors"

// ErrNotFound marks a missing athlete, event or value. Data stores and
// services wrap it so callers can match with errors.Is.
var ErrNotFound = errors.New("not found")
