package repository

import (
	"errors"

	"github.com/okian/ringside/internal/domain/model"
)

// Sentinel kinds for data store errors.
var (
	ErrNotFound      = model.ErrNotFound
	ErrInvalidFilter = errors.New("invalid population filter")
	ErrStoreClosed   = errors.New("store closed")
	ErrInvalidRecord = errors.New("invalid record")
)
