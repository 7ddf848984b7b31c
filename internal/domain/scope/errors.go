package scope

import "errors"

// Sentinel kinds for scope resolution errors.
var (
	ErrInvalidSource         = errors.New("invalid benchmark source")
	ErrInvalidReferenceGroup = errors.New("invalid reference group")
	ErrGenderRequired        = errors.New("gender required for gender reference group")
	ErrInvalidMassBand       = errors.New("invalid mass band")
)
