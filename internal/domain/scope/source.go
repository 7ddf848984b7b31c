package scope

import (
	"fmt"
	"strings"

	"github.com/okian/ringside/internal/domain/types"
)

// Source selects which dataset a population is drawn from.
type Source string

const (
	// SourceOwn is the caller's own athletes.
	SourceOwn Source = "own"
	// SourceHouse is the privileged dataset owned by admin accounts.
	SourceHouse Source = "boxing_science"
	// SourceSharedPool is the cross-tenant pool of coaches who opted in to sharing.
	SourceSharedPool Source = "shared_pool"
)

// ParseSource parses a benchmark source. An empty string yields "" and no error.
func ParseSource(s string) (Source, error) {
	switch src := Source(strings.ToLower(strings.TrimSpace(s))); src {
	case "", SourceOwn, SourceHouse, SourceSharedPool:
		return src, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSource, s)
	}
}

// ResolveSource applies the default-source policy. An explicit source always
// wins; otherwise admin callers default to their own data and every other
// caller defaults to the house dataset.
func ResolveSource(explicit Source, caller types.Caller) Source {
	if explicit != "" {
		return explicit
	}
	if caller.IsAdmin() {
		return SourceOwn
	}
	return SourceHouse
}
