package search

import (
	"errors"
	"fmt"
)

// ErrLimitExceeded is matched by errors.Is when a search stops because it
// expanded more nodes than allowed.
var ErrLimitExceeded = errors.New("search expansion limit exceeded")

// LimitError reports the expansion count at which a search gave up.
type LimitError struct {
	Expanded int
	Limit    int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("search expansion limit exceeded: %d expansions (limit %d)", e.Expanded, e.Limit)
}

// Is lets errors.Is(err, ErrLimitExceeded) match.
func (e *LimitError) Is(target error) bool {
	return target == ErrLimitExceeded
}

// budget tracks expansions against an optional limit.
//
// A limit of 0 means unlimited. Each searcher owns its own budget.
type budget struct {
	limit    int
	expanded int
}

// expand counts one expansion and returns a LimitError once the limit is
// exceeded.
func (b *budget) expand() error {
	b.expanded++
	if b.limit > 0 && b.expanded > b.limit {
		return &LimitError{Expanded: b.expanded, Limit: b.limit}
	}
	return nil
}
