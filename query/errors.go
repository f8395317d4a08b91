package query

import (
	"errors"
	"fmt"
)

// Sentinel errors for builder misuse. All are detected at the offending
// fluent call and surfaced from ToDSL / Run; compilation itself never
// fails on a valid state.
var (
	// ErrInvalidClause flags malformed clause arguments: an empty field
	// name, a range with no bounds, a terms list with no values.
	ErrInvalidClause = errors.New("query: invalid clause")

	// ErrInvalidPagination flags a non-positive page size or page < 1.
	ErrInvalidPagination = errors.New("query: invalid pagination")

	// ErrDuplicateAggregation flags two aggregations registered under
	// the same name within one scope.
	ErrDuplicateAggregation = errors.New("query: duplicate aggregation name")

	// ErrNoExecutor is returned by Run when Using() was never called.
	ErrNoExecutor = errors.New("query: executor not set (call Using())")
)

// invalid is the Clause produced by a factory that rejected its
// arguments. Any sink receiving it records the error immediately, so
// the failure surfaces at the call site rather than at compile time.
type invalid struct{ err error }

func errClause(msg string) *invalid {
	return &invalid{fmt.Errorf("%w: %s", ErrInvalidClause, msg)}
}

func (n *invalid) compile() *Doc { return NewDoc() }

func paginationErr(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidPagination, msg)
}

// clauseErr extracts the embedded error from an invalid clause, nil
// otherwise.
func clauseErr(c Clause) error {
	if n, ok := c.(*invalid); ok && n != nil {
		return n.err
	}
	return nil
}
