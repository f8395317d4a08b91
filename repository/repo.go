// Package repository offers a thin façade on top of the lower-level
// builders in the query package. It follows the functional-options
// pattern so callers keep code terse while still reaching the full
// query DSL.
//
//	repo := repository.New("articles", conn)
//	res, err := repo.Search(ctx,
//	    q.Match("title", "golang", nil),
//	    repository.Filter(q.Term("status", "published")),
//	    repository.SortDesc("published_at"),
//	    repository.Page(20, 1),
//	)
package repository

import (
	"context"

	"github.com/manojoshi/esorm/driver"
	q "github.com/manojoshi/esorm/query"
	"github.com/manojoshi/esorm/scan"
)

// Repository is bound to one index and one transport.
type Repository struct {
	index string
	exec  driver.Executor
}

// New constructs a repository bound to an index.
func New(index string, exec driver.Executor) *Repository {
	return &Repository{index: index, exec: exec}
}

// -------------------------------------------------------------------
// SEARCH
// -------------------------------------------------------------------

// Search executes a _search with the given where clause and options
// (Filter, SortAsc, Page, …). The where clause may be nil to match
// everything the options select.
func (r *Repository) Search(
	ctx context.Context,
	where q.Clause,
	opts ...Opt,
) (*scan.Result, error) {

	sb := q.NewSearch(r.index).Using(r.exec)
	if where != nil {
		sb.Where(where)
	}
	for _, opt := range opts {
		opt.apply(sb)
	}
	return sb.Run(ctx)
}

// -------------------------------------------------------------------
// AGGREGATE
// -------------------------------------------------------------------

// Aggregate runs a zero-hit search carrying only aggregations; the
// raw aggregation subtrees come back on the Result.
func (r *Repository) Aggregate(
	ctx context.Context,
	where q.Clause,
	fn func(*q.AggBuilder),
	opts ...Opt,
) (*scan.Result, error) {

	sb := q.NewSearch(r.index).Using(r.exec).Size(0).Aggregate(fn)
	if where != nil {
		sb.Where(where)
	}
	for _, opt := range opts {
		opt.apply(sb)
	}
	return sb.Run(ctx)
}
