package query

import (
	"context"
	"net/url"

	"github.com/manojoshi/esorm/driver"
	"github.com/manojoshi/esorm/scan"
)

// -------------------------------------------------------------------
// Builder – fluent accumulator for one _search request
// -------------------------------------------------------------------

type Dir string

const (
	Asc  Dir = "asc"
	Desc Dir = "desc"
)

type sortEntry struct {
	field string
	dir   Dir
}

type nestedScope struct {
	path  string
	group BoolGroup
}

type Builder struct {
	idx      string
	plain    []Clause // Where() clauses, no explicit bool context
	group    BoolGroup
	boolUsed bool // any Must/MustNot/Should/Filter call
	scopes   []*nestedScope
	sorts    []sortEntry
	from     int
	size     int
	fromSet  bool
	sizeSet  bool
	aggs     *AggBuilder
	suggest  *SuggestBuilder
	executor driver.Executor
	err      error // first invalid fluent call, sticky
}

// NewSearch starts a builder bound to an index. Executor must be
// provided via Using before Run.
func NewSearch(index string) *Builder { return &Builder{idx: index} }

// Where records a clause without boolean context. A builder that only
// ever calls Where once compiles to the bare clause document; any
// additional clause or boolean call promotes everything into a bool
// group's must sequence.
func (b *Builder) Where(c Clause) *Builder {
	if e := clauseErr(c); e != nil {
		b.fail(e)
		return b
	}
	b.plain = append(b.plain, c)
	return b
}

func (b *Builder) Must(cs ...Clause) *Builder    { return b.route(&b.group.must, cs) }
func (b *Builder) MustNot(cs ...Clause) *Builder { return b.route(&b.group.mustNot, cs) }
func (b *Builder) Should(cs ...Clause) *Builder  { return b.route(&b.group.should, cs) }
func (b *Builder) Filter(cs ...Clause) *Builder  { return b.route(&b.group.filter, cs) }

// Nested scopes clauses to a sub-document path. Repeated calls with the
// same path merge into one scope; each scope compiles to a
// nested{path, query} clause appended to the outer must sequence.
func (b *Builder) Nested(path string, fn func(*GroupBuilder)) *Builder {
	if path == "" {
		b.fail(errClause("nested: empty path").err)
		return b
	}
	var scope *nestedScope
	for _, s := range b.scopes {
		if s.path == path {
			scope = s
			break
		}
	}
	if scope == nil {
		scope = &nestedScope{path: path}
		b.scopes = append(b.scopes, scope)
	}
	fn(&GroupBuilder{g: &scope.group, err: &b.err})
	return b
}

// OrderBy appends a sort pair. Re-sorting an already sorted field
// updates its direction in place (last write wins, first position kept).
func (b *Builder) OrderBy(field string, dir Dir) *Builder {
	for i := range b.sorts {
		if b.sorts[i].field == field {
			b.sorts[i].dir = dir
			return b
		}
	}
	b.sorts = append(b.sorts, sortEntry{field, dir})
	return b
}

// Paginate sets from/size from a page number: from = size*(page-1).
func (b *Builder) Paginate(size, page int) *Builder {
	if size <= 0 {
		b.fail(paginationErr("size must be > 0"))
		return b
	}
	if page < 1 {
		b.fail(paginationErr("page must be >= 1"))
		return b
	}
	b.from, b.fromSet = size*(page-1), true
	b.size, b.sizeSet = size, true
	return b
}

// From sets the result offset directly.
func (b *Builder) From(n int) *Builder {
	if n < 0 {
		b.fail(paginationErr("from must be >= 0"))
		return b
	}
	b.from, b.fromSet = n, true
	return b
}

// Size sets the result window directly. Zero is allowed here (an
// aggregation-only request suppresses hits with size 0); Paginate is
// the strict page-oriented entry point.
func (b *Builder) Size(n int) *Builder {
	if n < 0 {
		b.fail(paginationErr("size must be >= 0"))
		return b
	}
	b.size, b.sizeSet = n, true
	return b
}

// Aggregate hands a scoped aggregation builder to fn. May be called
// multiple times; registrations accumulate in one top-level scope.
func (b *Builder) Aggregate(fn func(*AggBuilder)) *Builder {
	if b.aggs == nil {
		b.aggs = newAggBuilder(&b.err)
	}
	fn(b.aggs)
	return b
}

// Suggest hands a scoped suggester builder to fn. Re-registering a
// suggester name overwrites the earlier spec.
func (b *Builder) Suggest(fn func(*SuggestBuilder)) *Builder {
	if b.suggest == nil {
		b.suggest = newSuggestBuilder()
	}
	fn(b.suggest)
	return b
}

// Using sets the transport executor used by Run.
func (b *Builder) Using(ex driver.Executor) *Builder {
	b.executor = ex
	return b
}

// ToDSL compiles the accumulated state into the request document. It
// is read-only: calling it repeatedly on unchanged state yields
// byte-identical documents.
func (b *Builder) ToDSL() (*Doc, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.compileState(), nil
}

// Run compiles the request and executes POST /<index>/_search.
func (b *Builder) Run(ctx context.Context) (*scan.Result, error) {
	if b.executor == nil {
		return nil, ErrNoExecutor
	}
	doc, err := b.ToDSL()
	if err != nil {
		return nil, err
	}
	body, err := doc.MarshalJSON()
	if err != nil {
		return nil, err
	}
	resp, err := b.executor.Do(ctx, driver.Request{
		Method: "POST",
		Path:   "/" + url.PathEscape(b.idx) + "/_search",
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	return scan.ParseSearch(resp.Body)
}

// ---------------------------------------------------------------
// internals
// ---------------------------------------------------------------

func (b *Builder) route(dst *[]Clause, cs []Clause) *Builder {
	b.boolUsed = true
	for _, c := range cs {
		if e := clauseErr(c); e != nil {
			b.fail(e)
			continue
		}
		*dst = append(*dst, c)
	}
	return b
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}
