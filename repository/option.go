package repository

import q "github.com/manojoshi/esorm/query"

// Opt tweaks the builder a Repository call assembles under the hood.
type Opt interface {
	apply(*q.Builder)
}

type optFunc func(*q.Builder)

func (o optFunc) apply(b *q.Builder) { o(b) }

// ---------- COMMON helpers ----------

// Must routes extra clauses into the bool must sequence.
func Must(cs ...q.Clause) Opt {
	return optFunc(func(b *q.Builder) { b.Must(cs...) })
}

// Filter routes clauses into the bool filter sequence (no scoring).
func Filter(cs ...q.Clause) Opt {
	return optFunc(func(b *q.Builder) { b.Filter(cs...) })
}

// MustNot routes clauses into the bool must_not sequence.
func MustNot(cs ...q.Clause) Opt {
	return optFunc(func(b *q.Builder) { b.MustNot(cs...) })
}

// Should routes clauses into the bool should sequence.
func Should(cs ...q.Clause) Opt {
	return optFunc(func(b *q.Builder) { b.Should(cs...) })
}

// Nested scopes clauses to a sub-document path.
func Nested(path string, fn func(*q.GroupBuilder)) Opt {
	return optFunc(func(b *q.Builder) { b.Nested(path, fn) })
}

// Page applies page-oriented pagination: from = size*(page-1).
func Page(size, page int) Opt {
	return optFunc(func(b *q.Builder) { b.Paginate(size, page) })
}

// SortAsc / SortDesc append sort pairs.
func SortAsc(field string) Opt  { return sortOpt(field, q.Asc) }
func SortDesc(field string) Opt { return sortOpt(field, q.Desc) }

func sortOpt(f string, dir q.Dir) Opt {
	return optFunc(func(b *q.Builder) { b.OrderBy(f, dir) })
}

// Suggest registers suggesters alongside the search.
func Suggest(fn func(*q.SuggestBuilder)) Opt {
	return optFunc(func(b *q.Builder) { b.Suggest(fn) })
}
