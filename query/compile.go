package query

import (
	"slices"

	"golang.org/x/exp/maps"
)

// -------------------------------------------------------------------
// node writers – kept in a central file so the clause structs stay
// dumb data containers. Each compiles to an ordered Doc matching the
// engine's documented query-DSL schema.
// -------------------------------------------------------------------

func (n *match) compile() *Doc {
	if len(n.opts) == 0 {
		return NewDoc().Set("match", NewDoc().Set(n.f, n.v))
	}
	body := NewDoc().Set("query", n.v)
	foldOpts(body, n.opts)
	return NewDoc().Set("match", NewDoc().Set(n.f, body))
}

func (n *multiMatch) compile() *Doc {
	body := NewDoc().Set("query", n.v)
	fields := make([]any, len(n.fs))
	for i, f := range n.fs {
		fields[i] = f
	}
	body.Set("fields", fields)
	foldOpts(body, n.opts)
	return NewDoc().Set("multi_match", body)
}

func (n *term) compile() *Doc {
	return NewDoc().Set("term", NewDoc().Set(n.f, n.v))
}

func (n *terms) compile() *Doc {
	return NewDoc().Set("terms", NewDoc().Set(n.f, append([]any{}, n.vs...)))
}

func (n *rng) compile() *Doc {
	body := NewDoc()
	if n.bounds.GTE != nil {
		body.Set("gte", n.bounds.GTE)
	}
	if n.bounds.GT != nil {
		body.Set("gt", n.bounds.GT)
	}
	if n.bounds.LTE != nil {
		body.Set("lte", n.bounds.LTE)
	}
	if n.bounds.LT != nil {
		body.Set("lt", n.bounds.LT)
	}
	foldOpts(body, n.opts)
	return NewDoc().Set("range", NewDoc().Set(n.f, body))
}

func (n *exists) compile() *Doc {
	return NewDoc().Set("exists", NewDoc().Set("field", n.f))
}

func (n *prefix) compile() *Doc {
	return NewDoc().Set("prefix", NewDoc().Set(n.f, n.v))
}

func (n *wildcard) compile() *Doc {
	return NewDoc().Set("wildcard", NewDoc().Set(n.f, n.v))
}

func (matchAll) compile() *Doc {
	return NewDoc().Set("match_all", NewDoc())
}

// -------------------------------------------------------------------
// state compiler – the single read-only walk over accumulated builder
// state. Top-level keys come out in fixed order (query, sort, from,
// size, aggs, suggest); empty sections are omitted.
// -------------------------------------------------------------------

func (b *Builder) compileState() *Doc {
	out := NewDoc()

	if q := b.compileQuery(); q != nil {
		out.Set("query", q)
	}

	if len(b.sorts) > 0 {
		sort := make([]any, len(b.sorts))
		for i, s := range b.sorts {
			sort[i] = NewDoc().Set(s.field, string(s.dir))
		}
		out.Set("sort", sort)
	}

	if b.fromSet {
		out.Set("from", b.from)
	}
	if b.sizeSet {
		out.Set("size", b.size)
	}

	if !b.aggs.empty() {
		out.Set("aggs", b.aggs.compile())
	}
	if !b.suggest.empty() {
		out.Set("suggest", b.suggest.compile())
	}
	return out
}

// compileQuery folds plain clauses, the bool group and nested scopes
// into the query subtree. A lone Where clause with no boolean or
// nested usage stays unwrapped; anything else nests under bool, with
// nested scopes appended to must after every other must clause.
func (b *Builder) compileQuery() *Doc {
	if !b.boolUsed && len(b.scopes) == 0 {
		switch len(b.plain) {
		case 0:
			return nil
		case 1:
			return b.plain[0].compile()
		}
	}

	must := make([]any, 0, len(b.plain)+len(b.group.must)+len(b.scopes))
	for _, c := range b.plain {
		must = append(must, c.compile())
	}
	for _, c := range b.group.must {
		must = append(must, c.compile())
	}
	for _, s := range b.scopes {
		must = append(must, s.compile())
	}

	boolDoc := NewDoc()
	if len(must) > 0 {
		boolDoc.Set("must", must)
	}
	setClauses(boolDoc, "must_not", b.group.mustNot)
	setClauses(boolDoc, "should", b.group.should)
	setClauses(boolDoc, "filter", b.group.filter)
	if boolDoc.Len() == 0 {
		return nil
	}
	return NewDoc().Set("bool", boolDoc)
}

// Nested queries are conjunctive in the engine regardless of the
// sub-context they were declared in, so every scope compiles into the
// outer must sequence.
func (s *nestedScope) compile() *Doc {
	boolDoc := NewDoc()
	setClauses(boolDoc, "must", s.group.must)
	setClauses(boolDoc, "must_not", s.group.mustNot)
	setClauses(boolDoc, "should", s.group.should)
	setClauses(boolDoc, "filter", s.group.filter)
	return NewDoc().Set("nested", NewDoc().
		Set("path", s.path).
		Set("query", NewDoc().Set("bool", boolDoc)))
}

func (a *AggBuilder) compile() *Doc {
	out := NewDoc()
	for _, name := range a.names {
		node := a.nodes[name]
		d := NewDoc().Set(node.aggType, node.body)
		// a childless bucket omits aggs entirely; an empty aggs map is
		// a schema violation on some engine versions
		if !node.children.empty() {
			d.Set("aggs", node.children.compile())
		}
		out.Set(name, d)
	}
	return out
}

func (s *SuggestBuilder) compile() *Doc {
	out := NewDoc()
	for _, name := range s.names {
		spec := s.specs[name]
		body := NewDoc().Set("field", spec.field)
		foldOpts(body, spec.opts)
		out.Set(name, NewDoc().
			Set("text", spec.text).
			Set(spec.kind, body))
	}
	return out
}

// ---------------------------------------------------------------
// helpers
// ---------------------------------------------------------------

func setClauses(d *Doc, key string, cs []Clause) {
	if len(cs) == 0 {
		return
	}
	out := make([]any, len(cs))
	for i, c := range cs {
		out[i] = c.compile()
	}
	d.Set(key, out)
}

// foldOpts merges caller options into a clause body in sorted key
// order so identical states always marshal to identical bytes.
func foldOpts(d *Doc, opts Opts) {
	keys := maps.Keys(opts)
	slices.Sort(keys)
	for _, k := range keys {
		d.Set(k, opts[k])
	}
}
