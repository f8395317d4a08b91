// Package query provides a fluent builder for Elasticsearch request
// bodies: leaf clauses, boolean composition, nested scopes,
// aggregations and suggesters, compiled into the query-DSL JSON.
//
//	import q "github.com/manojoshi/esorm/query"
//
//	body, err := q.NewSearch("articles").
//	    Must(q.Match("title", "golang", nil)).
//	    Filter(q.Term("status", "published")).
//	    OrderBy("published_at", q.Desc).
//	    Paginate(20, 1).
//	    ToDSL()
package query

import "strings"

// -------------------------------------------------------------------
// Clause – the leaf query model. Every variant knows how to compile
// itself into a Doc; compile logic lives in compile.go so the nodes
// stay dumb data containers.
// -------------------------------------------------------------------

type Clause interface {
	compile() *Doc
}

// Opts carries engine-specific modifiers (fuzziness, boost, operator…).
// Keys are folded into the clause body in sorted order so compilation
// stays deterministic.
type Opts map[string]any

// Bounds describes the endpoints of a range clause. Nil fields are
// omitted from the compiled document; at least one must be set.
type Bounds struct {
	GTE any
	GT  any
	LTE any
	LT  any
}

func (b Bounds) empty() bool {
	return b.GTE == nil && b.GT == nil && b.LTE == nil && b.LT == nil
}

// ------------
// Leaf factories
// ------------

// Match("title", "golang", q.Opts{"fuzziness": "AUTO"})
//
//	➜ {"match":{"title":{"query":"golang","fuzziness":"AUTO"}}}
//
// With no options the short form {"match":{"title":"golang"}} is used.
func Match(field string, value any, opts Opts) Clause {
	if err := needField("match", field); err != nil {
		return err
	}
	return &match{field, value, opts}
}

// MultiMatch(["title","body"], "golang", nil)
//
//	➜ {"multi_match":{"query":"golang","fields":["title","body"]}}
func MultiMatch(fields []string, value any, opts Opts) Clause {
	if len(fields) == 0 {
		return errClause("multi_match: no fields")
	}
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return errClause("multi_match: empty field name")
		}
	}
	return &multiMatch{fields, value, opts}
}

// Term("status", "published") ➜ {"term":{"status":"published"}}
func Term(field string, value any) Clause {
	if err := needField("term", field); err != nil {
		return err
	}
	return &term{field, value}
}

// Terms("warehouse_id", 12, 15, 18) ➜ {"terms":{"warehouse_id":[12,15,18]}}
func Terms(field string, values ...any) Clause {
	if err := needField("terms", field); err != nil {
		return err
	}
	if len(values) == 0 {
		return errClause("terms: no values for field " + field)
	}
	return &terms{field, values}
}

// Range("age", q.Bounds{GTE: 10, LTE: 20})
//
//	➜ {"range":{"age":{"gte":10,"lte":20}}}
func Range(field string, bounds Bounds, opts ...Opts) Clause {
	if err := needField("range", field); err != nil {
		return err
	}
	if bounds.empty() {
		return errClause("range: no bounds for field " + field)
	}
	var o Opts
	if len(opts) > 0 {
		o = opts[0]
	}
	return &rng{field, bounds, o}
}

// Exists("tags") ➜ {"exists":{"field":"tags"}}
func Exists(field string) Clause {
	if err := needField("exists", field); err != nil {
		return err
	}
	return &exists{field}
}

// Prefix("sku", "WH-") ➜ {"prefix":{"sku":"WH-"}}
func Prefix(field, value string) Clause {
	if err := needField("prefix", field); err != nil {
		return err
	}
	return &prefix{field, value}
}

// Wildcard("email", "*@example.com") ➜ {"wildcard":{"email":"*@example.com"}}
func Wildcard(field, pattern string) Clause {
	if err := needField("wildcard", field); err != nil {
		return err
	}
	return &wildcard{field, pattern}
}

// MatchAll() ➜ {"match_all":{}}
func MatchAll() Clause { return matchAll{} }

// -------------------------------------------------------------------
// internal node types
// -------------------------------------------------------------------

type (
	match struct {
		f    string
		v    any
		opts Opts
	}
	multiMatch struct {
		fs   []string
		v    any
		opts Opts
	}
	term struct {
		f string
		v any
	}
	terms struct {
		f  string
		vs []any
	}
	rng struct {
		f      string
		bounds Bounds
		opts   Opts
	}
	exists   struct{ f string }
	prefix   struct{ f, v string }
	wildcard struct{ f, v string }
	matchAll struct{}
)

func needField(kind, field string) *invalid {
	if strings.TrimSpace(field) == "" {
		return errClause(kind + ": empty field name")
	}
	return nil
}
