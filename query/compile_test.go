package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func dsl(t *testing.T, b *Builder) string {
	t.Helper()
	doc, err := b.ToDSL()
	if err != nil {
		t.Fatalf("ToDSL: %v", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(raw)
}

func TestBareLeafNoBoolWrapper(t *testing.T) {
	got := dsl(t, NewSearch("articles").Where(Match("title", "golang", nil)))
	want := `{"query":{"match":{"title":"golang"}}}`
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestTwoPlainClausesPromoteToBool(t *testing.T) {
	got := dsl(t, NewSearch("articles").
		Where(Match("title", "golang", nil)).
		Where(Term("status", "published")))
	want := `{"query":{"bool":{"must":[{"match":{"title":"golang"}},{"term":{"status":"published"}}]}}}`
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestBoolWrapperOnceBoolUsed(t *testing.T) {
	// a single must clause still compiles under bool, no simplification
	got := dsl(t, NewSearch("articles").Must(Term("status", "published")))
	want := `{"query":{"bool":{"must":[{"term":{"status":"published"}}]}}}`
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestBoolGroupOrderAndRouting(t *testing.T) {
	got := dsl(t, NewSearch("articles").
		Filter(Term("status", "published")).
		Should(Match("title", "golang", nil), Match("title", "gopher", nil)).
		MustNot(Exists("deleted_at")).
		Must(Range("views", Bounds{GTE: 100})))
	// fixed sub-key order: must, must_not, should, filter; clause order
	// inside each sequence matches call order
	want := `{"query":{"bool":{` +
		`"must":[{"range":{"views":{"gte":100}}}],` +
		`"must_not":[{"exists":{"field":"deleted_at"}}],` +
		`"should":[{"match":{"title":"golang"}},{"match":{"title":"gopher"}}],` +
		`"filter":[{"term":{"status":"published"}}]}}}`
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestRangeCompile(t *testing.T) {
	got := dsl(t, NewSearch("people").Where(Range("age", Bounds{GTE: 10, LTE: 20})))
	want := `{"query":{"range":{"age":{"gte":10,"lte":20}}}}`
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestMatchOptionsSortedFold(t *testing.T) {
	got := dsl(t, NewSearch("articles").
		Where(Match("title", "golang", Opts{"operator": "and", "fuzziness": "AUTO", "boost": 2})))
	want := `{"query":{"match":{"title":{"query":"golang","boost":2,"fuzziness":"AUTO","operator":"and"}}}}`
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestMultiMatchCompile(t *testing.T) {
	got := dsl(t, NewSearch("articles").
		Where(MultiMatch([]string{"title", "body"}, "golang", nil)))
	want := `{"query":{"multi_match":{"query":"golang","fields":["title","body"]}}}`
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestNestedAppendedAfterMust(t *testing.T) {
	got := dsl(t, NewSearch("articles").
		Must(Term("tag", "tech")).
		Nested("tags", func(g *GroupBuilder) {
			g.Must(Match("tags.name", "x", nil))
		}))
	want := `{"query":{"bool":{"must":[` +
		`{"term":{"tag":"tech"}},` +
		`{"nested":{"path":"tags","query":{"bool":{"must":[{"match":{"tags.name":"x"}}]}}}}]}}}`
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestNestedScopesMergeByPath(t *testing.T) {
	got := dsl(t, NewSearch("articles").
		Nested("tags", func(g *GroupBuilder) { g.Must(Match("tags.name", "x", nil)) }).
		Nested("comments", func(g *GroupBuilder) { g.Must(Term("comments.author", "ann")) }).
		Nested("tags", func(g *GroupBuilder) { g.Filter(Term("tags.kind", "topic")) }))
	want := `{"query":{"bool":{"must":[` +
		`{"nested":{"path":"tags","query":{"bool":{` +
		`"must":[{"match":{"tags.name":"x"}}],` +
		`"filter":[{"term":{"tags.kind":"topic"}}]}}}},` +
		`{"nested":{"path":"comments","query":{"bool":{` +
		`"must":[{"term":{"comments.author":"ann"}}]}}}}]}}}`
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestOrderByLastWriteWins(t *testing.T) {
	got := dsl(t, NewSearch("articles").
		OrderBy("date", Asc).
		OrderBy("views", Desc).
		OrderBy("date", Desc))
	// one entry per field, first-occurrence position, final direction
	want := `{"sort":[{"date":"desc"},{"views":"desc"}]}`
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestPaginateFormula(t *testing.T) {
	got := dsl(t, NewSearch("articles").Paginate(10, 2))
	want := `{"from":10,"size":10}`
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestPaginateFirstPage(t *testing.T) {
	got := dsl(t, NewSearch("articles").Paginate(25, 1))
	want := `{"from":0,"size":25}`
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestPaginateValidation(t *testing.T) {
	cases := []struct {
		name string
		b    *Builder
	}{
		{"zero size", NewSearch("i").Paginate(0, 1)},
		{"negative size", NewSearch("i").Paginate(-5, 1)},
		{"page zero", NewSearch("i").Paginate(10, 0)},
		{"negative from", NewSearch("i").From(-1)},
		{"negative size direct", NewSearch("i").Size(-1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.b.ToDSL(); !errors.Is(err, ErrInvalidPagination) {
				t.Fatalf("err = %v, want ErrInvalidPagination", err)
			}
		})
	}
}

func TestSizeZeroAllowedDirectly(t *testing.T) {
	got := dsl(t, NewSearch("articles").Size(0))
	want := `{"size":0}`
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestEmptyBuilderCompilesToEmptyDoc(t *testing.T) {
	got := dsl(t, NewSearch("articles"))
	if got != `{}` {
		t.Errorf("got %s, want {}", got)
	}
}

func TestMatchAllCompile(t *testing.T) {
	got := dsl(t, NewSearch("articles").Where(MatchAll()))
	want := `{"query":{"match_all":{}}}`
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestCompileDeterministicAndIdempotent(t *testing.T) {
	b := NewSearch("articles").
		Must(Match("title", "golang", Opts{"fuzziness": "AUTO", "boost": 1.5})).
		Filter(Terms("status", "published", "archived")).
		Nested("tags", func(g *GroupBuilder) { g.Should(Term("tags.name", "go")) }).
		OrderBy("published_at", Desc).
		Paginate(20, 3).
		Aggregate(func(a *AggBuilder) {
			a.Terms("by_tag", "tag", Opts{"size": 10, "min_doc_count": 2})
			a.Within("by_tag", func(c *AggBuilder) { c.Avg("avg_views", "views") })
		}).
		Suggest(func(s *SuggestBuilder) { s.Term("sp", "title", "golnag", nil) })

	first, err := b.ToDSL()
	if err != nil {
		t.Fatalf("first compile: %v", err)
	}
	second, err := b.ToDSL()
	if err != nil {
		t.Fatalf("second compile: %v", err)
	}
	fb, _ := json.Marshal(first)
	sb, _ := json.Marshal(second)
	if !bytes.Equal(fb, sb) {
		t.Errorf("compiles differ:\n%s\n%s", fb, sb)
	}
}

func TestTopLevelKeyOrder(t *testing.T) {
	b := NewSearch("articles").
		Suggest(func(s *SuggestBuilder) { s.Term("sp", "title", "x", nil) }).
		Aggregate(func(a *AggBuilder) { a.Avg("avg_age", "age") }).
		Paginate(10, 1).
		OrderBy("date", Asc).
		Where(MatchAll())
	doc, err := b.ToDSL()
	if err != nil {
		t.Fatalf("ToDSL: %v", err)
	}
	want := []string{"query", "sort", "from", "size", "aggs", "suggest"}
	got := doc.Keys()
	if len(got) != len(want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys = %v, want %v", got, want)
		}
	}
}
