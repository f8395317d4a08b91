package query

import "testing"

func TestTermSuggester(t *testing.T) {
	got := dsl(t, NewSearch("articles").Suggest(func(s *SuggestBuilder) {
		s.Term("spellcheck", "title", "golnag", nil)
	}))
	want := `{"suggest":{"spellcheck":{"text":"golnag","term":{"field":"title"}}}}`
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestSuggesterOptionsFold(t *testing.T) {
	got := dsl(t, NewSearch("articles").Suggest(func(s *SuggestBuilder) {
		s.Completion("auto", "title_suggest", "gol", Opts{"skip_duplicates": true, "size": 5})
	}))
	want := `{"suggest":{"auto":{"text":"gol","completion":{"field":"title_suggest","size":5,"skip_duplicates":true}}}}`
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestSuggesterOverwriteLastWriteWins(t *testing.T) {
	got := dsl(t, NewSearch("articles").Suggest(func(s *SuggestBuilder) {
		s.Term("sp", "title", "helo", nil)
		s.Phrase("other", "body", "wrld", nil)
		s.Phrase("sp", "title", "helo wrld", nil) // replaces, keeps position
	}))
	want := `{"suggest":{` +
		`"sp":{"text":"helo wrld","phrase":{"field":"title"}},` +
		`"other":{"text":"wrld","phrase":{"field":"body"}}}}`
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}
