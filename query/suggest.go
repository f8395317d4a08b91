package query

// -------------------------------------------------------------------
// SuggestBuilder – accumulator for the suggest section. Suggesters
// are keyed by caller-supplied name; re-registering a name replaces
// the earlier spec but keeps its position.
// -------------------------------------------------------------------

type suggestSpec struct {
	kind  string // "term", "phrase", "completion"
	field string
	text  string
	opts  Opts
}

type SuggestBuilder struct {
	names []string
	specs map[string]*suggestSpec
}

func newSuggestBuilder() *SuggestBuilder {
	return &SuggestBuilder{specs: make(map[string]*suggestSpec)}
}

// Term registers a term suggester (single-token spelling corrections).
func (s *SuggestBuilder) Term(name, field, text string, opts Opts) *SuggestBuilder {
	return s.put(name, &suggestSpec{"term", field, text, opts})
}

// Phrase registers a phrase suggester (whole-phrase corrections).
func (s *SuggestBuilder) Phrase(name, field, text string, opts Opts) *SuggestBuilder {
	return s.put(name, &suggestSpec{"phrase", field, text, opts})
}

// Completion registers a completion suggester over a completion field.
func (s *SuggestBuilder) Completion(name, field, text string, opts Opts) *SuggestBuilder {
	return s.put(name, &suggestSpec{"completion", field, text, opts})
}

func (s *SuggestBuilder) put(name string, spec *suggestSpec) *SuggestBuilder {
	if _, seen := s.specs[name]; !seen {
		s.names = append(s.names, name)
	}
	s.specs[name] = spec
	return s
}

func (s *SuggestBuilder) empty() bool { return s == nil || len(s.names) == 0 }
