package query

// -------------------------------------------------------------------
// BoolGroup – the four clause sequences of a bool query. Both the
// top-level Builder and the scoped GroupBuilder append into one of
// these; compile order is fixed: must, must_not, should, filter.
// -------------------------------------------------------------------

type BoolGroup struct {
	must    []Clause
	mustNot []Clause
	should  []Clause
	filter  []Clause
}

func (g *BoolGroup) empty() bool {
	return len(g.must) == 0 && len(g.mustNot) == 0 &&
		len(g.should) == 0 && len(g.filter) == 0
}

// GroupBuilder is the scoped sink handed to Nested configurators. It
// writes into a BoolGroup owned by the enclosing scope and reports the
// first invalid clause back to the owning builder, so the configurator
// keeps the same error semantics as top-level calls.
type GroupBuilder struct {
	g   *BoolGroup
	err *error
}

func (gb *GroupBuilder) Must(cs ...Clause) *GroupBuilder {
	gb.g.must = gb.append(gb.g.must, cs)
	return gb
}

func (gb *GroupBuilder) MustNot(cs ...Clause) *GroupBuilder {
	gb.g.mustNot = gb.append(gb.g.mustNot, cs)
	return gb
}

func (gb *GroupBuilder) Should(cs ...Clause) *GroupBuilder {
	gb.g.should = gb.append(gb.g.should, cs)
	return gb
}

func (gb *GroupBuilder) Filter(cs ...Clause) *GroupBuilder {
	gb.g.filter = gb.append(gb.g.filter, cs)
	return gb
}

func (gb *GroupBuilder) append(dst []Clause, cs []Clause) []Clause {
	for _, c := range cs {
		if e := clauseErr(c); e != nil {
			if *gb.err == nil {
				*gb.err = e
			}
			continue
		}
		dst = append(dst, c)
	}
	return dst
}
