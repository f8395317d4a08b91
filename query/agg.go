package query

import "fmt"

// -------------------------------------------------------------------
// AggBuilder – accumulator for one aggregation scope. Registrations
// keep call order; names must be unique within a scope. Bucket nodes
// own their children, reached through Within.
// -------------------------------------------------------------------

type aggNode struct {
	aggType string // "avg", "terms", "date_histogram", …
	body    *Doc   // parameters under the type key
	bucket  bool
	// children is nil for a childless node so the compiled output
	// omits the aggs key entirely; some engine versions reject an
	// empty aggs map.
	children *AggBuilder
}

type AggBuilder struct {
	names []string
	nodes map[string]*aggNode
	err   *error
}

func newAggBuilder(err *error) *AggBuilder {
	return &AggBuilder{nodes: make(map[string]*aggNode), err: err}
}

// ------------
// Metrics
// ------------

func (a *AggBuilder) Avg(name, field string) *AggBuilder   { return a.metric(name, "avg", field) }
func (a *AggBuilder) Sum(name, field string) *AggBuilder   { return a.metric(name, "sum", field) }
func (a *AggBuilder) Min(name, field string) *AggBuilder   { return a.metric(name, "min", field) }
func (a *AggBuilder) Max(name, field string) *AggBuilder   { return a.metric(name, "max", field) }
func (a *AggBuilder) Stats(name, field string) *AggBuilder { return a.metric(name, "stats", field) }
func (a *AggBuilder) ValueCount(name, field string) *AggBuilder {
	return a.metric(name, "value_count", field)
}

// ------------
// Buckets
// ------------

// Terms registers a terms bucket: Terms("by_tag", "tag", q.Opts{"size": 25}).
func (a *AggBuilder) Terms(name, field string, opts Opts) *AggBuilder {
	return a.bucket(name, "terms", field, opts)
}

// DateHistogram registers a date_histogram bucket; interval goes in
// opts (e.g. q.Opts{"calendar_interval": "month"}).
func (a *AggBuilder) DateHistogram(name, field string, opts Opts) *AggBuilder {
	return a.bucket(name, "date_histogram", field, opts)
}

// Histogram registers a numeric histogram bucket with a fixed interval.
func (a *AggBuilder) Histogram(name, field string, interval float64, opts Opts) *AggBuilder {
	node := a.register(name)
	if node == nil {
		return a
	}
	node.aggType = "histogram"
	node.bucket = true
	node.body = NewDoc().Set("field", field).Set("interval", interval)
	foldOpts(node.body, opts)
	return a
}

// RangeBucket registers a range bucket over explicit bounds, one
// Bounds per output bucket.
func (a *AggBuilder) RangeBucket(name, field string, ranges ...Bounds) *AggBuilder {
	node := a.register(name)
	if node == nil {
		return a
	}
	node.aggType = "range"
	node.bucket = true
	rs := make([]any, 0, len(ranges))
	for _, r := range ranges {
		d := NewDoc()
		// the range agg understands from/to, not gte/lte
		if r.GTE != nil {
			d.Set("from", r.GTE)
		}
		if r.LT != nil {
			d.Set("to", r.LT)
		}
		rs = append(rs, d)
	}
	node.body = NewDoc().Set("field", field).Set("ranges", rs)
	return a
}

// Within nests fn's registrations as children of the named bucket.
// The bucket must already be registered in this scope.
func (a *AggBuilder) Within(name string, fn func(*AggBuilder)) *AggBuilder {
	node, ok := a.nodes[name]
	if !ok {
		a.fail(fmt.Errorf("%w: within %q: not registered", ErrInvalidClause, name))
		return a
	}
	if !node.bucket {
		a.fail(fmt.Errorf("%w: within %q: metric aggregations take no children", ErrInvalidClause, name))
		return a
	}
	if node.children == nil {
		node.children = newAggBuilder(a.err)
	}
	fn(node.children)
	return a
}

func (a *AggBuilder) empty() bool { return a == nil || len(a.names) == 0 }

// ---------------------------------------------------------------
// internals
// ---------------------------------------------------------------

func (a *AggBuilder) metric(name, aggType, field string) *AggBuilder {
	node := a.register(name)
	if node == nil {
		return a
	}
	node.aggType = aggType
	node.body = NewDoc().Set("field", field)
	return a
}

func (a *AggBuilder) bucket(name, aggType, field string, opts Opts) *AggBuilder {
	node := a.register(name)
	if node == nil {
		return a
	}
	node.aggType = aggType
	node.bucket = true
	node.body = NewDoc().Set("field", field)
	foldOpts(node.body, opts)
	return a
}

// register reserves name in this scope, failing the builder on a
// duplicate.
func (a *AggBuilder) register(name string) *aggNode {
	if _, dup := a.nodes[name]; dup {
		a.fail(fmt.Errorf("%w: %q", ErrDuplicateAggregation, name))
		return nil
	}
	node := &aggNode{}
	a.names = append(a.names, name)
	a.nodes[name] = node
	return node
}

func (a *AggBuilder) fail(err error) {
	if *a.err == nil {
		*a.err = err
	}
}
