// Package scan decodes raw engine replies: _search responses into a
// Result wrapper with typed hydration, _bulk responses into per-item
// outcome lists.
package scan

import (
	"encoding/json"
	"fmt"
)

// Result is the decoded _search reply.
type Result struct {
	TookMillis    int64
	TimedOut      bool
	Total         int64
	TotalRelation string // "eq" or "gte"
	MaxScore      float64
	Hits          []Hit
	Aggregations  map[string]json.RawMessage
	Suggest       map[string]json.RawMessage
	ScrollID      string
}

// Hit is one matching document. Source holds the decoded _source body;
// Raw keeps the undecoded bytes for callers that want their own
// unmarshalling.
type Hit struct {
	Index  string
	ID     string
	Score  float64
	Source map[string]any
	Raw    json.RawMessage
}

/*───────────────────────────────
|  Wire shapes                   |
└───────────────────────────────*/

type searchReply struct {
	Took         int64                      `json:"took"`
	TimedOut     bool                       `json:"timed_out"`
	ScrollID     string                     `json:"_scroll_id"`
	Hits         hitsEnvelope               `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
	Suggest      map[string]json.RawMessage `json:"suggest"`
}

type hitsEnvelope struct {
	Total    totalField `json:"total"`
	MaxScore *float64   `json:"max_score"`
	Hits     []hitReply `json:"hits"`
}

type hitReply struct {
	Index  string          `json:"_index"`
	ID     string          `json:"_id"`
	Score  *float64        `json:"_score"`
	Source json.RawMessage `json:"_source"`
}

// totalField absorbs both wire forms: the object {"value":N,
// "relation":"eq"} and the bare number older engines return.
type totalField struct {
	Value    int64
	Relation string
}

func (t *totalField) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '{' {
		var obj struct {
			Value    int64  `json:"value"`
			Relation string `json:"relation"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		t.Value, t.Relation = obj.Value, obj.Relation
		return nil
	}
	t.Relation = "eq"
	return json.Unmarshal(b, &t.Value)
}

/*───────────────────────────────
|  Parsing                       |
└───────────────────────────────*/

// ParseSearch decodes a raw _search reply body.
func ParseSearch(body []byte) (*Result, error) {
	var reply searchReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("scan: malformed search reply: %w", err)
	}

	res := &Result{
		TookMillis:    reply.Took,
		TimedOut:      reply.TimedOut,
		Total:         reply.Hits.Total.Value,
		TotalRelation: reply.Hits.Total.Relation,
		Aggregations:  reply.Aggregations,
		Suggest:       reply.Suggest,
		ScrollID:      reply.ScrollID,
	}
	if reply.Hits.MaxScore != nil {
		res.MaxScore = *reply.Hits.MaxScore
	}

	res.Hits = make([]Hit, len(reply.Hits.Hits))
	for i, h := range reply.Hits.Hits {
		hit := Hit{Index: h.Index, ID: h.ID, Raw: h.Source}
		if h.Score != nil {
			hit.Score = *h.Score
		}
		if len(h.Source) > 0 {
			if err := json.Unmarshal(h.Source, &hit.Source); err != nil {
				return nil, fmt.Errorf("scan: hit %s: malformed _source: %w", h.ID, err)
			}
		}
		res.Hits[i] = hit
	}
	return res, nil
}
