package scan

import (
	"encoding/json"
	"fmt"

	"github.com/manojoshi/esorm/internal"
)

// BulkItem is the outcome of a single record within a _bulk call.
// Err is nil when the engine accepted the record.
type BulkItem struct {
	Action string // "index", "create", "update", "delete"
	Index  string
	ID     string
	Status int
	Err    error
}

// Failed filters a bulk outcome list down to the rejected records, so
// callers can retry just that subset.
func Failed(items []BulkItem) []BulkItem {
	return internal.Filter(items, func(it BulkItem) bool { return it.Err != nil })
}

type bulkReply struct {
	Took   int64                        `json:"took"`
	Errors bool                         `json:"errors"`
	Items  []map[string]json.RawMessage `json:"items"`
}

type bulkItemReply struct {
	Index  string `json:"_index"`
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Error  *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// ParseBulk decodes a raw _bulk reply into one outcome per submitted
// record, in submission order. Partial failure is per-item: the error
// return is reserved for a malformed reply.
func ParseBulk(body []byte) ([]BulkItem, error) {
	var reply bulkReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("scan: malformed bulk reply: %w", err)
	}

	out := make([]BulkItem, 0, len(reply.Items))
	for i, entry := range reply.Items {
		// each items entry is a one-key object: {"index": {...}}
		var action string
		var raw json.RawMessage
		for k, v := range entry {
			action, raw = k, v
		}
		if action == "" {
			return nil, fmt.Errorf("scan: bulk item %d: empty entry", i)
		}

		var item bulkItemReply
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("scan: bulk item %d: %w", i, err)
		}
		bi := BulkItem{Action: action, Index: item.Index, ID: item.ID, Status: item.Status}
		if item.Error != nil {
			bi.Err = fmt.Errorf("scan: bulk %s %s: %s: %s", action, item.ID, item.Error.Type, item.Error.Reason)
		}
		out = append(out, bi)
	}
	return out, nil
}
