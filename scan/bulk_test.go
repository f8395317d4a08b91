package scan

import "testing"

const bulkReplyJSON = `{
	"took": 30,
	"errors": true,
	"items": [
		{"index": {"_index": "people", "_id": "1", "status": 201}},
		{"index": {"_index": "people", "_id": "2", "status": 400,
		 "error": {"type": "mapper_parsing_exception", "reason": "failed to parse field [age]"}}},
		{"delete": {"_index": "people", "_id": "3", "status": 200}}
	]
}`

func TestParseBulkPerItemOutcomes(t *testing.T) {
	items, err := ParseBulk([]byte(bulkReplyJSON))
	if err != nil {
		t.Fatalf("ParseBulk: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}

	if items[0].Action != "index" || items[0].ID != "1" || items[0].Err != nil {
		t.Errorf("item 0 = %+v, want accepted index of id 1", items[0])
	}
	if items[1].Err == nil {
		t.Fatal("item 1 should carry the engine rejection")
	}
	if items[1].Status != 400 {
		t.Errorf("item 1 status = %d, want 400", items[1].Status)
	}
	if items[2].Action != "delete" || items[2].Err != nil {
		t.Errorf("item 2 = %+v, want accepted delete", items[2])
	}
}

func TestFailedSubset(t *testing.T) {
	items, err := ParseBulk([]byte(bulkReplyJSON))
	if err != nil {
		t.Fatalf("ParseBulk: %v", err)
	}
	failed := Failed(items)
	if len(failed) != 1 {
		t.Fatalf("failed = %d, want 1", len(failed))
	}
	if failed[0].ID != "2" {
		t.Errorf("failed id = %s, want 2", failed[0].ID)
	}
}

func TestParseBulkMalformed(t *testing.T) {
	if _, err := ParseBulk([]byte(`{"items": [{}]}`)); err == nil {
		t.Fatal("expected error for empty item entry")
	}
	if _, err := ParseBulk([]byte(`not json`)); err == nil {
		t.Fatal("expected error for malformed body")
	}
}
