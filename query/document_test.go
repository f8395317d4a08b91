package query

import (
	"encoding/json"
	"testing"
)

func TestDocOrdering(t *testing.T) {
	d := NewDoc().Set("b", 1).Set("a", 2).Set("c", 3)
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"b":1,"a":2,"c":3}`
	if string(raw) != want {
		t.Errorf("got %s, want %s", raw, want)
	}
}

func TestDocOverwriteKeepsPosition(t *testing.T) {
	d := NewDoc().Set("a", 1).Set("b", 2).Set("a", 9)
	raw, _ := json.Marshal(d)
	want := `{"a":9,"b":2}`
	if string(raw) != want {
		t.Errorf("got %s, want %s", raw, want)
	}
	if d.Len() != 2 {
		t.Errorf("len = %d, want 2", d.Len())
	}
}

func TestDocNesting(t *testing.T) {
	d := NewDoc().Set("outer", NewDoc().Set("inner", []any{1, "two"}))
	raw, _ := json.Marshal(d)
	want := `{"outer":{"inner":[1,"two"]}}`
	if string(raw) != want {
		t.Errorf("got %s, want %s", raw, want)
	}
}

func TestDocGet(t *testing.T) {
	d := NewDoc().Set("k", "v")
	if v, ok := d.Get("k"); !ok || v != "v" {
		t.Errorf("Get(k) = %v, %v", v, ok)
	}
	if _, ok := d.Get("missing"); ok {
		t.Error("Get(missing) reported ok")
	}
}
