package repository

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/manojoshi/esorm/driver"
	"github.com/manojoshi/esorm/scan"
)

// fakeExec records every request and replays canned responses.
type fakeExec struct {
	requests  []driver.Request
	responses []*driver.Response
	errs      []error
}

func (f *fakeExec) Do(_ context.Context, req driver.Request) (*driver.Response, error) {
	i := len(f.requests)
	f.requests = append(f.requests, req)
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var resp *driver.Response
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	return resp, err
}

func okBulk(ids ...string) *driver.Response {
	var sb strings.Builder
	sb.WriteString(`{"took":1,"errors":false,"items":[`)
	for i, id := range ids {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(`{"index":{"_index":"people","_id":"` + id + `","status":201}}`)
	}
	sb.WriteString(`]}`)
	return &driver.Response{StatusCode: 200, Body: []byte(sb.String())}
}

type personRec struct {
	ID   string `esorm:"id,keyword"`
	Name string `esorm:"name,text"`
	Age  int    `esorm:"age,long"`
}

func TestSaveBulkSingleCallAndPayload(t *testing.T) {
	exec := &fakeExec{responses: []*driver.Response{okBulk("1", "2")}}
	repo := WithConn(exec)

	records := []any{
		personRec{ID: "1", Name: "ann", Age: 34},
		personRec{ID: "2", Name: "bob", Age: 51},
	}
	items, err := repo.SaveBulk(context.Background(), "people", records,
		func(r any) string { return r.(personRec).ID })
	if err != nil {
		t.Fatalf("SaveBulk: %v", err)
	}

	if len(exec.requests) != 1 {
		t.Fatalf("transport calls = %d, want exactly 1", len(exec.requests))
	}
	req := exec.requests[0]
	if req.Method != http.MethodPost || req.Path != "/_bulk" {
		t.Errorf("request = %s %s, want POST /_bulk", req.Method, req.Path)
	}
	if req.ContentType != "application/x-ndjson" {
		t.Errorf("content type = %s", req.ContentType)
	}

	wantBody := `{"index":{"_index":"people","_id":"1"}}` + "\n" +
		`{"id":"1","name":"ann","age":34}` + "\n" +
		`{"index":{"_index":"people","_id":"2"}}` + "\n" +
		`{"id":"2","name":"bob","age":51}` + "\n"
	if string(req.Body) != wantBody {
		t.Errorf("bulk body:\n%s\nwant:\n%s", req.Body, wantBody)
	}

	if len(items) != 2 || items[0].ID != "1" || items[1].ID != "2" {
		t.Errorf("items = %+v", items)
	}
}

func TestSaveBulkPartialFailure(t *testing.T) {
	body := `{"took":2,"errors":true,"items":[
		{"index":{"_index":"people","_id":"1","status":201}},
		{"index":{"_index":"people","_id":"2","status":400,
		 "error":{"type":"mapper_parsing_exception","reason":"bad age"}}}]}`
	exec := &fakeExec{responses: []*driver.Response{{StatusCode: 200, Body: []byte(body)}}}
	repo := WithConn(exec)

	items, err := repo.SaveBulk(context.Background(), "people",
		[]any{personRec{ID: "1"}, personRec{ID: "2"}},
		func(r any) string { return r.(personRec).ID })
	if err != nil {
		t.Fatalf("partial failure must not be an aggregate error, got %v", err)
	}
	failed := scan.Failed(items)
	if len(failed) != 1 || failed[0].ID != "2" {
		t.Errorf("failed subset = %+v, want just id 2", failed)
	}
}

func TestSaveBulkEmptyInputSkipsTransport(t *testing.T) {
	exec := &fakeExec{}
	items, err := WithConn(exec).SaveBulk(context.Background(), "people", nil, nil)
	if err != nil || items != nil {
		t.Errorf("empty input: items=%v err=%v", items, err)
	}
	if len(exec.requests) != 0 {
		t.Errorf("transport called %d times for empty input", len(exec.requests))
	}
}

func TestDeleteBulkDedupesIDs(t *testing.T) {
	exec := &fakeExec{responses: []*driver.Response{okBulk("1", "2")}}
	if _, err := WithConn(exec).DeleteBulk(context.Background(), "people",
		[]string{"1", "2", "1"}); err != nil {
		t.Fatalf("DeleteBulk: %v", err)
	}
	wantBody := `{"delete":{"_index":"people","_id":"1"}}` + "\n" +
		`{"delete":{"_index":"people","_id":"2"}}` + "\n"
	if got := string(exec.requests[0].Body); got != wantBody {
		t.Errorf("body:\n%s\nwant:\n%s", got, wantBody)
	}
}

func TestReindexBatches(t *testing.T) {
	exec := &fakeExec{responses: []*driver.Response{
		okBulk("0", "1"), okBulk("2", "3"), okBulk("4"),
	}}
	repo := WithConn(exec)

	records := make([]any, 5)
	ids := []string{"0", "1", "2", "3", "4"}
	for i := range records {
		records[i] = personRec{ID: ids[i]}
	}
	items, err := repo.Reindex(context.Background(), "people", records,
		func(r any) string { return r.(personRec).ID }, 2)
	if err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if len(exec.requests) != 3 {
		t.Errorf("bulk calls = %d, want 3 for 5 records at batch size 2", len(exec.requests))
	}
	if len(items) != 5 {
		t.Errorf("outcomes = %d, want 5", len(items))
	}
	for i, it := range items {
		if it.ID != ids[i] {
			t.Errorf("outcome %d id = %s, want %s (submission order)", i, it.ID, ids[i])
		}
	}
}

func TestDropIndexToleratesMissing(t *testing.T) {
	exec := &fakeExec{errs: []error{
		&driver.TransportError{Method: "DELETE", Path: "/people", StatusCode: http.StatusNotFound},
	}}
	if err := WithConn(exec).DropIndex(context.Background(), "people"); err != nil {
		t.Fatalf("DropIndex on missing index: %v", err)
	}
}

func TestSavePutsDocument(t *testing.T) {
	exec := &fakeExec{responses: []*driver.Response{{StatusCode: 201, Body: []byte(`{}`)}}}
	err := WithConn(exec).Save(context.Background(), "people", "7",
		personRec{ID: "7", Name: "cid", Age: 28})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	req := exec.requests[0]
	if req.Method != http.MethodPut || req.Path != "/people/_doc/7" {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}
	want := `{"id":"7","name":"cid","age":28}`
	if string(req.Body) != want {
		t.Errorf("body = %s, want %s", req.Body, want)
	}
}
