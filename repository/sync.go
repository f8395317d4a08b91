package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"

	"github.com/manojoshi/esorm/driver"
	"github.com/manojoshi/esorm/index"
	"github.com/manojoshi/esorm/internal"
	"github.com/manojoshi/esorm/query"
	"github.com/manojoshi/esorm/scan"
)

// Repo is the single, reusable admin handle you inject everywhere:
// index lifecycle plus document synchronization.
type Repo struct {
	exec driver.Executor
	log  *zap.Logger
}

type RepoOpt func(*Repo)

// WithLogger enables structured logging of partial bulk failures.
func WithLogger(l *zap.Logger) RepoOpt { return func(r *Repo) { r.log = l } }

// WithConn constructs a Repo from a transport handle.
func WithConn(exec driver.Executor, opts ...RepoOpt) *Repo {
	r := &Repo{exec: exec, log: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

/*───────────────────────────────────────────────────────────────
|  Administrative helpers                                        |
└───────────────────────────────────────────────────────────────*/

// EnsureIndex – thin wrapper over index.AutoCreate with name injected.
func (r *Repo) EnsureIndex(
	ctx context.Context,
	indexName string,
	model any,
	opts ...index.CreateOpt,
) error {
	opts = append(opts, index.WithName(indexName))
	return index.AutoCreate(ctx, r.exec, model, opts...)
}

// DropIndex deletes the index and all documents in it. A missing index
// is not an error.
func (r *Repo) DropIndex(ctx context.Context, indexName string) error {
	_, err := r.exec.Do(ctx, driver.Request{
		Method: http.MethodDelete,
		Path:   "/" + url.PathEscape(indexName),
	})
	var terr *driver.TransportError
	if errors.As(err, &terr) && terr.StatusCode == http.StatusNotFound {
		return nil
	}
	return err
}

/*───────────────────────────────────────────────────────────────
|  Document synchronization                                      |
└───────────────────────────────────────────────────────────────*/

// Save writes one record (`esorm` tags drive field names).
func (r *Repo) Save(ctx context.Context, indexName, id string, record any) error {
	body, err := structToDoc(record).MarshalJSON()
	if err != nil {
		return err
	}
	_, err = r.exec.Do(ctx, driver.Request{
		Method: http.MethodPut,
		Path:   "/" + url.PathEscape(indexName) + "/_doc/" + url.PathEscape(id),
		Body:   body,
	})
	return err
}

// Delete removes one record by id. A missing document is not an error.
func (r *Repo) Delete(ctx context.Context, indexName, id string) error {
	_, err := r.exec.Do(ctx, driver.Request{
		Method: http.MethodDelete,
		Path:   "/" + url.PathEscape(indexName) + "/_doc/" + url.PathEscape(id),
	})
	var terr *driver.TransportError
	if errors.As(err, &terr) && terr.StatusCode == http.StatusNotFound {
		return nil
	}
	return err
}

// SaveBulk writes many records in ONE _bulk call and returns one
// outcome per record, in submission order. Rejected records carry
// their engine diagnostics; retry just scan.Failed(items).
func (r *Repo) SaveBulk(
	ctx context.Context,
	indexName string,
	records []any,
	idFn func(any) string,
) ([]scan.BulkItem, error) {

	if len(records) == 0 {
		return nil, nil
	}

	buf := internal.GetBuffer()
	defer internal.PutBuffer(buf)

	for _, rec := range records {
		action, err := query.NewDoc().
			Set("index", query.NewDoc().
				Set("_index", indexName).
				Set("_id", idFn(rec))).
			MarshalJSON()
		if err != nil {
			return nil, err
		}
		doc, err := structToDoc(rec).MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(action)
		buf.WriteByte('\n')
		buf.Write(doc)
		buf.WriteByte('\n')
	}

	return r.runBulk(ctx, buf.Bytes())
}

// DeleteBulk removes many records in ONE _bulk call. Duplicate ids are
// submitted once.
func (r *Repo) DeleteBulk(
	ctx context.Context,
	indexName string,
	ids []string,
) ([]scan.BulkItem, error) {

	ids = internal.Unique(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	lines := internal.Map(ids, func(id string) *query.Doc {
		return query.NewDoc().Set("delete", query.NewDoc().
			Set("_index", indexName).
			Set("_id", id))
	})

	buf := internal.GetBuffer()
	defer internal.PutBuffer(buf)
	for _, line := range lines {
		b, err := line.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
		buf.WriteByte('\n')
	}

	return r.runBulk(ctx, buf.Bytes())
}

// Reindex pushes a large record set in batches of batchSize, each
// batch one SaveBulk call. Outcomes from all batches are concatenated
// in submission order.
func (r *Repo) Reindex(
	ctx context.Context,
	indexName string,
	records []any,
	idFn func(any) string,
	batchSize int,
) ([]scan.BulkItem, error) {

	if batchSize <= 0 {
		batchSize = 500
	}
	var out []scan.BulkItem
	for _, batch := range internal.Chunk(records, batchSize) {
		items, err := r.SaveBulk(ctx, indexName, batch, idFn)
		if err != nil {
			return out, err
		}
		out = append(out, items...)
	}
	return out, nil
}

func (r *Repo) runBulk(ctx context.Context, ndjson []byte) ([]scan.BulkItem, error) {
	resp, err := r.exec.Do(ctx, driver.Request{
		Method:      http.MethodPost,
		Path:        "/_bulk",
		Body:        ndjson,
		ContentType: "application/x-ndjson",
	})
	if err != nil {
		return nil, err
	}
	items, err := scan.ParseBulk(resp.Body)
	if err != nil {
		return nil, err
	}
	if failed := scan.Failed(items); len(failed) > 0 {
		r.log.Warn("bulk call partially failed",
			zap.Int("submitted", len(items)),
			zap.Int("rejected", len(failed)))
	}
	return items, nil
}

/*───────────────────────────────────────────────────────────────
|  Record marshalling                                            |
└───────────────────────────────────────────────────────────────*/

// structToDoc converts a tagged struct or a map into an ordered Doc so
// bulk payloads stay byte-stable across runs.
func structToDoc(v any) *query.Doc {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}

	out := query.NewDoc()

	// map passed straight through, keys sorted for stable output
	if rv.Kind() == reflect.Map {
		pairs := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			pairs[fmt.Sprint(iter.Key())] = iter.Value().Interface()
		}
		keys := maps.Keys(pairs)
		slices.Sort(keys)
		for _, k := range keys {
			out.Set(k, pairs[k])
		}
		return out
	}

	// struct: use esorm tags, field declaration order
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		tag := f.Tag.Get("esorm")
		if tag == "" || tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		out.Set(name, rv.Field(i).Interface())
	}
	return out
}
