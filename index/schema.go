// Package index turns Go structs into Elasticsearch index mappings.
// A single public entry-point, `AutoCreate`, checks whether an index
// exists and creates it if missing.
//
//	type Article struct {
//	    ID          string  `esorm:"id,keyword"`
//	    Title       string  `esorm:"title,text,analyzer=english"`
//	    Views       int64   `esorm:"views,long"`
//	    PublishedAt string  `esorm:"published_at,date"`
//	}
//
//	if err := index.AutoCreate(ctx, conn, Article{},
//	    index.WithName("articles"),
//	    index.WithShards(3),
//	); err != nil {
//	    log.Fatal(err)
//	}
package index

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/manojoshi/esorm/driver"
	"github.com/manojoshi/esorm/internal"
	"github.com/manojoshi/esorm/query"
)

// fieldTypes the tag parser accepts verbatim.
var fieldTypes = []string{
	"text", "keyword", "long", "integer", "short", "double", "float",
	"boolean", "date", "nested", "geo_point", "completion",
}

// ------------------------------------------------------------------
// Options
// ------------------------------------------------------------------

type CreateOpt func(*createCfg)

type createCfg struct {
	name     string
	shards   int
	replicas int
	strict   bool // dynamic: strict
}

func WithName(name string) CreateOpt { return func(c *createCfg) { c.name = name } }
func WithShards(n int) CreateOpt     { return func(c *createCfg) { c.shards = n } }
func WithReplicas(n int) CreateOpt   { return func(c *createCfg) { c.replicas = n } }
func WithDynamicStrict() CreateOpt   { return func(c *createCfg) { c.strict = true } }

// ------------------------------------------------------------------
// Public API
// ------------------------------------------------------------------

// AutoCreate builds a mapping from the supplied struct model and
// creates the index if it does not exist yet. Safe to call on every
// startup.
func AutoCreate(
	ctx context.Context,
	exec driver.Executor,
	model any,
	opts ...CreateOpt,
) error {

	cfg := &createCfg{name: inferIndexName(model)}
	for _, o := range opts {
		o(cfg)
	}

	path := "/" + url.PathEscape(cfg.name)
	if _, err := exec.Do(ctx, driver.Request{Method: http.MethodHead, Path: path}); err == nil {
		return nil // index already exists
	} else if !isNotFound(err) {
		return fmt.Errorf("index: existence check failed: %w", err)
	}

	body, err := BuildCreateBody(model, cfg.shards, cfg.replicas, cfg.strict).MarshalJSON()
	if err != nil {
		return err
	}
	if _, err := exec.Do(ctx, driver.Request{
		Method: http.MethodPut,
		Path:   path,
		Body:   body,
	}); err != nil {
		// a concurrent caller may have won the race
		var terr *driver.TransportError
		if errors.As(err, &terr) && terr.Engine() &&
			strings.Contains(string(terr.Payload), "resource_already_exists_exception") {
			return nil
		}
		return fmt.Errorf("index: create failed: %w", err)
	}
	return nil
}

// BuildCreateBody assembles the full create-index body: optional
// settings plus the mappings derived from struct tags.
func BuildCreateBody(model any, shards, replicas int, strict bool) *query.Doc {
	out := query.NewDoc()

	settings := query.NewDoc()
	if shards > 0 {
		settings.Set("number_of_shards", shards)
	}
	if replicas > 0 {
		settings.Set("number_of_replicas", replicas)
	}
	if settings.Len() > 0 {
		out.Set("settings", settings)
	}

	mappings := query.NewDoc()
	if strict {
		mappings.Set("dynamic", "strict")
	}
	mappings.Set("properties", BuildProperties(model))
	out.Set("mappings", mappings)
	return out
}

// BuildProperties inspects the struct tags (`esorm:"field,type,opt=v"`)
// and returns the properties sub-document, fields in declaration order.
func BuildProperties(model any) *query.Doc {
	rt := reflect.TypeOf(model)
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	props := query.NewDoc()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		tag := f.Tag.Get("esorm")
		if tag == "" || tag == "-" {
			continue
		}
		parts := strings.Split(tag, ",")
		name := parts[0]

		spec := query.NewDoc()
		fieldType := inferFieldType(f.Type)
		for _, attr := range parts[1:] {
			if internal.Contains(fieldTypes, strings.ToLower(attr)) {
				fieldType = strings.ToLower(attr)
				continue
			}
			if k, v, ok := strings.Cut(attr, "="); ok {
				spec.Set(k, coerceAttr(v))
			}
		}
		// type first, then attributes in tag order
		withType := query.NewDoc().Set("type", fieldType)
		for _, k := range spec.Keys() {
			v, _ := spec.Get(k)
			withType.Set(k, v)
		}
		props.Set(name, withType)
	}
	return props
}

// ------------------------------------------------------------------
// internal helpers
// ------------------------------------------------------------------

func inferFieldType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "text"
	case reflect.Int, reflect.Int32, reflect.Int64, reflect.Int16, reflect.Int8:
		return "long"
	case reflect.Float32, reflect.Float64:
		return "double"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Struct, reflect.Map:
		return "nested"
	default:
		return "keyword"
	}
}

// coerceAttr keeps numeric and boolean attribute values typed so the
// mapping JSON carries `"index": false` rather than `"index": "false"`.
func coerceAttr(v string) any {
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	return v
}

func isNotFound(err error) bool {
	var terr *driver.TransportError
	return errors.As(err, &terr) && terr.StatusCode == http.StatusNotFound
}

// inferIndexName defaults to the struct type name, snake_cased.
func inferIndexName(model any) string {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return snake(t.Name())
}

// snake converts CamelCase to snake_case.
func snake(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			sb.WriteByte('_')
		}
		sb.WriteRune(r)
	}
	return strings.ToLower(sb.String())
}
