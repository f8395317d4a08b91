package scan

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// DecodeSlice hydrates every hit of a Result into T. T can be a struct
// whose fields carry `esorm:"field"` tags, or map[string]any for the
// raw decoded source. The Result is not consumed: calling DecodeSlice
// again yields a fresh slice.
func DecodeSlice[T any](r *Result) ([]T, error) {
	out := make([]T, len(r.Hits))
	for i, h := range r.Hits {
		if err := assign(&out[i], h.Source); err != nil {
			return nil, err
		}
	}
	return out, nil
}

/*───────────────────────────────
|  Struct assignment w/ cache    |
└───────────────────────────────*/

var metaCache sync.Map // reflect.Type → []fieldMeta

type fieldMeta struct {
	name  string
	index []int
	kind  reflect.Kind
}

func assign[T any](ptr *T, src map[string]any) error {
	// fast-path: target is the decoded source itself
	var zero T
	if _, ok := any(zero).(map[string]any); ok {
		*ptr = any(src).(T)
		return nil
	}

	val := reflect.ValueOf(ptr).Elem()
	rt := val.Type()

	metaAny, _ := metaCache.Load(rt)
	if metaAny == nil {
		metaAny = buildMeta(rt)
		metaCache.Store(rt, metaAny)
	}
	for _, fm := range metaAny.([]fieldMeta) {
		raw, ok := src[fm.name]
		if !ok || raw == nil {
			continue
		}
		f := val.FieldByIndex(fm.index)
		switch fm.kind {
		case reflect.String:
			f.SetString(toStr(raw))
		case reflect.Int, reflect.Int64, reflect.Int32:
			if n, ok := toInt64(raw); ok {
				f.SetInt(n)
			}
		case reflect.Float32, reflect.Float64:
			if fl, ok := toFloat64(raw); ok {
				f.SetFloat(fl)
			}
		case reflect.Bool:
			if b, ok := raw.(bool); ok {
				f.SetBool(b)
			} else {
				f.SetBool(strings.EqualFold(toStr(raw), "true"))
			}
		}
	}
	return nil
}

func buildMeta(rt reflect.Type) []fieldMeta {
	out := make([]fieldMeta, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		tag := f.Tag.Get("esorm")
		if tag == "" || tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		out = append(out, fieldMeta{name, f.Index, f.Type.Kind()})
	}
	return out
}

/*───────────────────────────────
|  Small util fns                |
└───────────────────────────────*/

// JSON decoding yields float64 for every number; the coercions below
// bridge that to the struct field's static type.

func toStr(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case int64:
		return t, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case string:
		fl, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return fl, err == nil
	default:
		return 0, false
	}
}
