// driver/elastic.go
//
// Thin shim over github.com/elastic/go-elasticsearch/v8 that satisfies
// the esorm Executor interface and adds a few convenience helpers
// (scroll paging, bulk submission, OpenTelemetry spans, slow-request
// logging).
//
// Usage:
//
//	import (
//	    elasticsearch "github.com/elastic/go-elasticsearch/v8"
//	    "github.com/manojoshi/esorm/driver"
//	)
//
//	es, _ := elasticsearch.NewClient(elasticsearch.Config{
//	    Addresses: []string{"http://localhost:9200"},
//	})
//	conn := driver.NewElasticConn(es, driver.WithSlowThreshold(200*time.Millisecond))
//	res, _ := query.NewSearch("articles").Using(conn).Run(ctx)
package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Request is one engine call: an HTTP method, an engine API path and
// an optional body. ContentType defaults to application/json; bulk
// callers override it with application/x-ndjson.
type Request struct {
	Method      string
	Path        string
	Body        []byte
	ContentType string
}

// Response carries the engine's raw reply.
type Response struct {
	StatusCode int
	Body       []byte
}

// Executor is the single transport contract the rest of the library
// depends on. ElasticConn is the production implementation; tests use
// in-memory fakes.
type Executor interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// ElasticConn implements Executor on top of an official client.
type ElasticConn struct {
	client *elasticsearch.Client
	log    *zap.Logger
	slow   time.Duration
}

type ConnOpt func(*ElasticConn)

// WithLogger enables structured request logging. Default is a no-op
// logger.
func WithLogger(l *zap.Logger) ConnOpt { return func(c *ElasticConn) { c.log = l } }

// WithSlowThreshold logs requests slower than d at WARN level.
func WithSlowThreshold(d time.Duration) ConnOpt { return func(c *ElasticConn) { c.slow = d } }

// NewElasticConn wraps an existing go-elasticsearch client.
func NewElasticConn(c *elasticsearch.Client, opts ...ConnOpt) *ElasticConn {
	conn := &ElasticConn{client: c, log: zap.NewNop(), slow: time.Second}
	for _, o := range opts {
		o(conn)
	}
	return conn
}

// Do satisfies the Executor interface.
func (c *ElasticConn) Do(ctx context.Context, req Request) (*Response, error) {
	ctx, span := otel.Tracer("esorm.driver").Start(ctx, "elasticsearch.do")
	defer span.End()

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.Path, bodyReader(req.Body))
	if err != nil {
		return nil, &TransportError{Method: req.Method, Path: req.Path, Err: err}
	}
	if req.Body != nil {
		ct := req.ContentType
		if ct == "" {
			ct = "application/json"
		}
		httpReq.Header.Set("Content-Type", ct)
	}

	start := time.Now()
	httpRes, err := c.client.Perform(httpReq)
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.String("es.method", req.Method),
		attribute.String("es.path", req.Path),
		attribute.Float64("es.duration_ms", float64(elapsed.Milliseconds())),
	)
	if err != nil {
		span.RecordError(err)
		c.log.Error("elasticsearch request failed",
			zap.String("method", req.Method), zap.String("path", req.Path), zap.Error(err))
		return nil, &TransportError{Method: req.Method, Path: req.Path, Err: err}
	}
	defer httpRes.Body.Close()

	body, err := io.ReadAll(httpRes.Body)
	if err != nil {
		span.RecordError(err)
		return nil, &TransportError{Method: req.Method, Path: req.Path, Err: err}
	}
	span.SetAttributes(attribute.Int("es.status", httpRes.StatusCode))

	if elapsed >= c.slow {
		c.log.Warn("slow elasticsearch request",
			zap.String("method", req.Method), zap.String("path", req.Path),
			zap.Duration("elapsed", elapsed))
	}

	if httpRes.StatusCode >= 400 {
		terr := &TransportError{
			Method:     req.Method,
			Path:       req.Path,
			StatusCode: httpRes.StatusCode,
			Payload:    body,
		}
		span.RecordError(terr)
		return nil, terr
	}
	return &Response{StatusCode: httpRes.StatusCode, Body: body}, nil
}

// ----------------------------------------------------------------------------
// Helper APIs – optional but handy
// ----------------------------------------------------------------------------

// Search posts a compiled request body to /<index>/_search.
func (c *ElasticConn) Search(ctx context.Context, index string, body []byte) (*Response, error) {
	return c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/" + url.PathEscape(index) + "/_search",
		Body:   body,
	})
}

// Bulk submits a prepared NDJSON payload to /_bulk.
func (c *ElasticConn) Bulk(ctx context.Context, ndjson []byte) (*Response, error) {
	return c.Do(ctx, Request{
		Method:      http.MethodPost,
		Path:        "/_bulk",
		Body:        ndjson,
		ContentType: "application/x-ndjson",
	})
}

// Scroll opens a scroll cursor for streaming large result sets. Pass
// the returned scroll id to ScrollNext until it yields no more hits.
func (c *ElasticConn) Scroll(
	ctx context.Context, index string, body []byte, keepAlive time.Duration,
) (*Response, error) {
	return c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/" + url.PathEscape(index) + "/_search?scroll=" + keepAliveParam(keepAlive),
		Body:   body,
	})
}

// ScrollNext fetches the next page of an open scroll cursor.
func (c *ElasticConn) ScrollNext(
	ctx context.Context, scrollID string, keepAlive time.Duration,
) (*Response, error) {
	body, err := json.Marshal(map[string]string{
		"scroll":    keepAliveParam(keepAlive),
		"scroll_id": scrollID,
	})
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, Request{Method: http.MethodPost, Path: "/_search/scroll", Body: body})
}

// ClearScroll releases an open scroll cursor early.
func (c *ElasticConn) ClearScroll(ctx context.Context, scrollID string) error {
	body, err := json.Marshal(map[string]string{"scroll_id": scrollID})
	if err != nil {
		return err
	}
	_, err = c.Do(ctx, Request{Method: http.MethodDelete, Path: "/_search/scroll", Body: body})
	return err
}

// ----------------------------------------------------------------------------
// internal helpers
// ----------------------------------------------------------------------------

func bodyReader(b []byte) io.Reader {
	if b == nil {
		return nil
	}
	return bytes.NewReader(b)
}

// keepAliveParam renders a duration in the engine's time-unit syntax
// (whole seconds; Go's "1m0s" form is not accepted).
func keepAliveParam(d time.Duration) string {
	if d <= 0 {
		d = time.Minute
	}
	return strconv.FormatInt(int64(d.Seconds()), 10) + "s"
}
