package driver

import "fmt"

// TransportError wraps any failure on the path to the engine. Two
// shapes exist: connection failures (the request never got a response,
// StatusCode == 0, Err holds the cause) and engine rejections
// (StatusCode >= 400, Payload holds the engine's diagnostic body
// verbatim so callers can inspect the real reason).
type TransportError struct {
	Method     string
	Path       string
	StatusCode int
	Payload    []byte
	Err        error
}

func (e *TransportError) Error() string {
	if e.Engine() {
		return fmt.Sprintf("driver: %s %s: engine rejected request (status %d): %s",
			e.Method, e.Path, e.StatusCode, e.Payload)
	}
	return fmt.Sprintf("driver: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Engine reports whether the engine itself rejected the request, as
// opposed to the request never completing.
func (e *TransportError) Engine() bool { return e.StatusCode >= 400 }
