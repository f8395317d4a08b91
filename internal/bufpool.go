package internal

import (
	"bytes"
	"sync"
)

// bufPool recycles *bytes.Buffer to minimise GC pressure on the bulk
// fast path, where every call assembles an NDJSON payload. Borrow with
// GetBuffer, return with PutBuffer.
//
//	buf := internal.GetBuffer()
//	defer internal.PutBuffer(buf)
//	buf.Write(line)
var bufPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// GetBuffer fetches a cleared *bytes.Buffer.
func GetBuffer() *bytes.Buffer {
	b := bufPool.Get().(*bytes.Buffer)
	b.Reset()
	return b
}

// PutBuffer returns a buffer to the pool. The caller MUST discard its
// reference afterwards — using it again is a data race.
func PutBuffer(b *bytes.Buffer) { bufPool.Put(b) }
