package web

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"sync"
)

// ResponseWriter wraps http.ResponseWriter. It records status and size,
// runs hooks right before the header is sent, and downgrades error
// statuses to 200 for HTMX requests so the client still swaps the body.
type ResponseWriter struct {
	http.ResponseWriter
	tee         io.Writer
	beforeWrite []func()
	status      int
	size        int64
	mu          sync.Mutex
	written     bool
	isHTMX      bool
}

// NewResponseWriter creates a new ResponseWriter.
func NewResponseWriter(w http.ResponseWriter, isHTMX bool) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		status:         http.StatusOK,
		isHTMX:         isHTMX,
	}
}

// OnBeforeWrite registers a hook to run before the header is sent.
// Hooks run once, in registration order. Hooks registered after the
// header was sent never run.
func (w *ResponseWriter) OnBeforeWrite(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.written {
		return
	}
	w.beforeWrite = append(w.beforeWrite, fn)
}

// begin marks the response as written and runs pending hooks.
// Reports false if the header was already sent.
func (w *ResponseWriter) begin(code int) bool {
	w.mu.Lock()
	if w.written {
		w.mu.Unlock()
		return false
	}
	w.written = true
	w.status = code
	hooks := w.beforeWrite
	w.beforeWrite = nil
	w.mu.Unlock()

	// Hooks may still set headers (cookies), so they run unlocked
	// and before the header is flushed.
	for _, fn := range hooks {
		fn()
	}
	return true
}

// WriteHeader sends the status code. Repeated calls are ignored.
func (w *ResponseWriter) WriteHeader(code int) {
	if !w.begin(code) {
		return
	}
	if w.isHTMX && code >= http.StatusBadRequest {
		code = http.StatusOK
	}
	w.ResponseWriter.WriteHeader(code)
}

// Write writes the body, sending an implicit 200 first if needed.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	if w.begin(http.StatusOK) {
		w.ResponseWriter.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.mu.Lock()
	w.size += int64(n)
	tee := w.tee
	w.mu.Unlock()
	if tee != nil && n > 0 {
		_, _ = tee.Write(b[:n])
	}
	return n, err
}

// Tee copies every body byte written from now on to dst.
func (w *ResponseWriter) Tee(dst io.Writer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tee = dst
}

// Status returns the status code the handler asked for.
func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Size returns the number of body bytes written.
func (w *ResponseWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Written returns true if the header has been sent.
func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Flush implements http.Flusher.
func (w *ResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack implements http.Hijacker.
func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Unwrap returns the underlying ResponseWriter for http.ResponseController.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
