// Package responsewriter records the status and size of HTTP responses
// for logging and metrics middleware.
package responsewriter

import "net/http"

// ResponseWriter wraps an http.ResponseWriter and records the status code
// and the number of body bytes written.
type ResponseWriter struct {
	http.ResponseWriter
	statusCode    int
	bytesWritten  int
	headerWritten bool
}

// Wrap returns w wrapped. An existing wrapper is returned as is so that
// stacked middleware share one record.
func Wrap(w http.ResponseWriter) *ResponseWriter {
	if rw, ok := w.(*ResponseWriter); ok {
		return rw
	}
	return &ResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// WriteHeader records the first status code written.
func (w *ResponseWriter) WriteHeader(statusCode int) {
	if w.headerWritten {
		return
	}
	w.statusCode = statusCode
	w.headerWritten = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += n
	return n, err
}

// Flush forwards to the underlying writer when it supports flushing.
func (w *ResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		if !w.headerWritten {
			w.WriteHeader(http.StatusOK)
		}
		f.Flush()
	}
}

// StatusCode returns the recorded status, 200 if none was written.
func (w *ResponseWriter) StatusCode() int { return w.statusCode }

// BytesWritten returns the number of body bytes written.
func (w *ResponseWriter) BytesWritten() int { return w.bytesWritten }

// Written reports whether the header has been sent.
func (w *ResponseWriter) Written() bool { return w.headerWritten }

// Unwrap supports http.ResponseController.
func (w *ResponseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
