// Package responsewriter wraps http.ResponseWriter to capture the
// status code and body size for request logging and metrics.
package responsewriter

import "net/http"

// Recorder decorates an http.ResponseWriter, remembering what was
// sent. The zero value is not usable; construct with Wrap.
type Recorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

// Wrap returns a Recorder around w. Status defaults to 200 until a
// handler writes an explicit header.
func Wrap(w http.ResponseWriter) *Recorder {
	return &Recorder{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader records the first status code and forwards it. Later
// calls are dropped, mirroring net/http's superfluous-call behavior
// without the log noise.
func (r *Recorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.status = status
	r.wroteHeader = true
	r.ResponseWriter.WriteHeader(status)
}

// Write forwards the body bytes, counting them. A write before an
// explicit WriteHeader commits the implicit 200.
func (r *Recorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// Status returns the status code sent to the client.
func (r *Recorder) Status() int { return r.status }

// Bytes returns the number of body bytes written so far.
func (r *Recorder) Bytes() int { return r.bytes }

// Unwrap exposes the underlying writer so http.ResponseController can
// reach Flush and SetWriteDeadline on the original.
func (r *Recorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
