// CORS middleware for the mock server.

package engine

import (
	"net/http"

	"github.com/getmockd/mockdir/pkg/httputil"
)

// CORSMiddleware sets the permissive CORS headers on every response and
// answers preflight requests itself.
type CORSMiddleware struct {
	handler http.Handler
}

// NewCORSMiddleware wraps handler.
func NewCORSMiddleware(handler http.Handler) *CORSMiddleware {
	return &CORSMiddleware{handler: handler}
}

// ServeHTTP implements the http.Handler interface.
func (m *CORSMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "*")
	h.Set("Content-Type", httputil.ContentTypeJSON)

	if r.Method == http.MethodOptions {
		httputil.WriteEmpty(w, http.StatusOK)
		return
	}

	m.handler.ServeHTTP(w, r)
}
