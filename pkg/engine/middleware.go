package engine

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/getmockd/mockdir/pkg/httputil"
)

// Wrap builds the middleware chain around handler.
// The order is: recovery -> CORS -> handler
func Wrap(handler http.Handler, log *slog.Logger) http.Handler {
	return Recover(NewCORSMiddleware(handler), log)
}

// Recover turns a panic in next into a 500 response.
func Recover(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel panic value
				panic(rec)
			}
			log.Error("panic serving request",
				"method", r.Method,
				"url", r.RequestURI,
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			httputil.WriteInternalError(w, "internal_error", fmt.Sprint(rec))
		}()
		next.ServeHTTP(w, r)
	})
}
