package engine

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/getmockd/mockdir/pkg/accesslog"
	"github.com/getmockd/mockdir/pkg/httputil"
	"github.com/getmockd/mockdir/pkg/logging"
	"github.com/getmockd/mockdir/pkg/lookup"
	"github.com/getmockd/mockdir/pkg/resolve"
	"github.com/getmockd/mockdir/pkg/script"
)

// Error codes in 500 response bodies.
const (
	errCodeLookup  = "lookup_error"
	errCodeHandler = "handler_error"
)

// Handler answers requests from the mock data root.
type Handler struct {
	lookup  *lookup.Engine
	invoker *script.Invoker
	access  *accesslog.Logger
	log     *slog.Logger
	newID   func() string
}

// NewHandler creates a Handler. Access log lines are discarded until
// SetAccessLog is called.
func NewHandler(lk *lookup.Engine, inv *script.Invoker) *Handler {
	return &Handler{
		lookup:  lk,
		invoker: inv,
		log:     logging.Nop(),
		newID:   uuid.NewString,
	}
}

// SetAccessLog sets the console request logger.
func (h *Handler) SetAccessLog(l *accesslog.Logger) {
	h.access = l
}

// SetOperationalLogger sets the operational logger for internal logging.
func (h *Handler) SetOperationalLogger(log *slog.Logger) {
	if log != nil {
		h.log = log
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	target, err := resolve.Target(r)
	if err != nil {
		h.log.Warn("bad request target", "method", r.Method, "target", r.RequestURI, "error", err)
		httputil.WriteEmpty(w, http.StatusBadRequest)
		return
	}

	pathname := resolve.Pathname(target)
	if resolve.IsFavicon(pathname) {
		httputil.WriteEmpty(w, http.StatusOK)
		return
	}

	id := h.newID()
	key := resolve.Key(r.Method, pathname)
	log := h.log.With("request_id", id, "method", r.Method, "key", key)
	entry := accesslog.Entry{Method: r.Method, URL: target.String(), Key: key}

	status := h.serve(w, r, script.NewRequest(r, target, id), log, &entry)

	h.record(entry)
	log.Debug("request served", "status", status, "duration", time.Since(start))
}

// serve resolves the key in entry and writes the response. It returns the
// status written.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, req *script.Request, log *slog.Logger, entry *accesslog.Entry) int {
	out, err := h.lookup.Lookup(r.Context(), entry.Key)
	if err != nil {
		entry.Err = err
		log.Error("lookup failed", "error", err)
		httputil.WriteInternalError(w, errCodeLookup, err.Error())
		return http.StatusInternalServerError
	}

	entry.Found = out.Found()
	entry.Ext = out.Ext

	switch out.Kind {
	case lookup.KindDynamic:
		entry.Dynamic = true
		body, err := h.invoker.Invoke(r.Context(), out.File, req)
		if err != nil {
			entry.Err = err
			log.Error("handler failed", "file", out.File, "error", err, "phase", phaseOf(err))
			httputil.WriteInternalError(w, errCodeHandler, err.Error())
			return http.StatusInternalServerError
		}
		httputil.WriteBody(w, http.StatusOK, body)
		return http.StatusOK

	case lookup.KindStatic:
		httputil.WriteBody(w, http.StatusOK, out.Body)
		return http.StatusOK

	default:
		httputil.WriteEmpty(w, http.StatusNotFound)
		return http.StatusNotFound
	}
}

func (h *Handler) record(e accesslog.Entry) {
	if h.access != nil {
		h.access.Request(e)
	}
}

func phaseOf(err error) string {
	var herr *script.HandlerError
	if errors.As(err, &herr) {
		return string(herr.Phase)
	}
	return ""
}
