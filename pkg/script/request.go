package script

import (
	"net/http"
	"net/url"
	"strings"
)

// Request is the request context handed to a handler.
type Request struct {
	// ID identifies the request in operational logs.
	ID string

	Method string

	// Target is the request target as sent by the client (path and query).
	Target string

	// Href is the absolute URL, resolved against the Host header.
	Href string

	Path       string
	RawQuery   string
	Query      url.Values
	Headers    http.Header
	Host       string
	RemoteAddr string
}

// NewRequest builds the handler request context from an inbound request and
// its resolved URL.
func NewRequest(r *http.Request, u *url.URL, id string) *Request {
	return &Request{
		ID:         id,
		Method:     r.Method,
		Target:     u.RequestURI(),
		Href:       u.String(),
		Path:       u.EscapedPath(),
		RawQuery:   u.RawQuery,
		Query:      u.Query(),
		Headers:    r.Header.Clone(),
		Host:       r.Host,
		RemoteAddr: r.RemoteAddr,
	}
}

// Fields returns the request as plain values. Header names are lower-cased
// and repeated values joined with ", "; only the first value of a repeated
// query parameter is kept.
func (r *Request) Fields() map[string]any {
	query := make(map[string]string, len(r.Query))
	for k, v := range r.Query {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}
	headers := make(map[string]string, len(r.Headers))
	for k, v := range r.Headers {
		headers[strings.ToLower(k)] = strings.Join(v, ", ")
	}
	return map[string]any{
		"id":            r.ID,
		"method":        r.Method,
		"url":           r.Target,
		"href":          r.Href,
		"path":          r.Path,
		"rawQuery":      r.RawQuery,
		"query":         query,
		"headers":       headers,
		"host":          r.Host,
		"remoteAddress": r.RemoteAddr,
	}
}
