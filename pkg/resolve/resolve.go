package resolve

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
)

// ErrEmptyTarget is returned when a request carries no request target.
var ErrEmptyTarget = errors.New("empty request target")

// faviconMarker is the substring that short-circuits browser icon requests.
const faviconMarker = "favicon"

// Target parses the request target against the request's Host header, the
// same way a browser resolves a relative reference. Dot segments are removed
// as part of the resolution; query and fragment end up in their own fields.
func Target(r *http.Request) (*url.URL, error) {
	raw := r.RequestURI
	if raw == "" && r.URL != nil {
		raw = r.URL.RequestURI()
	}
	if raw == "" {
		return nil, ErrEmptyTarget
	}

	host := r.Host
	if host == "" {
		host = "localhost"
	}

	base, err := url.Parse("http://" + host + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid host %q: %w", host, err)
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid request target %q: %w", raw, err)
	}
	return base.ResolveReference(ref), nil
}

// Pathname returns the escaped path component of u. An empty path is "/".
func Pathname(u *url.URL) string {
	p := u.EscapedPath()
	if p == "" {
		return "/"
	}
	return p
}

// Key derives the lookup key for a method and pathname. The comparison with
// GET is case-sensitive.
func Key(method, pathname string) string {
	if method != http.MethodGet {
		return pathname + "_" + strings.ToLower(method)
	}
	return pathname
}

// IsFavicon reports whether the pathname refers to a favicon anywhere in it.
func IsFavicon(pathname string) bool {
	return strings.Contains(pathname, faviconMarker)
}

// File maps a lookup key and extension to a name inside the mock data root.
// The second result is false when the name could point outside the root
// (".." elements, empty elements) and must be treated as missing.
func File(key, ext string) (string, bool) {
	name := strings.TrimPrefix(key, "/") + ext
	return name, fs.ValidPath(name)
}
