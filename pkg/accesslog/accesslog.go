// Package accesslog writes the one-line-per-request console log and the
// startup banner.
//
// Lines look like:
//
//	[14:03:07.412]: [dynamic request] POST http://localhost:8085/users -> /srv/mock_data/users_post.js (ok)
//	[14:03:08.001]: [ static request]  GET http://localhost:8085/users -> /srv/mock_data/users.json (ok)
//	[14:03:09.230]:  GET http://localhost:8085/nope (Not found: /srv/mock_data/nope.{js,expr,json})
//
// Timestamps are UTC. Output is colored unless disabled or not a terminal.
package accesslog

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Entry is one request outcome.
type Entry struct {
	Method string

	// URL is the full request URL, query string included.
	URL string

	// Key is the lookup key the request resolved to.
	Key string

	// Found reports whether a mock file matched.
	Found bool

	// Dynamic reports whether the match was a handler rather than a fixture.
	Dynamic bool

	// Ext is the extension of the matched file.
	Ext string

	// Err is set when the matched file could not be served.
	Err error
}

// Logger writes access log lines. It is safe for concurrent use.
type Logger struct {
	mu   sync.Mutex
	out  io.Writer
	root string
	exts []string
	now  func() time.Time

	ok, fail, method      *color.Color
	title, port, location *color.Color
}

// Option configures a Logger.
type Option func(*Logger)

// WithOutput sets the destination. Defaults to color.Output (stdout).
func WithOutput(w io.Writer) Option {
	return func(l *Logger) {
		l.out = w
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		l.now = now
	}
}

// WithColor forces colors on or off. Without it the fatih/color terminal
// detection (and NO_COLOR) decides.
func WithColor(enabled bool) Option {
	return func(l *Logger) {
		for _, c := range l.colors() {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

// WithExtensions sets the extensions listed on a miss.
func WithExtensions(exts ...string) Option {
	return func(l *Logger) {
		l.exts = exts
	}
}

// New creates a Logger that displays files relative to root.
func New(root string, opts ...Option) *Logger {
	l := &Logger{
		out:      color.Output,
		root:     root,
		exts:     []string{".js", ".json"},
		now:      time.Now,
		ok:       color.New(color.FgYellow),
		fail:     color.New(color.FgRed, color.Bold),
		method:   color.New(color.FgGreen, color.Bold),
		title:    color.New(color.FgWhite, color.Bold),
		port:     color.New(color.FgMagenta),
		location: color.New(color.FgCyan),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Logger) colors() []*color.Color {
	return []*color.Color{l.ok, l.fail, l.method, l.title, l.port, l.location}
}

// Timestamp formats t as HH:MM:SS.mmm in UTC.
func Timestamp(t time.Time) string {
	return t.UTC().Format("15:04:05.000")
}

// Request logs one request outcome.
func (l *Logger) Request(e Entry) {
	ts := Timestamp(l.now())
	method := fmt.Sprintf("%4s", e.Method)
	file := l.file(e.Key)

	var line string
	switch {
	case e.Err != nil:
		line = l.fail.Sprintf("[%s]: %s %s -> %s%s (error: %v)", ts, method, e.URL, file, e.Ext, e.Err)
	case e.Found:
		kind := " static"
		if e.Dynamic {
			kind = "dynamic"
		}
		line = l.ok.Sprintf("[%s]: [%s request] ", ts, kind) +
			l.method.Sprint(method) +
			l.ok.Sprintf(" %s -> %s%s (ok)", e.URL, file, e.Ext)
	default:
		line = l.fail.Sprintf("[%s]: %s %s (Not found: %s%s)", ts, method, e.URL, file, l.candidates())
	}

	l.write(line)
}

// file is the on-disk path of key without its extension. A trailing slash
// is kept so "/users/" shows as ".../users/.json".
func (l *Logger) file(key string) string {
	file := filepath.Join(l.root, filepath.FromSlash(key))
	if strings.HasSuffix(key, "/") && !strings.HasSuffix(file, string(filepath.Separator)) {
		file += string(filepath.Separator)
	}
	return file
}

// candidates renders the miss suffix: ".json" or ".{js,expr,json}".
func (l *Logger) candidates() string {
	if len(l.exts) == 1 {
		return l.exts[0]
	}
	names := make([]string, len(l.exts))
	for i, ext := range l.exts {
		names[i] = strings.TrimPrefix(ext, ".")
	}
	return ".{" + strings.Join(names, ",") + "}"
}

// Started prints the startup banner.
func (l *Logger) Started(public bool, port int) {
	mode := "local"
	if public {
		mode = "public"
	}
	l.write(strings.Join([]string{
		l.title.Sprintf("Started %s mock server", mode),
		l.port.Sprintf("Listening on port %d", port),
		l.location.Sprintf("Serving from %s", l.root),
	}, "\n"))
}

func (l *Logger) write(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.out, line+"\n")
}
