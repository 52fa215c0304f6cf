package lookup

import (
	"context"
	"io/fs"
	"log/slog"

	"github.com/getmockd/mockdir/pkg/logging"
)

// Kind classifies a lookup outcome.
type Kind int

// Outcome kinds.
const (
	KindNotFound Kind = iota
	KindDynamic
	KindStatic
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindDynamic:
		return "dynamic"
	case KindStatic:
		return "static"
	default:
		return "not_found"
	}
}

// Outcome is the result of looking up a key.
type Outcome struct {
	Kind Kind

	// Key is the lookup key that produced this outcome.
	Key string

	// File is the matched name inside the mock data root. Empty for KindNotFound.
	File string

	// Ext is the extension of the matched file.
	Ext string

	// Body is the response body of a KindStatic outcome.
	Body []byte
}

// Found reports whether a source matched.
func (o Outcome) Found() bool {
	return o.Kind != KindNotFound
}

// Engine resolves lookup keys against a mock data root.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	fsys    fs.FS
	sources []Source
	log     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSources replaces the default source chain. Sources are tried in order.
func WithSources(sources ...Source) Option {
	return func(e *Engine) {
		e.sources = sources
	}
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// DefaultSources returns the standard chain: JavaScript handler, expression
// handler, static JSON.
func DefaultSources() []Source {
	return []Source{
		Dynamic(".js"),
		Dynamic(".expr"),
		Static(".json"),
	}
}

// New creates an Engine reading from fsys.
func New(fsys fs.FS, opts ...Option) *Engine {
	e := &Engine{
		fsys:    fsys,
		sources: DefaultSources(),
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extensions returns the extensions of the source chain in priority order.
func (e *Engine) Extensions() []string {
	exts := make([]string, 0, len(e.sources))
	for _, s := range e.sources {
		exts = append(exts, s.Ext())
	}
	return exts
}

// Lookup walks the source chain for key and returns the first match.
func (e *Engine) Lookup(ctx context.Context, key string) (Outcome, error) {
	for _, src := range e.sources {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		out, ok, err := src.Find(ctx, e.fsys, key)
		if err != nil {
			e.log.Warn("lookup failed", "key", key, "ext", src.Ext(), "error", err)
			return Outcome{}, err
		}
		if ok {
			e.log.Debug("lookup matched", "key", key, "file", out.File, "kind", out.Kind.String())
			return out, nil
		}
	}
	return Outcome{Kind: KindNotFound, Key: key}, nil
}
