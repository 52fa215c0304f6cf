package script

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/getmockd/mockdir/pkg/logging"
)

// Producer computes a response body for a request.
type Producer interface {
	Produce(ctx context.Context, req *Request) ([]byte, error)
}

// Loader turns handler source into a Producer.
type Loader interface {
	Load(name string, src []byte) (Producer, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(name string, src []byte) (Producer, error)

// Load implements Loader.
func (f LoaderFunc) Load(name string, src []byte) (Producer, error) {
	return f(name, src)
}

// Invoker loads handler files from a mock data root and runs them.
type Invoker struct {
	fsys    fs.FS
	loaders map[string]Loader
	log     *slog.Logger

	mu    sync.RWMutex
	cache map[string]Producer
	group singleflight.Group
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithLoader registers a loader for an extension, replacing any default.
func WithLoader(ext string, l Loader) Option {
	return func(inv *Invoker) {
		inv.loaders[ext] = l
	}
}

// WithLogger sets the operational logger. JavaScript console output is
// written to it as well.
func WithLogger(log *slog.Logger) Option {
	return func(inv *Invoker) {
		if log != nil {
			inv.log = log
		}
	}
}

// New creates an Invoker reading handler files from fsys. The ".js" and
// ".expr" loaders are registered unless replaced by WithLoader.
func New(fsys fs.FS, opts ...Option) *Invoker {
	inv := &Invoker{
		fsys:    fsys,
		loaders: make(map[string]Loader),
		log:     logging.Nop(),
		cache:   make(map[string]Producer),
	}
	for _, opt := range opts {
		opt(inv)
	}
	if _, ok := inv.loaders[".js"]; !ok {
		inv.loaders[".js"] = NewJavaScriptLoader(fsys, inv.log)
	}
	if _, ok := inv.loaders[".expr"]; !ok {
		inv.loaders[".expr"] = NewExpressionLoader()
	}
	return inv
}

// Invoke runs the handler in file for req and returns the response body.
func (inv *Invoker) Invoke(ctx context.Context, file string, req *Request) ([]byte, error) {
	p, err := inv.load(file)
	if err != nil {
		return nil, &HandlerError{File: file, Phase: PhaseLoad, Err: err}
	}
	body, err := produce(ctx, p, req)
	if err != nil {
		return nil, &HandlerError{File: file, Phase: PhaseRun, Err: err}
	}
	return body, nil
}

// Loaded returns the number of cached handlers.
func (inv *Invoker) Loaded() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.cache)
}

func (inv *Invoker) cached(file string) (Producer, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	p, ok := inv.cache[file]
	return p, ok
}

// load returns the cached producer for file, loading it once if needed.
// Failed loads are not cached.
func (inv *Invoker) load(file string) (Producer, error) {
	if p, ok := inv.cached(file); ok {
		return p, nil
	}

	v, err, _ := inv.group.Do(file, func() (any, error) {
		if p, ok := inv.cached(file); ok {
			return p, nil
		}

		loader, ok := inv.loaders[path.Ext(file)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoLoader, path.Ext(file))
		}
		src, err := fs.ReadFile(inv.fsys, file)
		if err != nil {
			return nil, err
		}
		p, err := loadSafely(loader, file, src)
		if err != nil {
			return nil, err
		}

		inv.mu.Lock()
		inv.cache[file] = p
		inv.mu.Unlock()

		inv.log.Debug("handler loaded", "file", file)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Producer), nil
}

func loadSafely(l Loader, name string, src []byte) (p Producer, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return l.Load(name, src)
}

func produce(ctx context.Context, p Producer, req *Request) (body []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return p.Produce(ctx, req)
}
