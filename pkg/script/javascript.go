package script

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/dop251/goja"

	"github.com/getmockd/mockdir/pkg/logging"
)

// The module wrapper keeps the first source line on line 1 so that error
// positions match the file.
const (
	moduleHead = "(function (exports, require, module, __filename, __dirname) {"
	moduleTail = "\n})"
)

// maxCallStackSize caps recursion depth inside a handler runtime.
const maxCallStackSize = 10000

// JavaScriptLoader evaluates ".js" handlers as CommonJS modules, each in its
// own goja runtime.
type JavaScriptLoader struct {
	fsys fs.FS
	log  *slog.Logger
}

// NewJavaScriptLoader returns a loader whose require() resolves relative
// paths inside fsys.
func NewJavaScriptLoader(fsys fs.FS, log *slog.Logger) *JavaScriptLoader {
	if log == nil {
		log = logging.Nop()
	}
	return &JavaScriptLoader{fsys: fsys, log: log}
}

// Load implements Loader.
func (l *JavaScriptLoader) Load(name string, src []byte) (Producer, error) {
	rt := &jsRuntime{
		vm:      goja.New(),
		fsys:    l.fsys,
		log:     l.log.With("handler", name),
		modules: make(map[string]goja.Value),
		loading: make(map[string]bool),
	}
	rt.vm.SetMaxCallStackSize(maxCallStackSize)
	rt.installConsole()

	exports, err := rt.evaluate(name, src)
	if err != nil {
		return nil, err
	}
	fn, err := exportedFunction(exports)
	if err != nil {
		return nil, err
	}
	rt.modules[name] = exports
	return &jsHandler{rt: rt, fn: fn}, nil
}

// jsHandler is a loaded module. A goja runtime is not safe for concurrent
// use, so calls are serialized.
type jsHandler struct {
	mu sync.Mutex
	rt *jsRuntime
	fn goja.Callable
}

// Produce implements Producer.
func (h *jsHandler) Produce(_ context.Context, req *Request) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	v, err := h.fn(goja.Undefined(), h.rt.requestObject(req))
	if err != nil {
		return nil, err
	}
	return h.rt.body(v)
}

type jsRuntime struct {
	vm      *goja.Runtime
	fsys    fs.FS
	log     *slog.Logger
	modules map[string]goja.Value
	loading map[string]bool
}

// evaluate runs src as a CommonJS module and returns module.exports.
func (rt *jsRuntime) evaluate(name string, src []byte) (goja.Value, error) {
	prog, err := goja.Compile(name, moduleHead+string(src)+moduleTail, false)
	if err != nil {
		return nil, err
	}
	wrapperValue, err := rt.vm.RunProgram(prog)
	if err != nil {
		return nil, err
	}
	wrapper, ok := goja.AssertFunction(wrapperValue)
	if !ok {
		return nil, fmt.Errorf("%s: module wrapper is not a function", name)
	}

	dir := path.Dir(name)
	module := rt.vm.NewObject()
	exports := rt.vm.NewObject()
	if err := module.Set("exports", exports); err != nil {
		return nil, err
	}
	_, err = wrapper(goja.Undefined(),
		exports,
		rt.vm.ToValue(rt.requireFrom(dir)),
		module,
		rt.vm.ToValue(name),
		rt.vm.ToValue(dir),
	)
	if err != nil {
		return nil, err
	}
	return module.Get("exports"), nil
}

// exportedFunction picks the handler out of module.exports.
func exportedFunction(exports goja.Value) (goja.Callable, error) {
	if fn, ok := goja.AssertFunction(exports); ok {
		return fn, nil
	}
	if obj, ok := exports.(*goja.Object); ok {
		if fn, ok := goja.AssertFunction(obj.Get("default")); ok {
			return fn, nil
		}
	}
	return nil, ErrNoExport
}

func (rt *jsRuntime) requireFrom(dir string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		target := call.Argument(0).String()
		if !strings.HasPrefix(target, "./") && !strings.HasPrefix(target, "../") {
			panic(rt.vm.NewGoError(fmt.Errorf("%w: %q", ErrUnsupportedRequire, target)))
		}
		v, err := rt.require(path.Join(dir, target))
		if err != nil {
			panic(rt.vm.NewGoError(err))
		}
		return v
	}
}

// require loads a module or JSON file once per runtime.
func (rt *jsRuntime) require(name string) (goja.Value, error) {
	if v, ok := rt.modules[name]; ok {
		return v, nil
	}
	if rt.loading[name] {
		return nil, fmt.Errorf("circular require of %q", name)
	}

	candidates := []string{name}
	switch path.Ext(name) {
	case ".js", ".json":
	default:
		candidates = []string{name + ".js", name + ".json", path.Join(name, "index.js")}
	}

	for _, file := range candidates {
		if !fs.ValidPath(file) {
			return nil, fmt.Errorf("cannot find module %q", name)
		}
		src, err := fs.ReadFile(rt.fsys, file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}

		rt.loading[name] = true
		var v goja.Value
		if path.Ext(file) == ".json" {
			v, err = rt.parseJSON(src)
		} else {
			v, err = rt.evaluate(file, src)
		}
		delete(rt.loading, name)
		if err != nil {
			return nil, err
		}
		rt.modules[name] = v
		return v, nil
	}
	return nil, fmt.Errorf("cannot find module %q", name)
}

func (rt *jsRuntime) jsonMethod(name string) goja.Callable {
	fn, _ := goja.AssertFunction(rt.vm.Get("JSON").ToObject(rt.vm).Get(name))
	return fn
}

func (rt *jsRuntime) parseJSON(src []byte) (goja.Value, error) {
	return rt.jsonMethod("parse")(goja.Undefined(), rt.vm.ToValue(string(src)))
}

func (rt *jsRuntime) installConsole() {
	console := rt.vm.NewObject()
	levels := map[string]slog.Level{
		"log":   slog.LevelInfo,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"debug": slog.LevelDebug,
	}
	for name, level := range levels {
		_ = console.Set(name, func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = arg.String()
			}
			rt.log.Log(context.Background(), level, strings.Join(parts, " "))
			return goja.Undefined()
		})
	}
	_ = rt.vm.Set("console", console)
}

func (rt *jsRuntime) requestObject(req *Request) *goja.Object {
	obj := rt.vm.NewObject()
	for k, v := range req.Fields() {
		if m, ok := v.(map[string]string); ok {
			nested := rt.vm.NewObject()
			for mk, mv := range m {
				_ = nested.Set(mk, mv)
			}
			_ = obj.Set(k, nested)
			continue
		}
		_ = obj.Set(k, v)
	}
	return obj
}

// body converts a handler's return value. Objects, numbers and booleans go
// through JSON.stringify so key order is preserved.
func (rt *jsRuntime) body(v goja.Value) ([]byte, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}

	switch x := v.Export().(type) {
	case string:
		return []byte(x), nil
	case []byte:
		return bytes.Clone(x), nil
	case goja.ArrayBuffer:
		return bytes.Clone(x.Bytes()), nil
	case *goja.Promise:
		switch x.State() {
		case goja.PromiseStateFulfilled:
			return rt.body(x.Result())
		case goja.PromiseStateRejected:
			return nil, fmt.Errorf("%w: %s", ErrRejected, x.Result().String())
		default:
			return nil, ErrPendingPromise
		}
	}

	s, err := rt.jsonMethod("stringify")(goja.Undefined(), v)
	if err != nil {
		return nil, err
	}
	if goja.IsUndefined(s) {
		return nil, nil
	}
	return []byte(s.String()), nil
}
