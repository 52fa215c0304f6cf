package engine

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockdir/pkg/accesslog"
	"github.com/getmockd/mockdir/pkg/logging"
	"github.com/getmockd/mockdir/pkg/lookup"
	"github.com/getmockd/mockdir/pkg/script"
)

// countingFS counts every open through it.
type countingFS struct {
	fs.FS
	opens atomic.Int32
}

func (c *countingFS) Open(name string) (fs.File, error) {
	c.opens.Add(1)
	return c.FS.Open(name)
}

// deniedFS fails every stat with a permission error.
type deniedFS struct {
	fstest.MapFS
}

func (d deniedFS) Stat(name string) (fs.FileInfo, error) {
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrPermission}
}

func file(src string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(src)}
}

func newTestHandler(t *testing.T, fsys fs.FS) (http.Handler, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	access := accesslog.New("/mock",
		accesslog.WithOutput(&buf),
		accesslog.WithColor(false),
		accesslog.WithExtensions(".js", ".expr", ".json"),
	)
	h := NewHandler(lookup.New(fsys), script.New(fsys))
	h.SetAccessLog(access)
	h.newID = func() string { return "req-1" }
	return Wrap(h, logging.Nop()), &buf
}

func do(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func assertMockHeaders(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestHandler_StaticFixture(t *testing.T) {
	h, _ := newTestHandler(t, fstest.MapFS{
		"users.json": file(`{"id":1}`),
	})

	rec := do(h, http.MethodGet, "/users")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"id":1}`, rec.Body.String())
	assertMockHeaders(t, rec)
}

func TestHandler_QueryStringIgnoredForLookup(t *testing.T) {
	h, _ := newTestHandler(t, fstest.MapFS{
		"users.json": file(`{"id":1}`),
	})

	rec := do(h, http.MethodGet, "/users?page=2#top")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"id":1}`, rec.Body.String())
}

func TestHandler_MethodSuffix(t *testing.T) {
	h, _ := newTestHandler(t, fstest.MapFS{
		"users_post.js": file(`module.exports = () => "created";`),
	})

	rec := do(h, http.MethodPost, "/users")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "created", rec.Body.String())

	rec = do(h, http.MethodGet, "/users")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
	assertMockHeaders(t, rec)
}

func TestHandler_DynamicWinsOverStatic(t *testing.T) {
	fsys := fstest.MapFS{
		"users.js":   file(`module.exports = () => ({source: "js"});`),
		"users.json": file(`{"source":"json"}`),
	}
	h, _ := newTestHandler(t, fsys)

	rec := do(h, http.MethodGet, "/users")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"source":"js"}`, rec.Body.String())
}

func TestHandler_NearEmptyFixtureIsNull(t *testing.T) {
	h, _ := newTestHandler(t, fstest.MapFS{
		"empty.json": file(""),
		"one.json":   file("x"),
		"ping.json":  file("{}"),
	})

	assert.Equal(t, "null", do(h, http.MethodGet, "/empty").Body.String())
	assert.Equal(t, "null", do(h, http.MethodGet, "/one").Body.String())
	assert.Equal(t, "{}", do(h, http.MethodGet, "/ping").Body.String())
}

func TestHandler_NotFound(t *testing.T) {
	h, buf := newTestHandler(t, fstest.MapFS{})

	rec := do(h, http.MethodDelete, "/users/7")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Contains(t, buf.String(), "DELETE http://example.com/users/7 (Not found: /mock/users/7_delete.{js,expr,json})")
}

func TestHandler_Preflight(t *testing.T) {
	fsys := &countingFS{FS: fstest.MapFS{"users_options.json": file(`{"x":1}`)}}
	h, buf := newTestHandler(t, fsys)

	rec := do(h, http.MethodOptions, "/users")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assertMockHeaders(t, rec)
	assert.Zero(t, fsys.opens.Load())
	assert.Empty(t, buf.String())
}

func TestHandler_Favicon(t *testing.T) {
	paths := []string{"/favicon.ico", "/static/favicon-32x32.png", "/a/b/myfavicon"}

	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			fsys := &countingFS{FS: fstest.MapFS{"favicon.ico.json": file(`{}`)}}
			h, _ := newTestHandler(t, fsys)

			rec := do(h, http.MethodGet, p)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, rec.Body.String())
			assertMockHeaders(t, rec)
			assert.Zero(t, fsys.opens.Load())
		})
	}
}

func TestHandler_ThrowingHandlerFailsOnlyThatRequest(t *testing.T) {
	h, buf := newTestHandler(t, fstest.MapFS{
		"flaky.js": file(`
module.exports = (req) => {
  if (req.query.fail === "1") throw new Error("boom");
  return "fine";
};`),
	})

	rec := do(h, http.MethodGet, "/flaky?fail=1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assertMockHeaders(t, rec)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "handler_error", body["error"])
	assert.Contains(t, body["message"], "boom")
	assert.Contains(t, buf.String(), "(error: ")

	rec = do(h, http.MethodGet, "/flaky")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fine", rec.Body.String())
}

func TestHandler_HandlerStatePersists(t *testing.T) {
	h, _ := newTestHandler(t, fstest.MapFS{
		"counter.js": file(`let n = 0; module.exports = () => ({count: ++n});`),
	})

	for _, want := range []string{`{"count":1}`, `{"count":2}`, `{"count":3}`} {
		rec := do(h, http.MethodGet, "/counter")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, want, rec.Body.String())
	}
}

func TestHandler_RequestReachesHandler(t *testing.T) {
	h, _ := newTestHandler(t, fstest.MapFS{
		"echo_put.js": file(`module.exports = (req) => [req.id, req.method, req.path, req.query.q].join("|");`),
	})

	rec := do(h, http.MethodPut, "/echo?q=hello")
	assert.Equal(t, "req-1|PUT|/echo|hello", rec.Body.String())
}

func TestHandler_ExpressionHandler(t *testing.T) {
	h, _ := newTestHandler(t, fstest.MapFS{
		"status.expr": file(`{"method": method, "ok": true}`),
		"status.json": file(`{"ok":false}`),
	})

	rec := do(h, http.MethodGet, "/status")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"method":"GET","ok":true}`, rec.Body.String())
}

func TestHandler_DotSegmentsResolved(t *testing.T) {
	h, _ := newTestHandler(t, fstest.MapFS{
		"users.json": file(`{"id":1}`),
	})

	rec := do(h, http.MethodGet, "/api/../users")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodGet, "/../../users")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_LookupErrorIs500(t *testing.T) {
	h, buf := newTestHandler(t, deniedFS{fstest.MapFS{}})

	rec := do(h, http.MethodGet, "/users")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "lookup_error")
	assertMockHeaders(t, rec)
	assert.Contains(t, buf.String(), "(error: ")
}

func TestHandler_BadTargetIs400(t *testing.T) {
	h, _ := newTestHandler(t, fstest.MapFS{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RequestURI = "/%zz"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Body.String())
	assertMockHeaders(t, rec)
}

func TestHandler_AccessLogLines(t *testing.T) {
	h, buf := newTestHandler(t, fstest.MapFS{
		"users.json":    file(`{"id":1}`),
		"users_post.js": file(`module.exports = () => "created";`),
	})

	do(h, http.MethodGet, "/users?x=1")
	do(h, http.MethodPost, "/users")

	out := buf.String()
	assert.Contains(t, out, "[ static request]  GET http://example.com/users?x=1 -> /mock/users.json (ok)")
	assert.Contains(t, out, "[dynamic request] POST http://example.com/users -> /mock/users_post.js (ok)")
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}), logging.Nop())

	rec := do(h, http.MethodGet, "/")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "kaboom")
}

func TestRecover_AbortHandlerPropagates(t *testing.T) {
	h := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}), logging.Nop())

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		do(h, http.MethodGet, "/")
	})
}
