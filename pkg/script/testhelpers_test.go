package script

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockdir/pkg/resolve"
)

func newTestRequest(t *testing.T, method, target string) *Request {
	t.Helper()
	r := httptest.NewRequest(method, target, nil)
	r.Header.Set("X-Test", "yes")
	u, err := resolve.Target(r)
	require.NoError(t, err)
	return NewRequest(r, u, "req-1")
}

func jsFile(src string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(src)}
}

func getRequest(t *testing.T) *Request {
	t.Helper()
	return newTestRequest(t, http.MethodGet, "/users")
}
