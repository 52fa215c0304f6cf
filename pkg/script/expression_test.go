package script

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpression_Conditional(t *testing.T) {
	fsys := fstest.MapFS{
		"users.expr": jsFile(`method == "POST" ? "created" : "listed"`),
	}
	inv := New(fsys)

	body, err := inv.Invoke(t.Context(), "users.expr", newTestRequest(t, "POST", "/users"))
	require.NoError(t, err)
	assert.Equal(t, "created", string(body))

	body, err = inv.Invoke(t.Context(), "users.expr", getRequest(t))
	require.NoError(t, err)
	assert.Equal(t, "listed", string(body))
}

func TestExpression_MapIsJSON(t *testing.T) {
	fsys := fstest.MapFS{
		"search.expr": jsFile(`{"page": query.page, "test": headers["x-test"], "path": path}`),
	}
	body, err := New(fsys).Invoke(t.Context(), "search.expr", newTestRequest(t, "GET", "/search?page=7"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"page":"7","test":"yes","path":"/search"}`, string(body))
}

func TestExpression_NilIsEmpty(t *testing.T) {
	fsys := fstest.MapFS{"x.expr": jsFile(`nil`)}
	body, err := New(fsys).Invoke(t.Context(), "x.expr", getRequest(t))
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestExpression_CompileError(t *testing.T) {
	fsys := fstest.MapFS{"x.expr": jsFile(`method ==`)}
	_, err := New(fsys).Invoke(t.Context(), "x.expr", getRequest(t))

	var herr *HandlerError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, PhaseLoad, herr.Phase)
}
