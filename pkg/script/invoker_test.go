package script

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticProducer string

func (p staticProducer) Produce(context.Context, *Request) ([]byte, error) {
	return []byte(p), nil
}

func TestInvoker_ConcurrentFirstRequestsLoadOnce(t *testing.T) {
	var loads atomic.Int32
	release := make(chan struct{})
	loader := LoaderFunc(func(name string, src []byte) (Producer, error) {
		loads.Add(1)
		<-release
		return staticProducer(src), nil
	})
	fsys := fstest.MapFS{"slow.js": jsFile("body")}
	inv := New(fsys, WithLoader(".js", loader))

	req := getRequest(t)
	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body, err := inv.Invoke(context.Background(), "slow.js", req)
			if err == nil {
				results[i] = string(body)
			}
		}(i)
	}
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "body", r)
	}
	assert.Equal(t, int32(1), loads.Load())
	assert.Equal(t, 1, inv.Loaded())
}

func TestInvoker_PanicInProducer(t *testing.T) {
	loader := LoaderFunc(func(name string, src []byte) (Producer, error) {
		return panicProducer{}, nil
	})
	fsys := fstest.MapFS{"p.js": jsFile("x")}
	inv := New(fsys, WithLoader(".js", loader))

	_, err := inv.Invoke(context.Background(), "p.js", getRequest(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPanic)

	var herr *HandlerError
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, PhaseRun, herr.Phase)
}

type panicProducer struct{}

func (panicProducer) Produce(context.Context, *Request) ([]byte, error) {
	panic("kaboom")
}

func TestInvoker_PanicInLoader(t *testing.T) {
	loader := LoaderFunc(func(name string, src []byte) (Producer, error) {
		panic("bad loader")
	})
	fsys := fstest.MapFS{"p.js": jsFile("x")}
	inv := New(fsys, WithLoader(".js", loader))

	_, err := inv.Invoke(context.Background(), "p.js", getRequest(t))
	assert.ErrorIs(t, err, ErrPanic)
	assert.Equal(t, 0, inv.Loaded())
}

func TestInvoker_UnknownExtension(t *testing.T) {
	fsys := fstest.MapFS{"users.py": jsFile("print(1)")}
	_, err := New(fsys).Invoke(context.Background(), "users.py", getRequest(t))
	assert.ErrorIs(t, err, ErrNoLoader)
}

func TestInvoker_MissingFile(t *testing.T) {
	_, err := New(fstest.MapFS{}).Invoke(context.Background(), "gone.js", getRequest(t))
	var herr *HandlerError
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, PhaseLoad, herr.Phase)
}

func TestHandlerError_Message(t *testing.T) {
	err := &HandlerError{File: "users.js", Phase: PhaseRun, Err: errors.New("boom")}
	assert.Equal(t, "run users.js: boom", err.Error())
}

func TestBody(t *testing.T) {
	tests := []struct {
		name     string
		in       any
		expected string
	}{
		{"nil", nil, ""},
		{"string", "created", "created"},
		{"bytes", []byte(`{"a":1}`), `{"a":1}`},
		{"map", map[string]any{"b": 2, "a": 1}, `{"a":1,"b":2}`},
		{"number", 3.5, "3.5"},
		{"bool", true, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Body(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(b))
		})
	}
}

func TestBody_Unencodable(t *testing.T) {
	_, err := Body(make(chan int))
	assert.Error(t, err)
}
