package script

import (
	"context"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExpressionLoader compiles ".expr" handlers. The file holds a single
// expression; its result becomes the response body:
//
//	method == "POST" ? {"created": true, "id": query.id} : nil
//
// The environment exposes the same fields as Request.Fields.
type ExpressionLoader struct{}

// NewExpressionLoader returns a loader for expression handlers.
func NewExpressionLoader() *ExpressionLoader {
	return &ExpressionLoader{}
}

// Load implements Loader.
func (l *ExpressionLoader) Load(name string, src []byte) (Producer, error) {
	program, err := expr.Compile(strings.TrimSpace(string(src)),
		expr.Env(expressionEnv()),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	return &expressionHandler{program: program}, nil
}

// expressionEnv is the compile-time shape of the evaluation environment.
func expressionEnv() map[string]any {
	return (&Request{}).Fields()
}

type expressionHandler struct {
	program *vm.Program
}

// Produce implements Producer. Compiled programs are safe to run concurrently.
func (h *expressionHandler) Produce(_ context.Context, req *Request) ([]byte, error) {
	out, err := expr.Run(h.program, req.Fields())
	if err != nil {
		return nil, err
	}
	return Body(out)
}
