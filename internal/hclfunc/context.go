package hclfunc

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// NewEvalContext returns a context with Functions and, when variables is
// non-empty, a `var` object so expressions can say var.stage.
func NewEvalContext(variables map[string]string) *hcl.EvalContext {
	ctx := &hcl.EvalContext{Functions: Functions()}
	if len(variables) == 0 {
		return ctx
	}

	vals := make(map[string]cty.Value, len(variables))
	for k, v := range variables {
		vals[k] = cty.StringVal(v)
	}
	ctx.Variables = map[string]cty.Value{"var": cty.ObjectVal(vals)}
	return ctx
}
