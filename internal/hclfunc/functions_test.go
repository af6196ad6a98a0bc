package hclfunc

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

func evalString(t *testing.T, expr string, ctx *hcl.EvalContext) string {
	t.Helper()
	parsed, diags := hclsyntax.ParseExpression([]byte(expr), "test.hcl", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		t.Fatalf("parse %q: %s", expr, diags.Error())
	}
	val, diags := parsed.Value(ctx)
	if diags.HasErrors() {
		t.Fatalf("eval %q: %s", expr, diags.Error())
	}
	return val.AsString()
}

func TestFunctions(t *testing.T) {
	t.Setenv("AETHER_TEST_STAGE", "Staging")

	tests := []struct {
		name string
		expr string
		want string
	}{
		{"env set", `env("AETHER_TEST_STAGE")`, "Staging"},
		{"env unset", `env("AETHER_TEST_DEFINITELY_UNSET")`, ""},
		{"lower", `lower("HeLLo")`, "hello"},
		{"upper", `upper("hello")`, "HELLO"},
		{"slug", `slug("My Shop API")`, "my-shop-api"},
		{"concat", `concat("shop-", lower(env("AETHER_TEST_STAGE")))`, "shop-staging"},
		{"concat empty", `concat()`, ""},
	}

	ctx := NewEvalContext(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evalString(t, tt.expr, ctx); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.expr, got, tt.want)
			}
		})
	}
}

func TestNewEvalContextVariables(t *testing.T) {
	ctx := NewEvalContext(map[string]string{"stage": "prod"})
	if got := evalString(t, `concat("api-", var.stage)`, ctx); got != "api-prod" {
		t.Errorf("got %q", got)
	}

	if NewEvalContext(nil).Variables != nil {
		t.Error("empty variables should not define var")
	}
}
