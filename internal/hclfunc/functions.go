// Package hclfunc holds the functions and evaluation contexts available to
// aether.hcl expressions.
package hclfunc

import (
	"os"
	"strings"

	"github.com/gosimple/slug"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// stringFunc lifts a string transform into a one-argument HCL function
func stringFunc(param string, fn func(string) string) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: param, Type: cty.String}},
		Type:   function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			return cty.StringVal(fn(args[0].AsString())), nil
		},
	})
}

// EnvFunc reads an environment variable; unset variables yield "".
//
//	token = env("NPM_TOKEN")
func EnvFunc() function.Function {
	return stringFunc("varname", os.Getenv)
}

// SlugFunc turns arbitrary text into a lowercase, hyphenated slug.
//
//	name = slug("My Shop API")  // "my-shop-api"
func SlugFunc() function.Function {
	return stringFunc("str", slug.Make)
}

// ConcatFunc joins any number of strings, skipping nulls.
//
//	name = concat("shop-", env("STAGE"))
func ConcatFunc() function.Function {
	return function.New(&function.Spec{
		VarParam: &function.Parameter{Name: "values", Type: cty.String, AllowNull: true},
		Type:     function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			var b strings.Builder
			for _, arg := range args {
				if arg.IsNull() {
					continue
				}
				b.WriteString(arg.AsString())
			}
			return cty.StringVal(b.String()), nil
		},
	})
}

// Functions returns every function available in aether.hcl
func Functions() map[string]function.Function {
	return map[string]function.Function{
		"env":    EnvFunc(),
		"lower":  stringFunc("str", strings.ToLower),
		"upper":  stringFunc("str", strings.ToUpper),
		"slug":   SlugFunc(),
		"concat": ConcatFunc(),
	}
}
