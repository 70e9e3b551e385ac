package methodref

import (
	"github.com/heshanpadmasiri/lambdaref/java"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// passesParameters reports whether the call form hands the lambda parameters
// to the member unchanged
func (a *Analyzer) passesParameters(lambda Lambda, params []*java.Variable, form CallForm, member *java.Method) bool {
	if call, ok := form.(*ConstructorCall); ok && call.Array {
		return a.isSimpleArrayCreation(lambda, params, call)
	}
	return a.isSimpleCall(lambda, params, form, member)
}

// isSimpleArrayCreation reports whether the array creation is new T[p] with p
// the only lambda parameter. Trailing unsized dimensions are allowed; an
// initializer or a second sized dimension is not.
func (a *Analyzer) isSimpleArrayCreation(lambda Lambda, params []*java.Variable, call *ConstructorCall) bool {
	if len(params) != 1 {
		return false
	}
	var sized []*tree_sitter.Node
	initialized := false
	java.IterateNamedChildren(call.Node, func(child *tree_sitter.Node) {
		switch child.Kind() {
		case "dimensions_expr":
			sized = append(sized, child)
		case "array_initializer":
			initialized = true
		}
	})
	if initialized || len(sized) != 1 {
		return false
	}
	length := java.NamedChildren(sized[0])
	if len(length) != 1 {
		return false
	}
	return a.resolvesToParameter(lambda, java.Unparenthesize(length[0]), params[0])
}

// isSimpleCall reports whether the call passes the lambda parameters through
// unchanged: argument i is parameter i+offset, and when the first parameter
// is the receiver the call is made on it
func (a *Analyzer) isSimpleCall(lambda Lambda, params []*java.Variable, form CallForm, member *java.Method) bool {
	args, hasArgList := form.Arguments()
	if !hasArgList {
		return false
	}
	offset := len(params) - member.ParamCount()
	for i, arg := range args {
		index := i + offset
		if index < 0 || index >= len(params) {
			return false
		}
		if !a.resolvesToParameter(lambda, arg, params[index]) {
			return false
		}
	}
	if offset > 0 && !a.resolvesToParameter(lambda, form.Receiver(), params[0]) {
		return false
	}
	return true
}

func (a *Analyzer) resolvesToParameter(lambda Lambda, expr *tree_sitter.Node, param *java.Variable) bool {
	if expr == nil || expr.Kind() != "identifier" {
		return false
	}
	v := a.resolver.ResolveName(lambda.File, expr, expr.Utf8Text(lambda.File.Source))
	return v.Same(param)
}
