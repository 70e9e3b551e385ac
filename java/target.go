package java

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// FunctionalTypeOf infers the functional interface type a lambda is
// assigned to from its context. Only types with a single abstract method
// are returned.
func (cb *Codebase) FunctionalTypeOf(file *JavaFile, lambda *tree_sitter.Node) (Type, bool) {
	t := cb.targetTypeOf(file, lambda)
	if _, ok := cb.FunctionalMethod(t); !ok {
		return Unknown, false
	}
	return t, true
}

// targetTypeOf is the type the context of expr expects it to have
func (cb *Codebase) targetTypeOf(file *JavaFile, expr *tree_sitter.Node) Type {
	node := expr
	parent := node.Parent()
	for parent != nil && parent.Kind() == "parenthesized_expression" {
		node, parent = parent, parent.Parent()
	}
	if parent == nil {
		return Unknown
	}
	source := file.Source
	switch parent.Kind() {
	case "variable_declarator":
		if !SameNode(parent.ChildByFieldName("value"), node) {
			return Unknown
		}
		decl := parent.Parent()
		if decl == nil {
			return Unknown
		}
		switch decl.Kind() {
		case "local_variable_declaration", "field_declaration", "constant_declaration":
			typeNode := decl.ChildByFieldName("type")
			if typeNode == nil || typeNode.Utf8Text(source) == "var" {
				return Unknown
			}
			t := cb.typeFromNode(typeNode, source, cb.typeScopeAt(file, decl))
			t.Dims += dimensionCount(parent.ChildByFieldName("dimensions"), source)
			return t
		}
	case "assignment_expression":
		if SameNode(parent.ChildByFieldName("right"), node) {
			return cb.TypeOf(file, parent.ChildByFieldName("left"))
		}
	case "return_statement":
		return cb.returnTargetOf(file, parent)
	case "cast_expression":
		return cb.typeFromNode(parent.ChildByFieldName("type"), source, cb.typeScopeAt(file, parent))
	case "ternary_expression":
		if !SameNode(parent.ChildByFieldName("condition"), node) {
			return cb.targetTypeOf(file, parent)
		}
	case "lambda_expression":
		if SameNode(parent.ChildByFieldName("body"), node) {
			if fi, ok := cb.FunctionalTypeOf(file, parent); ok {
				sig, _ := cb.FunctionalMethod(fi)
				return sig.Return
			}
		}
	case "argument_list":
		return cb.argumentTargetOf(file, parent, node)
	}
	return Unknown
}

// returnTargetOf finds the declared result type for a return statement:
// the enclosing method's return type, or the enclosing lambda's SAM result
func (cb *Codebase) returnTargetOf(file *JavaFile, ret *tree_sitter.Node) Type {
	for n := ret.Parent(); n != nil; n = n.Parent() {
		switch n.Kind() {
		case "lambda_expression":
			if fi, ok := cb.FunctionalTypeOf(file, n); ok {
				sig, _ := cb.FunctionalMethod(fi)
				return sig.Return
			}
			return Unknown
		case "method_declaration":
			if m, ok := cb.methods[n.Id()]; ok {
				return m.Return
			}
			return Unknown
		case "class_body", "constructor_declaration":
			return Unknown
		}
	}
	return Unknown
}

// argumentTargetOf is the parameter type a call argument is passed to
func (cb *Codebase) argumentTargetOf(file *JavaFile, args, arg *tree_sitter.Node) Type {
	call := args.Parent()
	if call == nil {
		return Unknown
	}
	index := -1
	all := NamedChildren(args)
	for i, a := range all {
		if SameNode(a, arg) {
			index = i
		}
	}
	if index < 0 {
		return Unknown
	}
	var view *MethodView
	switch call.Kind() {
	case "method_invocation":
		view = cb.resolveCall(fileContext(file), call)
	case "object_creation_expression":
		view = cb.resolveConstructor(fileContext(file), call)
	}
	if view == nil {
		return Unknown
	}
	t := view.ParamType(index, len(all))
	if len(view.Method.TypeParams) > 0 {
		t = eraseMethodTypeVars(t, view.Method.TypeParams)
	}
	return t
}
