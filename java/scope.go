package java

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// exprContext says where an expression's text lives and which position its
// names are looked up from. at is nil for expressions that are part of the
// file itself; speculative expressions parsed from text carry the position of
// the code they stand in for.
type exprContext struct {
	file *JavaFile
	src  []byte
	at   *tree_sitter.Node
}

func fileContext(file *JavaFile) exprContext {
	return exprContext{file: file, src: file.Source}
}

func (c exprContext) position(node *tree_sitter.Node) *tree_sitter.Node {
	if c.at != nil {
		return c.at
	}
	return node
}

func (c exprContext) text(node *tree_sitter.Node) string {
	return node.Utf8Text(c.src)
}

// EnclosingClass returns the innermost class whose body contains node
func (cb *Codebase) EnclosingClass(file *JavaFile, node *tree_sitter.Node) *Class {
	for n := node; n != nil; n = n.Parent() {
		if !isMemberContainer(n.Kind()) {
			continue
		}
		if cls, ok := cb.byNode[n.Id()]; ok {
			return cls
		}
	}
	return nil
}

// typeScopeAt collects the class and method type parameters visible at node
func (cb *Codebase) typeScopeAt(file *JavaFile, node *tree_sitter.Node) typeScope {
	scope := typeScope{file: file, cls: cb.EnclosingClass(file, node)}
	for n := node; n != nil; n = n.Parent() {
		if isMemberContainer(n.Kind()) {
			break
		}
		switch n.Kind() {
		case "method_declaration", "constructor_declaration":
			if m, ok := cb.methods[n.Id()]; ok {
				scope.typeParams = append(scope.typeParams, m.TypeParams...)
			}
		}
	}
	return scope
}

// ResolveName finds the declaration a simple name refers to at a position
func (cb *Codebase) ResolveName(file *JavaFile, at *tree_sitter.Node, name string) *Variable {
	prev := at
	for n := at.Parent(); n != nil; prev, n = n, n.Parent() {
		if v := cb.declarationIn(file, n, prev, at, name); v != nil {
			return v
		}
	}
	return nil
}

// declarationIn looks for name among the declarations scope node n introduces
// before position at; prev is the child of n on the path to at
func (cb *Codebase) declarationIn(file *JavaFile, n, prev, at *tree_sitter.Node, name string) *Variable {
	source := file.Source
	switch n.Kind() {
	case "block", "constructor_body", "switch_block_statement_group":
		var found *Variable
		IterateNamedChildren(n, func(stmt *tree_sitter.Node) {
			if stmt.StartByte() > prev.StartByte() || stmt.Kind() != "local_variable_declaration" {
				return
			}
			if v := cb.localDeclaration(file, stmt, at, name); v != nil {
				found = v
			}
		})
		return found
	case "for_statement":
		var found *Variable
		IterateNamedChildren(n, func(part *tree_sitter.Node) {
			if part.Kind() == "local_variable_declaration" {
				if v := cb.localDeclaration(file, part, at, name); v != nil {
					found = v
				}
			}
		})
		return found
	case "enhanced_for_statement":
		nameNode := n.ChildByFieldName("name")
		if nameNode != nil && nameNode.Utf8Text(source) == name && SameNode(n.ChildByFieldName("body"), prev) {
			return cb.declaredVariable(file, n, nameNode, n.ChildByFieldName("type"), LocalVariable)
		}
	case "catch_clause":
		if param := FindChildByKind(n, "catch_formal_parameter"); param != nil {
			nameNode := param.ChildByFieldName("name")
			if nameNode != nil && nameNode.Utf8Text(source) == name {
				v := &Variable{Name: name, Kind: ParameterVariable, Node: param, TypeElement: true}
				if ct := FindChildByKind(param, "catch_type"); ct != nil {
					if types := NamedChildren(ct); len(types) == 1 {
						v.Type = cb.typeFromNode(types[0], source, cb.typeScopeAt(file, n))
					}
				}
				return v
			}
		}
	case "try_with_resources_statement":
		if resources := n.ChildByFieldName("resources"); resources != nil {
			var found *Variable
			IterateNamedChildren(resources, func(res *tree_sitter.Node) {
				nameNode := res.ChildByFieldName("name")
				if res.Kind() == "resource" && nameNode != nil && nameNode.Utf8Text(source) == name {
					found = cb.declaredVariable(file, res, nameNode, res.ChildByFieldName("type"), LocalVariable)
				}
			})
			return found
		}
	case "lambda_expression":
		for _, v := range cb.LambdaParameters(file, n) {
			if v.Name == name {
				return v
			}
		}
	case "method_declaration", "constructor_declaration":
		if params := n.ChildByFieldName("parameters"); params != nil {
			var found *Variable
			IterateNamedChildren(params, func(param *tree_sitter.Node) {
				var nameNode, typeNode *tree_sitter.Node
				switch param.Kind() {
				case "formal_parameter":
					nameNode, typeNode = param.ChildByFieldName("name"), param.ChildByFieldName("type")
				case "spread_parameter":
					if decl := FindChildByKind(param, "variable_declarator"); decl != nil {
						nameNode = decl.ChildByFieldName("name")
					}
				}
				if nameNode == nil || nameNode.Utf8Text(source) != name {
					return
				}
				found = &Variable{Name: name, Kind: ParameterVariable, Node: param, TypeElement: true}
				if m, ok := cb.methods[n.Id()]; ok {
					for _, p := range m.Params {
						if p.Name == name {
							found.Type = p.Type
						}
					}
				} else {
					found.Type = cb.typeFromNode(typeNode, source, cb.typeScopeAt(file, n))
				}
			})
			return found
		}
	case "class_body", "interface_body", "enum_body", "record_declaration":
		cls, ok := cb.byNode[n.Id()]
		if !ok {
			return nil
		}
		if f, env := cb.findField(cls.AsType(), name); f != nil {
			return &Variable{
				Name:        name,
				Kind:        FieldVariable,
				Node:        f.Node,
				Type:        substitute(f.Type, env),
				TypeElement: true,
				Field:       f,
			}
		}
	}
	return nil
}

// localDeclaration matches name against the declarators of a
// local_variable_declaration that are complete before position at
func (cb *Codebase) localDeclaration(file *JavaFile, decl, at *tree_sitter.Node, name string) *Variable {
	var found *Variable
	IterateNamedChildren(decl, func(declarator *tree_sitter.Node) {
		if declarator.Kind() != "variable_declarator" {
			return
		}
		nameNode := declarator.ChildByFieldName("name")
		if nameNode == nil || nameNode.Utf8Text(file.Source) != name {
			return
		}
		if declarator.EndByte() > at.StartByte() {
			return
		}
		v := cb.declaredVariable(file, decl, nameNode, decl.ChildByFieldName("type"), LocalVariable)
		v.Node = declarator
		v.Type.Dims += dimensionCount(declarator.ChildByFieldName("dimensions"), file.Source)
		if !v.Type.Known() && !v.Type.Var {
			if value := declarator.ChildByFieldName("value"); value != nil {
				v.Type = cb.TypeOf(file, value)
			}
		}
		found = v
	})
	return found
}

func (cb *Codebase) declaredVariable(file *JavaFile, owner, nameNode, typeNode *tree_sitter.Node, kind VariableKind) *Variable {
	v := &Variable{
		Name: nameNode.Utf8Text(file.Source),
		Kind: kind,
		Node: owner,
	}
	if typeNode != nil && typeNode.Utf8Text(file.Source) != "var" {
		v.TypeElement = true
		v.Type = cb.typeFromNode(typeNode, file.Source, cb.typeScopeAt(file, owner))
	}
	return v
}

// LambdaParameters returns the parameters of a lambda expression in order.
// Parameters without a declared type take their type from the lambda's target.
func (cb *Codebase) LambdaParameters(file *JavaFile, lambda *tree_sitter.Node) []*Variable {
	params := lambda.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	source := file.Source
	var result []*Variable
	switch params.Kind() {
	case "identifier":
		result = append(result, &Variable{Name: params.Utf8Text(source), Kind: ParameterVariable, Node: params})
	case "inferred_parameters":
		IterateNamedChildren(params, func(id *tree_sitter.Node) {
			if id.Kind() == "identifier" {
				result = append(result, &Variable{Name: id.Utf8Text(source), Kind: ParameterVariable, Node: id})
			}
		})
	case "formal_parameters":
		IterateNamedChildren(params, func(param *tree_sitter.Node) {
			if param.Kind() != "formal_parameter" {
				return
			}
			nameNode := param.ChildByFieldName("name")
			if nameNode == nil {
				return
			}
			v := cb.declaredVariable(file, param, nameNode, param.ChildByFieldName("type"), ParameterVariable)
			v.Type.Dims += dimensionCount(param.ChildByFieldName("dimensions"), source)
			result = append(result, v)
		})
	}
	var inferred []Type
	for i, v := range result {
		if v.TypeElement {
			continue
		}
		if inferred == nil {
			inferred = cb.inferredLambdaParamTypes(file, lambda)
		}
		if i < len(inferred) {
			v.Type = inferred[i]
		}
	}
	return result
}

func (cb *Codebase) inferredLambdaParamTypes(file *JavaFile, lambda *tree_sitter.Node) []Type {
	fi, ok := cb.FunctionalTypeOf(file, lambda)
	if !ok {
		return []Type{}
	}
	sig, ok := cb.FunctionalMethod(fi)
	if !ok {
		return []Type{}
	}
	return sig.Params
}

// findField finds a field by name on type t or its super types
func (cb *Codebase) findField(t Type, name string) (*Field, map[string]Type) {
	visited := make(map[string]bool)
	queue := []Type{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		cls := cb.ClassOf(cur)
		if cls == nil || visited[cls.typeName()] {
			continue
		}
		visited[cls.typeName()] = true
		for _, f := range cls.Fields {
			if f.Name == name {
				return f, cb.bindings(cur)
			}
		}
		queue = append(queue, cb.superTypes(cur)...)
	}
	return nil, nil
}

// classRef interprets an expression as a class name, as in Math.max(...) or
// Outer.Inner.CONST, when no variable shadows it
func (cb *Codebase) classRef(c exprContext, node *tree_sitter.Node) *Class {
	if node == nil {
		return nil
	}
	switch node.Kind() {
	case "identifier", "type_identifier":
		name := c.text(node)
		if cb.ResolveName(c.file, c.position(node), name) != nil {
			return nil
		}
		return cb.lookupClass(name, cb.typeScopeAt(c.file, c.position(node)))
	case "field_access", "scoped_identifier", "scoped_type_identifier":
		leftmost := node
		for {
			var next *tree_sitter.Node
			switch leftmost.Kind() {
			case "field_access":
				next = leftmost.ChildByFieldName("object")
			case "scoped_identifier", "scoped_type_identifier":
				if children := NamedChildren(leftmost); len(children) > 0 {
					next = children[0]
				}
			}
			if next == nil {
				break
			}
			leftmost = next
		}
		if leftmost.Kind() != "identifier" && leftmost.Kind() != "type_identifier" {
			return nil
		}
		if cb.ResolveName(c.file, c.position(node), c.text(leftmost)) != nil {
			return nil
		}
		name := strings.Join(strings.Fields(c.text(node)), "")
		return cb.lookupClass(name, cb.typeScopeAt(c.file, c.position(node)))
	case "generic_type":
		return cb.ClassOf(cb.typeFromNode(node, c.src, cb.typeScopeAt(c.file, c.position(node))))
	}
	return nil
}

// TypeOf computes the static type of an expression in file
func (cb *Codebase) TypeOf(file *JavaFile, expr *tree_sitter.Node) Type {
	return cb.typeOf(fileContext(file), expr)
}

func (cb *Codebase) typeOf(c exprContext, node *tree_sitter.Node) Type {
	if node == nil {
		return Unknown
	}
	switch node.Kind() {
	case "parenthesized_expression":
		return cb.typeOf(c, Unparenthesize(node))
	case "identifier":
		if v := cb.ResolveName(c.file, c.position(node), c.text(node)); v != nil {
			return v.Type
		}
	case "this":
		if cls := cb.EnclosingClass(c.file, c.position(node)); cls != nil {
			return cls.AsType()
		}
	case "field_access":
		return cb.fieldAccessType(c, node)
	case "method_invocation":
		if view := cb.resolveCall(c, node); view != nil {
			ret := view.Return()
			if len(view.Method.TypeParams) > 0 {
				return eraseMethodTypeVars(ret, view.Method.TypeParams)
			}
			return ret
		}
	case "object_creation_expression":
		return cb.typeFromNode(node.ChildByFieldName("type"), c.src, cb.typeScopeAt(c.file, c.position(node)))
	case "array_creation_expression":
		t := cb.typeFromNode(node.ChildByFieldName("type"), c.src, cb.typeScopeAt(c.file, c.position(node)))
		t.Dims += arrayCreationDims(node, c.src)
		return t
	case "string_literal", "text_block":
		return TypeOfName("java.lang.String")
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		if strings.HasSuffix(strings.ToLower(c.text(node)), "l") {
			return TypeOfName("long")
		}
		return TypeOfName("int")
	case "decimal_floating_point_literal", "hex_floating_point_literal":
		if strings.HasSuffix(strings.ToLower(c.text(node)), "f") {
			return TypeOfName("float")
		}
		return TypeOfName("double")
	case "true", "false", "instanceof_expression":
		return TypeOfName("boolean")
	case "character_literal":
		return TypeOfName("char")
	case "class_literal":
		return TypeOfName("java.lang.Class")
	case "cast_expression":
		return cb.typeFromNode(node.ChildByFieldName("type"), c.src, cb.typeScopeAt(c.file, c.position(node)))
	case "array_access":
		return cb.typeOf(c, node.ChildByFieldName("array")).Element()
	case "ternary_expression":
		return cb.typeOf(c, node.ChildByFieldName("consequence"))
	case "assignment_expression":
		return cb.typeOf(c, node.ChildByFieldName("left"))
	case "update_expression":
		if children := NamedChildren(node); len(children) == 1 {
			return cb.typeOf(c, children[0])
		}
	case "unary_expression":
		if op := node.ChildByFieldName("operator"); op != nil && c.text(op) == "!" {
			return TypeOfName("boolean")
		}
		return cb.typeOf(c, node.ChildByFieldName("operand"))
	case "binary_expression":
		return cb.binaryType(c, node)
	}
	return Unknown
}

func (cb *Codebase) fieldAccessType(c exprContext, node *tree_sitter.Node) Type {
	obj := node.ChildByFieldName("object")
	field := node.ChildByFieldName("field")
	if obj == nil || field == nil {
		return Unknown
	}
	if field.Kind() == "this" {
		if cls := cb.classRef(c, obj); cls != nil {
			return cls.AsType()
		}
		return Unknown
	}
	name := c.text(field)
	if cls := cb.classRef(c, obj); cls != nil {
		if f, env := cb.findField(cls.AsType(), name); f != nil {
			return substitute(f.Type, env)
		}
		return Unknown
	}
	var recv Type
	if obj.Kind() == "super" {
		if cls := cb.EnclosingClass(c.file, c.position(node)); cls != nil {
			recv = cls.Super
		}
	} else {
		recv = cb.typeOf(c, obj)
	}
	if recv.IsArray() && name == "length" {
		return TypeOfName("int")
	}
	if f, env := cb.findField(recv, name); f != nil {
		return substitute(f.Type, env)
	}
	return Unknown
}

func (cb *Codebase) binaryType(c exprContext, node *tree_sitter.Node) Type {
	op := node.ChildByFieldName("operator")
	if op == nil {
		return Unknown
	}
	switch c.text(op) {
	case "&&", "||", "==", "!=", "<", ">", "<=", ">=":
		return TypeOfName("boolean")
	}
	left := cb.typeOf(c, node.ChildByFieldName("left"))
	right := cb.typeOf(c, node.ChildByFieldName("right"))
	if c.text(op) == "+" && (left.Name == "java.lang.String" || right.Name == "java.lang.String") {
		return TypeOfName("java.lang.String")
	}
	l, r := numericName(left), numericName(right)
	if l == "" || r == "" {
		return Unknown
	}
	if l == "boolean" && r == "boolean" {
		return TypeOfName("boolean")
	}
	result := "int"
	for _, t := range []string{l, r} {
		if numericRank[t] > numericRank[result] {
			result = t
		}
	}
	return TypeOfName(result)
}

func numericName(t Type) string {
	if t.IsPrimitive() {
		return t.Name
	}
	return unbox(t)
}

func eraseMethodTypeVars(t Type, vars []string) Type {
	env := make(map[string]Type, len(vars))
	for _, v := range vars {
		env[v] = Unknown
	}
	return substitute(t, env)
}

// arrayCreationDims counts both sized and unsized dimensions of new T[n][]
func arrayCreationDims(node *tree_sitter.Node, source []byte) int {
	dims := 0
	IterateNamedChildren(node, func(child *tree_sitter.Node) {
		switch child.Kind() {
		case "dimensions_expr":
			dims++
		case "dimensions":
			dims += dimensionCount(child, source)
		}
	})
	return dims
}
