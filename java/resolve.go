package java

import (
	"strconv"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// maxOverrideDepth bounds walks over override chains. Chains are acyclic in
// valid code; the cap keeps malformed hierarchies from recursing forever.
const maxOverrideDepth = 32

// FunctionalSignature is the single abstract method of a functional interface
// as seen through a parameterization of that interface
type FunctionalSignature struct {
	Interface Type
	Method    *Method
	Params    []Type
	Return    Type
}

// ResolveCall resolves the method a method_invocation calls
func (cb *Codebase) ResolveCall(file *JavaFile, call *tree_sitter.Node) *Method {
	if view := cb.resolveCall(fileContext(file), call); view != nil {
		return view.Method
	}
	return nil
}

// ResolveConstructedClass resolves the class an object_creation_expression instantiates
func (cb *Codebase) ResolveConstructedClass(file *JavaFile, creation *tree_sitter.Node) *Class {
	typeNode := creation.ChildByFieldName("type")
	if typeNode == nil {
		return nil
	}
	return cb.ClassOf(cb.typeFromNode(typeNode, file.Source, cb.typeScopeAt(file, creation)))
}

// ResolveConstructor resolves the constructor an object_creation_expression invokes
func (cb *Codebase) ResolveConstructor(file *JavaFile, creation *tree_sitter.Node) *Method {
	if view := cb.resolveConstructor(fileContext(file), creation); view != nil {
		return view.Method
	}
	return nil
}

func (cb *Codebase) resolveCall(c exprContext, call *tree_sitter.Node) *MethodView {
	nameNode := call.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := c.text(nameNode)
	obj := call.ChildByFieldName("object")
	var candidates []MethodView
	switch {
	case obj == nil:
		for cls := cb.EnclosingClass(c.file, c.position(call)); cls != nil; cls = cls.Outer {
			if views := cb.findMethods(cls.AsType(), name); len(views) > 0 {
				candidates = views
				break
			}
		}
		if len(candidates) == 0 {
			candidates = cb.staticImports(c.file, name)
		}
	case obj.Kind() == "super":
		if cls := cb.EnclosingClass(c.file, c.position(call)); cls != nil {
			candidates = cb.findMethods(cls.Super, name)
		}
	default:
		if cls := cb.classRef(c, obj); cls != nil {
			candidates = cb.findMethods(cls.AsType(), name)
		} else {
			recv := cb.typeOf(c, obj)
			if recv.IsArray() {
				recv = TypeOfName(objectClass)
			}
			candidates = cb.findMethods(recv, name)
		}
	}
	return cb.selectOverload(c, candidates, argumentNodes(call))
}

func (cb *Codebase) staticImports(file *JavaFile, name string) []MethodView {
	for _, imp := range file.Imports {
		if !imp.Static {
			continue
		}
		owner := imp.Path
		if !imp.OnDemand {
			if !strings.HasSuffix(imp.Path, "."+name) {
				continue
			}
			owner = strings.TrimSuffix(imp.Path, "."+name)
		}
		if cls, ok := cb.classes[owner]; ok {
			if views := cb.findMethods(cls.AsType(), name); len(views) > 0 {
				return views
			}
		}
	}
	return nil
}

func (cb *Codebase) resolveConstructor(c exprContext, creation *tree_sitter.Node) *MethodView {
	t := cb.typeFromNode(creation.ChildByFieldName("type"), c.src, cb.typeScopeAt(c.file, c.position(creation)))
	cls := cb.ClassOf(t)
	if cls == nil {
		return nil
	}
	env := cb.bindings(t)
	var candidates []MethodView
	for _, ctor := range cls.Constructors {
		candidates = append(candidates, MethodView{Method: ctor, Env: env})
	}
	return cb.selectOverload(c, candidates, argumentNodes(creation))
}

// argumentNodes returns the argument expressions of a call, or nil when the
// call has no argument list
func argumentNodes(call *tree_sitter.Node) []*tree_sitter.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	result := NamedChildren(args)
	if result == nil {
		result = []*tree_sitter.Node{}
	}
	return result
}

func arityMatches(m *Method, arity int) bool {
	if len(m.Params) == arity {
		return true
	}
	return m.Varargs && arity >= len(m.Params)-1
}

// selectOverload picks the most specific candidate applicable to the
// arguments. Lambda and method reference arguments only constrain arity.
func (cb *Codebase) selectOverload(c exprContext, candidates []MethodView, args []*tree_sitter.Node) *MethodView {
	if len(candidates) == 0 {
		return nil
	}
	arity := len(args)
	argTypes := make([]Type, arity)
	for i, arg := range args {
		switch arg.Kind() {
		case "lambda_expression", "method_reference":
		default:
			argTypes[i] = cb.typeOf(c, arg)
		}
	}
	applicable := func(v MethodView) bool {
		for i, arg := range args {
			pt := v.ParamType(i, arity)
			switch arg.Kind() {
			case "lambda_expression":
				if !cb.acceptsLambda(pt, lambdaArity(arg)) {
					return false
				}
			case "method_reference":
				if !cb.acceptsLambda(pt, -1) {
					return false
				}
			default:
				if !cb.Assignable(argTypes[i], pt) {
					return false
				}
			}
		}
		return true
	}
	var matching []MethodView
	// fixed arity first, varargs expansion only when nothing else applies
	for _, varargsPhase := range []bool{false, true} {
		for _, v := range candidates {
			fits := len(v.Method.Params) == arity
			if varargsPhase {
				fits = v.Method.Varargs && arityMatches(v.Method, arity)
			}
			if fits && applicable(v) {
				matching = append(matching, v)
			}
		}
		if len(matching) > 0 {
			break
		}
	}
	if len(matching) == 0 {
		var byArity []MethodView
		for _, v := range candidates {
			if arityMatches(v.Method, arity) {
				byArity = append(byArity, v)
			}
		}
		if len(byArity) != 1 {
			return nil
		}
		return &byArity[0]
	}
	best := cb.mostSpecific(matching, arity)
	return &best
}

func (cb *Codebase) mostSpecific(views []MethodView, arity int) MethodView {
	for _, a := range views {
		winner := true
		for _, b := range views {
			if a.Method == b.Method {
				continue
			}
			for i := 0; i < arity; i++ {
				if !cb.Assignable(a.ParamType(i, arity), b.ParamType(i, arity)) {
					winner = false
					break
				}
			}
			if !winner {
				break
			}
		}
		if winner {
			return a
		}
	}
	return views[0]
}

// acceptsLambda reports whether a parameter of type t can take a lambda of
// the given arity; arity -1 accepts any functional interface
func (cb *Codebase) acceptsLambda(t Type, arity int) bool {
	if !t.Known() {
		return true
	}
	sig, ok := cb.FunctionalMethod(t)
	if !ok {
		return cb.ClassOf(t) == nil
	}
	return arity < 0 || len(sig.Params) == arity
}

func lambdaArity(lambda *tree_sitter.Node) int {
	params := lambda.ChildByFieldName("parameters")
	if params == nil {
		return 0
	}
	if params.Kind() == "identifier" {
		return 1
	}
	count := 0
	IterateNamedChildren(params, func(child *tree_sitter.Node) {
		switch child.Kind() {
		case "identifier", "formal_parameter", "spread_parameter":
			count++
		}
	})
	return count
}

// FunctionalMethod finds the single abstract method of functional interface t
func (cb *Codebase) FunctionalMethod(t Type) (FunctionalSignature, bool) {
	cls := cb.ClassOf(t)
	if cls == nil || !cls.IsInterface() {
		return FunctionalSignature{}, false
	}
	var found []MethodView
	implemented := make(map[string]bool)
	visited := make(map[string]bool)
	queue := []Type{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		c := cb.ClassOf(cur)
		if c == nil || visited[c.typeName()] || c.typeName() == objectClass {
			continue
		}
		visited[c.typeName()] = true
		env := cb.bindings(cur)
		for _, m := range c.Methods {
			key := m.Name + "/" + strconv.Itoa(len(m.Params))
			if implemented[key] || isObjectMethod(m) {
				continue
			}
			implemented[key] = true
			if m.IsAbstract() {
				found = append(found, MethodView{Method: m, Env: env})
			}
		}
		queue = append(queue, cb.superTypes(cur)...)
	}
	if len(found) != 1 {
		return FunctionalSignature{}, false
	}
	view := found[0]
	sig := FunctionalSignature{Interface: t, Method: view.Method, Return: view.Return()}
	for i := range view.Method.Params {
		sig.Params = append(sig.Params, view.ParamType(i, len(view.Method.Params)))
	}
	return sig, true
}

func isObjectMethod(m *Method) bool {
	switch {
	case m.Name == "equals" && len(m.Params) == 1:
		return true
	case (m.Name == "hashCode" || m.Name == "toString") && len(m.Params) == 0:
		return true
	}
	return false
}

// SiblingMethods returns the methods named name declared directly in cls
func (cb *Codebase) SiblingMethods(cls *Class, name string) []*Method {
	return cb.declaredMethods(cls, name, -1)
}

// OverriddenMethods returns the deepest super methods m overrides
func (cb *Codebase) OverriddenMethods(m *Method) []*Method {
	return cb.deepestSuperMethods(m, 0)
}

func (cb *Codebase) deepestSuperMethods(m *Method, depth int) []*Method {
	if depth >= maxOverrideDepth || m.Class == nil || m.Constructor || m.IsStatic() || m.Mods&PRIVATE != 0 {
		return nil
	}
	var result []*Method
	seen := make(map[*Method]bool)
	for _, direct := range cb.directSuperMethods(m) {
		deeper := cb.deepestSuperMethods(direct, depth+1)
		if len(deeper) == 0 {
			deeper = []*Method{direct}
		}
		for _, d := range deeper {
			if !seen[d] {
				seen[d] = true
				result = append(result, d)
			}
		}
	}
	return result
}

// directSuperMethods finds, along each super type path, the nearest method m overrides
func (cb *Codebase) directSuperMethods(m *Method) []*Method {
	var result []*Method
	visited := make(map[*Class]bool)
	var visit func(cls *Class)
	visit = func(cls *Class) {
		if visited[cls] {
			return
		}
		visited[cls] = true
		for _, candidate := range cls.Methods {
			if cb.overrides(m, candidate) {
				result = append(result, candidate)
				return
			}
		}
		for _, sup := range cb.directSupers(cls) {
			visit(sup)
		}
	}
	for _, sup := range cb.directSupers(m.Class) {
		visit(sup)
	}
	return result
}

func (cb *Codebase) overrides(m, candidate *Method) bool {
	if candidate.Name != m.Name || len(candidate.Params) != len(m.Params) {
		return false
	}
	if candidate.IsStatic() || candidate.Mods&PRIVATE != 0 || candidate.Constructor {
		return false
	}
	for i := range m.Params {
		a, b := m.Params[i].Type, candidate.Params[i].Type
		if a.Var || b.Var || !a.Known() || !b.Known() {
			continue
		}
		if a.Erasure().CanonicalText() != b.Erasure().CanonicalText() {
			return false
		}
	}
	return true
}

// IsAccessible reports whether member m can be referenced from code in class from
func (cb *Codebase) IsAccessible(m *Method, from *Class) bool {
	if m.Class == nil {
		return true
	}
	if !cb.classAccessible(m.Class, from) {
		return false
	}
	return cb.memberAccessible(m.Class, m.Mods, from)
}

func (cb *Codebase) classAccessible(cls *Class, from *Class) bool {
	for c := cls; c != nil; c = c.Outer {
		switch {
		case c.Anonymous || c.Local:
		case c.Outer == nil:
			if c.Mods&PUBLIC == 0 && (from == nil || from.Package != c.Package) {
				return false
			}
		default:
			if !cb.memberAccessible(c.Outer, c.Mods, from) {
				return false
			}
		}
	}
	return true
}

func (cb *Codebase) memberAccessible(owner *Class, mods modifiers, from *Class) bool {
	switch {
	case mods&PUBLIC != 0:
		return true
	case mods&PRIVATE != 0:
		return from != nil && from.Outermost() == owner.Outermost()
	case from == nil:
		return false
	case from.Package == owner.Package:
		return true
	case mods&PROTECTED != 0:
		for c := from; c != nil; c = c.Outer {
			if cb.IsSubtypeOrSelf(c, owner) {
				return true
			}
		}
	}
	return false
}

// ShortName returns the shortest spelling of a qualified class name that
// still resolves in file: java.lang, same-package and imported classes lose
// their package prefix
func (cb *Codebase) ShortName(file *JavaFile, qualified string) string {
	cls, ok := cb.classes[qualified]
	if !ok || cls.QualifiedName == "" {
		return qualified
	}
	top := cls.Outermost()
	if top.Package == "" {
		return qualified
	}
	short := strings.TrimPrefix(qualified, top.Package+".")
	if top.Package == "java.lang" || top.Package == file.Package {
		return short
	}
	for _, imp := range file.Imports {
		if imp.Static {
			continue
		}
		if (!imp.OnDemand && imp.Path == top.QualifiedName) || (imp.OnDemand && imp.Path == top.Package) {
			return short
		}
	}
	return qualified
}

// ShortenTypeText applies ShortName to every qualified name in a type text
// such as java.util.List<java.lang.String>[]
func (cb *Codebase) ShortenTypeText(file *JavaFile, text string) string {
	sb := strings.Builder{}
	start := -1
	flush := func(end int) {
		if start >= 0 {
			sb.WriteString(cb.ShortName(file, text[start:end]))
			start = -1
		}
	}
	for i, r := range text {
		if r == '.' || r == '_' || r == '$' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
		sb.WriteRune(r)
	}
	flush(len(text))
	return sb.String()
}
