package java

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

const referenceWrapper = "class LambdaRefHolder { Object ref = %s; }"

// MethodRef is a method reference expression parsed from text and placed,
// for name resolution, at a position in a real file. It owns its parse tree
// and must be closed.
type MethodRef struct {
	Text      string
	File      *JavaFile
	Context   *tree_sitter.Node
	Node      *tree_sitter.Node
	Qualifier *tree_sitter.Node
	Name      string // member name, or "new"
	source    []byte
	tree      *tree_sitter.Tree
}

// ResolveError is raised, as a panic, when the resolver is used in a state it
// cannot answer from. Callers that treat resolution as best effort recover it.
type ResolveError struct {
	Op      string
	Message string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// TargetTypes supplies the functional interface type a speculative method
// reference is checked against
type TargetTypes interface {
	TargetType(ref *MethodRef) (Type, bool)
}

// ParseMethodRef parses text as a method reference that stands in for code at context
func ParseMethodRef(text string, file *JavaFile, context *tree_sitter.Node) (*MethodRef, error) {
	source := []byte(fmt.Sprintf(referenceWrapper, text))
	tree := ParseJava(source)
	if tree == nil {
		return nil, fmt.Errorf("parse method reference %q: parser returned no tree", text)
	}
	root := tree.RootNode()
	if root.HasError() {
		tree.Close()
		return nil, fmt.Errorf("parse method reference %q: syntax error", text)
	}
	var refNode *tree_sitter.Node
	ForEachMatch(root, source, "(method_reference) @ref", func(match *tree_sitter.Node) {
		if refNode == nil {
			refNode = match
		}
	})
	if refNode == nil {
		tree.Close()
		return nil, fmt.Errorf("parse method reference %q: not a method reference", text)
	}
	ref := &MethodRef{
		Text:    text,
		File:    file,
		Context: context,
		Node:    refNode,
		source:  source,
		tree:    tree,
	}
	afterColons := false
	IterateChildren(refNode, func(child *tree_sitter.Node) {
		switch {
		case child.Kind() == "::":
			afterColons = true
		case !afterColons && ref.Qualifier == nil && child.IsNamed():
			ref.Qualifier = child
		case afterColons && child.Kind() == "new":
			ref.Name = "new"
		case afterColons && child.Kind() == "identifier":
			ref.Name = child.Utf8Text(source)
		}
	})
	if ref.Qualifier == nil || ref.Name == "" {
		ref.Close()
		return nil, fmt.Errorf("parse method reference %q: missing qualifier or name", text)
	}
	return ref, nil
}

// Close releases the reference's parse tree
func (r *MethodRef) Close() {
	if r.tree != nil {
		r.tree.Close()
		r.tree = nil
	}
}

func (r *MethodRef) context() exprContext {
	return exprContext{file: r.File, src: r.source, at: r.Context}
}

// ResolveReference resolves a speculative method reference against the
// functional type targets associates with it. It returns the member the
// reference denotes and whether that member is accessible from the reference's position.
func (cb *Codebase) ResolveReference(ref *MethodRef, targets TargetTypes) (*Method, bool) {
	if !cb.linked {
		panic(&ResolveError{Op: "resolve " + ref.Text, Message: "codebase is not linked"})
	}
	if ref.tree == nil {
		panic(&ResolveError{Op: "resolve " + ref.Text, Message: "method reference is closed"})
	}
	fi, ok := targets.TargetType(ref)
	if !ok {
		return nil, false
	}
	sig, ok := cb.FunctionalMethod(fi)
	if !ok {
		return nil, false
	}
	c := ref.context()
	from := cb.EnclosingClass(ref.File, ref.Context)
	var view *MethodView
	if ref.Name == "new" {
		view = cb.resolveConstructorReference(c, ref.Qualifier, sig)
	} else {
		view = cb.resolveMemberReference(c, ref.Qualifier, ref.Name, sig)
	}
	if view == nil {
		return nil, false
	}
	return view.Method, cb.IsAccessible(view.Method, from)
}

// referenceType reads a method reference qualifier as a type, when it names one
func (cb *Codebase) referenceType(c exprContext, q *tree_sitter.Node) (Type, bool) {
	switch q.Kind() {
	case "integral_type", "floating_point_type", "boolean_type", "array_type", "generic_type",
		"scoped_type_identifier", "type_identifier":
		t := cb.typeFromNode(q, c.src, cb.typeScopeAt(c.file, c.position(q)))
		return t, t.Name != ""
	case "identifier", "field_access", "scoped_identifier":
		if cls := cb.classRef(c, q); cls != nil {
			return cls.AsType(), true
		}
	}
	return Unknown, false
}

func (cb *Codebase) resolveConstructorReference(c exprContext, q *tree_sitter.Node, sig FunctionalSignature) *MethodView {
	t, ok := cb.referenceType(c, q)
	if !ok {
		return nil
	}
	if t.IsArray() {
		if len(sig.Params) != 1 || !cb.Assignable(sig.Params[0], TypeOfName("int")) {
			return nil
		}
		if sig.Return.Name != "void" && !cb.Assignable(t, sig.Return) {
			return nil
		}
		return &MethodView{Method: arrayConstructor(t)}
	}
	cls := cb.ClassOf(t)
	if cls == nil || cls.IsInterface() || cls.Mods&ABSTRACT != 0 || cls.Kind == KindEnum {
		return nil
	}
	env := cb.bindings(t)
	var candidates []MethodView
	for _, ctor := range cls.Constructors {
		v := MethodView{Method: ctor, Env: env}
		if arityMatches(ctor, len(sig.Params)) && cb.referenceApplicable(v, sig.Params) {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	best := cb.mostSpecific(candidates, len(sig.Params))
	return &best
}

func arrayConstructor(t Type) *Method {
	return &Method{
		Name:        "new",
		Mods:        PUBLIC,
		Constructor: true,
		Params:      []Param{{Name: "length", Type: TypeOfName("int")}},
		Return:      t,
	}
}

func (cb *Codebase) resolveMemberReference(c exprContext, q *tree_sitter.Node, name string, sig FunctionalSignature) *MethodView {
	n := len(sig.Params)
	var recv Type
	switch {
	case q.Kind() == "super":
		cls := cb.EnclosingClass(c.file, c.at)
		if cls == nil {
			return nil
		}
		recv = cls.Super
	case q.Kind() == "this":
		cls := cb.EnclosingClass(c.file, c.at)
		if cls == nil {
			return nil
		}
		recv = cls.AsType()
	case q.Kind() == "field_access" && q.ChildByFieldName("field") != nil && q.ChildByFieldName("field").Kind() == "this":
		cls := cb.classRef(c, q.ChildByFieldName("object"))
		if cls == nil {
			return nil
		}
		recv = cls.AsType()
	default:
		if t, ok := cb.referenceType(c, q); ok {
			return cb.resolveTypeQualifiedReference(t, name, sig)
		}
		recv = cb.typeOf(c, q)
		if !recv.Known() {
			return nil
		}
	}
	var candidates []MethodView
	for _, v := range cb.findMethods(recv, name) {
		if !v.Method.IsStatic() && arityMatches(v.Method, n) && cb.referenceApplicable(v, sig.Params) && cb.returnCompatible(v, sig) {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	best := cb.mostSpecific(candidates, n)
	return &best
}

// resolveTypeQualifiedReference handles Type::name, where the member is either
// a static method taking every SAM parameter or an instance method invoked on
// the first SAM parameter. Both applying at once is ambiguous.
func (cb *Codebase) resolveTypeQualifiedReference(t Type, name string, sig FunctionalSignature) *MethodView {
	n := len(sig.Params)
	var statics, unbound []MethodView
	for _, v := range cb.findMethods(t, name) {
		m := v.Method
		if !cb.returnCompatible(v, sig) {
			continue
		}
		if m.IsStatic() {
			if arityMatches(m, n) && cb.referenceApplicable(v, sig.Params) {
				statics = append(statics, v)
			}
			continue
		}
		if n >= 1 && arityMatches(m, n-1) && cb.Assignable(sig.Params[0], t) && cb.ArgumentsContained(sig.Params[0], t) && cb.referenceApplicable(v, sig.Params[1:]) {
			unbound = append(unbound, v)
		}
	}
	switch {
	case len(statics) > 0 && len(unbound) > 0:
		return nil
	case len(statics) > 0:
		best := cb.mostSpecific(statics, n)
		return &best
	case len(unbound) > 0:
		best := cb.mostSpecific(unbound, n-1)
		return &best
	}
	return nil
}

func (cb *Codebase) referenceApplicable(v MethodView, params []Type) bool {
	for i, p := range params {
		if !cb.Assignable(p, v.ParamType(i, len(params))) {
			return false
		}
	}
	return true
}

func (cb *Codebase) returnCompatible(v MethodView, sig FunctionalSignature) bool {
	if sig.Return.Name == "void" {
		return true
	}
	ret := v.Return()
	if ret.Name == "void" {
		return false
	}
	return cb.Assignable(ret, sig.Return)
}
