package methodref

import (
	"github.com/heshanpadmasiri/lambdaref/diagnostics"
	"github.com/heshanpadmasiri/lambdaref/java"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Rewrite returns the edit replacing the lambda with its method reference.
// Class names are shortened where the file can refer to them unqualified, and
// the reference is cast to its functional type when the call the lambda is
// passed to has a competing overload.
func (a *Analyzer) Rewrite(d *Descriptor) diagnostics.Edit {
	file := d.Lambda.File
	short := *d
	short.Qualifier = a.resolver.ShortenTypeText(file, d.Qualifier)
	text := short.String()
	if a.needsCast(d) {
		text = "(" + a.resolver.ShortenTypeText(file, d.FunctionalType.CanonicalText()) + ") " + text
	}
	return diagnostics.Edit{
		Start: d.Lambda.Node.StartByte(),
		End:   d.Lambda.Node.EndByte(),
		Text:  text,
	}
}

// needsCast reports whether replacing the lambda could change which overload
// of the enclosing call is chosen: another overload accepts, at the lambda's
// position, a different functional interface of the same arity
func (a *Analyzer) needsCast(d *Descriptor) bool {
	node := d.Lambda.Node
	parent := node.Parent()
	for parent != nil && parent.Kind() == "parenthesized_expression" {
		node, parent = parent, parent.Parent()
	}
	if parent == nil || parent.Kind() != "argument_list" {
		return false
	}
	args := java.NamedChildren(parent)
	index := -1
	for i, arg := range args {
		if java.SameNode(arg, node) {
			index = i
		}
	}
	call := parent.Parent()
	if index < 0 || call == nil {
		return false
	}
	called, overloads := a.overloads(d.Lambda.File, call)
	if called == nil {
		return false
	}
	sig, ok := a.resolver.FunctionalMethod(d.FunctionalType)
	if !ok {
		return false
	}
	for _, other := range overloads {
		if other == called || !acceptsArity(other, len(args)) {
			continue
		}
		param := other.ParamType(index, len(args))
		otherSig, ok := a.resolver.FunctionalMethod(param)
		if !ok || len(otherSig.Params) != len(sig.Params) {
			continue
		}
		if param.Erasure().Name != d.FunctionalType.Erasure().Name {
			return true
		}
	}
	return false
}

func (a *Analyzer) overloads(file *java.JavaFile, call *tree_sitter.Node) (*java.Method, []*java.Method) {
	switch call.Kind() {
	case "method_invocation":
		m := a.resolver.ResolveCall(file, call)
		if m == nil || m.Class == nil {
			return nil, nil
		}
		return m, a.resolver.SiblingMethods(m.Class, m.Name)
	case "object_creation_expression":
		m := a.resolver.ResolveConstructor(file, call)
		if m == nil || m.Class == nil {
			return nil, nil
		}
		return m, m.Class.Constructors
	}
	return nil, nil
}

func acceptsArity(m *java.Method, arity int) bool {
	if m.Varargs {
		return arity >= len(m.Params)-1
	}
	return arity == len(m.Params)
}
