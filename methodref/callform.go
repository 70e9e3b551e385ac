package methodref

import (
	"strings"

	"github.com/heshanpadmasiri/lambdaref/java"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// CallForm is the single call a lambda body reduces to. It is either a
// *MethodCall or a *ConstructorCall.
type CallForm interface {
	// Expression is the call expression node
	Expression() *tree_sitter.Node
	// Arguments returns the argument expressions and whether the call has an argument list
	Arguments() ([]*tree_sitter.Node, bool)
	// Receiver is the qualifier expression the call is made on, if any
	Receiver() *tree_sitter.Node
}

// MethodCall is a body of the form [qualifier.][<T>]name(args)
type MethodCall struct {
	Node          *tree_sitter.Node
	Qualifier     *tree_sitter.Node
	QualifierText string
	Name          string
	TypeArgs      string
	Args          []*tree_sitter.Node
	HasArgList    bool
}

func (c *MethodCall) Expression() *tree_sitter.Node { return c.Node }

func (c *MethodCall) Arguments() ([]*tree_sitter.Node, bool) { return c.Args, c.HasArgList }

func (c *MethodCall) Receiver() *tree_sitter.Node { return c.Qualifier }

// ConstructorCall is a body of the form [outer.]new [<T>]Type(args) or new Type[n]...
type ConstructorCall struct {
	Node       *tree_sitter.Node
	Type       *tree_sitter.Node
	Qualifier  *tree_sitter.Node
	TypeArgs   string
	Args       []*tree_sitter.Node
	HasArgList bool
	Array      bool
	Anonymous  bool
}

func (c *ConstructorCall) Expression() *tree_sitter.Node { return c.Node }

func (c *ConstructorCall) Arguments() ([]*tree_sitter.Node, bool) { return c.Args, c.HasArgList }

func (c *ConstructorCall) Receiver() *tree_sitter.Node { return c.Qualifier }

// singleExpression reduces a lambda body to the one expression it evaluates:
// the body itself, or the operand of a block's only return or expression statement
func singleExpression(body *tree_sitter.Node) *tree_sitter.Node {
	if body == nil {
		return nil
	}
	if body.Kind() != "block" {
		return java.Unparenthesize(body)
	}
	statements := java.NamedChildren(body)
	if len(statements) != 1 {
		return nil
	}
	stmt := statements[0]
	switch stmt.Kind() {
	case "return_statement", "expression_statement":
		operands := java.NamedChildren(stmt)
		if len(operands) != 1 {
			return nil
		}
		return java.Unparenthesize(operands[0])
	}
	return nil
}

// extractCallForm finds the call a lambda body reduces to
func extractCallForm(lambda Lambda) (CallForm, bool) {
	expr := singleExpression(lambda.Node.ChildByFieldName("body"))
	if expr == nil {
		return nil, false
	}
	source := lambda.File.Source
	switch expr.Kind() {
	case "method_invocation":
		return methodCallForm(expr, source), true
	case "object_creation_expression":
		return objectCreationForm(expr, source), true
	case "array_creation_expression":
		return &ConstructorCall{Node: expr, Type: expr.ChildByFieldName("type"), Array: true}, true
	}
	return nil, false
}

func methodCallForm(call *tree_sitter.Node, source []byte) *MethodCall {
	nameNode := call.ChildByFieldName("name")
	form := &MethodCall{
		Node:      call,
		Qualifier: call.ChildByFieldName("object"),
		Name:      nameNode.Utf8Text(source),
	}
	end := nameNode.StartByte()
	if typeArgs := call.ChildByFieldName("type_arguments"); typeArgs != nil {
		form.TypeArgs = typeArgs.Utf8Text(source)
		end = typeArgs.StartByte()
	}
	if form.Qualifier != nil {
		// Outer.super.name() keeps the whole Outer.super prefix
		text := string(source[form.Qualifier.StartByte():end])
		form.QualifierText = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "."))
	}
	form.Args, form.HasArgList = callArguments(call)
	return form
}

func objectCreationForm(creation *tree_sitter.Node, source []byte) *ConstructorCall {
	form := &ConstructorCall{
		Node: creation,
		Type: creation.ChildByFieldName("type"),
	}
	if typeArgs := creation.ChildByFieldName("type_arguments"); typeArgs != nil {
		form.TypeArgs = typeArgs.Utf8Text(source)
	}
	// outer.new Inner() puts the outer instance before the new keyword
	if first := creation.Child(0); first != nil && first.IsNamed() {
		form.Qualifier = first
	}
	form.Anonymous = java.FindChildByKind(creation, "class_body") != nil
	form.Args, form.HasArgList = callArguments(creation)
	return form
}

func callArguments(call *tree_sitter.Node) ([]*tree_sitter.Node, bool) {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil, false
	}
	return java.NamedChildren(args), true
}
