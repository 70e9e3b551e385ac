package methodref

import (
	"github.com/heshanpadmasiri/lambdaref/java"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Resolver is the symbol information the analyzer needs. *java.Codebase implements it.
type Resolver interface {
	ResolveCall(file *java.JavaFile, call *tree_sitter.Node) *java.Method
	ResolveConstructor(file *java.JavaFile, creation *tree_sitter.Node) *java.Method
	ResolveConstructedClass(file *java.JavaFile, creation *tree_sitter.Node) *java.Class
	ResolveName(file *java.JavaFile, at *tree_sitter.Node, name string) *java.Variable
	ResolveReference(ref *java.MethodRef, targets java.TargetTypes) (*java.Method, bool)
	TypeOf(file *java.JavaFile, expr *tree_sitter.Node) java.Type
	LambdaParameters(file *java.JavaFile, lambda *tree_sitter.Node) []*java.Variable
	EnclosingClass(file *java.JavaFile, node *tree_sitter.Node) *java.Class
	ClassOf(t java.Type) *java.Class
	FunctionalTypeOf(file *java.JavaFile, lambda *tree_sitter.Node) (java.Type, bool)
	FunctionalMethod(t java.Type) (java.FunctionalSignature, bool)
	SiblingMethods(cls *java.Class, name string) []*java.Method
	OverriddenMethods(m *java.Method) []*java.Method
	IsSubtypeOrSelf(sub, sup *java.Class) bool
	TypesConvertible(a, b java.Type) bool
	ShortenTypeText(file *java.JavaFile, text string) string
}

var _ Resolver = (*java.Codebase)(nil)
