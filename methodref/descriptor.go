package methodref

import (
	"github.com/heshanpadmasiri/lambdaref/java"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Lambda is a lambda expression in a parsed file
type Lambda struct {
	File *java.JavaFile
	Node *tree_sitter.Node
}

// Location renders the lambda position as path:row:col
func (l Lambda) Location() string {
	return java.Location(l.File.Path, l.Node)
}

// Text is the lambda's source text
func (l Lambda) Text() string {
	return l.Node.Utf8Text(l.File.Source)
}

// Descriptor describes the method reference a lambda can be replaced with
type Descriptor struct {
	Qualifier      string
	TypeArgs       string // explicit type arguments including the angle brackets, or ""
	Member         string // method name, or "new"
	Constructor    bool
	Target         *java.Method
	Call           CallForm
	Lambda         Lambda
	FunctionalType java.Type
}

// String composes the method reference text, e.g. java.lang.String::length or int[]::new
func (d *Descriptor) String() string {
	if d.Constructor {
		return d.Qualifier + d.TypeArgs + "::new"
	}
	return d.Qualifier + "::" + d.TypeArgs + d.Member
}
