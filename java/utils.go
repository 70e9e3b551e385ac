package java

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

var language = tree_sitter.NewLanguage(tree_sitter_java.Language())

// ParseJava parses Java source code and returns a tree-sitter tree
func ParseJava(source []byte) *tree_sitter.Tree {
	parser := tree_sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(language)
	tree := parser.Parse(source, nil)
	return tree
}

// IterateChildren iterates over all children of a node and calls fn for each
func IterateChildren(node *tree_sitter.Node, fn func(child *tree_sitter.Node)) {
	cursor := node.Walk()
	defer cursor.Close()
	children := node.Children(cursor)
	for i := range children {
		fn(&children[i])
	}
}

// IterateNamedChildren is IterateChildren restricted to named nodes
func IterateNamedChildren(node *tree_sitter.Node, fn func(child *tree_sitter.Node)) {
	cursor := node.Walk()
	defer cursor.Close()
	children := node.NamedChildren(cursor)
	for i := range children {
		fn(&children[i])
	}
}

// NamedChildren returns the named children of a node, skipping comments
func NamedChildren(node *tree_sitter.Node) []*tree_sitter.Node {
	var result []*tree_sitter.Node
	IterateNamedChildren(node, func(child *tree_sitter.Node) {
		switch child.Kind() {
		case "line_comment", "block_comment":
		default:
			result = append(result, child)
		}
	})
	return result
}

// FindChildByKind returns the first direct child with the given kind
func FindChildByKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	var found *tree_sitter.Node
	IterateChildren(node, func(child *tree_sitter.Node) {
		if found == nil && child.Kind() == kind {
			found = child
		}
	})
	return found
}

// Unparenthesize strips any number of enclosing parentheses from an expression
func Unparenthesize(node *tree_sitter.Node) *tree_sitter.Node {
	for node != nil && node.Kind() == "parenthesized_expression" {
		children := NamedChildren(node)
		if len(children) != 1 {
			return node
		}
		node = children[0]
	}
	return node
}

// SameNode reports whether two nodes denote the same syntax node
func SameNode(a, b *tree_sitter.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Id() == b.Id()
}

// ForEachMatch runs a single-capture query over the tree rooted at node
func ForEachMatch(node *tree_sitter.Node, source []byte, pattern string, fn func(match *tree_sitter.Node)) {
	query, err := tree_sitter.NewQuery(language, pattern)
	if err != nil {
		// This is a programming error - the query syntax is invalid
		panic(fmt.Sprintf("Invalid tree-sitter query: %v", err))
	}
	defer query.Close()

	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(query, node, source)
	for match := matches.Next(); match != nil; match = matches.Next() {
		for _, capture := range match.Captures {
			captured := capture.Node
			fn(&captured)
		}
	}
}

// Location renders a node position as path:row:col, 1-based
func Location(path string, node *tree_sitter.Node) string {
	pos := node.StartPosition()
	return fmt.Sprintf("%s:%d:%d", path, pos.Row+1, pos.Column+1)
}
