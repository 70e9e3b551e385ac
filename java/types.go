package java

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Modifier bit flags
const (
	PUBLIC modifiers = 1 << iota
	PRIVATE
	PROTECTED
	STATIC
	FINAL
	ABSTRACT
	DEFAULT
	NATIVE
)

// modifiers represents Java modifiers as a bitmask
type modifiers uint16

func (m modifiers) String() string {
	var parts []string
	if m&PUBLIC != 0 {
		parts = append(parts, "public")
	}
	if m&PRIVATE != 0 {
		parts = append(parts, "private")
	}
	if m&PROTECTED != 0 {
		parts = append(parts, "protected")
	}
	if m&STATIC != 0 {
		parts = append(parts, "static")
	}
	if m&FINAL != 0 {
		parts = append(parts, "final")
	}
	if m&ABSTRACT != 0 {
		parts = append(parts, "abstract")
	}
	if m&DEFAULT != 0 {
		parts = append(parts, "default")
	}
	if m&NATIVE != 0 {
		parts = append(parts, "native")
	}
	return strings.Join(parts, " ")
}

// Has reports whether every flag in other is set
func (m modifiers) Has(other modifiers) bool {
	return m&other == other
}

// ParseModifiers parses modifier string into a modifiers bitmask
func ParseModifiers(source string) modifiers {
	parts := strings.Fields(source)
	var mods modifiers
	for _, part := range parts {
		switch part {
		case "public":
			mods |= PUBLIC
		case "private":
			mods |= PRIVATE
		case "protected":
			mods |= PROTECTED
		case "static":
			mods |= STATIC
		case "final":
			mods |= FINAL
		case "abstract":
			mods |= ABSTRACT
		case "default":
			mods |= DEFAULT
		case "native":
			mods |= NATIVE
		}
	}
	return mods
}

// modifiersOf reads the modifiers child of a declaration node
func modifiersOf(node *tree_sitter.Node, source []byte) modifiers {
	var mods modifiers
	IterateChildren(node, func(child *tree_sitter.Node) {
		if child.Kind() == "modifiers" {
			// annotations are children of the modifiers node; only keywords count
			IterateChildren(child, func(mod *tree_sitter.Node) {
				if !mod.IsNamed() {
					mods |= ParseModifiers(mod.Utf8Text(source))
				}
			})
		}
	})
	return mods
}

// Type is a resolved Java type. Class types carry their qualified name,
// primitives their keyword and type variables their declared name.
type Type struct {
	Name string
	Args []Type
	Dims int
	Var  bool
	// Wildcard marks a type argument written as ? extends X or ? super X;
	// the type is the bound X
	Wildcard bool
}

// Unknown is the type of expressions the resolver cannot type
var Unknown = Type{}

var primitiveNames = map[string]bool{
	"boolean": true, "byte": true, "short": true, "char": true,
	"int": true, "long": true, "float": true, "double": true,
}

var boxes = map[string]string{
	"boolean": "java.lang.Boolean",
	"byte":    "java.lang.Byte",
	"short":   "java.lang.Short",
	"char":    "java.lang.Character",
	"int":     "java.lang.Integer",
	"long":    "java.lang.Long",
	"float":   "java.lang.Float",
	"double":  "java.lang.Double",
}

// numeric widening order; char widens to int and above
var numericRank = map[string]int{
	"byte": 1, "short": 2, "char": 2, "int": 3, "long": 4, "float": 5, "double": 6,
}

// TypeOfName builds a non-generic class type
func TypeOfName(name string) Type {
	return Type{Name: name}
}

// Known reports whether the resolver could determine the type
func (t Type) Known() bool {
	return t.Name != "" && !t.Var
}

// IsPrimitive reports whether t is a primitive, non-array type
func (t Type) IsPrimitive() bool {
	return t.Dims == 0 && primitiveNames[t.Name]
}

// IsArray reports whether t has array dimensions
func (t Type) IsArray() bool {
	return t.Dims > 0
}

// Element returns the component type of an array type
func (t Type) Element() Type {
	if t.Dims == 0 {
		return Unknown
	}
	elem := t
	elem.Dims--
	return elem
}

// DeepElement returns the innermost component type of an array type
func (t Type) DeepElement() Type {
	elem := t
	elem.Dims = 0
	return elem
}

// Equal compares types structurally
func (t Type) Equal(other Type) bool {
	if t.Name != other.Name || t.Dims != other.Dims || t.Var != other.Var || len(t.Args) != len(other.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(other.Args[i]) {
			return false
		}
	}
	return true
}

// HasWildcardArgs reports whether any type argument, at any depth, is a wildcard
func (t Type) HasWildcardArgs() bool {
	for _, arg := range t.Args {
		if arg.Wildcard || arg.HasWildcardArgs() {
			return true
		}
	}
	return false
}

// Erasure drops type arguments
func (t Type) Erasure() Type {
	return Type{Name: t.Name, Dims: t.Dims, Var: t.Var}
}

// CanonicalText renders the type with qualified names, e.g. java.util.List<java.lang.String>[]
func (t Type) CanonicalText() string {
	if t.Name == "" {
		return ""
	}
	sb := strings.Builder{}
	sb.WriteString(t.Name)
	if len(t.Args) > 0 {
		sb.WriteString("<")
		for i, arg := range t.Args {
			if i > 0 {
				sb.WriteString(",")
			}
			if arg.Name == "" {
				sb.WriteString("?")
				continue
			}
			sb.WriteString(arg.CanonicalText())
		}
		sb.WriteString(">")
	}
	for i := 0; i < t.Dims; i++ {
		sb.WriteString("[]")
	}
	return sb.String()
}

func (t Type) String() string {
	if t.Name == "" {
		return "<unknown>"
	}
	return t.CanonicalText()
}

// substitute replaces type variables bound in env
func substitute(t Type, env map[string]Type) Type {
	if len(env) == 0 {
		return t
	}
	if t.Var {
		if bound, ok := env[t.Name]; ok {
			result := bound
			result.Dims += t.Dims
			return result
		}
		return t
	}
	if len(t.Args) == 0 {
		return t
	}
	result := t
	result.Args = make([]Type, len(t.Args))
	for i, arg := range t.Args {
		result.Args[i] = substitute(arg, env)
	}
	return result
}
