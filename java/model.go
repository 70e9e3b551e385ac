package java

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// ClassKind distinguishes the flavours of class-like declarations
type ClassKind int

const (
	KindClass ClassKind = iota
	KindInterface
	KindEnum
	KindRecord
	KindAnnotation
)

// JavaFile is a parsed compilation unit
type JavaFile struct {
	Path    string
	Source  []byte
	Tree    *tree_sitter.Tree
	Package string
	Imports []Import
	Classes []*Class // every class declared in the file, outer before inner
	Builtin bool
}

// Import is a single import declaration
type Import struct {
	Path     string
	Static   bool
	OnDemand bool
}

// Class is a class, interface, enum, record or anonymous class body
type Class struct {
	Name          string // "" for anonymous classes
	QualifiedName string // "" for anonymous and local classes
	Package       string
	Kind          ClassKind
	Mods          modifiers
	TypeParams    []string
	Outer         *Class
	Super         Type
	Interfaces    []Type
	Methods       []*Method
	Constructors  []*Method
	Fields        []*Field
	Nested        []*Class
	Anonymous     bool
	Local         bool
	File          *JavaFile
	Node          *tree_sitter.Node
	Body          *tree_sitter.Node

	superNode      *tree_sitter.Node
	interfaceNodes []*tree_sitter.Node
	baseNode       *tree_sitter.Node // type of an anonymous class creation
}

// Method is a method or constructor declaration
type Method struct {
	Name        string
	Class       *Class
	Mods        modifiers
	Constructor bool
	Varargs     bool
	TypeParams  []string
	Params      []Param
	Return      Type
	Node        *tree_sitter.Node

	returnNode *tree_sitter.Node
}

// Param is a formal parameter of a declared method
type Param struct {
	Name string
	Type Type

	typeNode *tree_sitter.Node
	dims     int
}

// Field is a field, enum constant or record component
type Field struct {
	Name  string
	Class *Class
	Mods  modifiers
	Type  Type
	Node  *tree_sitter.Node

	typeNode *tree_sitter.Node
	dims     int
}

// VariableKind classifies what a simple name resolved to
type VariableKind int

const (
	LocalVariable VariableKind = iota
	ParameterVariable
	FieldVariable
)

// Variable is the declaration a simple name resolves to. Identity is the
// declaring node: two references denote the same variable iff their Node ids match.
type Variable struct {
	Name        string
	Kind        VariableKind
	Node        *tree_sitter.Node
	Type        Type
	TypeElement bool // declared with an explicit type
	Field       *Field
}

// Same reports whether two variables have the same declaration
func (v *Variable) Same(other *Variable) bool {
	if v == nil || other == nil {
		return false
	}
	if v.Field != nil || other.Field != nil {
		return v.Field == other.Field
	}
	return SameNode(v.Node, other.Node)
}

// DisplayName returns the qualified name, falling back to the simple name
func (c *Class) DisplayName() string {
	if c.QualifiedName != "" {
		return c.QualifiedName
	}
	return c.Name
}

// IsInterface reports whether c is an interface or annotation type
func (c *Class) IsInterface() bool {
	return c.Kind == KindInterface || c.Kind == KindAnnotation
}

// Outermost returns the top-level class that lexically contains c
func (c *Class) Outermost() *Class {
	for c.Outer != nil {
		c = c.Outer
	}
	return c
}

// AsType returns the class type parameterized by its own type variables
func (c *Class) AsType() Type {
	t := Type{Name: c.typeName()}
	for _, tp := range c.TypeParams {
		t.Args = append(t.Args, Type{Name: tp, Var: true})
	}
	return t
}

// typeName is the key the class is registered under in the codebase
func (c *Class) typeName() string {
	if c.QualifiedName != "" {
		return c.QualifiedName
	}
	return localClassKey(c)
}

func localClassKey(c *Class) string {
	return "$" + c.File.Path + "#" + c.Name + "@" + strings.TrimSpace(Location("", c.Node))
}

// IsStatic reports whether the method is static
func (m *Method) IsStatic() bool {
	return m.Mods&STATIC != 0
}

// IsAbstract reports whether the method has no implementation
func (m *Method) IsAbstract() bool {
	return m.Mods&ABSTRACT != 0
}

// ParamCount returns the number of formal parameters
func (m *Method) ParamCount() int {
	return len(m.Params)
}

// ParamType returns the type of parameter i, expanding a trailing varargs parameter
func (m *Method) ParamType(i int, arity int) Type {
	if m.Varargs && i >= len(m.Params)-1 {
		last := m.Params[len(m.Params)-1].Type
		if arity == len(m.Params) && i == len(m.Params)-1 {
			return last
		}
		return last.Element()
	}
	if i < len(m.Params) {
		return m.Params[i].Type
	}
	return Unknown
}

func (m *Method) String() string {
	sb := strings.Builder{}
	if m.Class != nil {
		sb.WriteString(m.Class.DisplayName())
		sb.WriteString(".")
	}
	sb.WriteString(m.Name)
	sb.WriteString("(")
	for i, p := range m.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Type.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// IsStatic reports whether the field is static
func (f *Field) IsStatic() bool {
	return f.Mods&STATIC != 0
}

func isMemberContainer(kind string) bool {
	switch kind {
	case "class_body", "interface_body", "enum_body", "enum_body_declarations", "annotation_type_body":
		return true
	}
	return false
}

func isClassDeclaration(kind string) bool {
	switch kind {
	case "class_declaration", "interface_declaration", "enum_declaration",
		"record_declaration", "annotation_type_declaration":
		return true
	}
	return false
}

// collectFile reads the package, imports and class declarations of a parsed file
func (cb *Codebase) collectFile(file *JavaFile) {
	root := file.Tree.RootNode()
	IterateNamedChildren(root, func(child *tree_sitter.Node) {
		switch child.Kind() {
		case "package_declaration":
			IterateNamedChildren(child, func(name *tree_sitter.Node) {
				switch name.Kind() {
				case "identifier", "scoped_identifier":
					file.Package = name.Utf8Text(file.Source)
				}
			})
		case "import_declaration":
			file.Imports = append(file.Imports, parseImport(child, file.Source))
		}
	})
	cb.collect(file, root, nil, false)
}

func parseImport(node *tree_sitter.Node, source []byte) Import {
	var imp Import
	IterateChildren(node, func(child *tree_sitter.Node) {
		switch child.Kind() {
		case "static":
			imp.Static = true
		case "asterisk":
			imp.OnDemand = true
		case "identifier", "scoped_identifier":
			imp.Path = child.Utf8Text(source)
		}
	})
	return imp
}

// collect walks node looking for class declarations; local is set once the
// walk is inside a method body or initializer
func (cb *Codebase) collect(file *JavaFile, node *tree_sitter.Node, outer *Class, local bool) {
	IterateNamedChildren(node, func(child *tree_sitter.Node) {
		kind := child.Kind()
		switch {
		case isClassDeclaration(kind):
			cls := cb.declareClass(file, child, outer, local)
			if body := child.ChildByFieldName("body"); body != nil {
				cls.Body = body
				cb.byNode[body.Id()] = cls
				cb.collectMembers(cls, body)
				cb.collect(file, body, cls, false)
			}
			return
		case kind == "object_creation_expression" || kind == "enum_constant":
			body := FindChildByKind(child, "class_body")
			if body == nil {
				break
			}
			anon := cb.declareAnonymous(file, child, body, outer)
			cb.collectMembers(anon, body)
			cb.collect(file, body, anon, false)
			// the creation's own arguments and qualifier belong to the outer scope
			IterateNamedChildren(child, func(part *tree_sitter.Node) {
				if part.Kind() != "class_body" {
					cb.collect(file, part, outer, local)
				}
			})
			return
		}
		childLocal := local
		if isMemberContainer(node.Kind()) && !isMemberContainer(kind) {
			childLocal = true
		}
		cb.collect(file, child, outer, childLocal)
	})
}

func (cb *Codebase) declareClass(file *JavaFile, node *tree_sitter.Node, outer *Class, local bool) *Class {
	cls := &Class{
		Name:    node.ChildByFieldName("name").Utf8Text(file.Source),
		Package: file.Package,
		Mods:    modifiersOf(node, file.Source),
		Outer:   outer,
		Local:   local,
		File:    file,
		Node:    node,
	}
	switch node.Kind() {
	case "interface_declaration":
		cls.Kind = KindInterface
	case "enum_declaration":
		cls.Kind = KindEnum
	case "record_declaration":
		cls.Kind = KindRecord
	case "annotation_type_declaration":
		cls.Kind = KindAnnotation
	}
	if !local {
		switch {
		case outer == nil && file.Package == "":
			cls.QualifiedName = cls.Name
		case outer == nil:
			cls.QualifiedName = file.Package + "." + cls.Name
		case outer.QualifiedName != "":
			cls.QualifiedName = outer.QualifiedName + "." + cls.Name
		}
	}
	if outer != nil && (outer.IsInterface() || cls.Kind != KindClass) {
		// members of interfaces and nested enums, records and interfaces are implicitly static
		cls.Mods |= STATIC
	}
	if outer != nil && outer.IsInterface() {
		cls.Mods |= PUBLIC
	}
	if tps := node.ChildByFieldName("type_parameters"); tps != nil {
		cls.TypeParams = typeParameterNames(tps, file.Source)
	}
	if sup := FindChildByKind(node, "superclass"); sup != nil {
		if children := NamedChildren(sup); len(children) > 0 {
			cls.superNode = children[0]
		}
	}
	for _, kind := range []string{"super_interfaces", "extends_interfaces"} {
		if ifaces := FindChildByKind(node, kind); ifaces != nil {
			if list := FindChildByKind(ifaces, "type_list"); list != nil {
				cls.interfaceNodes = append(cls.interfaceNodes, NamedChildren(list)...)
			}
		}
	}
	cb.register(cls)
	return cls
}

func (cb *Codebase) declareAnonymous(file *JavaFile, node, body *tree_sitter.Node, outer *Class) *Class {
	cls := &Class{
		Package:   file.Package,
		Outer:     outer,
		Anonymous: true,
		Local:     true,
		File:      file,
		Node:      node,
		Body:      body,
	}
	if node.Kind() == "enum_constant" {
		if outer != nil {
			cls.Super = outer.AsType()
		}
	} else {
		cls.baseNode = node.ChildByFieldName("type")
	}
	cb.byNode[body.Id()] = cls
	cb.register(cls)
	return cls
}

func (cb *Codebase) register(cls *Class) {
	file := cls.File
	file.Classes = append(file.Classes, cls)
	cb.byNode[cls.Node.Id()] = cls
	if cls.Outer != nil && !cls.Anonymous {
		cls.Outer.Nested = append(cls.Outer.Nested, cls)
	}
	cb.classes[cls.typeName()] = cls
}

func typeParameterNames(node *tree_sitter.Node, source []byte) []string {
	var names []string
	IterateNamedChildren(node, func(tp *tree_sitter.Node) {
		if tp.Kind() != "type_parameter" {
			return
		}
		if id := FindChildByKind(tp, "type_identifier"); id != nil {
			names = append(names, id.Utf8Text(source))
		} else if id := FindChildByKind(tp, "identifier"); id != nil {
			names = append(names, id.Utf8Text(source))
		}
	})
	return names
}

// collectMembers records fields, methods and constructors declared in a class body
func (cb *Codebase) collectMembers(cls *Class, body *tree_sitter.Node) {
	source := cls.File.Source
	IterateNamedChildren(body, func(member *tree_sitter.Node) {
		switch member.Kind() {
		case "enum_body_declarations":
			cb.collectMembers(cls, member)
		case "enum_constant":
			cls.Fields = append(cls.Fields, &Field{
				Name:  member.ChildByFieldName("name").Utf8Text(source),
				Class: cls,
				Mods:  PUBLIC | STATIC | FINAL,
				Type:  cls.AsType(),
				Node:  member,
			})
		case "field_declaration", "constant_declaration":
			mods := modifiersOf(member, source)
			if cls.IsInterface() || member.Kind() == "constant_declaration" {
				mods |= PUBLIC | STATIC | FINAL
			}
			typeNode := member.ChildByFieldName("type")
			IterateNamedChildren(member, func(decl *tree_sitter.Node) {
				if decl.Kind() != "variable_declarator" {
					return
				}
				cls.Fields = append(cls.Fields, &Field{
					Name:     decl.ChildByFieldName("name").Utf8Text(source),
					Class:    cls,
					Mods:     mods,
					Node:     decl,
					typeNode: typeNode,
					dims:     dimensionCount(decl.ChildByFieldName("dimensions"), source),
				})
			})
		case "method_declaration":
			m := cb.declareMethod(cls, member)
			cb.methods[member.Id()] = m
			cls.Methods = append(cls.Methods, m)
		case "constructor_declaration":
			ctor := cb.declareMethod(cls, member)
			cb.methods[member.Id()] = ctor
			ctor.Constructor = true
			cls.Constructors = append(cls.Constructors, ctor)
		}
	})
	if cls.Kind == KindRecord {
		cb.collectRecordComponents(cls)
	}
	if len(cls.Constructors) == 0 && !cls.Anonymous && !cls.IsInterface() && cls.Kind != KindRecord {
		mods := cls.Mods & (PUBLIC | PROTECTED | PRIVATE)
		if cls.Kind == KindEnum {
			mods = PRIVATE
		}
		cls.Constructors = append(cls.Constructors, &Method{
			Name:        cls.Name,
			Class:       cls,
			Mods:        mods,
			Constructor: true,
			Node:        cls.Node,
		})
	}
}

func (cb *Codebase) declareMethod(cls *Class, node *tree_sitter.Node) *Method {
	source := cls.File.Source
	m := &Method{
		Name:       node.ChildByFieldName("name").Utf8Text(source),
		Class:      cls,
		Mods:       modifiersOf(node, source),
		Node:       node,
		returnNode: node.ChildByFieldName("type"),
	}
	if tps := node.ChildByFieldName("type_parameters"); tps != nil {
		m.TypeParams = typeParameterNames(tps, source)
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		m.Params, m.Varargs = formalParameters(params, source)
	}
	if cls.IsInterface() {
		if m.Mods&PRIVATE == 0 {
			m.Mods |= PUBLIC
		}
		if node.ChildByFieldName("body") == nil && m.Mods&(STATIC|DEFAULT|PRIVATE) == 0 {
			m.Mods |= ABSTRACT
		}
	}
	return m
}

// formalParameters reads a formal_parameters node
func formalParameters(node *tree_sitter.Node, source []byte) ([]Param, bool) {
	var params []Param
	varargs := false
	IterateNamedChildren(node, func(param *tree_sitter.Node) {
		switch param.Kind() {
		case "formal_parameter":
			params = append(params, Param{
				Name:     param.ChildByFieldName("name").Utf8Text(source),
				typeNode: param.ChildByFieldName("type"),
				dims:     dimensionCount(param.ChildByFieldName("dimensions"), source),
			})
		case "spread_parameter":
			p := Param{dims: 1}
			IterateNamedChildren(param, func(part *tree_sitter.Node) {
				switch part.Kind() {
				case "modifiers":
				case "variable_declarator":
					p.Name = part.ChildByFieldName("name").Utf8Text(source)
				default:
					if p.typeNode == nil {
						p.typeNode = part
					}
				}
			})
			params = append(params, p)
			varargs = true
		}
	})
	return params, varargs
}

func (cb *Codebase) collectRecordComponents(cls *Class) {
	source := cls.File.Source
	params := cls.Node.ChildByFieldName("parameters")
	if params == nil {
		return
	}
	components, varargs := formalParameters(params, source)
	for _, c := range components {
		cls.Fields = append(cls.Fields, &Field{
			Name:     c.Name,
			Class:    cls,
			Mods:     PRIVATE | FINAL,
			Node:     params,
			typeNode: c.typeNode,
			dims:     c.dims,
		})
		if len(cb.declaredMethods(cls, c.Name, 0)) == 0 {
			cls.Methods = append(cls.Methods, &Method{
				Name:       c.Name,
				Class:      cls,
				Mods:       PUBLIC,
				Node:       params,
				returnNode: c.typeNode,
			})
		}
	}
	for _, ctor := range cls.Constructors {
		if len(ctor.Params) == len(components) {
			return
		}
	}
	cls.Constructors = append(cls.Constructors, &Method{
		Name:        cls.Name,
		Class:       cls,
		Mods:        cls.Mods & (PUBLIC | PROTECTED | PRIVATE),
		Constructor: true,
		Varargs:     varargs,
		Params:      components,
		Node:        params,
	})
}

func (cb *Codebase) declaredMethods(cls *Class, name string, arity int) []*Method {
	var result []*Method
	for _, m := range cls.Methods {
		if m.Name == name && (arity < 0 || len(m.Params) == arity) {
			result = append(result, m)
		}
	}
	return result
}

func dimensionCount(node *tree_sitter.Node, source []byte) int {
	if node == nil {
		return 0
	}
	return strings.Count(node.Utf8Text(source), "[")
}
