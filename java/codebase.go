package java

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

//go:embed jdk
var jdkSources embed.FS

var log = commonlog.GetLogger("lambdaref.java")

const objectClass = "java.lang.Object"

// Codebase is the symbol model of a set of Java files plus the JDK subset the
// resolver knows about. It is built once, then read concurrently.
type Codebase struct {
	mu      sync.Mutex
	files   []*JavaFile
	classes map[string]*Class
	byNode  map[uintptr]*Class
	methods map[uintptr]*Method
	linked  bool
}

// NewCodebase creates a codebase preloaded with the embedded JDK stubs
func NewCodebase() (*Codebase, error) {
	cb := &Codebase{
		classes: make(map[string]*Class),
		byNode:  make(map[uintptr]*Class),
		methods: make(map[uintptr]*Method),
	}
	err := fs.WalkDir(jdkSources, "jdk", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".java") {
			return nil
		}
		source, err := jdkSources.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read stub %s: %w", path, err)
		}
		file, err := cb.AddFile("jdk:"+strings.TrimPrefix(path, "jdk/"), source)
		if err != nil {
			return err
		}
		file.Builtin = true
		return nil
	})
	if err != nil {
		cb.Close()
		return nil, fmt.Errorf("load jdk stubs: %w", err)
	}
	return cb, nil
}

// AddFile parses a Java source file and registers its declarations
func (cb *Codebase) AddFile(path string, source []byte) (*JavaFile, error) {
	tree := ParseJava(source)
	if tree == nil {
		return nil, fmt.Errorf("parse %s: parser returned no tree", path)
	}
	if tree.RootNode().HasError() {
		log.Warningf("%s has syntax errors; analysis may be incomplete", path)
	}
	file := &JavaFile{Path: path, Source: source, Tree: tree}

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.linked {
		tree.Close()
		return nil, fmt.Errorf("add %s: codebase is already linked", path)
	}
	cb.collectFile(file)
	cb.files = append(cb.files, file)
	return file, nil
}

// Files returns the non-builtin files in registration order
func (cb *Codebase) Files() []*JavaFile {
	var files []*JavaFile
	for _, f := range cb.files {
		if !f.Builtin {
			files = append(files, f)
		}
	}
	return files
}

// Close releases every parse tree
func (cb *Codebase) Close() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	for _, f := range cb.files {
		if f.Tree != nil {
			f.Tree.Close()
			f.Tree = nil
		}
	}
}

// Link resolves super types and member signatures once all files are added
func (cb *Codebase) Link() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.linked {
		return
	}
	for _, file := range cb.files {
		for _, cls := range file.Classes {
			cb.linkClass(cls)
		}
	}
	for _, file := range cb.files {
		for _, cls := range file.Classes {
			cb.linkMembers(cls)
		}
	}
	cb.linked = true
}

func (cb *Codebase) linkClass(cls *Class) {
	source := cls.File.Source
	scope := typeScope{file: cls.File, cls: cls}
	if cls.superNode != nil {
		cls.Super = cb.typeFromNode(cls.superNode, source, scope)
	}
	for _, n := range cls.interfaceNodes {
		cls.Interfaces = append(cls.Interfaces, cb.typeFromNode(n, source, scope))
	}
	if cls.baseNode != nil {
		// the base of an anonymous class is named in the enclosing scope
		base := cb.typeFromNode(cls.baseNode, source, typeScope{file: cls.File, cls: cls.Outer})
		if target := cb.ClassOf(base); target != nil && target.IsInterface() {
			cls.Interfaces = append(cls.Interfaces, base)
		} else {
			cls.Super = base
		}
	}
	if cls.Super.Name == "" {
		switch cls.Kind {
		case KindEnum:
			cls.Super = Type{Name: "java.lang.Enum", Args: []Type{cls.AsType()}}
		case KindRecord:
			cls.Super = TypeOfName("java.lang.Record")
		case KindClass:
			if cls.typeName() != objectClass {
				cls.Super = TypeOfName(objectClass)
			}
		}
	}
}

func (cb *Codebase) linkMembers(cls *Class) {
	source := cls.File.Source
	scope := typeScope{file: cls.File, cls: cls}
	for _, f := range cls.Fields {
		if f.typeNode != nil {
			f.Type = cb.typeFromNode(f.typeNode, source, scope)
			f.Type.Dims += f.dims
		}
	}
	link := func(m *Method) {
		mscope := scope
		mscope.typeParams = m.TypeParams
		for i := range m.Params {
			p := &m.Params[i]
			if p.typeNode != nil {
				p.Type = cb.typeFromNode(p.typeNode, source, mscope)
				p.Type.Dims += p.dims
			}
		}
		if m.returnNode != nil {
			m.Return = cb.typeFromNode(m.returnNode, source, mscope)
		} else if m.Constructor {
			m.Return = cls.AsType()
		}
	}
	for _, m := range cls.Methods {
		link(m)
	}
	for _, m := range cls.Constructors {
		link(m)
	}
}

// typeScope is the lexical context a type name is resolved in
type typeScope struct {
	file       *JavaFile
	cls        *Class
	typeParams []string
}

func (s typeScope) isTypeVariable(name string) bool {
	for _, tp := range s.typeParams {
		if tp == name {
			return true
		}
	}
	for c := s.cls; c != nil; c = c.Outer {
		for _, tp := range c.TypeParams {
			if tp == name {
				return true
			}
		}
		if c.Mods&STATIC != 0 {
			break
		}
	}
	return false
}

// typeFromNode converts a type node to a resolved Type
func (cb *Codebase) typeFromNode(node *tree_sitter.Node, source []byte, scope typeScope) Type {
	if node == nil {
		return Unknown
	}
	switch node.Kind() {
	case "integral_type", "floating_point_type", "boolean_type", "void_type":
		return Type{Name: strings.TrimSpace(node.Utf8Text(source))}
	case "type_identifier", "identifier":
		name := node.Utf8Text(source)
		if name == "var" {
			return Unknown
		}
		if scope.isTypeVariable(name) {
			return Type{Name: name, Var: true}
		}
		if cls := cb.lookupClass(name, scope); cls != nil {
			return TypeOfName(cls.typeName())
		}
		return TypeOfName(name)
	case "scoped_type_identifier", "scoped_identifier", "field_access":
		name := stripAnnotations(node.Utf8Text(source))
		if cls := cb.lookupClass(name, scope); cls != nil {
			return TypeOfName(cls.typeName())
		}
		return TypeOfName(name)
	case "generic_type":
		var t Type
		IterateNamedChildren(node, func(child *tree_sitter.Node) {
			switch child.Kind() {
			case "type_arguments":
				IterateNamedChildren(child, func(arg *tree_sitter.Node) {
					t.Args = append(t.Args, cb.typeFromNode(arg, source, scope))
				})
			default:
				base := cb.typeFromNode(child, source, scope)
				t.Name = base.Name
			}
		})
		return t
	case "array_type":
		elem := cb.typeFromNode(node.ChildByFieldName("element"), source, scope)
		elem.Dims += dimensionCount(node.ChildByFieldName("dimensions"), source)
		return elem
	case "wildcard":
		// ? extends X and ? super X both approximate to X
		var bound Type
		IterateNamedChildren(node, func(child *tree_sitter.Node) {
			switch child.Kind() {
			case "annotation", "marker_annotation":
			default:
				bound = cb.typeFromNode(child, source, scope)
			}
		})
		bound.Wildcard = true
		return bound
	case "annotated_type":
		var t Type
		IterateNamedChildren(node, func(child *tree_sitter.Node) {
			switch child.Kind() {
			case "annotation", "marker_annotation":
			default:
				t = cb.typeFromNode(child, source, scope)
			}
		})
		return t
	}
	return Unknown
}

func stripAnnotations(text string) string {
	var parts []string
	for _, field := range strings.Fields(text) {
		if !strings.HasPrefix(field, "@") {
			parts = append(parts, field)
		}
	}
	return strings.Join(parts, "")
}

// lookupClass resolves a simple or dotted class name from a lexical scope
func (cb *Codebase) lookupClass(name string, scope typeScope) *Class {
	if name == "" {
		return nil
	}
	if i := strings.IndexByte(name, '.'); i >= 0 {
		if cls, ok := cb.classes[name]; ok {
			return cls
		}
		head := cb.lookupClass(name[:i], scope)
		if head == nil {
			return nil
		}
		for _, part := range strings.Split(name[i+1:], ".") {
			head = cb.memberClass(head, part)
			if head == nil {
				return nil
			}
		}
		return head
	}
	for c := scope.cls; c != nil; c = c.Outer {
		if c.Name == name && !c.Anonymous {
			return c
		}
		if nested := cb.memberClass(c, name); nested != nil {
			return nested
		}
	}
	file := scope.file
	if file == nil {
		return cb.classes["java.lang."+name]
	}
	for _, c := range file.Classes {
		if c.Name == name && c.Local && scope.cls != nil && c.Outer == scope.cls {
			return c
		}
		if c.Name == name && c.Outer == nil {
			return c
		}
	}
	for _, imp := range file.Imports {
		if !imp.Static && !imp.OnDemand && (imp.Path == name || strings.HasSuffix(imp.Path, "."+name)) {
			if cls, ok := cb.classes[imp.Path]; ok {
				return cls
			}
		}
	}
	if file.Package != "" {
		if cls, ok := cb.classes[file.Package+"."+name]; ok {
			return cls
		}
	} else if cls, ok := cb.classes[name]; ok && cls.Outer == nil {
		return cls
	}
	if cls, ok := cb.classes["java.lang."+name]; ok {
		return cls
	}
	for _, imp := range file.Imports {
		if imp.OnDemand && !imp.Static {
			if cls, ok := cb.classes[imp.Path+"."+name]; ok {
				return cls
			}
		}
	}
	return nil
}

// memberClass finds a nested class by simple name, including inherited ones
func (cb *Codebase) memberClass(cls *Class, name string) *Class {
	seen := make(map[*Class]bool)
	var visit func(c *Class) *Class
	visit = func(c *Class) *Class {
		if c == nil || seen[c] {
			return nil
		}
		seen[c] = true
		for _, nested := range c.Nested {
			if nested.Name == name {
				return nested
			}
		}
		for _, sup := range cb.directSupers(c) {
			if found := visit(sup); found != nil {
				return found
			}
		}
		return nil
	}
	return visit(cls)
}

// ClassOf returns the declaration of a class type, or nil
func (cb *Codebase) ClassOf(t Type) *Class {
	if t.Name == "" || t.Var || t.Dims > 0 || t.IsPrimitive() {
		return nil
	}
	return cb.classes[t.Name]
}

// LookupClass resolves a class name as written at a position in a file
func (cb *Codebase) LookupClass(file *JavaFile, at *tree_sitter.Node, name string) *Class {
	return cb.lookupClass(name, typeScope{file: file, cls: cb.EnclosingClass(file, at)})
}

// directSupers returns the declared super class and interfaces of c
func (cb *Codebase) directSupers(c *Class) []*Class {
	var result []*Class
	if sup := cb.ClassOf(c.Super); sup != nil && sup != c {
		result = append(result, sup)
	} else if c.IsInterface() || (c.Super.Name != "" && sup == nil) {
		if obj := cb.classes[objectClass]; obj != nil && obj != c {
			result = append(result, obj)
		}
	}
	for _, t := range c.Interfaces {
		if iface := cb.ClassOf(t); iface != nil && iface != c {
			result = append(result, iface)
		}
	}
	return result
}

// IsSubtypeOrSelf reports whether sub inherits from sup, or is sup
func (cb *Codebase) IsSubtypeOrSelf(sub, sup *Class) bool {
	if sub == nil || sup == nil {
		return false
	}
	if sup.typeName() == objectClass {
		return true
	}
	seen := make(map[*Class]bool)
	var visit func(c *Class) bool
	visit = func(c *Class) bool {
		if c == sup {
			return true
		}
		if seen[c] {
			return false
		}
		seen[c] = true
		for _, s := range cb.directSupers(c) {
			if visit(s) {
				return true
			}
		}
		return false
	}
	return visit(sub)
}

// bindings maps the type parameters of t's class to t's arguments
func (cb *Codebase) bindings(t Type) map[string]Type {
	cls := cb.ClassOf(t)
	if cls == nil || len(t.Args) != len(cls.TypeParams) {
		return nil
	}
	env := make(map[string]Type, len(t.Args))
	for i, tp := range cls.TypeParams {
		env[tp] = t.Args[i]
	}
	return env
}

// superTypes returns the direct super types of t with t's arguments substituted
func (cb *Codebase) superTypes(t Type) []Type {
	cls := cb.ClassOf(t)
	if cls == nil {
		return nil
	}
	env := cb.bindings(t)
	var result []Type
	if cls.Super.Name != "" {
		result = append(result, substitute(cls.Super, env))
	} else if cls.IsInterface() {
		result = append(result, TypeOfName(objectClass))
	}
	for _, iface := range cls.Interfaces {
		result = append(result, substitute(iface, env))
	}
	return result
}

// AsSuper views t as an instance of target, e.g. ArrayList<String> as Collection<String>
func (cb *Codebase) AsSuper(t Type, target *Class) (Type, bool) {
	seen := make(map[string]bool)
	var visit func(cur Type) (Type, bool)
	visit = func(cur Type) (Type, bool) {
		cls := cb.ClassOf(cur)
		if cls == nil || seen[cls.typeName()] {
			return Unknown, false
		}
		if cls == target {
			return cur, true
		}
		seen[cls.typeName()] = true
		for _, sup := range cb.superTypes(cur) {
			if found, ok := visit(sup); ok {
				return found, true
			}
		}
		return Unknown, false
	}
	return visit(t)
}

// MethodView is a method seen through a parameterized receiver type
type MethodView struct {
	Method *Method
	Env    map[string]Type
}

// ParamType returns the substituted type of parameter i for a call of the given arity
func (v MethodView) ParamType(i int, arity int) Type {
	return substitute(v.Method.ParamType(i, arity), v.Env)
}

// Return returns the substituted return type
func (v MethodView) Return() Type {
	return substitute(v.Method.Return, v.Env)
}

// findMethods collects the methods named name visible on receiver type t,
// nearest declarations first. Overridden methods are skipped.
func (cb *Codebase) findMethods(t Type, name string) []MethodView {
	var result []MethodView
	seen := make(map[string]bool)
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
		env := cb.bindings(cur)
		for _, m := range cls.Methods {
			if m.Name != name {
				continue
			}
			key := cb.erasedSignature(m)
			if seen[key] {
				continue
			}
			seen[key] = true
			result = append(result, MethodView{Method: m, Env: env})
		}
		queue = append(queue, cb.superTypes(cur)...)
	}
	return result
}

func (cb *Codebase) erasedSignature(m *Method) string {
	sb := strings.Builder{}
	sb.WriteString(m.Name)
	sb.WriteString("(")
	for i, p := range m.Params {
		if i > 0 {
			sb.WriteString(",")
		}
		if p.Type.Var {
			sb.WriteString("?")
		} else {
			sb.WriteString(p.Type.Erasure().CanonicalText())
		}
	}
	sb.WriteString(")")
	return sb.String()
}
