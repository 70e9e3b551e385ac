package java

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

const demoSource = `package demo;

import java.util.List;
import java.util.function.Function;

public class Demo {
    private int count;
    Function<String, Integer> f = s -> s.length();

    int size(List<String> items) {
        return items.size();
    }
}
`

func loadDemo(t *testing.T) (*Codebase, *JavaFile) {
	t.Helper()
	cb, err := NewCodebase()
	require.NoError(t, err)
	t.Cleanup(cb.Close)
	file, err := cb.AddFile("Demo.java", []byte(demoSource))
	require.NoError(t, err)
	cb.Link()
	return cb, file
}

func firstMatch(t *testing.T, file *JavaFile, pattern string) *tree_sitter.Node {
	t.Helper()
	var found *tree_sitter.Node
	ForEachMatch(file.Tree.RootNode(), file.Source, pattern, func(node *tree_sitter.Node) {
		if found == nil {
			found = node
		}
	})
	require.NotNil(t, found, "no match for %s", pattern)
	return found
}

type fixedTarget struct {
	t Type
}

func (f fixedTarget) TargetType(*MethodRef) (Type, bool) {
	return f.t, f.t.Known()
}

func TestParseModifiers(t *testing.T) {
	mods := ParseModifiers("public static final")
	assert.True(t, mods.Has(PUBLIC|STATIC|FINAL))
	assert.False(t, mods.Has(PRIVATE))
	assert.Equal(t, "public static final", mods.String())
	assert.Zero(t, ParseModifiers("synchronized"))
}

func TestCollectDeclarations(t *testing.T) {
	_, file := loadDemo(t)
	assert.Equal(t, "demo", file.Package)
	require.Len(t, file.Imports, 2)
	assert.Equal(t, "java.util.List", file.Imports[0].Path)

	require.Len(t, file.Classes, 1)
	demo := file.Classes[0]
	assert.Equal(t, "demo.Demo", demo.QualifiedName)
	assert.True(t, demo.Mods.Has(PUBLIC))
	require.Len(t, demo.Methods, 1)
	assert.Equal(t, "size", demo.Methods[0].Name)
	assert.Equal(t, "java.util.List", demo.Methods[0].Params[0].Type.Name)
}

func TestFunctionalTypeOf(t *testing.T) {
	cb, file := loadDemo(t)
	lambda := firstMatch(t, file, "(lambda_expression) @lambda")

	fi, ok := cb.FunctionalTypeOf(file, lambda)
	require.True(t, ok)
	assert.Equal(t, "java.util.function.Function", fi.Erasure().Name)

	sig, ok := cb.FunctionalMethod(fi)
	require.True(t, ok)
	assert.Equal(t, "apply", sig.Method.Name)
	require.Len(t, sig.Params, 1)
	assert.Equal(t, "java.lang.String", sig.Params[0].Name)
	assert.Equal(t, "java.lang.Integer", sig.Return.Name)

	_, ok = cb.FunctionalMethod(TypeOfName("java.lang.String"))
	assert.False(t, ok)
}

func TestResolveNameFindsLambdaParameter(t *testing.T) {
	cb, file := loadDemo(t)
	lambda := firstMatch(t, file, "(lambda_expression) @lambda")
	params := cb.LambdaParameters(file, lambda)
	require.Len(t, params, 1)

	call := firstMatch(t, file, "(lambda_expression body: (method_invocation) @call)")
	object := call.ChildByFieldName("object")
	require.NotNil(t, object)
	v := cb.ResolveName(file, object, "s")
	require.NotNil(t, v)
	assert.True(t, v.Same(params[0]))
	assert.Nil(t, cb.ResolveName(file, object, "missing"))
}

func TestResolveCallThroughSuperInterface(t *testing.T) {
	cb, file := loadDemo(t)
	var sizeCall *tree_sitter.Node
	ForEachMatch(file.Tree.RootNode(), file.Source, "(method_invocation) @call", func(node *tree_sitter.Node) {
		if node.ChildByFieldName("name").Utf8Text(file.Source) == "size" {
			sizeCall = node
		}
	})
	require.NotNil(t, sizeCall)
	m := cb.ResolveCall(file, sizeCall)
	require.NotNil(t, m)
	assert.Equal(t, "java.util.Collection", m.Class.QualifiedName)
	assert.Equal(t, "int", m.Return.Name)
}

func TestParseMethodRef(t *testing.T) {
	_, file := loadDemo(t)
	at := firstMatch(t, file, "(lambda_expression) @lambda")

	tests := []struct {
		text          string
		qualifierKind string
		name          string
	}{
		{"System.out::println", "field_access", "println"},
		{"java.lang.String::length", "field_access", "length"},
		{"this::size", "this", "size"},
		{"int[]::new", "array_type", "new"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			ref, err := ParseMethodRef(tt.text, file, at)
			require.NoError(t, err)
			defer ref.Close()
			assert.Equal(t, tt.qualifierKind, ref.Qualifier.Kind())
			assert.Equal(t, tt.name, ref.Name)
		})
	}

	_, err := ParseMethodRef("s.length()", file, at)
	assert.Error(t, err)
	_, err = ParseMethodRef("::", file, at)
	assert.Error(t, err)
}

func TestResolveReference(t *testing.T) {
	cb, file := loadDemo(t)
	lambda := firstMatch(t, file, "(lambda_expression) @lambda")
	fi, ok := cb.FunctionalTypeOf(file, lambda)
	require.True(t, ok)

	ref, err := ParseMethodRef("java.lang.String::length", file, lambda)
	require.NoError(t, err)
	defer ref.Close()

	m, accessible := cb.ResolveReference(ref, fixedTarget{fi})
	require.NotNil(t, m)
	assert.True(t, accessible)
	assert.Equal(t, "length", m.Name)
	assert.Equal(t, "java.lang.String", m.Class.QualifiedName)

	m, _ = cb.ResolveReference(ref, fixedTarget{})
	assert.Nil(t, m)

	missing, err := ParseMethodRef("java.lang.String::missing", file, lambda)
	require.NoError(t, err)
	defer missing.Close()
	m, _ = cb.ResolveReference(missing, fixedTarget{fi})
	assert.Nil(t, m)
}

func TestResolveReferenceFaults(t *testing.T) {
	cb, err := NewCodebase()
	require.NoError(t, err)
	defer cb.Close()
	file, err := cb.AddFile("Demo.java", []byte(demoSource))
	require.NoError(t, err)
	lambda := firstMatch(t, file, "(lambda_expression) @lambda")

	ref, err := ParseMethodRef("java.lang.String::length", file, lambda)
	require.NoError(t, err)
	assert.Panics(t, func() { cb.ResolveReference(ref, fixedTarget{}) }, "unlinked codebase")

	cb.Link()
	ref.Close()
	assert.Panics(t, func() { cb.ResolveReference(ref, fixedTarget{}) }, "closed reference")
}

func TestShortName(t *testing.T) {
	cb, file := loadDemo(t)
	assert.Equal(t, "List", cb.ShortName(file, "java.util.List"))
	assert.Equal(t, "String", cb.ShortName(file, "java.lang.String"))
	assert.Equal(t, "Demo", cb.ShortName(file, "demo.Demo"))
	assert.Equal(t, "java.util.Map", cb.ShortName(file, "java.util.Map"))
	assert.Equal(t, "not.a.Class", cb.ShortName(file, "not.a.Class"))
	assert.Equal(t, "List<String>[]", cb.ShortenTypeText(file, "java.util.List<java.lang.String>[]"))
}

func TestTypeCanonicalText(t *testing.T) {
	list := Type{Name: "java.util.List", Args: []Type{TypeOfName("java.lang.String")}, Dims: 1}
	assert.Equal(t, "java.util.List<java.lang.String>[]", list.CanonicalText())
	assert.True(t, list.IsArray())
	assert.Equal(t, "java.util.List<java.lang.String>", list.Element().CanonicalText())
	assert.Equal(t, "java.util.List[]", list.Erasure().CanonicalText())
	assert.Equal(t, "<unknown>", Unknown.String())
	assert.True(t, TypeOfName("int").IsPrimitive())
}

func TestArgumentsContained(t *testing.T) {
	cb, _ := loadDemo(t)
	number := TypeOfName("java.lang.Number")
	wildNumber := number
	wildNumber.Wildcard = true
	list := func(arg Type) Type { return Type{Name: "java.util.List", Args: []Type{arg}} }
	arrayList := func(arg Type) Type { return Type{Name: "java.util.ArrayList", Args: []Type{arg}} }

	assert.False(t, cb.ArgumentsContained(list(wildNumber), list(number)))
	assert.True(t, cb.ArgumentsContained(list(number), list(number)))
	assert.True(t, cb.ArgumentsContained(list(wildNumber), list(wildNumber)))
	assert.True(t, cb.ArgumentsContained(list(wildNumber), TypeOfName("java.util.List")))
	assert.True(t, cb.ArgumentsContained(list(wildNumber), list(Type{Name: "E", Var: true})))
	assert.False(t, cb.ArgumentsContained(arrayList(wildNumber), list(number)))
	assert.True(t, cb.ArgumentsContained(arrayList(number), list(number)))
	assert.True(t, list(wildNumber).HasWildcardArgs())
	assert.False(t, list(number).HasWildcardArgs())
}
