package methodref

import (
	"testing"

	"github.com/heshanpadmasiri/lambdaref/diagnostics"
	"github.com/heshanpadmasiri/lambdaref/java"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

func loadCodebase(t *testing.T, source string) (*java.Codebase, *java.JavaFile) {
	t.Helper()
	cb, err := java.NewCodebase()
	require.NoError(t, err)
	t.Cleanup(cb.Close)
	file, err := cb.AddFile("Test.java", []byte(source))
	require.NoError(t, err)
	cb.Link()
	return cb, file
}

func lambdasIn(file *java.JavaFile) []Lambda {
	var result []Lambda
	java.ForEachMatch(file.Tree.RootNode(), file.Source, "(lambda_expression) @lambda", func(node *tree_sitter.Node) {
		result = append(result, Lambda{File: file, Node: node})
	})
	return result
}

func firstLambda(t *testing.T, cb *java.Codebase, file *java.JavaFile) (Lambda, java.Type) {
	t.Helper()
	lambdas := lambdasIn(file)
	require.NotEmpty(t, lambdas, "no lambda in source")
	fi, ok := cb.FunctionalTypeOf(file, lambdas[0].Node)
	require.True(t, ok, "no functional type for %s", lambdas[0].Text())
	return lambdas[0], fi
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string // "" when the lambda is not convertible
	}{
		{
			name: "unbound instance method on typed parameter",
			source: `import java.util.function.ToIntFunction;
class Test {
    ToIntFunction<String> f = (String s) -> s.length();
}`,
			want: "java.lang.String::length",
		},
		{
			name: "unbound instance method on inferred parameter",
			source: `import java.util.function.Function;
class Test {
    Function<String, Integer> f = s -> s.length();
}`,
			want: "java.lang.String::length",
		},
		{
			name: "constructor with diamond",
			source: `import java.util.*;
import java.util.function.Function;
class Test {
    Function<Collection, List> f = (x) -> new ArrayList<>(x);
}`,
			want: "java.util.ArrayList::new",
		},
		{
			name: "static method with parameters in order",
			source: `import java.util.function.BiFunction;
class Test {
    static int add(int a, int b) { return a + b; }
    BiFunction<Integer, Integer, Integer> f = (a, b) -> add(a, b);
}`,
			want: "Test::add",
		},
		{
			name: "static method of another class",
			source: `import java.util.function.IntBinaryOperator;
class Test {
    IntBinaryOperator f = (a, b) -> Math.max(a, b);
}`,
			want: "Math::max",
		},
		{
			name: "extra literal argument",
			source: `import java.util.function.BiFunction;
class Test {
    static int compute(int a, int b, int c) { return a + b + c; }
    BiFunction<Integer, Integer, Integer> f = (a, b) -> compute(a, b, 5);
}`,
		},
		{
			name: "reordered arguments",
			source: `import java.util.function.BiFunction;
class Test {
    static int sub(int a, int b) { return a - b; }
    BiFunction<Integer, Integer, Integer> f = (a, b) -> sub(b, a);
}`,
		},
		{
			name: "computed argument",
			source: `import java.util.function.Function;
class Test {
    static int twice(int a) { return a * 2; }
    Function<Integer, Integer> f = a -> twice(a + 1);
}`,
		},
		{
			name: "implicit this",
			source: `import java.util.function.Consumer;
class Test {
    void handle(String s) {}
    void run() {
        Consumer<String> c = s -> handle(s);
    }
}`,
			want: "this::handle",
		},
		{
			name: "outer instance",
			source: `import java.util.function.Consumer;
class Outer {
    void handle(String s) {}
    class Inner {
        void run() {
            Consumer<String> c = s -> handle(s);
        }
    }
}`,
			want: "Outer.this::handle",
		},
		{
			name: "bound receiver expression",
			source: `import java.util.function.Consumer;
class Test {
    Consumer<String> c = s -> System.out.println(s);
}`,
			want: "System.out::println",
		},
		{
			name: "primitive array constructor",
			source: `import java.util.function.IntFunction;
class Test {
    IntFunction<int[]> f = n -> new int[n];
}`,
			want: "int[]::new",
		},
		{
			name: "array length is a literal",
			source: `import java.util.function.IntFunction;
class Test {
    IntFunction<int[]> f = n -> new int[5];
}`,
		},
		{
			name: "array with initializer",
			source: `import java.util.function.IntFunction;
class Test {
    IntFunction<int[]> f = n -> new int[]{n};
}`,
		},
		{
			name: "array with two sized dimensions",
			source: `import java.util.function.IntFunction;
class Test {
    IntFunction<int[][]> f = n -> new int[n][n];
}`,
		},
		{
			name: "receiver with wildcard type arguments",
			source: `import java.util.List;
import java.util.function.Function;
class Test {
    Function<List<? extends Number>, Integer> f = (List<? extends Number> l) -> l.size();
}`,
			want: "java.util.List::size",
		},
		{
			name: "block body with return",
			source: `import java.util.function.Function;
class Test {
    Function<String, Integer> f = s -> { return s.length(); };
}`,
			want: "java.lang.String::length",
		},
		{
			name: "block body with expression statement",
			source: `import java.util.function.Consumer;
class Test {
    Consumer<String> c = s -> { System.out.println(s); };
}`,
			want: "System.out::println",
		},
		{
			name: "several statements",
			source: `import java.util.function.Consumer;
class Test {
    Consumer<String> c = s -> { System.out.println(s); System.out.println(s); };
}`,
		},
		{
			name: "body is not a call",
			source: `import java.util.function.Function;
class Test {
    Function<String, String> f = s -> s;
}`,
		},
		{
			name: "anonymous class",
			source: `import java.util.function.Supplier;
class Test {
    Supplier<Object> f = () -> new Object() {};
}`,
		},
		{
			name: "reference array constructor",
			source: `import java.util.function.IntFunction;
class Test {
    IntFunction<String[]> f = n -> new String[n];
}`,
		},
		{
			name: "private method of another class",
			source: `import java.util.function.Function;
class Other {
    private static String hidden(String s) { return s; }
}
class Test {
    Function<String, String> f = s -> Other.hidden(s);
}`,
		},
		{
			name: "receiver ambiguous with static overload",
			source: `import java.util.function.Function;
class Foo {
    String bar() { return ""; }
    static String bar(Foo f) { return ""; }
}
class Test {
    Function<Foo, String> f = (Foo foo) -> foo.bar();
}`,
		},
		{
			name: "receiver ambiguity resolved through overridden method",
			source: `import java.util.function.Function;
class Base {
    String bar() { return ""; }
}
class Foo extends Base {
    String bar() { return "foo"; }
    static String bar(Foo f) { return ""; }
}
class Test {
    Function<Foo, String> f = (Foo foo) -> foo.bar();
}`,
			want: "Base::bar",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, file := loadCodebase(t, tt.source)
			lambda, fi := firstLambda(t, cb, file)
			analyzer := NewAnalyzer(cb, Options{})
			d, ok := analyzer.Analyze(lambda, fi)
			if tt.want == "" {
				assert.False(t, ok, "expected %s to be rejected, got %v", lambda.Text(), d)
				assert.Nil(t, d)
			} else {
				require.True(t, ok, "expected %s to be convertible", lambda.Text())
				assert.Equal(t, tt.want, d.String())
				assert.NotNil(t, d.Target)
			}
			assert.Zero(t, analyzer.bindings.size())
		})
	}
}

func TestAnalyzeDescriptorFields(t *testing.T) {
	cb, file := loadCodebase(t, `import java.util.function.ToIntFunction;
class Test {
    ToIntFunction<String> f = (String s) -> s.length();
}`)
	lambda, fi := firstLambda(t, cb, file)
	d, ok := NewAnalyzer(cb, Options{}).Analyze(lambda, fi)
	require.True(t, ok)
	assert.Equal(t, "java.lang.String", d.Qualifier)
	assert.Equal(t, "length", d.Member)
	assert.False(t, d.Constructor)
	assert.Equal(t, "length", d.Target.Name)
	assert.Equal(t, "java.lang.String", d.Target.Class.QualifiedName)
	call, isMethodCall := d.Call.(*MethodCall)
	require.True(t, isMethodCall)
	assert.Equal(t, "s", call.QualifierText)
}

func TestAnalyzeResolvesSameMemberAsCall(t *testing.T) {
	cb, file := loadCodebase(t, `import java.util.function.BiFunction;
class Test {
    static int add(int a, int b) { return a + b; }
    BiFunction<Integer, Integer, Integer> f = (a, b) -> add(a, b);
}`)
	lambda, fi := firstLambda(t, cb, file)
	d, ok := NewAnalyzer(cb, Options{}).Analyze(lambda, fi)
	require.True(t, ok)
	called := cb.ResolveCall(file, d.Call.Expression())
	require.NotNil(t, called)
	assert.Same(t, called, d.Target)
}

// faultyResolver fails every method reference resolution with a panic
type faultyResolver struct {
	*java.Codebase
	fault any
}

func (r faultyResolver) ResolveReference(*java.MethodRef, java.TargetTypes) (*java.Method, bool) {
	panic(r.fault)
}

func TestAnalyzeRecoversResolverFaults(t *testing.T) {
	cb, file := loadCodebase(t, `import java.util.function.Consumer;
class Test {
    Consumer<String> c = s -> System.out.println(s);
}`)
	lambda, fi := firstLambda(t, cb, file)
	fault := &java.ResolveError{Op: "resolve", Message: "broken"}

	analyzer := NewAnalyzer(faultyResolver{Codebase: cb, fault: fault}, Options{})
	d, ok := analyzer.Analyze(lambda, fi)
	assert.False(t, ok)
	assert.Nil(t, d)
	assert.Zero(t, analyzer.bindings.size())

	strict := NewAnalyzer(faultyResolver{Codebase: cb, fault: fault}, Options{Strict: true})
	assert.PanicsWithValue(t, fault, func() { strict.Analyze(lambda, fi) })
	assert.Zero(t, strict.bindings.size())
}

func TestAnalyzeNeverSwallowsAssertions(t *testing.T) {
	cb, file := loadCodebase(t, `import java.util.function.Consumer;
class Test {
    Consumer<String> c = s -> System.out.println(s);
}`)
	lambda, fi := firstLambda(t, cb, file)
	fault := &diagnostics.AssertionError{Message: "broken invariant"}
	analyzer := NewAnalyzer(faultyResolver{Codebase: cb, fault: fault}, Options{})
	assert.PanicsWithValue(t, fault, func() { analyzer.Analyze(lambda, fi) })
}
