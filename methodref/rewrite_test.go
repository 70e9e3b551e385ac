package methodref

import (
	"testing"

	"github.com/heshanpadmasiri/lambdaref/diagnostics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewrite(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name: "java.lang names are shortened",
			source: `import java.util.function.ToIntFunction;
class Test {
    ToIntFunction<String> f = (String s) -> s.length();
}`,
			want: "String::length",
		},
		{
			name: "imported names are shortened",
			source: `import java.util.*;
import java.util.function.Function;
class Test {
    Function<Collection, List> f = (x) -> new ArrayList<>(x);
}`,
			want: "ArrayList::new",
		},
		{
			name: "names that are not imported stay qualified",
			source: `import java.util.Collection;
import java.util.List;
import java.util.function.Function;
class Test {
    Function<Collection, List> f = (x) -> new java.util.ArrayList<>(x);
}`,
			want: "java.util.ArrayList::new",
		},
		{
			name: "expression qualifiers are kept",
			source: `import java.util.function.Consumer;
class Test {
    Consumer<String> c = s -> System.out.println(s);
}`,
			want: "System.out::println",
		},
		{
			name: "competing overload adds a cast",
			source: `import java.util.function.*;
class Test {
    static void run(Consumer<String> c) {}
    static void run(Predicate<String> p) {}
    void print(String s) {}
    void go() {
        run((String s) -> print(s));
    }
}`,
			want: "(Consumer<String>) this::print",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, file := loadCodebase(t, tt.source)
			lambda, fi := firstLambda(t, cb, file)
			analyzer := NewAnalyzer(cb, Options{})
			d, ok := analyzer.Analyze(lambda, fi)
			require.True(t, ok, "expected %s to be convertible", lambda.Text())

			edit := analyzer.Rewrite(d)
			assert.Equal(t, tt.want, edit.Text)
			assert.Equal(t, lambda.Text(), string(file.Source[edit.Start:edit.End]))

			rewritten, dropped, err := diagnostics.ApplyEdits(file.Source, []diagnostics.Edit{edit})
			require.NoError(t, err)
			assert.Empty(t, dropped)
			assert.Contains(t, string(rewritten), tt.want)
		})
	}
}

func TestDescriptorString(t *testing.T) {
	assert.Equal(t, "java.lang.String::length", (&Descriptor{Qualifier: "java.lang.String", Member: "length"}).String())
	assert.Equal(t, "Util::<String>convert", (&Descriptor{Qualifier: "Util", TypeArgs: "<String>", Member: "convert"}).String())
	assert.Equal(t, "int[][]::new", (&Descriptor{Qualifier: "int[][]", Member: "new", Constructor: true}).String())
}
