package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertPanicsWithAssertionError(t *testing.T) {
	assert.NotPanics(t, func() { Assert(true, "never") })

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(*AssertionError)
		require.True(t, ok, "expected *AssertionError, got %T", r)
		assert.Equal(t, "lambda has 2 parameters", err.Message)
		assert.Equal(t, "assertion failed: lambda has 2 parameters", err.Error())
	}()
	Assert(false, "lambda has %d parameters", 2)
}

func TestApplyEdits(t *testing.T) {
	source := []byte("foo(x -> bar(x), y -> baz(y));")
	tests := []struct {
		name    string
		edits   []Edit
		want    string
		dropped int
	}{
		{
			name:  "no edits",
			edits: nil,
			want:  "foo(x -> bar(x), y -> baz(y));",
		},
		{
			name: "disjoint edits apply in source order",
			edits: []Edit{
				{Start: 17, End: 28, Text: "this::baz"},
				{Start: 4, End: 15, Text: "this::bar"},
			},
			want: "foo(this::bar, this::baz);",
		},
		{
			name: "outermost edit wins",
			edits: []Edit{
				{Start: 9, End: 15, Text: "inner"},
				{Start: 4, End: 15, Text: "this::bar"},
			},
			want:    "foo(this::bar, y -> baz(y));",
			dropped: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dropped, err := ApplyEdits(source, tt.edits)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
			assert.Len(t, dropped, tt.dropped)
		})
	}
}

func TestApplyEditsRejectsOutOfRange(t *testing.T) {
	_, _, err := ApplyEdits([]byte("abc"), []Edit{{Start: 1, End: 10, Text: "x"}})
	assert.Error(t, err)
}

func TestEditRelations(t *testing.T) {
	outer := Edit{Start: 0, End: 10}
	inner := Edit{Start: 2, End: 5}
	after := Edit{Start: 10, End: 12}
	assert.True(t, outer.Contains(inner))
	assert.False(t, inner.Contains(outer))
	assert.True(t, outer.Overlaps(inner))
	assert.False(t, outer.Overlaps(after))
}
