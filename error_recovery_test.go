package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/heshanpadmasiri/lambdaref/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorRecovery(t *testing.T) {
	// The broken method does not stop the rest of the class from being analyzed
	javaSource := []byte(`import java.util.function.Consumer;

class Broken {
    Consumer<String> printer = s -> System.out.println(s);

    void broken() {
        int x = ;
    }
}
`)
	dir := t.TempDir()
	path := filepath.Join(dir, "Broken.java")
	require.NoError(t, os.WriteFile(path, javaSource, 0o644))

	for _, strict := range []bool{false, true} {
		name := "non-strict mode continues on error"
		if strict {
			name = "strict mode continues on syntax error"
		}
		t.Run(name, func(t *testing.T) {
			opts := scan.DefaultOptions()
			opts.Strict = strict
			var out bytes.Buffer
			count, err := runCheck(context.Background(), &out, []string{dir}, opts, false)
			require.NoError(t, err)
			assert.Equal(t, 1, count)
			assert.True(t, strings.HasSuffix(strings.TrimSpace(out.String()), "System.out::println"))
		})
	}
}

func TestMissingRootIsReported(t *testing.T) {
	var out bytes.Buffer
	_, err := runCheck(context.Background(), &out, []string{filepath.Join(t.TempDir(), "missing")}, scan.DefaultOptions(), false)
	assert.Error(t, err)
	assert.Empty(t, out.String())
}
