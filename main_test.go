package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/heshanpadmasiri/lambdaref/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var update = flag.Bool("update", false, "update expected fixed Java files")

func TestMain(m *testing.M) {
	flag.Parse()
	os.Exit(m.Run())
}

func getFixedFilePath(javaFile string) string {
	return filepath.Join("testdata", "fixed", filepath.Base(javaFile))
}

func updateExpectedFile(fixedFile string, content []byte) error {
	dir := filepath.Dir(fixedFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(fixedFile, content, 0o644)
}

// fixFile runs the analysis over a single file and returns its rewritten source
func fixFile(t *testing.T, javaFile string) []byte {
	t.Helper()
	opts := scan.DefaultOptions()
	opts.Workers = 1
	result, err := scan.Run(context.Background(), []string{javaFile}, opts)
	require.NoError(t, err)
	defer result.Close()

	fixed, err := scan.Fix(result)
	require.NoError(t, err)
	if source, ok := fixed[javaFile]; ok {
		return source
	}
	return result.Sources[javaFile]
}

func TestFix(t *testing.T) {
	javaDir := filepath.Join("testdata", "java")
	entries, err := os.ReadDir(javaDir)
	require.NoError(t, err, "Failed to read testdata/java directory")

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".java") {
			continue
		}

		javaFile := filepath.Join(javaDir, entry.Name())
		testName := strings.TrimSuffix(entry.Name(), ".java")

		t.Run(testName, func(t *testing.T) {
			got := fixFile(t, javaFile)
			fixedFile := getFixedFilePath(javaFile)

			expected, err := os.ReadFile(fixedFile)
			if err != nil {
				if *update {
					require.NoError(t, updateExpectedFile(fixedFile, got))
					t.Logf("Created expected file: %s", fixedFile)
					return
				}
				t.Fatalf("Failed to read expected file %s: %v", fixedFile, err)
			}

			if !bytes.Equal(got, expected) {
				if *update {
					require.NoError(t, updateExpectedFile(fixedFile, got))
					t.Logf("Updated expected file: %s", fixedFile)
					return
				}
				t.Errorf("Output does not match expected:\n--- Got ---\n%s\n--- Expected ---\n%s", got, expected)
			}
		})
	}
}

// Fixed sources are a fixed point: analyzing them again finds nothing
func TestFixIsIdempotent(t *testing.T) {
	fixedDir := filepath.Join("testdata", "fixed")
	entries, err := os.ReadDir(fixedDir)
	require.NoError(t, err)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".java") {
			continue
		}
		t.Run(strings.TrimSuffix(entry.Name(), ".java"), func(t *testing.T) {
			var out bytes.Buffer
			count, err := runCheck(context.Background(), &out, []string{filepath.Join(fixedDir, entry.Name())}, scan.DefaultOptions(), false)
			require.NoError(t, err)
			assert.Zero(t, count, out.String())
		})
	}
}

func TestCheckCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"check", filepath.Join("testdata", "java", "simple_references.java")})
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "simple_references.java:12:40: lambda can be replaced with method reference String::length")
	assert.True(t, strings.HasSuffix(lines[4], "ArrayList::new"))
}

func TestCheckCommandExitCode(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"check", "--exit-code", filepath.Join("testdata", "java", "members.java")})
	err := cmd.Execute()
	assert.ErrorIs(t, err, errFindings)

	cmd = newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"check", "--exit-code", filepath.Join("testdata", "java", "kept_lambdas.java")})
	assert.NoError(t, cmd.Execute())
}

func TestCheckJSON(t *testing.T) {
	var out bytes.Buffer
	count, err := runCheck(context.Background(), &out, []string{filepath.Join("testdata", "java", "members.java")}, scan.DefaultOptions(), true)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.Contains(t, out.String(), `"replacement": "Members.this::handle"`)
}

func TestFixWrite(t *testing.T) {
	dir := t.TempDir()
	source, err := os.ReadFile(filepath.Join("testdata", "java", "members.java"))
	require.NoError(t, err)
	path := filepath.Join(dir, "members.java")
	require.NoError(t, os.WriteFile(path, source, 0o644))

	var out bytes.Buffer
	require.NoError(t, runFix(context.Background(), &out, []string{dir}, scan.DefaultOptions(), true))
	assert.Empty(t, out.String())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	expected, err := os.ReadFile(filepath.Join("testdata", "fixed", "members.java"))
	require.NoError(t, err)
	assert.Equal(t, string(expected), string(got))
}

func TestExplainCommand(t *testing.T) {
	var out bytes.Buffer
	err := runExplain(context.Background(), &out, filepath.Join("testdata", "java", "kept_lambdas.java"), nil, scan.DefaultOptions())
	require.NoError(t, err)
	text := out.String()
	assert.Equal(t, 8, strings.Count(text, "not convertible"))
	assert.Contains(t, text, "kept_lambdas.java:13:55: (a, b) -> sub(b, a)")
}
