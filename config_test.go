package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/heshanpadmasiri/lambdaref/scan"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	defaults := scan.DefaultOptions()
	tests := []struct {
		name          string
		configContent string
		createConfig  bool
		expected      scan.Options
	}{
		{
			name: "all_fields",
			configContent: `language_level = 11
include = ["src/**/*.java"]
exclude = ["**/generated/**"]
workers = 3
strict = true
`,
			createConfig: true,
			expected: scan.Options{
				Include:       []string{"src/**/*.java"},
				Exclude:       []string{"**/generated/**"},
				Workers:       3,
				LanguageLevel: 11,
				Strict:        true,
			},
		},
		{
			name: "only_language_level",
			configContent: `language_level = 7
`,
			createConfig: true,
			expected: scan.Options{
				Workers:       defaults.Workers,
				LanguageLevel: 7,
			},
		},
		{
			name:          "invalid_toml",
			configContent: "language_level = [",
			createConfig:  true,
			expected:      defaults,
		},
		{
			name:         "no_config_file",
			createConfig: false,
			expected:     defaults,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			originalWd, err := os.Getwd()
			require.NoError(t, err)
			defer os.Chdir(originalWd)
			require.NoError(t, os.Chdir(tmpDir))

			if tt.createConfig {
				require.NoError(t, os.WriteFile(filepath.Join(tmpDir, defaultConfigFile), []byte(tt.configContent), 0o644))
			}

			assert.Equal(t, tt.expected, loadConfig(""))
		})
	}
}

func TestLoadConfigExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lambdaref.toml")
	require.NoError(t, os.WriteFile(path, []byte("workers = 2\nexclude = [\"build/**\"]\n"), 0o644))

	opts := loadConfig(path)
	assert.Equal(t, 2, opts.Workers)
	assert.Equal(t, []string{"build/**"}, opts.Exclude)
	assert.Equal(t, scan.DefaultOptions().LanguageLevel, opts.LanguageLevel)
}

func TestFlagsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lambdaref.toml")
	require.NoError(t, os.WriteFile(path, []byte("language_level = 8\nworkers = 2\nstrict = true\n"), 0o644))

	flags := &globalFlags{configPath: path}
	cmd := &cobra.Command{Use: "check"}
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "")
	cmd.Flags().IntVar(&flags.languageLevel, "language-level", 0, "")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "")
	require.NoError(t, cmd.Flags().Parse([]string{"--workers", "6"}))

	opts := flags.options(cmd)
	assert.Equal(t, 6, opts.Workers)
	assert.Equal(t, 8, opts.LanguageLevel)
	assert.True(t, opts.Strict)
}
