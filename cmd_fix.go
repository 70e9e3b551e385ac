package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/heshanpadmasiri/lambdaref/scan"
	"github.com/spf13/cobra"
)

func newFixCmd(flags *globalFlags) *cobra.Command {
	var fixOverwrite bool

	cmd := &cobra.Command{
		Use:   "fix [path...]",
		Short: "Replace lambdas with method references",
		Long: `Rewrite every lambda under the given paths that can be replaced with an
equivalent method reference and print the changed files to stdout.

Use -w to overwrite the files in place.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFix(cmd.Context(), cmd.OutOrStdout(), rootsOf(args), flags.options(cmd), fixOverwrite)
		},
	}

	cmd.Flags().BoolVarP(&fixOverwrite, "write", "w", false, "overwrite the files in place")

	return cmd
}

func runFix(ctx context.Context, w io.Writer, roots []string, opts scan.Options, overwrite bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := scan.Run(ctx, roots, opts)
	if err != nil {
		return err
	}
	defer result.Close()

	fixed, err := scan.Fix(result)
	if err != nil {
		return err
	}
	paths := make([]string, 0, len(fixed))
	for path := range fixed {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if overwrite {
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("stat %s: %w", path, err)
			}
			if err := os.WriteFile(path, fixed[path], info.Mode().Perm()); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			log.Infof("rewrote %s", path)
			continue
		}
		if _, err := fmt.Fprintf(w, "// %s\n", path); err != nil {
			return err
		}
		if _, err := w.Write(fixed[path]); err != nil {
			return err
		}
	}
	return nil
}
