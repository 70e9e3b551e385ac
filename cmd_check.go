package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/heshanpadmasiri/lambdaref/scan"
	"github.com/spf13/cobra"
)

// errFindings makes check exit non-zero when --exit-code is set
var errFindings = errors.New("lambdas can be replaced with method references")

func newCheckCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool
	var exitCode bool

	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Report lambdas that can be replaced with method references",
		Long: `Report every lambda under the given paths that can be replaced with an
equivalent method reference. Directories are searched for .java files; with
no path the working directory is scanned.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := runCheck(cmd.Context(), cmd.OutOrStdout(), rootsOf(args), flags.options(cmd), asJSON)
			if err != nil {
				return err
			}
			if exitCode && count > 0 {
				return fmt.Errorf("%d %w", count, errFindings)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print findings as JSON")
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "exit with status 1 when anything is reported")

	return cmd
}

func rootsOf(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}

// runCheck writes the findings for roots to w and returns how many there were
func runCheck(ctx context.Context, w io.Writer, roots []string, opts scan.Options, asJSON bool) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := scan.Run(ctx, roots, opts)
	if err != nil {
		return 0, err
	}
	defer result.Close()

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return len(result.Findings), enc.Encode(result.Findings)
	}
	for _, f := range result.Findings {
		if _, err := fmt.Fprintln(w, f.String()); err != nil {
			return 0, err
		}
	}
	log.Infof("%d findings in %d files", len(result.Findings), len(result.Files))
	return len(result.Findings), nil
}
