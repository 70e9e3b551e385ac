package main

import (
	"context"
	"fmt"
	"io"

	"github.com/heshanpadmasiri/lambdaref/scan"
	"github.com/spf13/cobra"
)

func newExplainCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <file> [path...]",
		Short: "Show the analysis verdict for every lambda in a file",
		Long: `Show, for every lambda in a .java file, its functional interface type and
the method reference it can be replaced with. Additional paths are loaded so
that names used by the file resolve. Run with -vv to see why a lambda is kept.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(cmd.Context(), cmd.OutOrStdout(), args[0], args[1:], flags.options(cmd))
		},
	}
	return cmd
}

func runExplain(ctx context.Context, w io.Writer, target string, roots []string, opts scan.Options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	verdicts, err := scan.Explain(ctx, target, roots, opts)
	if err != nil {
		return err
	}
	for _, v := range verdicts {
		fmt.Fprintf(w, "%s: %s\n", v.Location, v.Lambda)
		if v.FunctionalType == "" {
			fmt.Fprintln(w, "  target type: unknown")
		} else {
			fmt.Fprintf(w, "  target type: %s\n", v.FunctionalType)
		}
		if v.Convertible() {
			fmt.Fprintf(w, "  method reference: %s\n", v.Descriptor)
			fmt.Fprintf(w, "  replacement: %s\n", v.Replacement)
		} else {
			fmt.Fprintln(w, "  not convertible")
		}
	}
	return nil
}
