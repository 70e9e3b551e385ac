package main

import (
	"github.com/heshanpadmasiri/lambdaref/diagnostics"
	"github.com/heshanpadmasiri/lambdaref/scan"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("lambdaref")

// globalFlags are shared by every subcommand
type globalFlags struct {
	configPath    string
	verbose       int
	workers       int
	languageLevel int
	strict        bool
}

// options merges the configuration file with the flags set on the command line
func (g *globalFlags) options(cmd *cobra.Command) scan.Options {
	opts := loadConfig(g.configPath)
	flags := cmd.Flags()
	if flags.Changed("workers") {
		opts.Workers = g.workers
	}
	if flags.Changed("language-level") {
		opts.LanguageLevel = g.languageLevel
	}
	if flags.Changed("strict") {
		opts.Strict = g.strict
	}
	return opts
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "lambdaref",
		Short:         "Find Java lambdas that can be replaced with method references",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(flags.verbose, nil)
		},
	}

	persistent := rootCmd.PersistentFlags()
	persistent.StringVar(&flags.configPath, "config", "", "configuration file (default is ./Config.toml)")
	persistent.CountVarP(&flags.verbose, "verbose", "v", "increase log verbosity")
	persistent.IntVar(&flags.workers, "workers", 0, "number of files processed at once")
	persistent.IntVar(&flags.languageLevel, "language-level", 0, "Java release the sources target")
	persistent.BoolVar(&flags.strict, "strict", false, "fail on resolver faults instead of skipping the lambda")

	rootCmd.AddCommand(newCheckCmd(flags))
	rootCmd.AddCommand(newFixCmd(flags))
	rootCmd.AddCommand(newExplainCmd(flags))

	return rootCmd
}

func main() {
	diagnostics.Fatal("lambdaref", newRootCmd().Execute())
}
