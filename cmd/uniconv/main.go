// This CLI utility converts documents between BlockNote JSON, UniAst JSON
// and Markdown.
//
// Usage:
//
//	uniconv [command]
//
// Available Commands:
//
//	convert     Convert a document from one format to another
//	dump        Print the UniAst tree of a document
//	validate    Check that a document converts to a valid UniAst tree
//
// Use "uniconv [command] --help" for more information about a command.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/rgonek/uniast-converter/internal/logging"
)

func newRootCmd() *cobra.Command {
	o := &options{}
	rootCmd := &cobra.Command{
		Use:   "uniconv",
		Short: "convert documents between BlockNote, UniAst and Markdown",
		Long: `This CLI utility converts documents between BlockNote editor JSON,
UniAst JSON and Markdown. Every conversion goes through UniAst.

If no input file is specified, input is read from standard input.
Similarly, if no output file is specified, output is written to
standard output.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := logging.LookupLevel(o.logLevel); !ok {
				return fmt.Errorf("invalid log level %q (allowed: trace, debug, info, warn, error)", o.logLevel)
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&o.logLevel, "log-level", "warn", "``log level: trace, debug, info, warn or error")
	flags.BoolVar(&o.logJSON, "log-json", false, "write logs as JSON")
	flags.StringVar(&o.macros, "macros", "", "``YAML macro catalog")
	flags.StringVar(&o.baseURL, "base-url", "", "``wiki base URL used to resolve and write links")
	flags.StringVar(&o.wiki, "wiki", "xwiki", "``wiki name recorded on resolved references")
	flags.IntVar(&o.concurrency, "concurrency", 0, "``maximum concurrent reference lookups")
	flags.BoolVar(&o.skipUnknown, "skip-unknown", false, "drop unknown BlockNote blocks instead of failing")

	rootCmd.AddCommand(newConvertCmd(o), newDumpCmd(o), newValidateCmd(o))
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
