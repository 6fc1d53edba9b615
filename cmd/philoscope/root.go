package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"philoscope/internal/logging"
)

// errUnclean signals that the report contains fatal violations. The report
// itself has already been printed; Execute translates it into exit code 2.
var errUnclean = errors.New("fatal violations found")

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "philoscope",
	Short:         "Dining-philosophers log verifier",
	Long:          "Philoscope validates dining-philosophers simulation logs: timing, fork ownership and state transitions.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errUnclean) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cmdContext attaches the configured logger to the command's context.
func cmdContext(cmd *cobra.Command) context.Context {
	return logging.NewContext(cmd.Context(), logging.New(verbose))
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(watchCmd)
}
