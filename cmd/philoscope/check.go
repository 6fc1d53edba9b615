package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"philoscope/internal/logging"
	"philoscope/internal/verify"
)

var (
	checkParams paramSet
	checkOutput outputOpts
	checkInput  string
	checkSave   bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify a captured simulation log",
	Long:  "check replays a dining-philosophers log from a file or stdin and reports every contract violation.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmdContext(cmd)
		cfg, err := checkParams.load(cmd)
		if err != nil {
			return err
		}

		in, closeIn, err := openInput(checkInput)
		if err != nil {
			return err
		}
		defer closeIn()

		engine := verify.New(options(cfg))
		src := verify.ScanLines(in)
		if checkSave {
			tee, path, err := newTeeSource(src, engine.RunID())
			if err != nil {
				return fmt.Errorf("save log: %w", err)
			}
			defer tee.Close()
			logging.FromContext(ctx).Info("saving raw log", "path", path)
			src = tee
		}

		res, err := engine.Run(ctx, src)
		if err != nil {
			return err
		}
		return emitResult(res, checkOutput)
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkInput, "input", "-", "Path to the log file, or - for stdin")
	checkCmd.Flags().BoolVar(&checkSave, "save", false, "Save consumed lines to philo_output_<uid8>")
	checkParams.register(checkCmd)
	checkOutput.register(checkCmd)
}
