package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"philoscope/internal/logging"
	"philoscope/internal/runner"
	"philoscope/internal/verify"
)

var (
	runParams  paramSet
	runOutput  outputOpts
	runBin     string
	runArgs    []string
	runTimeout time.Duration
	runSave    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Spawn a simulation binary and verify its output live",
	Long:  "run executes a philosophers binary, consumes its stdout as the log stream and verifies it under a wall-clock timeout.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmdContext(cmd)
		cfg, err := runParams.load(cmd)
		if err != nil {
			return err
		}

		timeout := runTimeout
		if timeout == 0 {
			timeout = cfg.TimeBudget()
		}

		proc, err := runner.Start(ctx, runBin, runArgs, timeout)
		if err != nil {
			return err
		}

		engine := verify.New(options(cfg))
		src := verify.ScanLines(proc.Stdout())
		if runSave {
			tee, path, err := newTeeSource(src, engine.RunID())
			if err != nil {
				return fmt.Errorf("save log: %w", err)
			}
			defer tee.Close()
			logging.FromContext(ctx).Info("saving raw log", "path", path)
			src = tee
		}

		res, runErr := engine.Run(ctx, src)
		if err := proc.Wait(); err != nil {
			// The timeout kill is routine for unbounded simulations; the log
			// judgement is what matters.
			logging.FromContext(ctx).Info("simulation exited", "err", err)
		}
		if runErr != nil {
			return runErr
		}
		return emitResult(res, runOutput)
	},
}

func init() {
	runCmd.Flags().StringVar(&runBin, "bin", "", "Path to the philosophers binary")
	runCmd.Flags().StringSliceVar(&runArgs, "args", nil, "Arguments passed to the binary")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Wall-clock timeout (default derived from parameters)")
	runCmd.Flags().BoolVar(&runSave, "save", false, "Save consumed lines to philo_output_<uid8>")
	runCmd.MarkFlagRequired("bin")
	runParams.register(runCmd)
	runOutput.register(runCmd)
}
