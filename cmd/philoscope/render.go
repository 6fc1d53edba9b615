package main

import (
	"github.com/spf13/cobra"

	"philoscope/internal/logging"
	"philoscope/internal/render"
	"philoscope/internal/verify"
)

var (
	renderParams paramSet
	renderInput  string
	renderOutput string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a saved log as an SVG timeline",
	Long:  "render verifies a saved log and draws one colored row per philosopher, with violations marked.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmdContext(cmd)
		cfg, err := renderParams.load(cmd)
		if err != nil {
			return err
		}

		in, closeIn, err := openInput(renderInput)
		if err != nil {
			return err
		}
		defer closeIn()

		engine := verify.New(options(cfg))
		res, err := engine.Run(ctx, verify.ScanLines(in))
		if err != nil {
			return err
		}

		out := renderOutput
		if out == "" {
			out = "philo_timeline_" + res.RunID[:8] + ".svg"
		}
		if err := render.WriteSVGFile(out, res); err != nil {
			return err
		}
		logging.FromContext(ctx).Info("timeline written", "path", out,
			"events", res.Summary.EventCount, "violations", res.Violations.Len())
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderInput, "input", "-", "Path to the log file, or - for stdin")
	renderCmd.Flags().StringVar(&renderOutput, "output", "", "SVG output path (default philo_timeline_<uid8>.svg)")
	renderParams.register(renderCmd)
}
