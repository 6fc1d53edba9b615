package main

import (
	"github.com/spf13/cobra"

	"philoscope/internal/tui"
	"philoscope/internal/verify"
)

var (
	watchParams paramSet
	watchInput  string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a live log stream in a TUI while it is verified",
	Long:  "watch renders philosopher states and the violation log in a terminal UI while consuming a live stream, typically a pipe from a running simulation.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmdContext(cmd)
		cfg, err := watchParams.load(cmd)
		if err != nil {
			return err
		}

		in, closeIn, err := openInput(watchInput)
		if err != nil {
			return err
		}
		defer closeIn()

		engine := verify.New(options(cfg))
		watcher := tui.NewWatcher()
		defer watcher.Close()

		src := verify.ScanLines(in)
		for {
			line, ok, err := src.Next()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			ev, err := engine.Ingest(ctx, line)
			if err != nil {
				return err
			}
			if ev.Action == "" {
				watcher.OnSkipped(line)
				continue
			}
			watcher.OnEvent(ev)
		}

		res := engine.Finalize(ctx)
		watcher.OnDone(res)
		watcher.Wait()
		if res.Violations.HasFatal() {
			return errUnclean
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchInput, "input", "-", "Path to the log stream, or - for stdin")
	watchParams.register(watchCmd)
}
