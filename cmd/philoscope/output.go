package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"philoscope/internal/export"
	"philoscope/internal/render"
	"philoscope/internal/verify"
)

// openInput opens a log file, or stdin for "-".
func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// teeSource copies every consumed line to a file, preserving the raw log for
// later render or re-check runs.
type teeSource struct {
	src verify.LineSource
	f   *os.File
}

// newTeeSource saves consumed lines under philo_output_<uid8>, uid8 being the
// run id prefix.
func newTeeSource(src verify.LineSource, runID string) (*teeSource, string, error) {
	path := "philo_output_" + runID[:8]
	f, err := os.Create(path)
	if err != nil {
		return nil, "", err
	}
	return &teeSource{src: src, f: f}, path, nil
}

func (t *teeSource) Next() (string, bool, error) {
	line, ok, err := t.src.Next()
	if ok && err == nil {
		fmt.Fprintln(t.f, line)
	}
	return line, ok, err
}

func (t *teeSource) Close() error { return t.f.Close() }

// outputOpts are the report-destination flags shared by check and run.
type outputOpts struct {
	noColor      bool
	svgPath      string
	exportPrefix string
	greptimeHost string
}

func (o *outputOpts) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.noColor, "no-color", false, "Disable ANSI colors in the report")
	cmd.Flags().StringVar(&o.svgPath, "svg", "", "Write an SVG timeline to this path")
	cmd.Flags().StringVar(&o.exportPrefix, "export", "", "Write JSONL exports with this path prefix")
	cmd.Flags().StringVar(&o.greptimeHost, "greptime", os.Getenv("GREPTIMEDB_ENDPOINT"), "GreptimeDB endpoint for timeline export")
}

// emitResult writes the terminal report and any requested exports. It
// returns errUnclean when the run has fatal violations so Execute can map it
// to a distinct exit code.
func emitResult(res *verify.Result, opts outputOpts) error {
	color := !opts.noColor && term.IsTerminal(int(os.Stdout.Fd()))
	if err := render.WriteReport(os.Stdout, res, color); err != nil {
		return err
	}

	if opts.svgPath != "" {
		if err := render.WriteSVGFile(opts.svgPath, res); err != nil {
			return fmt.Errorf("write svg: %w", err)
		}
	}

	if opts.exportPrefix != "" || opts.greptimeHost != "" {
		// Anchor the log's millisecond offsets at the run's wall-clock start.
		epoch := time.Now().Add(-time.Duration(res.Summary.LastTimestamp) * time.Millisecond)
		events, violations := export.Rows(res, epoch)

		if opts.exportPrefix != "" {
			fw, err := export.NewFileWriter(opts.exportPrefix+"_events.jsonl", opts.exportPrefix+"_violations.jsonl")
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if err := fw.WriteEvents(events); err != nil {
				fw.Close()
				return fmt.Errorf("export events: %w", err)
			}
			if err := fw.WriteViolations(violations); err != nil {
				fw.Close()
				return fmt.Errorf("export violations: %w", err)
			}
			if err := fw.Close(); err != nil {
				return err
			}
		}

		if opts.greptimeHost != "" {
			gw, err := export.NewGreptimeWriter(opts.greptimeHost, greptimeDatabase())
			if err != nil {
				return err
			}
			if err := gw.WriteEvents(events); err != nil {
				return err
			}
			if err := gw.WriteViolations(violations); err != nil {
				return err
			}
		}
	}

	if res.Violations.HasFatal() {
		return errUnclean
	}
	return nil
}

func greptimeDatabase() string {
	if db := os.Getenv("GREPTIMEDB_DATABASE"); db != "" {
		return db
	}
	return "public"
}
