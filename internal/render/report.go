// Terminal report rendering for verification results.
package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"philoscope/internal/report"
	"philoscope/internal/verify"
)

type reportStyles struct {
	header  lipgloss.Style
	philo   lipgloss.Style
	fatal   lipgloss.Style
	warning lipgloss.Style
	clean   lipgloss.Style
	dim     lipgloss.Style
}

func newReportStyles(color bool) reportStyles {
	if !color {
		plain := lipgloss.NewStyle()
		return reportStyles{plain, plain, plain, plain, plain, plain}
	}
	return reportStyles{
		header:  lipgloss.NewStyle().Bold(true),
		philo:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		fatal:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		clean:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// WriteReport prints the human-readable verdict: per-philosopher stats, the
// ordered violation list and the final summary line.
func WriteReport(w io.Writer, res *verify.Result, color bool) error {
	st := newReportStyles(color)

	fmt.Fprintln(w, st.header.Render(fmt.Sprintf("Run %s", res.RunID)))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Events:\t%d\n", res.Summary.EventCount)
	fmt.Fprintf(tw, "Philosophers:\t%d\n", res.Summary.PhilosopherCount)
	fmt.Fprintf(tw, "Last timestamp:\t%d ms\n", res.Summary.LastTimestamp)
	if res.Summary.FirstDeath != nil {
		fmt.Fprintf(tw, "First death:\t%d ms\n", *res.Summary.FirstDeath)
	}
	tw.Flush()

	for _, ps := range res.Summary.Philosophers {
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.philo.Render(fmt.Sprintf("Philosopher %d:", ps.ID)))
		fmt.Fprintf(w, "\thas eaten %d %s\n", ps.Meals, plural(ps.Meals))
		fmt.Fprintf(w, "\thas slept %d %s\n", ps.Sleeps, plural(ps.Sleeps))
		fmt.Fprintf(w, "\thas thought %d %s\n", ps.Thinks, plural(ps.Thinks))
		if ps.Died {
			fmt.Fprintf(w, "\t%s\n", st.fatal.Render(fmt.Sprintf("died at %d ms", *ps.DiedAt)))
		}
		if ps.ReachedCap {
			fmt.Fprintf(w, "\t%s\n", st.dim.Render("reached the meal cap"))
		}
	}

	violations := res.Violations.Sorted()
	fmt.Fprintln(w)
	if len(violations) > 0 {
		fmt.Fprintln(w, st.header.Render(fmt.Sprintf("Violations (%d fatal, %d warning):",
			res.Summary.FatalCount, res.Summary.WarningCount)))
		for _, v := range violations {
			line := fmt.Sprintf("  %s", v)
			if v.Severity == report.SeverityFatal {
				fmt.Fprintln(w, st.fatal.Render(line))
			} else {
				fmt.Fprintln(w, st.warning.Render(line))
			}
		}
		fmt.Fprintln(w)
	}

	if res.Summary.Clean {
		fmt.Fprintln(w, st.clean.Render("Verdict: clean run"))
	} else {
		fmt.Fprintln(w, st.fatal.Render(fmt.Sprintf("Verdict: unclean (%d fatal violations)", res.Summary.FatalCount)))
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return "time"
	}
	return "times"
}
