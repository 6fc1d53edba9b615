// Writer implementations for simulation log output.
package sim

import (
	"fmt"
	"io"
	"os"

	"philoscope/internal/event"
)

// LogWriter receives simulation events as they happen.
type LogWriter interface {
	Write(e event.Event) error
}

// StdoutWriter prints log lines to STDOUT in the simulation's wire format.
type StdoutWriter struct {
	Out io.Writer
}

// NewStdoutWriter creates a StdoutWriter writing to os.Stdout.
func NewStdoutWriter() *StdoutWriter {
	return &StdoutWriter{Out: os.Stdout}
}

// Write outputs a single log line.
func (w *StdoutWriter) Write(e event.Event) error {
	_, err := fmt.Fprintln(w.Out, e.Line())
	return err
}

// FileWriter writes log lines to a file.
type FileWriter struct {
	f *os.File
}

// NewFileWriter creates a FileWriter truncating path.
func NewFileWriter(path string) (*FileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &FileWriter{f: f}, nil
}

// Write logs a single line.
func (w *FileWriter) Write(e event.Event) error {
	_, err := fmt.Fprintln(w.f, e.Line())
	return err
}

// Close closes the underlying file.
func (w *FileWriter) Close() error { return w.f.Close() }

// MultiWriter fans out events to multiple writers.
type MultiWriter struct {
	writers []LogWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(ws ...LogWriter) *MultiWriter {
	return &MultiWriter{writers: ws}
}

// Write sends an event to all writers.
func (mw *MultiWriter) Write(e event.Event) error {
	for _, w := range mw.writers {
		if err := w.Write(e); err != nil {
			return err
		}
	}
	return nil
}
