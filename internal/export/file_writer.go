package export

import (
	"encoding/json"
	"os"
)

// FileWriter writes event and violation rows to JSONL files.
type FileWriter struct {
	eventFile *os.File
	violFile  *os.File
	eventEnc  *json.Encoder
	violEnc   *json.Encoder
}

// NewFileWriter creates a FileWriter. violationPath may be empty to skip the
// violation log.
func NewFileWriter(eventPath, violationPath string) (*FileWriter, error) {
	ef, err := os.Create(eventPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{eventFile: ef, eventEnc: json.NewEncoder(ef)}
	if violationPath != "" {
		vf, err := os.Create(violationPath)
		if err != nil {
			ef.Close()
			return nil, err
		}
		fw.violFile = vf
		fw.violEnc = json.NewEncoder(vf)
	}
	return fw, nil
}

// WriteEvents logs event rows, one JSON object per line.
func (f *FileWriter) WriteEvents(rows []EventRow) error {
	for _, r := range rows {
		if err := f.eventEnc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteViolations logs violation rows, if enabled.
func (f *FileWriter) WriteViolations(rows []ViolationRow) error {
	if f.violEnc == nil {
		return nil
	}
	for _, r := range rows {
		if err := f.violEnc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying files.
func (f *FileWriter) Close() error {
	var err error
	if e := f.eventFile.Close(); e != nil {
		err = e
	}
	if f.violFile != nil {
		if e := f.violFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
