package gaf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const Version = "2.2"

// Header is the comment block written before the data rows.
type Header struct {
	GeneratedBy string
	Generated   time.Time
}

func (h Header) Lines() []string {
	lines := []string{"!gaf-version: " + Version}
	if h.GeneratedBy != "" {
		lines = append(lines, "!Generated by: "+h.GeneratedBy)
	}
	if !h.Generated.IsZero() {
		lines = append(lines, "!Date Generated: "+h.Generated.Format("2006-01-02 15:04:05"))
	}
	return lines
}

// Write emits the header and rows to w.
func Write(w io.Writer, h Header, rows []Row) error {
	bw := bufio.NewWriter(w)
	for _, l := range h.Lines() {
		if _, err := bw.WriteString(l + "\n"); err != nil {
			return err
		}
	}
	for _, r := range rows {
		if _, err := bw.WriteString(r.String() + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes to a temporary sibling and renames it into place.
func WriteFile(path string, h Header, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, h, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
