package gaf

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/geneontology/gopreprocess/internal/apperr"
	"github.com/geneontology/gopreprocess/internal/model"
)

// ScanStats counts what a scan saw.
type ScanStats struct {
	Lines     int
	Headers   int
	Records   int
	Malformed int
}

func (s *ScanStats) Add(o ScanStats) {
	s.Lines += o.Lines
	s.Headers += o.Headers
	s.Records += o.Records
	s.Malformed += o.Malformed
}

// Reader streams annotations from GAF text. Malformed lines are handed to
// OnParseError and skipped; they never stop the scan.
type Reader struct {
	OnParseError func(source string, line int, err error)
}

func NewReader() *Reader {
	return &Reader{}
}

// Scan calls onRecord for every data line in r, in file order. A non-nil
// error from onRecord aborts the scan and is returned as is.
func (rd *Reader) Scan(r io.Reader, source string, onRecord func(*model.Annotation) error) (ScanStats, error) {
	var stats ScanStats
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for sc.Scan() {
		stats.Lines++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "!") {
			stats.Headers++
			continue
		}
		a, err := ParseLine(line)
		if err != nil {
			stats.Malformed++
			if rd.OnParseError != nil {
				rd.OnParseError(source, stats.Lines, err)
			}
			continue
		}
		stats.Records++
		if err := onRecord(a); err != nil {
			return stats, err
		}
	}
	if err := sc.Err(); err != nil {
		return stats, apperr.New(apperr.Retrieval, "read "+source, fmt.Errorf("line %d: %w", stats.Lines, err))
	}
	return stats, nil
}
