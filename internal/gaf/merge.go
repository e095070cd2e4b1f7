package gaf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

type MergeStats struct {
	Files   int
	Headers int
	Lines   int
}

// Merge concatenates every file under dir matching pattern into out.
// Header lines are de-duplicated and written first in sorted order; data
// lines keep file order. Files are visited in lexical path order.
func Merge(dir, pattern, out string) (MergeStats, error) {
	var stats MergeStats
	matches, err := doublestar.Glob(os.DirFS(dir), pattern)
	if err != nil {
		return stats, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)

	absOut, err := filepath.Abs(out)
	if err != nil {
		return stats, fmt.Errorf("failed to resolve %s: %w", out, err)
	}
	headers := make(map[string]struct{})
	var data []string
	for _, m := range matches {
		p := filepath.Join(dir, filepath.FromSlash(m))
		abs, err := filepath.Abs(p)
		if err != nil {
			return stats, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		if abs == absOut {
			continue
		}
		if err := collect(p, headers, &data); err != nil {
			return stats, err
		}
		stats.Files++
	}

	sorted := make([]string, 0, len(headers))
	for h := range headers {
		sorted = append(sorted, h)
	}
	sort.Strings(sorted)
	stats.Headers = len(sorted)
	stats.Lines = len(data)

	f, err := os.Create(out)
	if err != nil {
		return stats, fmt.Errorf("failed to create %s: %w", out, err)
	}
	if err := writeLines(f, sorted, data); err != nil {
		f.Close()
		return stats, fmt.Errorf("failed to write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return stats, fmt.Errorf("failed to close %s: %w", out, err)
	}
	return stats, nil
}

func writeLines(w io.Writer, groups ...[]string) error {
	bw := bufio.NewWriter(w)
	for _, lines := range groups {
		for _, l := range lines {
			if _, err := fmt.Fprintln(bw, l); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func collect(path string, headers map[string]struct{}, data *[]string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return eachLine(f, func(line string) {
		switch {
		case strings.TrimSpace(line) == "":
		case strings.HasPrefix(line, "!"):
			headers[strings.TrimSpace(line)] = struct{}{}
		default:
			*data = append(*data, line)
		}
	})
}

func eachLine(r io.Reader, fn func(string)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		fn(sc.Text())
	}
	return sc.Err()
}
