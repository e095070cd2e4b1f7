package retrieval

import (
	"bufio"
	"io"
	"os"

	"github.com/klauspost/pgzip"

	"github.com/geneontology/gopreprocess/internal/apperr"
)

var gzipMagic = []byte{0x1f, 0x8b}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open opens a local file, transparently decompressing gzip content.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.New(apperr.Retrieval, "open "+path, err)
	}
	brd := bufio.NewReaderSize(f, 1<<20)
	head, _ := brd.Peek(2)
	if len(head) == 2 && head[0] == gzipMagic[0] && head[1] == gzipMagic[1] {
		zr, err := pgzip.NewReader(brd)
		if err != nil {
			f.Close()
			return nil, apperr.New(apperr.Retrieval, "open "+path, err)
		}
		return &readCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
	}
	return &readCloser{Reader: brd, closers: []io.Closer{f}}, nil
}

func newGzipReader(r io.Reader) (*pgzip.Reader, error) {
	return pgzip.NewReader(bufio.NewReaderSize(r, 1<<20))
}
