package seqio

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// FastqWriter writes FASTQ records to a file, gzip-compressed when the
// path ends in .gz.
type FastqWriter struct {
	w       *bufio.Writer
	closers []io.Closer
}

// NewFastqWriter creates (truncates) path and returns a writer for it.
func NewFastqWriter(path string) (*FastqWriter, error) {
	fh, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	var w io.Writer = fh
	closers := []io.Closer{fh}
	if strings.HasSuffix(path, ".gz") {
		gw := gzip.NewWriter(fh)
		w = gw
		closers = []io.Closer{gw, fh}
	}

	return &FastqWriter{w: bufio.NewWriter(w), closers: closers}, nil
}

// Write appends one record.
func (fw *FastqWriter) Write(rec Record) error {
	_, err := fmt.Fprintf(fw.w, "@%s\n%s\n+\n%s\n", rec.ID, rec.Seq, rec.Qual)
	return err
}

// Close flushes and closes the underlying file (and gzip stream).
func (fw *FastqWriter) Close() error {
	if err := fw.w.Flush(); err != nil {
		return err
	}
	var err error
	for _, c := range fw.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
