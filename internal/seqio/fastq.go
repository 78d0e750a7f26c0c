package seqio

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
)

// ForEachRead streams the FASTQ records of path to visit, decompressing
// gzip transparently. It is cancelable between records. A truncated record
// or a missing '+' separator is an error naming the offending read index.
func ForEachRead(ctx context.Context, path string, visit func(Record) error) error {
	rc, err := openReader(path)
	if err != nil {
		return err
	}
	defer rc.Close()

	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	n := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, ok, err := scanRecord(sc, path, n)
		if err != nil {
			return err
		}
		if !ok {
			return sc.Err()
		}
		if err := visit(rec); err != nil {
			return err
		}
		n++
	}
}

// ForEachPair streams two FASTQ files in lock step, one read pair per call.
// The files must hold the same number of reads with matching IDs.
func ForEachPair(ctx context.Context, r1Path, r2Path string, visit func(r1, r2 Record) error) error {
	rc1, err := openReader(r1Path)
	if err != nil {
		return err
	}
	defer rc1.Close()
	rc2, err := openReader(r2Path)
	if err != nil {
		return err
	}
	defer rc2.Close()

	sc1 := bufio.NewScanner(rc1)
	sc1.Buffer(make([]byte, 64*1024), 16*1024*1024)
	sc2 := bufio.NewScanner(rc2)
	sc2.Buffer(make([]byte, 64*1024), 16*1024*1024)

	n := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec1, ok1, err := scanRecord(sc1, r1Path, n)
		if err != nil {
			return err
		}
		rec2, ok2, err := scanRecord(sc2, r2Path, n)
		if err != nil {
			return err
		}
		if ok1 != ok2 {
			return fmt.Errorf("paired FASTQ files %s and %s differ in read count", r1Path, r2Path)
		}
		if !ok1 {
			if err := sc1.Err(); err != nil {
				return err
			}
			return sc2.Err()
		}
		if baseID(rec1.ID) != baseID(rec2.ID) {
			return fmt.Errorf("read %d: paired IDs disagree: %q vs %q", n, rec1.ID, rec2.ID)
		}
		if err := visit(rec1, rec2); err != nil {
			return err
		}
		n++
	}
}

// scanRecord pulls the next 4-line FASTQ record off sc. ok is false at a
// clean EOF.
func scanRecord(sc *bufio.Scanner, path string, n int) (rec Record, ok bool, err error) {
	// skip blank lines between records (some tools emit a trailing newline)
	var head []byte
	for {
		if !sc.Scan() {
			return Record{}, false, nil
		}
		head = bytes.TrimRight(sc.Bytes(), "\r")
		if len(bytes.TrimSpace(head)) > 0 {
			break
		}
	}
	if head[0] != '@' {
		return Record{}, false, fmt.Errorf("%s: read %d: header %q does not start with '@'", path, n, string(head))
	}
	id := headerID(head[1:])

	if !sc.Scan() {
		return Record{}, false, fmt.Errorf("%s: read %d: truncated record (missing sequence line)", path, n)
	}
	seq := append([]byte(nil), bytes.TrimRight(sc.Bytes(), "\r")...)

	if !sc.Scan() {
		return Record{}, false, fmt.Errorf("%s: read %d: truncated record (missing '+' line)", path, n)
	}
	if sep := bytes.TrimRight(sc.Bytes(), "\r"); len(sep) == 0 || sep[0] != '+' {
		return Record{}, false, fmt.Errorf("%s: read %d: expected '+' separator, saw %q", path, n, string(sep))
	}

	if !sc.Scan() {
		return Record{}, false, fmt.Errorf("%s: read %d: truncated record (missing quality line)", path, n)
	}
	qual := append([]byte(nil), bytes.TrimRight(sc.Bytes(), "\r")...)

	if len(qual) != len(seq) {
		return Record{}, false, fmt.Errorf("%s: read %d: quality length %d != sequence length %d", path, n, len(qual), len(seq))
	}

	return Record{ID: id, Seq: seq, Qual: qual}, true, nil
}

// baseID strips the mate suffix ("/1", "/2") from a read ID so R1 and R2
// records can be compared. Illumina "1:N:0:..." style suffixes are already
// cut off by headerID's whitespace split.
func baseID(id string) string {
	if strings.HasSuffix(id, "/1") || strings.HasSuffix(id, "/2") {
		return id[:len(id)-2]
	}
	return id
}
