package seqio

import (
	"bufio"
	"bytes"
	"fmt"
)

// ReadFasta loads every record of a FASTA file into memory. Barcode lists,
// index FASTAs and amplicon templates are all small, so there is no
// streaming variant. Multi-line sequences are joined; the record ID is the
// first whitespace-delimited token of the header.
func ReadFasta(path string) ([]Record, error) {
	rc, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var (
		records []Record
		id      string
		seq     []byte
	)

	flush := func() {
		if id == "" && len(seq) == 0 {
			return
		}
		records = append(records, Record{ID: id, Seq: append([]byte(nil), seq...)})
	}

	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if id != "" || len(seq) > 0 {
				flush()
			}
			id = headerID(line[1:])
			seq = seq[:0]
			continue
		}
		if id == "" {
			return nil, fmt.Errorf("failed to parse %s: sequence line before the first FASTA header", path)
		}
		seq = append(seq, line...)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %v", path, err)
	}
	flush()

	return records, nil
}

// headerID returns the first whitespace-delimited token of a header line.
func headerID(hdr []byte) string {
	hdr = bytes.TrimSpace(hdr)
	if i := bytes.IndexAny(hdr, " \t"); i >= 0 {
		return string(hdr[:i])
	}
	return string(hdr)
}
