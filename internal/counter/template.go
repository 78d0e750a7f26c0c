// Package counter extracts strain barcodes from demultiplexed reads and
// tallies them into a counts matrix.
package counter

import (
	"bytes"
	"fmt"

	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/seqio"
)

// flankLen is how many template bases on each side of the barcode locus
// are used to anchor reads. Shorter templates use what is available.
const flankLen = 20

// Template is the amplicon template with its barcode locus located. The
// locus is the maximal run of Ns in the template sequence.
type Template struct {
	// template bases immediately 5' of the barcode locus
	Upstream []byte

	// template bases immediately 3' of the barcode locus
	Downstream []byte

	// length of the N run, i.e. of the strain barcodes
	BarcodeLen int
}

// ParseTemplate reads the amplicon template FASTA (first record) and
// locates the barcode locus.
func ParseTemplate(path string) (Template, error) {
	records, err := seqio.ReadFasta(path)
	if err != nil {
		return Template{}, err
	}
	if len(records) == 0 {
		return Template{}, fmt.Errorf("template %s has no FASTA records", path)
	}

	seq := bytes.ToUpper(records[0].Seq)

	// find the longest run of Ns
	start, length := -1, 0
	for i := 0; i < len(seq); {
		if seq[i] != 'N' {
			i++
			continue
		}
		j := i
		for j < len(seq) && seq[j] == 'N' {
			j++
		}
		if j-i > length {
			start, length = i, j-i
		}
		i = j
	}
	if start < 0 {
		return Template{}, fmt.Errorf("template %s has no N run marking the barcode locus", records[0].ID)
	}

	up := seq[:start]
	if len(up) > flankLen {
		up = up[len(up)-flankLen:]
	}
	down := seq[start+length:]
	if len(down) > flankLen {
		down = down[:flankLen]
	}
	if len(up) == 0 {
		return Template{}, fmt.Errorf("template %s has no sequence 5' of the barcode locus", records[0].ID)
	}

	return Template{
		Upstream:   append([]byte(nil), up...),
		Downstream: append([]byte(nil), down...),
		BarcodeLen: length,
	}, nil
}

// findFlank returns the best-scoring position of flank within seq allowing
// up to maxMM mismatches, or -1. Earlier positions win ties.
func findFlank(seq, flank []byte, maxMM int) int {
	if len(flank) == 0 || len(seq) < len(flank) {
		return -1
	}

	// exact fast path
	if i := bytes.Index(seq, flank); i >= 0 {
		return i
	}
	if maxMM == 0 {
		return -1
	}

	best, bestMM := -1, maxMM+1
window:
	for pos := 0; pos <= len(seq)-len(flank); pos++ {
		mm := 0
		for j := range flank {
			if seq[pos+j] != flank[j] {
				mm++
				if mm >= bestMM {
					continue window
				}
			}
		}
		best, bestMM = pos, mm
	}
	return best
}

// Extract pulls the barcode bases out of a read. The read is matched on
// the forward strand first, then reverse-complemented and retried. The
// downstream flank is verified when the read is long enough to hold it.
func (t Template) Extract(read []byte, maxMM int) (barcode []byte, ok bool) {
	read = bytes.ToUpper(read)
	if bc, ok := t.extractFwd(read, maxMM); ok {
		return bc, true
	}
	return t.extractFwd(seqio.RevComp(read), maxMM)
}

func (t Template) extractFwd(read []byte, maxMM int) ([]byte, bool) {
	pos := findFlank(read, t.Upstream, maxMM)
	if pos < 0 {
		return nil, false
	}

	start := pos + len(t.Upstream)
	end := start + t.BarcodeLen
	if end > len(read) {
		return nil, false
	}

	// verify the downstream flank when the read extends past the locus
	if avail := len(read) - end; avail > 0 && len(t.Downstream) > 0 {
		down := t.Downstream
		if avail < len(down) {
			down = down[:avail]
		}
		if seqio.Hamming(read[end:end+len(down)], down) > maxMM {
			return nil, false
		}
	}

	return append([]byte(nil), read[start:end]...), true
}
