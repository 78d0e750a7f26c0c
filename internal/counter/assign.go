package counter

import (
	"bytes"
	"fmt"

	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/seqio"
)

// Assigner maps extracted barcode sequences to BCIDs of the barcode list.
// Implemented by the Hamming assigner below and by the bowtie2 wrapper.
type Assigner interface {
	// Assign returns raw barcode -> BCID for every raw sequence it can
	// place. Unassignable sequences are simply absent from the map.
	Assign(raw [][]byte) (map[string]string, error)
}

// HammingAssigner assigns barcodes to their closest list entry by Hamming
// distance, requiring a unique best hit within tolerance.
type HammingAssigner struct {
	list  []seqio.Record
	maxMM int
}

// NewHammingAssigner validates the barcode list: IDs must be unique and
// sequences equal-length (the locus has one length).
func NewHammingAssigner(list []seqio.Record, maxMM int) (*HammingAssigner, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("barcode list is empty")
	}

	seen := map[string]bool{}
	for _, rec := range list {
		if seen[rec.ID] {
			return nil, fmt.Errorf("duplicate BCID %q in barcode list", rec.ID)
		}
		seen[rec.ID] = true
		if len(rec.Seq) != len(list[0].Seq) {
			return nil, fmt.Errorf("barcode %q length %d differs from %q length %d",
				rec.ID, len(rec.Seq), list[0].ID, len(list[0].Seq))
		}
	}
	return &HammingAssigner{list: list, maxMM: maxMM}, nil
}

// Assign places each unique raw sequence once and reuses the result.
func (h *HammingAssigner) Assign(raw [][]byte) (map[string]string, error) {
	out := map[string]string{}
	for _, bc := range raw {
		key := string(bytes.ToUpper(bc))
		if _, done := out[key]; done {
			continue
		}
		if id, ok := h.assignOne([]byte(key)); ok {
			out[key] = id
		}
	}
	return out, nil
}

func (h *HammingAssigner) assignOne(bc []byte) (string, bool) {
	best, bestDist, ties := "", h.maxMM+1, 0
	for _, rec := range h.list {
		d := seqio.Hamming(bc, rec.Seq)
		if d < 0 || d > h.maxMM {
			continue
		}
		switch {
		case d < bestDist:
			best, bestDist, ties = rec.ID, d, 1
		case d == bestDist:
			ties++
		}
	}
	if ties != 1 {
		return "", false
	}
	return best, true
}
