// Package demux splits pooled sequencing reads into per-sample FASTQ files
// by their multiplexing indexes.
package demux

import (
	"fmt"

	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/platemap"
	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/seqio"
)

// sampleIndex is one sample's expected index sequences.
type sampleIndex struct {
	name string
	fwd  []byte
	rev  []byte
}

// Assigner matches read prefixes against every sample's indexes.
type Assigner struct {
	samples    []sampleIndex
	mismatches int
	paired     bool
}

// NewAssigner resolves the sheet's index names against the index FASTA.
// Every sample must name a forward index; reverse indexes are required
// when paired is true.
func NewAssigner(sheet []platemap.SheetRow, indexes []seqio.Record, mismatches int, paired bool) (*Assigner, error) {
	byName := map[string][]byte{}
	for _, rec := range indexes {
		byName[rec.ID] = rec.Seq
	}

	a := &Assigner{mismatches: mismatches, paired: paired}
	for _, row := range sheet {
		si := sampleIndex{name: row.Sample}

		fwd, ok := byName[row.FwdIndex]
		if !ok {
			return nil, fmt.Errorf("sample %s: index %q is not in the index FASTA", row.Sample, row.FwdIndex)
		}
		si.fwd = fwd

		if paired {
			if row.RevIndex == "" {
				return nil, fmt.Errorf("sample %s: paired-end run but no reverse index", row.Sample)
			}
			rev, ok := byName[row.RevIndex]
			if !ok {
				return nil, fmt.Errorf("sample %s: index %q is not in the index FASTA", row.Sample, row.RevIndex)
			}
			si.rev = rev
		}

		a.samples = append(a.samples, si)
	}
	return a, nil
}

// Assign returns the index of the sample whose indexes best match the read
// prefixes, and the forward/reverse trim lengths. ok is false when no
// sample matches within tolerance or when the best match is ambiguous.
func (a *Assigner) Assign(r1, r2 []byte) (sample int, trimFwd, trimRev int, ok bool) {
	best, bestDist, ties := -1, 0, 0
	for i, si := range a.samples {
		d := prefixDist(r1, si.fwd)
		if d < 0 || d > a.mismatches {
			continue
		}
		if a.paired {
			d2 := prefixDist(r2, si.rev)
			if d2 < 0 || d2 > a.mismatches {
				continue
			}
			d += d2
		}

		switch {
		case best < 0 || d < bestDist:
			best, bestDist, ties = i, d, 1
		case d == bestDist:
			ties++
		}
	}

	if best < 0 || ties > 1 {
		return 0, 0, 0, false
	}
	si := a.samples[best]
	return best, len(si.fwd), len(si.rev), true
}

// Name returns the sample name for an Assign result.
func (a *Assigner) Name(sample int) string { return a.samples[sample].name }

// Names returns every sample name, in sheet order.
func (a *Assigner) Names() []string {
	names := make([]string, len(a.samples))
	for i, si := range a.samples {
		names[i] = si.name
	}
	return names
}

// prefixDist is the Hamming distance between index and the same-length
// prefix of read, or -1 when the read is shorter than the index.
func prefixDist(read, index []byte) int {
	if len(read) < len(index) {
		return -1
	}
	return seqio.Hamming(read[:len(index)], index)
}
