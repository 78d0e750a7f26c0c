package seqio

var complement [256]byte

func init() {
	complement['A'] = 'T'
	complement['C'] = 'G'
	complement['G'] = 'C'
	complement['T'] = 'A'
	complement['a'] = 't'
	complement['c'] = 'g'
	complement['g'] = 'c'
	complement['t'] = 'a'
	complement['N'] = 'N'
	complement['n'] = 'n'
}

// RevComp returns the reverse complement of seq. Bases without a defined
// complement become 'N'.
func RevComp(seq []byte) []byte {
	n := len(seq)
	if n == 0 {
		return nil
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		c := complement[seq[n-1-i]]
		if c == 0 {
			c = 'N'
		}
		out[i] = c
	}
	return out
}

// Hamming counts mismatching positions between equal-length sequences a
// and b. It returns -1 when the lengths differ.
func Hamming(a, b []byte) int {
	if len(a) != len(b) {
		return -1
	}
	d := 0
	for i := range a {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}
