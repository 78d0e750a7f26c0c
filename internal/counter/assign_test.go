package counter

import (
	"reflect"
	"testing"

	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/seqio"
)

func Test_HammingAssigner(t *testing.T) {
	list := []seqio.Record{
		{ID: "P3B3", Seq: []byte("AAAAAA")},
		{ID: "P3H1", Seq: []byte("TTTTTT")},
		{ID: "P3C1", Seq: []byte("AAATTT")},
	}
	h, err := NewHammingAssigner(list, 1)
	if err != nil {
		t.Fatal(err)
	}

	got, err := h.Assign([][]byte{
		[]byte("AAAAAA"), // exact
		[]byte("AAAAAT"), // 1 off P3B3
		[]byte("aaaaaa"), // case folded
		[]byte("AATATT"), // 1 off P3C1 only? no: 2 off -> unassigned
		[]byte("GGGGGG"), // nothing close
		[]byte("AAAATT"), // 1 off both P3B3? no: 2 off P3B3, 1 off P3C1 -> P3C1
	})
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{
		"AAAAAA": "P3B3",
		"AAAAAT": "P3B3",
		"AAAATT": "P3C1",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Assign() = %v, want %v", got, want)
	}
}

func Test_HammingAssigner_ties(t *testing.T) {
	list := []seqio.Record{
		{ID: "bc1", Seq: []byte("AAAA")},
		{ID: "bc2", Seq: []byte("AATT")},
	}
	h, err := NewHammingAssigner(list, 2)
	if err != nil {
		t.Fatal(err)
	}

	// AAAT is distance 1 from both entries
	got, err := h.Assign([][]byte{[]byte("AAAT")})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Assign() resolved a tied barcode: %v", got)
	}
}

func Test_NewHammingAssigner_errors(t *testing.T) {
	tests := []struct {
		name string
		list []seqio.Record
	}{
		{"empty list", nil},
		{
			"duplicate BCID",
			[]seqio.Record{
				{ID: "bc1", Seq: []byte("AAAA")},
				{ID: "bc1", Seq: []byte("TTTT")},
			},
		},
		{
			"uneven lengths",
			[]seqio.Record{
				{ID: "bc1", Seq: []byte("AAAA")},
				{ID: "bc2", Seq: []byte("TTTTTT")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewHammingAssigner(tt.list, 1); err == nil {
				t.Fatal("NewHammingAssigner() expected an error")
			}
		})
	}
}
