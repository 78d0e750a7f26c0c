// Package platemap parses the plate maps and sample names that tie
// sequencing samples back to wells of the assay plates.
package platemap

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// sampleRe matches sample names like "CoexP2_E8" or "CoexP2_E08".
var sampleRe = regexp.MustCompile(`^CoexP(\d+)_([A-H])(\d{1,2})$`)

// wellRe matches a bare well like "A1" or "A01".
var wellRe = regexp.MustCompile(`^([A-H])(\d{1,2})$`)

// PadWell zero-pads a well's column number to two digits (A1 -> A01) so
// well names sort in plate order. Anything that is not a well is returned
// unchanged.
func PadWell(well string) string {
	m := wellRe.FindStringSubmatch(strings.ToUpper(well))
	if m == nil {
		return well
	}
	col, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%s%02d", m[1], col)
}

// UnpadWell strips the leading zero from a well's column (A01 -> A1),
// matching the unpadded wells used in plate map files.
func UnpadWell(well string) string {
	m := wellRe.FindStringSubmatch(strings.ToUpper(well))
	if m == nil {
		return well
	}
	col, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%s%d", m[1], col)
}

// ParseSampleName splits a sample name like "CoexP2_E08" into its plate
// number and (unpadded) well.
func ParseSampleName(name string) (plate int, well string, err error) {
	m := sampleRe.FindStringSubmatch(name)
	if m == nil {
		return 0, "", fmt.Errorf("%q is not a CoexP<plate>_<well> sample name", name)
	}
	plate, _ = strconv.Atoi(m[1])
	col, _ := strconv.Atoi(m[3])
	return plate, fmt.Sprintf("%s%d", m[2], col), nil
}

// SampleName builds the canonical padded sample name for a plate and well.
func SampleName(plate int, well string) string {
	return fmt.Sprintf("CoexP%d_%s", plate, PadWell(well))
}
