package tags

import (
	"regexp"
)

var lineSpecRe = regexp.MustCompile(`^(\d{1,3})"-([A-Z]{1,3})-(\d{4,6})$`)

// LineSpec is the parsed form of a line number such as 6"-PG-10001.
type LineSpec struct {
	Size        string `json:"size"`
	ServiceCode string `json:"service_code"`
	Number      string `json:"number"`
	Material    string `json:"material"`
}

// ParseLine splits a normalised line number into its parts. The material
// is inferred from the service code, "TBD" when the code is unknown.
func ParseLine(tag string) (LineSpec, bool) {
	m := lineSpecRe.FindStringSubmatch(tag)
	if m == nil {
		return LineSpec{}, false
	}
	material, ok := LineMaterials[m[2]]
	if !ok {
		material = "TBD"
	}
	return LineSpec{
		Size:        m[1] + `"`,
		ServiceCode: m[2],
		Number:      m[3],
		Material:    material,
	}, true
}
