package tags

import (
	"reflect"
	"testing"
)

func TestGrammar_Matches(t *testing.T) {
	g := DefaultGrammar()

	tests := []struct {
		name string
		cat  Category
		scan string
		want []string
	}{
		{"equipment hyphen", Equipment, "PUMP P-101 RUNS", []string{"P-101"}},
		{"equipment no separator", Equipment, "P101 AND E2001", []string{"P101", "E2001"}},
		{"equipment trailing letter", Equipment, "V-3701A", []string{"V-3701A"}},
		{"equipment spaced hyphen", Equipment, "K - 2801", []string{"K-2801"}},
		{"equipment whitespace separator", Equipment, "TK 5001", []string{"TK5001"}},
		{"equipment unknown prefix", Equipment, "ZZ-9999 QQ-1234", nil},
		{"equipment inside line number", Equipment, `6"-P-1001`, nil},
		{"instrument", Instrument, "PIC-10001 FT2001", []string{"PIC-10001", "FT2001"}},
		{"instrument valve suffix", Instrument, "FCV-101 PV-200", nil},
		{"instrument unknown function letter", Instrument, "ZZ-9999 PB-100", nil},
		{"instrument inside line number", Instrument, `6"-PG-10001`, nil},
		{"control valve", ControlValve, "FCV-101 PCV2001B", []string{"FCV-101", "PCV2001B"}},
		{"hand and shutoff valves", ControlValve, "HV-301 XV302", []string{"HV-301", "XV302"}},
		{"line number", LineNumber, `6"-PG-10001, 12"-CW-200001`, []string{`6"-PG-10001`, `12"-CW-200001`}},
		{"line number without inch mark", LineNumber, "6-PG-10001", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			seen := make(map[string]bool)
			for _, c := range g.Matches(tt.cat, tt.scan) {
				if !seen[c.Tag] {
					seen[c.Tag] = true
					got = append(got, c.Tag)
				}
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"K-2801", "K-2801"},
		{"k - 2801", "K-2801"},
		{"pic-10001", "PIC-10001"},
		{"V-3701a", "V-3701A"},
		{"TK\t5001", "TK5001"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCandidateParts(t *testing.T) {
	scan := "SEE PIC-10001"
	c := newCandidate(scan, 4, len(scan))
	if c.Prefix != "PIC" || c.Number != "10001" || c.Before != ' ' {
		t.Errorf("candidate = %+v", c)
	}

	c = newCandidate(scan, 0, 3)
	if c.Before != 0 {
		t.Errorf("Before at start = %q, want 0", c.Before)
	}
}

func TestValidityPredicates(t *testing.T) {
	tests := []struct {
		name  string
		valid func(Candidate) bool
		c     Candidate
		want  bool
	}{
		{"equipment known prefix", validEquipment, Candidate{Tag: "P-101", Prefix: "P", Before: ' '}, true},
		{"equipment unknown prefix", validEquipment, Candidate{Tag: "ZZ-9999", Prefix: "ZZ", Before: ' '}, false},
		{"equipment after hyphen", validEquipment, Candidate{Tag: "P-101", Prefix: "P", Before: '-'}, false},
		{"instrument PIC", validInstrument, Candidate{Tag: "PIC-1", Prefix: "PIC"}, true},
		{"instrument LAHH", validInstrument, Candidate{Tag: "LAHH-1", Prefix: "LAHH"}, true},
		{"instrument ends in V", validInstrument, Candidate{Tag: "FCV-1", Prefix: "FCV"}, false},
		{"instrument unknown function", validInstrument, Candidate{Tag: "ZZ-1", Prefix: "ZZ"}, false},
		{"standalone after quote", standalone, Candidate{Before: '"'}, false},
		{"standalone after space", standalone, Candidate{Before: ' '}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.valid(tt.c); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
