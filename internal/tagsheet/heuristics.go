package tagsheet

import (
	"strconv"
	"strings"

	"github.com/jackzampolin/tagsheet/internal/tags"
)

// keywordRule assigns Value when any keyword is a substring of the input.
type keywordRule struct {
	Keywords []string
	Value    string
}

// firstMatch returns the value of the first rule whose keywords hit s.
func firstMatch(rules []keywordRule, s, fallback string) string {
	for _, r := range rules {
		for _, k := range r.Keywords {
			if strings.Contains(s, k) {
				return r.Value
			}
		}
	}
	return fallback
}

var instrumentCriticality = []keywordRule{
	{Keywords: []string{"Safety", "Alarm"}, Value: "A"},
	{Keywords: []string{"Control", "Pressure"}, Value: "B"},
	{Keywords: []string{"Temperature", "Flow"}, Value: "C"},
	{Keywords: []string{"Level"}, Value: "D"},
}

var instrumentSafety = []keywordRule{
	{Keywords: []string{"Safety"}, Value: "SIL-2"},
	{Keywords: []string{"Alarm", "Shutdown"}, Value: "SIL-1"},
}

var valveSafety = []keywordRule{
	{Keywords: []string{"PSV", "PRV", "TSV"}, Value: "SIL-1"},
}

const (
	equipmentCriticality = "TBD"
	valveCriticality     = "B"
	nonSIS               = "Non-SIS"
)

// InstrumentCriticality grades an instrument A..E from its type.
func InstrumentCriticality(typ string) string {
	return firstMatch(instrumentCriticality, typ, "E")
}

// InstrumentSafetyClass returns the SIL class implied by an instrument type.
func InstrumentSafetyClass(typ string) string {
	return firstMatch(instrumentSafety, typ, nonSIS)
}

// ValveCriticality is fixed for every valve.
func ValveCriticality(string) string { return valveCriticality }

// ValveSafetyClass marks relief and safety valves as SIL-1.
func ValveSafetyClass(tag string) string {
	return firstMatch(valveSafety, tag, nonSIS)
}

// CriticalityLegend describes the ratings A to E.
var CriticalityLegend = []struct {
	Rating      string
	Description string
}{
	{"A", "Safety critical: failure can cause injury or environmental release"},
	{"B", "Production critical: failure stops or limits production"},
	{"C", "Process important: failure degrades efficiency or quality"},
	{"D", "Monitoring: failure reduces visibility without direct process impact"},
	{"E", "Non-critical: general service"},
}

var equipmentSystems = map[string]string{
	"P":  "Rotating Equipment",
	"K":  "Rotating Equipment",
	"B":  "Rotating Equipment",
	"M":  "Rotating Equipment",
	"G":  "Rotating Equipment",
	"AG": "Rotating Equipment",
	"V":  "Static Equipment",
	"D":  "Static Equipment",
	"S":  "Static Equipment",
	"T":  "Static Equipment",
	"C":  "Static Equipment",
	"R":  "Static Equipment",
	"TK": "Static Equipment",
	"E":  "Heat Transfer",
	"H":  "Heat Transfer",
	"F":  "Filtration",
	"PK": "Package Units",
}

var valveSystems = map[byte]string{
	'P': "Pressure Control",
	'F': "Flow Control",
	'L': "Level Control",
	'T': "Temperature Control",
	'H': "Manual Isolation",
	'X': "Emergency Shutdown",
}

// System groups a tag by its letter prefix. The grouping is cosmetic.
func System(cat tags.Category, tag string) string {
	prefix := letters(tag)
	switch cat {
	case tags.Equipment:
		if s, ok := equipmentSystems[prefix]; ok {
			return s
		}
		return "General Equipment"
	case tags.Instrument:
		if prefix != "" {
			if v, ok := tags.MeasuredVariables[prefix[0]]; ok {
				return v + " Instrumentation"
			}
		}
		return "Instrumentation"
	case tags.ControlValve:
		if prefix != "" {
			if s, ok := valveSystems[prefix[0]]; ok {
				return s
			}
		}
		return "Control Valves"
	case tags.LineNumber:
		return "Piping"
	}
	return placeholder
}

var subSystemBuckets = []struct {
	Below int
	Name  string
}{
	{1000, "Utilities"},
	{2000, "Feed System"},
	{3000, "Reaction System"},
	{4000, "Separation System"},
	{5000, "Product Recovery"},
	{6000, "Storage & Loading"},
}

// SubSystem buckets a tag by the magnitude of its number.
func SubSystem(tag string) string {
	n, ok := number(tag)
	if !ok {
		return placeholder
	}
	for _, b := range subSystemBuckets {
		if n < b.Below {
			return b.Name
		}
	}
	return "Auxiliary System"
}

func letters(tag string) string {
	i := 0
	for i < len(tag) && tag[i] >= 'A' && tag[i] <= 'Z' {
		i++
	}
	return tag[:i]
}

// number parses the first run of digits in tag.
func number(tag string) (int, bool) {
	start := strings.IndexAny(tag, "0123456789")
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(tag) && tag[end] >= '0' && tag[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(tag[start:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
