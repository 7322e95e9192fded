package tags

import (
	"regexp"
	"strings"
	"unicode"
)

// Candidate is a shape match offered to a rule's validity predicate.
type Candidate struct {
	Raw    string // matched text as it appears in the scan text
	Tag    string // normalised form
	Prefix string // leading letters of Tag
	Number string // first digit run after Prefix
	Before byte   // byte preceding the match, 0 at start of text
}

// Rule pairs a shape pattern with a plausibility check.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Valid   func(Candidate) bool
}

// Grammar is the ordered rule list for every category.
type Grammar map[Category][]Rule

// DefaultGrammar returns the fixed P&ID tag grammar.
func DefaultGrammar() Grammar {
	return Grammar{
		Equipment: {
			{
				Name:    "equipment",
				Pattern: regexp.MustCompile(`\b([A-Z]{1,3})(?:\s*-\s*|\s)?(\d{3,4})([A-Z])?\b`),
				Valid:   validEquipment,
			},
		},
		Instrument: {
			{
				Name:    "instrument",
				Pattern: regexp.MustCompile(`\b([A-Z]{2,4})-?(\d{3,6})\b`),
				Valid:   validInstrument,
			},
		},
		ControlValve: {
			{
				Name:    "control-valve",
				Pattern: regexp.MustCompile(`\b([A-Z]{1,2}V)-?(\d{3,4})([A-Z])?\b`),
				Valid:   standalone,
			},
			{
				Name:    "hand-valve",
				Pattern: regexp.MustCompile(`\bHV-?(\d{3,4})\b`),
				Valid:   standalone,
			},
			{
				Name:    "shutoff-valve",
				Pattern: regexp.MustCompile(`\bXV-?(\d{3,4})\b`),
				Valid:   standalone,
			},
		},
		LineNumber: {
			{
				Name:    "line-number",
				Pattern: regexp.MustCompile(`\b(\d{1,3})"-([A-Z]{1,3})-(\d{4,6})\b`),
				Valid:   func(Candidate) bool { return true },
			},
		},
	}
}

// standalone rejects matches that are a segment of a longer hyphenated
// identifier, such as the service part of a line number.
func standalone(c Candidate) bool {
	return c.Before != '-' && c.Before != '"'
}

func validEquipment(c Candidate) bool {
	if !standalone(c) {
		return false
	}
	_, ok := EquipmentCodes[c.Prefix]
	return ok
}

func validInstrument(c Candidate) bool {
	if !standalone(c) || len(c.Prefix) < 2 {
		return false
	}
	if _, ok := MeasuredVariables[c.Prefix[0]]; !ok {
		return false
	}
	// Final control elements are valves.
	if c.Prefix[len(c.Prefix)-1] == 'V' {
		return false
	}
	for i := 1; i < len(c.Prefix); i++ {
		if _, ok := FunctionLetters[c.Prefix[i]]; !ok {
			return false
		}
	}
	return true
}

// Normalize uppercases a raw match and strips all whitespace.
func Normalize(raw string) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsSpace(r) {
			continue
		}
		sb.WriteRune(unicode.ToUpper(r))
	}
	return sb.String()
}

func newCandidate(scan string, start, end int) Candidate {
	raw := scan[start:end]
	tag := Normalize(raw)
	c := Candidate{Raw: raw, Tag: tag}
	if start > 0 {
		c.Before = scan[start-1]
	}

	i := 0
	for i < len(tag) && tag[i] >= 'A' && tag[i] <= 'Z' {
		i++
	}
	c.Prefix = tag[:i]
	for i < len(tag) && (tag[i] < '0' || tag[i] > '9') {
		i++
	}
	j := i
	for j < len(tag) && tag[j] >= '0' && tag[j] <= '9' {
		j++
	}
	c.Number = tag[i:j]
	return c
}

// match is a validated candidate with its position in the scan text.
type match struct {
	Candidate
	start, end int
}

// Matches applies every rule for cat to scan and returns the candidates
// that pass validation, in rule order then text order.
func (g Grammar) Matches(cat Category, scan string) []Candidate {
	ms := g.matches(cat, scan)
	out := make([]Candidate, len(ms))
	for i, m := range ms {
		out[i] = m.Candidate
	}
	return out
}

func (g Grammar) matches(cat Category, scan string) []match {
	var out []match
	for _, rule := range g[cat] {
		for _, loc := range rule.Pattern.FindAllStringIndex(scan, -1) {
			c := newCandidate(scan, loc[0], loc[1])
			if rule.Valid != nil && !rule.Valid(c) {
				continue
			}
			out = append(out, match{Candidate: c, start: loc[0], end: loc[1]})
		}
	}
	return out
}
