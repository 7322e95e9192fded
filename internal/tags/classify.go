package tags

import (
	"strings"
)

const (
	controlValveType = "Control Valve"
	processLineType  = "Process Line"
)

// Classify returns the subtype of a normalised tag in the given category.
func Classify(cat Category, tag string) string {
	switch cat {
	case Equipment:
		return EquipmentCodes[letterPrefix(tag)]
	case Instrument:
		return InstrumentType(letterPrefix(tag))
	case ControlValve:
		return controlValveType
	case LineNumber:
		return processLineType
	default:
		return ""
	}
}

// InstrumentType resolves an ISA letter code such as "PIC" into
// "Pressure Indicate/Control".
func InstrumentType(prefix string) string {
	if prefix == "" {
		return ""
	}
	variable := MeasuredVariables[prefix[0]]

	var functions []string
	for i := 1; i < len(prefix); i++ {
		if fn, ok := FunctionLetters[prefix[i]]; ok {
			functions = append(functions, fn)
		}
	}
	return strings.TrimSpace(variable + " " + strings.Join(functions, "/"))
}

// Describe builds the display label for a tag.
func Describe(cat Category, typ, tag string) string {
	if cat == LineNumber {
		return processLineType + " - " + tag
	}
	return typ + " - " + tag
}

func letterPrefix(tag string) string {
	i := 0
	for i < len(tag) && tag[i] >= 'A' && tag[i] <= 'Z' {
		i++
	}
	return tag[:i]
}
