package tagsheet

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jackzampolin/tagsheet/internal/tags"
)

const pending = "Pending"

// RegisterColumns is the column schema of the Equipment, Instruments and
// Valves sheets.
var RegisterColumns = []Column{
	{"Tag Number", 16},
	{"Description", 36},
	{"Type", 26},
	{"Category", 16},
	{"Service", 20},
	{"Site", 14},
	{"Unit Code", 12},
	{"Process", 20},
	{"System", 24},
	{"Sub-System", 20},
	{"Criticality", 12},
	{"Safety Class", 14},
	{"Manufacturer", 18},
	{"Model", 16},
	{"Serial Number", 16},
	{"Size/Rating", 14},
	{"Material", 16},
	{"Design Pressure", 16},
	{"Design Temperature", 18},
	{"Operating Pressure", 18},
	{"Operating Temperature", 20},
	{"P&ID Reference", 24},
	{"Source Pages", 14},
	{"Occurrences", 12},
	{"Location", 16},
	{"Maintenance Strategy", 20},
	{"Verification Status", 18},
	{"Date Added", 12},
	{"Added By", 16},
	{"Comments", 50},
}

// LineColumns is the column schema of the LineList sheet. Process
// conditions are left blank for manual completion.
var LineColumns = []Column{
	{"Line Number", 18},
	{"Size", 8},
	{"Service Code", 12},
	{"Spec Number", 12},
	{"Material", 18},
	{"From", 16},
	{"To", 16},
	{"Operating Pressure", 18},
	{"Operating Temperature", 20},
	{"Design Pressure", 16},
	{"Design Temperature", 18},
	{"Insulation", 12},
	{"Test Pressure", 14},
	{"Source Pages", 14},
	{"Verification Status", 18},
	{"Comments", 50},
}

// MasterColumns is the column schema of the MasterTagList sheet.
var MasterColumns = []Column{
	{"Seq", 6},
	{"Tag Number", 18},
	{"Category", 16},
	{"Type", 26},
	{"Description", 36},
	{"Pages", 14},
	{"Occurrences", 12},
	{"Verification Status", 18},
}

var pairColumns = []Column{{"Field", 30}, {"Value", 60}}

func summarySheet(cat *tags.Catalogue, c scope) Sheet {
	s := cat.Summary
	doc := cat.Document
	return Sheet{
		Name:    "Summary",
		Columns: pairColumns,
		Rows: []Row{
			{Heading("Project")},
			pair("Project Name", Text(c.project)),
			pair("Client", Text(c.client)),
			pair("Process", Text(c.process)),
			pair("Site", Text(c.site)),
			pair("Unit Code", Text(c.unit)),
			{},
			{Heading("Source Document")},
			pair("File Name", Text(c.fileName)),
			pair("Page Count", Int(doc.PageCount)),
			pair("Extraction Timestamp", Text(orPlaceholder(doc.ExtractionTimestamp))),
			pair("Processing Duration (ms)", Int(int(doc.ProcessingDurationMs))),
			{},
			{Heading("Tag Counts")},
			pair("Total Tags", Int(s.TotalTags)),
			pair("Equipment", Int(s.EquipmentCount)),
			pair("Instruments", Int(s.InstrumentCount)),
			pair("Control Valves", Int(s.ControlValveCount)),
			pair("Line Numbers", Int(s.LineNumberCount)),
			{},
			{Heading("Review")},
			pair("Verification Status", Text(fmt.Sprintf("All unverified (0 of %d verified)", s.TotalTags))),
			pair("Generated By", Text(c.author)),
			pair("Generated At", Text(c.stamp)),
		},
	}
}

func registerSheet(name string, cat tags.Category, list []tags.Tag, c scope) Sheet {
	rows := make([]Row, 0, len(list))
	for _, t := range list {
		criticality, safety := rating(cat, t)
		rows = append(rows, Row{
			Text(t.Tag),
			Text(t.Description),
			Text(t.Type),
			Text(cat.Label()),
			Text(""),
			Text(c.site),
			Text(c.unit),
			Text(c.process),
			Text(System(cat, t.Tag)),
			Text(SubSystem(t.Tag)),
			Text(criticality),
			Text(safety),
			Text(""), Text(""), Text(""), Text(""), Text(""),
			Text(""), Text(""), Text(""), Text(""),
			Text(c.fileName),
			Text(joinPages(t)),
			Int(len(t.Occurrences)),
			Text(""),
			Text(""),
			Text(pending),
			Text(c.date),
			Text(c.author),
			Text(firstContext(t)),
		})
	}
	return Sheet{Name: name, Columns: RegisterColumns, Rows: rows, Tabular: true}
}

func rating(cat tags.Category, t tags.Tag) (criticality, safety string) {
	switch cat {
	case tags.Instrument:
		return InstrumentCriticality(t.Type), InstrumentSafetyClass(t.Type)
	case tags.ControlValve:
		return ValveCriticality(t.Tag), ValveSafetyClass(t.Tag)
	default:
		return equipmentCriticality, equipmentCriticality
	}
}

func lineListSheet(list []tags.Tag, c scope) Sheet {
	rows := make([]Row, 0, len(list))
	for _, t := range list {
		spec, _ := tags.ParseLine(t.Tag)
		rows = append(rows, Row{
			Text(t.Tag),
			Text(spec.Size),
			Text(spec.ServiceCode),
			Text(spec.Number),
			Text(spec.Material),
			Text(""), Text(""), Text(""), Text(""),
			Text(""), Text(""), Text(""), Text(""),
			Text(joinPages(t)),
			Text(pending),
			Text(firstContext(t)),
		})
	}
	return Sheet{Name: "LineList", Columns: LineColumns, Rows: rows, Tabular: true}
}

func masterSheet(cat *tags.Catalogue) Sheet {
	all := cat.All()
	rows := make([]Row, 0, len(all))
	for i, t := range all {
		rows = append(rows, Row{
			Int(i + 1),
			Text(t.Tag),
			Text(t.Category.Label()),
			Text(t.Type),
			Text(t.Description),
			Text(joinPages(t)),
			Int(len(t.Occurrences)),
			Text(pending),
		})
	}
	return Sheet{Name: "MasterTagList", Columns: MasterColumns, Rows: rows, Tabular: true}
}

func statisticsSheet(cat *tags.Catalogue) Sheet {
	s := cat.Summary
	total := s.TotalTags

	rows := []Row{
		{Heading("Tag Distribution")},
		{Heading("Category"), Heading("Count"), Heading("Percentage")},
	}
	for _, c := range []struct {
		label string
		n     int
	}{
		{"Equipment", s.EquipmentCount},
		{"Instruments", s.InstrumentCount},
		{"Control Valves", s.ControlValveCount},
		{"Line Numbers", s.LineNumberCount},
	} {
		rows = append(rows, Row{Text(c.label), Int(c.n), Text(Percent(c.n, total))})
	}
	rows = append(rows,
		Row{Text("Total"), Int(total), Text(Percent(total, total))},
		Row{},
		Row{Heading("Page Breakdown")},
		Row{Heading("Page"), Heading("Tags Found")},
	)
	for _, d := range cat.PageDetails {
		rows = append(rows, Row{Int(d.PageNumber), Int(d.TagsFound)})
	}

	return Sheet{
		Name:    "Statistics",
		Columns: []Column{{"Statistic", 24}, {"Count", 12}, {"Percentage", 12}},
		Rows:    rows,
	}
}

// firstLetters and functionLetters are the commonly used subset of the
// ISA 5.1 tables echoed on the Configuration sheet.
const (
	firstLetters    = "AEFHLPSTWZ"
	functionLetters = "ACEHILRSTV"
)

func configurationSheet(c scope) Sheet {
	rows := []Row{
		{Heading("Project Configuration")},
		pair("Project Name", Text(c.project)),
		pair("Client", Text(c.client)),
		pair("Process", Text(c.process)),
		pair("Site", Text(c.site)),
		pair("Unit Code", Text(c.unit)),
		{},
		{Heading("ISA 5.1 First Letters")},
	}
	for i := 0; i < len(firstLetters); i++ {
		l := firstLetters[i]
		rows = append(rows, pair(string(l), Text(tags.MeasuredVariables[l])))
	}
	rows = append(rows, Row{}, Row{Heading("ISA 5.1 Function Letters")})
	for i := 0; i < len(functionLetters); i++ {
		l := functionLetters[i]
		rows = append(rows, pair(string(l), Text(tags.FunctionLetters[l])))
	}
	rows = append(rows, Row{}, Row{Heading("Equipment Codes")})
	codes := make([]string, 0, len(tags.EquipmentCodes))
	for code := range tags.EquipmentCodes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		rows = append(rows, pair(code, Text(tags.EquipmentCodes[code])))
	}
	rows = append(rows, Row{}, Row{Heading("Criticality Ratings")})
	for _, r := range CriticalityLegend {
		rows = append(rows, pair(r.Rating, Text(r.Description)))
	}
	return Sheet{Name: "Configuration", Columns: pairColumns, Rows: rows}
}

// Percent formats n as a share of total with at most one decimal.
func Percent(n, total int) string {
	if total == 0 {
		return "0%"
	}
	v := strconv.FormatFloat(float64(n)*100/float64(total), 'f', 1, 64)
	return strings.TrimSuffix(v, ".0") + "%"
}

func joinPages(t tags.Tag) string {
	pages := t.Pages()
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ", ")
}

func firstContext(t tags.Tag) string {
	if len(t.Occurrences) == 0 {
		return ""
	}
	return t.Occurrences[0].Context
}
