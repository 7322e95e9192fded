// Package tags recognises P&ID tag identifiers in page text and aggregates
// them into a per-category catalogue.
package tags

// RawPage is one page of text recovered from a source document.
type RawPage struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

// Category is the closed set of tag kinds the extractor recognises.
type Category string

const (
	Equipment    Category = "equipment"
	Instrument   Category = "instrument"
	ControlValve Category = "control_valve"
	LineNumber   Category = "line_number"
)

// Categories returns every category in catalogue order.
func Categories() []Category {
	return []Category{Equipment, Instrument, ControlValve, LineNumber}
}

// Label returns the human-readable name of the category.
func (c Category) Label() string {
	switch c {
	case Equipment:
		return "Equipment"
	case Instrument:
		return "Instrument"
	case ControlValve:
		return "Control Valve"
	case LineNumber:
		return "Line Number"
	default:
		return string(c)
	}
}

// Occurrence records a sighting of a tag on a page.
type Occurrence struct {
	PageNumber int    `json:"page_number"`
	Context    string `json:"context"`
}

// Tag is a normalised identifier with every page it was seen on.
type Tag struct {
	Tag         string       `json:"tag"`
	Category    Category     `json:"category"`
	Type        string       `json:"type"`
	Description string       `json:"description"`
	Occurrences []Occurrence `json:"occurrences"`
}

// Pages returns the page numbers of the tag's occurrences in order.
func (t Tag) Pages() []int {
	pages := make([]int, len(t.Occurrences))
	for i, o := range t.Occurrences {
		pages[i] = o.PageNumber
	}
	return pages
}

// Summary holds counts derived from catalogue contents.
type Summary struct {
	TotalTags         int `json:"total_tags"`
	EquipmentCount    int `json:"equipment_count"`
	InstrumentCount   int `json:"instrument_count"`
	ControlValveCount int `json:"control_valve_count"`
	LineNumberCount   int `json:"line_number_count"`
}

// Count returns the count for a single category.
func (s Summary) Count(c Category) int {
	switch c {
	case Equipment:
		return s.EquipmentCount
	case Instrument:
		return s.InstrumentCount
	case ControlValve:
		return s.ControlValveCount
	case LineNumber:
		return s.LineNumberCount
	default:
		return 0
	}
}

// PageDetail is the number of distinct tags found on one page.
type PageDetail struct {
	PageNumber int `json:"page_number"`
	TagsFound  int `json:"tags_found"`
}

// Source identifies the document the pages came from.
type Source struct {
	FileName  string `json:"file_name"`
	SizeBytes int64  `json:"size_bytes"`
}

// DocumentMetadata describes the extraction run that produced a catalogue.
type DocumentMetadata struct {
	FileName             string `json:"file_name"`
	FileSizeBytes        int64  `json:"file_size_bytes"`
	PageCount            int    `json:"page_count"`
	ExtractionTimestamp  string `json:"extraction_timestamp"`
	ProcessingDurationMs int64  `json:"processing_duration_ms"`
}

// Catalogue is the aggregated result of one extraction run.
// It is not modified after Extract returns.
type Catalogue struct {
	Equipment     []Tag            `json:"equipment"`
	Instruments   []Tag            `json:"instruments"`
	ControlValves []Tag            `json:"control_valves"`
	LineNumbers   []Tag            `json:"line_numbers"`
	Summary       Summary          `json:"summary"`
	PageDetails   []PageDetail     `json:"page_details"`
	Document      DocumentMetadata `json:"document_metadata"`
}

// Tags returns the tag list for a category.
func (c *Catalogue) Tags(cat Category) []Tag {
	switch cat {
	case Equipment:
		return c.Equipment
	case Instrument:
		return c.Instruments
	case ControlValve:
		return c.ControlValves
	case LineNumber:
		return c.LineNumbers
	default:
		return nil
	}
}

// All returns every tag: equipment, instruments, valves, then lines.
func (c *Catalogue) All() []Tag {
	all := make([]Tag, 0, c.Summary.TotalTags)
	for _, cat := range Categories() {
		all = append(all, c.Tags(cat)...)
	}
	return all
}

func (c *Catalogue) setTags(cat Category, list []Tag) {
	switch cat {
	case Equipment:
		c.Equipment = list
	case Instrument:
		c.Instruments = list
	case ControlValve:
		c.ControlValves = list
	case LineNumber:
		c.LineNumbers = list
	}
}

// summarize recomputes the summary from the tag lists.
func (c *Catalogue) summarize() {
	c.Summary = Summary{
		EquipmentCount:    len(c.Equipment),
		InstrumentCount:   len(c.Instruments),
		ControlValveCount: len(c.ControlValves),
		LineNumberCount:   len(c.LineNumbers),
	}
	c.Summary.TotalTags = c.Summary.EquipmentCount + c.Summary.InstrumentCount +
		c.Summary.ControlValveCount + c.Summary.LineNumberCount
}
