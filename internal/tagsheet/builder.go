package tagsheet

import (
	"fmt"
	"time"

	"github.com/jackzampolin/tagsheet/internal/tags"
)

const placeholder = "N/A"

// Project carries the project-level defaults stamped on every row.
type Project struct {
	Name            string `json:"name"`
	ClientName      string `json:"client_name,omitempty"`
	SiteDefault     string `json:"site_default"`
	UnitCodeDefault string `json:"unit_code_default"`
}

// Process narrows the sheet to one process. Empty fields fall back to the
// project defaults.
type Process struct {
	Name     string `json:"name"`
	Site     string `json:"site,omitempty"`
	UnitCode string `json:"unit_code,omitempty"`
}

// Metadata describes who generated the sheet.
type Metadata struct {
	Author string `json:"author"`
}

// Artifact is a finished workbook.
type Artifact struct {
	Bytes    []byte
	FileName string
	Sheets   []Sheet
}

// Builder renders catalogues into workbooks. It is safe for concurrent use.
type Builder struct {
	now func() time.Time
}

// NewBuilder creates a builder. A nil clock means time.Now.
func NewBuilder(now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{now: now}
}

// Build renders the catalogue and serialises it as xlsx.
func (b *Builder) Build(cat *tags.Catalogue, project Project, process *Process, meta Metadata) (*Artifact, error) {
	at := b.now().UTC()
	sheets := sections(cat, resolve(project, process, meta, at))

	data, err := WriteXLSX(sheets)
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return &Artifact{
		Bytes:    data,
		FileName: FileName(project, process, at),
		Sheets:   sheets,
	}, nil
}

// Sections builds the sheets without serialising them.
func (b *Builder) Sections(cat *tags.Catalogue, project Project, process *Process, meta Metadata) []Sheet {
	return sections(cat, resolve(project, process, meta, b.now().UTC()))
}

// scope holds the resolved identifiers every section draws on.
type scope struct {
	project  string
	client   string
	process  string
	site     string
	unit     string
	author   string
	date     string
	stamp    string
	fileName string
}

// resolve dates everything in UTC so the file name, Date Added and
// Generated At agree.
func resolve(project Project, process *Process, meta Metadata, at time.Time) scope {
	at = at.UTC()
	c := scope{
		project: orPlaceholder(project.Name),
		client:  orPlaceholder(project.ClientName),
		process: "All Processes",
		site:    orPlaceholder(project.SiteDefault),
		unit:    orPlaceholder(project.UnitCodeDefault),
		author:  orPlaceholder(meta.Author),
		date:    at.Format("2006-01-02"),
		stamp:   at.Format(time.RFC3339),
	}
	if process != nil {
		c.process = orPlaceholder(process.Name)
		if process.Site != "" {
			c.site = process.Site
		}
		if process.UnitCode != "" {
			c.unit = process.UnitCode
		}
	}
	return c
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}

func sections(cat *tags.Catalogue, c scope) []Sheet {
	if cat == nil {
		cat = &tags.Catalogue{}
	}
	c.fileName = orPlaceholder(cat.Document.FileName)

	return []Sheet{
		summarySheet(cat, c),
		registerSheet("Equipment", tags.Equipment, cat.Equipment, c),
		registerSheet("Instruments", tags.Instrument, cat.Instruments, c),
		registerSheet("Valves", tags.ControlValve, cat.ControlValves, c),
		lineListSheet(cat.LineNumbers, c),
		masterSheet(cat),
		statisticsSheet(cat),
		configurationSheet(c),
	}
}
