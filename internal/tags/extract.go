package tags

import (
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// contextRadius is how many bytes of text either side of a match are kept
// as occurrence context.
const contextRadius = 30

// ExtractorConfig configures an Extractor.
type ExtractorConfig struct {
	// Grammar defaults to DefaultGrammar().
	Grammar Grammar
	// Workers > 1 scans pages concurrently. Results are folded in input
	// order either way.
	Workers int
	// Now defaults to time.Now.
	Now func() time.Time
}

// Extractor turns page text into a tag catalogue. It holds no per-run
// state and is safe for concurrent use.
type Extractor struct {
	grammar Grammar
	workers int
	now     func() time.Time
}

// NewExtractor creates an extractor.
func NewExtractor(cfg ExtractorConfig) *Extractor {
	if cfg.Grammar == nil {
		cfg.Grammar = DefaultGrammar()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Extractor{
		grammar: cfg.Grammar,
		workers: cfg.Workers,
		now:     cfg.Now,
	}
}

// PageResult holds the distinct tags found on a single page, one
// occurrence each, in first-seen order per category.
type PageResult struct {
	PageNumber int
	Tags       map[Category][]Tag
}

// Found returns the number of distinct (category, tag) pairs on the page.
func (p PageResult) Found() int {
	n := 0
	for _, list := range p.Tags {
		n += len(list)
	}
	return n
}

// Extract scans pages in order and aggregates the result. Pages are
// expected in ascending page-number order; other orders are folded as given.
func (e *Extractor) Extract(src Source, pages []RawPage) *Catalogue {
	start := e.now()

	results := e.scanAll(pages)
	acc := newAccumulator()
	for _, r := range results {
		acc.add(r)
	}

	cat := acc.catalogue()
	cat.Document = DocumentMetadata{
		FileName:             src.FileName,
		FileSizeBytes:        src.SizeBytes,
		PageCount:            len(pages),
		ExtractionTimestamp:  start.UTC().Format(time.RFC3339),
		ProcessingDurationMs: e.now().Sub(start).Milliseconds(),
	}
	return cat
}

func (e *Extractor) scanAll(pages []RawPage) []PageResult {
	results := make([]PageResult, len(pages))
	if e.workers <= 1 || len(pages) < 2 {
		for i, p := range pages {
			results[i] = e.ScanPage(p)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, p := range pages {
		g.Go(func() error {
			results[i] = e.ScanPage(p)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// ScanPage recognises and classifies the tags on one page.
func (e *Extractor) ScanPage(page RawPage) PageResult {
	text := strings.Join(strings.Fields(page.Text), " ")
	scan := asciiUpper(text)

	res := PageResult{
		PageNumber: page.PageNumber,
		Tags:       make(map[Category][]Tag, len(e.grammar)),
	}
	for _, cat := range Categories() {
		seen := make(map[string]bool)
		for _, m := range e.grammar.matches(cat, scan) {
			if seen[m.Tag] {
				continue
			}
			seen[m.Tag] = true

			typ := Classify(cat, m.Tag)
			res.Tags[cat] = append(res.Tags[cat], Tag{
				Tag:         m.Tag,
				Category:    cat,
				Type:        typ,
				Description: Describe(cat, typ, m.Tag),
				Occurrences: []Occurrence{{
					PageNumber: page.PageNumber,
					Context:    contextWindow(text, m.start, m.end),
				}},
			})
		}
	}
	return res
}

// Merge folds one page result into a catalogue and returns the new
// catalogue. The input catalogue is not modified.
func Merge(c *Catalogue, page PageResult) *Catalogue {
	acc := newAccumulator()
	if c != nil {
		acc.load(c)
	}
	acc.add(page)
	out := acc.catalogue()
	if c != nil {
		out.Document = c.Document
	}
	return out
}

// accumulator is the fold state: tag lists keyed by (category, tag).
type accumulator struct {
	lists   map[Category][]Tag
	index   map[Category]map[string]int
	details []PageDetail
}

func newAccumulator() *accumulator {
	a := &accumulator{
		lists: make(map[Category][]Tag),
		index: make(map[Category]map[string]int),
	}
	for _, cat := range Categories() {
		a.lists[cat] = []Tag{}
		a.index[cat] = make(map[string]int)
	}
	return a
}

// load deep-copies an existing catalogue into the accumulator.
func (a *accumulator) load(c *Catalogue) {
	for _, cat := range Categories() {
		for _, t := range c.Tags(cat) {
			t.Occurrences = append([]Occurrence(nil), t.Occurrences...)
			a.index[cat][t.Tag] = len(a.lists[cat])
			a.lists[cat] = append(a.lists[cat], t)
		}
	}
	a.details = append(a.details, c.PageDetails...)
}

func (a *accumulator) add(page PageResult) {
	for _, cat := range Categories() {
		for _, t := range page.Tags[cat] {
			if i, ok := a.index[cat][t.Tag]; ok {
				existing := &a.lists[cat][i]
				existing.Occurrences = append(existing.Occurrences, t.Occurrences...)
				continue
			}
			t.Occurrences = append([]Occurrence(nil), t.Occurrences...)
			a.index[cat][t.Tag] = len(a.lists[cat])
			a.lists[cat] = append(a.lists[cat], t)
		}
	}
	a.details = append(a.details, PageDetail{
		PageNumber: page.PageNumber,
		TagsFound:  page.Found(),
	})
}

func (a *accumulator) catalogue() *Catalogue {
	c := &Catalogue{PageDetails: a.details}
	if c.PageDetails == nil {
		c.PageDetails = []PageDetail{}
	}
	for _, cat := range Categories() {
		c.setTags(cat, a.lists[cat])
	}
	c.summarize()
	return c
}

// asciiUpper uppercases a-z only, so byte offsets match the input.
func asciiUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

// contextWindow returns the text around [start, end), clipped to rune
// boundaries.
func contextWindow(text string, start, end int) string {
	lo := start - contextRadius
	if lo < 0 {
		lo = 0
	}
	for lo > 0 && lo < len(text) && !utf8.RuneStart(text[lo]) {
		lo++
	}
	hi := end + contextRadius
	if hi > len(text) {
		hi = len(text)
	}
	for hi < len(text) && !utf8.RuneStart(text[hi]) {
		hi++
	}
	return strings.TrimSpace(text[lo:hi])
}
