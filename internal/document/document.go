// Package document loads per-page text from source documents for tag
// extraction.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jackzampolin/tagsheet/internal/tags"
)

var (
	// ErrUnsupportedFormat is returned for file extensions with no reader.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrNoPages is returned when a PDF or text document contains no pages.
	ErrNoPages = errors.New("document has no pages")
)

// Document is a source file reduced to ordered page text.
type Document struct {
	Source tags.Source
	Pages  []tags.RawPage
}

// Supported reports whether path has an extension Load can read.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".txt", ".json":
		return true
	}
	return false
}

// Load reads a document from disk, dispatching on its extension.
func Load(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("document not found: %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Decode(filepath.Base(path), data, info.Size())
}

// Decode parses document bytes. name selects the format by extension.
func Decode(name string, data []byte, size int64) (*Document, error) {
	var (
		pages     []tags.RawPage
		jsonInput bool
		err       error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".pdf":
		pages, err = ReadPDF(data)
	case ".txt":
		pages = SplitText(string(data))
	case ".json":
		jsonInput = true
		var parsed *PagesInput
		parsed, err = DecodePagesJSON(data)
		if err == nil {
			pages = parsed.Pages
			if parsed.FileName != "" {
				name = parsed.FileName
			}
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	// An explicit empty page list is a valid, if empty, JSON document.
	if len(pages) == 0 && !jsonInput {
		return nil, fmt.Errorf("%s: %w", name, ErrNoPages)
	}
	return &Document{
		Source: tags.Source{FileName: name, SizeBytes: size},
		Pages:  pages,
	}, nil
}

// LoadParts loads a drawing set split across several files (unit-1.pdf,
// unit-2.pdf, ...) as one document. Parts are ordered by numeric suffix
// and pages are renumbered consecutively.
func LoadParts(paths []string) (*Document, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no document paths provided")
	}
	if len(paths) == 1 {
		return Load(paths[0])
	}

	sorted := sortByPartNumber(paths)
	merged := &Document{
		Source: tags.Source{FileName: baseName(sorted[0])},
	}
	for _, p := range sorted {
		doc, err := Load(p)
		if err != nil {
			return nil, err
		}
		offset := len(merged.Pages)
		for _, page := range doc.Pages {
			page.PageNumber += offset
			merged.Pages = append(merged.Pages, page)
		}
		merged.Source.SizeBytes += doc.Source.SizeBytes
	}
	return merged, nil
}

var partSuffix = regexp.MustCompile(`-(\d+)\.[A-Za-z]+$`)

// sortByPartNumber orders paths by their numeric suffix; paths without one
// come first, alphabetically.
func sortByPartNumber(paths []string) []string {
	sorted := make([]string, len(paths))
	copy(sorted, paths)

	sort.SliceStable(sorted, func(i, j int) bool {
		mi := partSuffix.FindStringSubmatch(sorted[i])
		mj := partSuffix.FindStringSubmatch(sorted[j])
		if mi != nil && mj != nil {
			ni, _ := strconv.Atoi(mi[1])
			nj, _ := strconv.Atoi(mj[1])
			return ni < nj
		}
		if mi != nil {
			return false
		}
		if mj != nil {
			return true
		}
		return sorted[i] < sorted[j]
	})
	return sorted
}

// baseName strips the directory, extension and part suffix:
// "sets/unit-100-2.pdf" -> "unit-100".
func baseName(path string) string {
	base := filepath.Base(path)
	if m := partSuffix.FindStringIndex(base); m != nil {
		return base[:m[0]]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
