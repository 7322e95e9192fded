package document

import (
	"strings"

	"github.com/jackzampolin/tagsheet/internal/tags"
)

// SplitText splits plain text into pages on form feeds. A trailing form
// feed does not start an extra page.
func SplitText(text string) []tags.RawPage {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\f")
	if len(parts) > 1 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 1 && parts[0] == "" {
		return nil
	}

	pages := make([]tags.RawPage, len(parts))
	for i, p := range parts {
		pages[i] = tags.RawPage{PageNumber: i + 1, Text: p}
	}
	return pages
}
