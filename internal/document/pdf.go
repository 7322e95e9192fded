package document

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/jackzampolin/tagsheet/internal/tags"
)

// ReadPDF returns the text of every page. Pages whose content stream holds
// no text (scanned drawings) come back empty rather than failing.
func ReadPDF(data []byte) ([]tags.RawPage, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	pages := make([]tags.RawPage, 0, ctx.PageCount)
	for nr := 1; nr <= ctx.PageCount; nr++ {
		pages = append(pages, tags.RawPage{
			PageNumber: nr,
			Text:       pageText(ctx, nr),
		})
	}
	return pages, nil
}

func pageText(ctx *model.Context, nr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, nr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return streamText(data)
}

// streamText pulls the operands of the text-showing operators out of a
// page content stream. Positioning operators become spaces.
func streamText(data []byte) string {
	var (
		sb       strings.Builder
		operands []string
	)
	sc := &contentScanner{data: data}
	for {
		tok, ok := sc.next()
		if !ok {
			break
		}
		switch tok.kind {
		case tokString:
			operands = append(operands, tok.text)
			continue
		case tokOperand:
			continue
		}
		switch tok.text {
		case "'", `"`:
			// Both move to the next line before showing.
			sb.WriteByte(' ')
			fallthrough
		case "Tj", "TJ":
			// A TJ array with large kerning gaps still reads as one run.
			for _, op := range operands {
				sb.WriteString(op)
			}
			sb.WriteByte(' ')
		case "Td", "TD", "Tm", "T*", "ET":
			sb.WriteByte(' ')
		case "ID":
			sc.skipInlineImage()
		}
		operands = operands[:0]
	}
	return clean(sb.String())
}

type tokenKind int

const (
	tokOperator tokenKind = iota
	tokOperand
	tokString
)

type token struct {
	kind tokenKind
	text string
}

// contentScanner splits a content stream into operators, string operands
// and everything else (numbers, names, array and dictionary delimiters).
type contentScanner struct {
	data []byte
	pos  int
}

func (sc *contentScanner) next() (token, bool) {
	for sc.pos < len(sc.data) {
		c := sc.data[sc.pos]
		switch {
		case isPDFSpace(c):
			sc.pos++
		case c == '%':
			for sc.pos < len(sc.data) && sc.data[sc.pos] != '\n' && sc.data[sc.pos] != '\r' {
				sc.pos++
			}
		case c == '(':
			return token{kind: tokString, text: unescape(sc.literal())}, true
		case c == '<' && sc.peek(1) == '<', c == '>' && sc.peek(1) == '>':
			sc.pos += 2
			return token{kind: tokOperand}, true
		case c == '<':
			return token{kind: tokString, text: sc.hex()}, true
		case c == '[', c == ']', c == '{', c == '}', c == '>', c == ')':
			sc.pos++
			return token{kind: tokOperand}, true
		case c == '/':
			sc.pos++
			sc.regular()
			return token{kind: tokOperand}, true
		default:
			word := sc.regular()
			if word == "" {
				sc.pos++
				continue
			}
			if isNumber(word) || word == "true" || word == "false" || word == "null" {
				return token{kind: tokOperand}, true
			}
			return token{kind: tokOperator, text: word}, true
		}
	}
	return token{}, false
}

func (sc *contentScanner) peek(n int) byte {
	if sc.pos+n < len(sc.data) {
		return sc.data[sc.pos+n]
	}
	return 0
}

// literal consumes a (...) string, honouring nested parentheses and
// escapes, and returns its raw body.
func (sc *contentScanner) literal() []byte {
	sc.pos++ // (
	start, depth := sc.pos, 1
	for sc.pos < len(sc.data) {
		switch sc.data[sc.pos] {
		case '\\':
			sc.pos++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				body := sc.data[start:sc.pos]
				sc.pos++
				return body
			}
		}
		sc.pos++
	}
	return sc.data[start:]
}

// hex consumes a <...> string and decodes it. An odd final digit is
// padded with zero.
func (sc *contentScanner) hex() string {
	sc.pos++ // <
	var digits []byte
	for sc.pos < len(sc.data) && sc.data[sc.pos] != '>' {
		if c := sc.data[sc.pos]; isHexDigit(c) {
			digits = append(digits, c)
		}
		sc.pos++
	}
	sc.pos++ // >
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, len(digits)/2)
	for i := range out {
		out[i] = hexValue(digits[2*i])<<4 | hexValue(digits[2*i+1])
	}
	return string(out)
}

// regular consumes a run of regular characters.
func (sc *contentScanner) regular() string {
	start := sc.pos
	for sc.pos < len(sc.data) && !isPDFSpace(sc.data[sc.pos]) && !isPDFDelimiter(sc.data[sc.pos]) {
		sc.pos++
	}
	return string(sc.data[start:sc.pos])
}

// skipInlineImage jumps past the binary data of a BI ... ID ... EI image.
func (sc *contentScanner) skipInlineImage() {
	for sc.pos+2 < len(sc.data) {
		if isPDFSpace(sc.data[sc.pos]) && sc.data[sc.pos+1] == 'E' && sc.data[sc.pos+2] == 'I' &&
			(sc.pos+3 == len(sc.data) || isPDFSpace(sc.data[sc.pos+3])) {
			sc.pos += 3
			return
		}
		sc.pos++
	}
	sc.pos = len(sc.data)
}

func isPDFSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', 0:
		return true
	}
	return false
}

func isPDFDelimiter(c byte) bool {
	return strings.IndexByte("()<>[]{}/%", c) >= 0
}

func isNumber(word string) bool {
	for i := 0; i < len(word); i++ {
		c := word[i]
		if (c < '0' || c > '9') && c != '.' && !(i == 0 && (c == '+' || c == '-')) {
			return false
		}
	}
	return true
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	}
	return c - '0'
}

// unescape resolves the backslash escapes of a PDF literal string.
func unescape(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch c := raw[i]; c {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(c)
		default:
			if c < '0' || c > '7' {
				sb.WriteByte(c)
				continue
			}
			// Octal, up to three digits.
			val := int(c - '0')
			for n := 1; n < 3 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		}
	}
	return sb.String()
}

// clean collapses whitespace and drops non-printable runes.
func clean(text string) string {
	var sb strings.Builder
	space := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			if !space && sb.Len() > 0 {
				sb.WriteByte(' ')
				space = true
			}
		case unicode.IsPrint(r):
			sb.WriteRune(r)
			space = false
		}
	}
	return strings.TrimSpace(sb.String())
}
