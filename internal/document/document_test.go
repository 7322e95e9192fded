package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jackzampolin/tagsheet/internal/tags"
)

// buildPDF writes a minimal uncompressed PDF with one text line per page.
func buildPDF(pages ...string) []byte {
	n := len(pages)
	// Objects: 1 catalog, 2 pages, 3 font, then (page, content) pairs.
	offsets := make([]int, 4+2*n)
	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	kids := make([]string, n)
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	offsets[2] = b.Len()
	fmt.Fprintf(&b, "2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", strings.Join(kids, " "), n)
	offsets[3] = b.Len()
	b.WriteString("3 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	for i, text := range pages {
		text = strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`).Replace(text)
		stream := "BT\n/F1 12 Tf\n72 720 Td\n(" + text + ") Tj\nET"
		page, content := 4+2*i, 5+2*i

		offsets[page] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 3 0 R >> >> >>\nendobj\n", page, content)
		offsets[content] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", content, len(stream), stream)
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(offsets))
	for _, off := range offsets[1:] {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets), xref)
	return []byte(b.String())
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadPDF(t *testing.T) {
	pages, err := ReadPDF(buildPDF("Pump P-101 to V-3701A", "PIC-10001 (loop 1)"))
	if err != nil {
		t.Fatalf("ReadPDF() error = %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if pages[0].PageNumber != 1 || pages[1].PageNumber != 2 {
		t.Errorf("page numbers = %d, %d", pages[0].PageNumber, pages[1].PageNumber)
	}
	if !strings.Contains(pages[0].Text, "P-101") {
		t.Errorf("page 1 text = %q", pages[0].Text)
	}
	if !strings.Contains(pages[1].Text, "PIC-10001 (loop 1)") {
		t.Errorf("page 2 text = %q", pages[1].Text)
	}
}

func TestReadPDF_Invalid(t *testing.T) {
	if _, err := ReadPDF([]byte("not a pdf")); err == nil {
		t.Error("expected error for invalid PDF")
	}
}

func TestStreamText(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{"Tj", "BT\n(P-101) Tj\nET", "P-101"},
		{"TJ array", "BT\n[(FCV)-120(-101)] TJ\nET", "FCV-101"},
		{"positioning", "BT\n(P-101) Tj\n0 -14 Td\n(V-200) Tj\nET", "P-101 V-200"},
		{"escapes", `BT` + "\n" + `(6\" line \(A\)) Tj` + "\nET", `6" line (A)`},
		{"octal", "BT\n(P\\055101) Tj\nET", "P-101"},
		{"no text", "q\n1 0 0 1 0 0 cm\nQ", ""},
		{"single line", "BT /F1 12 Tf 72 720 Td (Pump P-101) Tj ET", "Pump P-101"},
		{"runs on one line", "BT\n/F1 12 Tf 72 720 Td (Pump P-101) Tj 0 -14 Td (V-3701A) Tj\nET", "Pump P-101 V-3701A"},
		{"hex string", "BT\n<50756D7020502D313031> Tj\nET", "Pump P-101"},
		{"hex odd digit", "BT <502D313> Tj ET", "P-10"},
		{"hex in TJ array", "BT [<4643>-80<562D313031>] TJ ET", "FCV-101"},
		{"nested parens", "BT (PIC-10001 (loop 1)) Tj ET", "PIC-10001 (loop 1)"},
		{"next line quote", "BT (P-101) Tj (V-200) ' ET", "P-101 V-200"},
		{"comment", "BT % (ignored) Tj\n(E-300) Tj ET", "E-300"},
		{"inline image", "BI /W 1 /H 1 ID \x00(Tj) EI BT (K-2801) Tj ET", "K-2801"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := streamText([]byte(tt.stream)); got != tt.want {
				t.Errorf("streamText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single page", "P-101", []string{"P-101"}},
		{"form feeds", "one\ftwo\fthree", []string{"one", "two", "three"}},
		{"trailing form feed", "one\ftwo\f\n", []string{"one", "two"}},
		{"empty middle page", "one\f\fthree", []string{"one", "", "three"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for i, p := range SplitText(tt.in) {
				if p.PageNumber != i+1 {
					t.Errorf("page %d numbered %d", i, p.PageNumber)
				}
				got = append(got, p.Text)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodePagesJSON(t *testing.T) {
	in, err := DecodePagesJSON([]byte(`{"file_name":"unit.pdf","pages":[{"page_number":1,"text":"P-101"},{"page_number":2,"text":""}]}`))
	if err != nil {
		t.Fatalf("DecodePagesJSON() error = %v", err)
	}
	want := []tags.RawPage{{PageNumber: 1, Text: "P-101"}, {PageNumber: 2, Text: ""}}
	if in.FileName != "unit.pdf" || !reflect.DeepEqual(in.Pages, want) {
		t.Errorf("got %+v", in)
	}

	for name, payload := range map[string]string{
		"not json":        `{`,
		"missing pages":   `{"file_name":"x"}`,
		"page zero":       `{"pages":[{"page_number":0,"text":"x"}]}`,
		"missing text":    `{"pages":[{"page_number":1}]}`,
		"text not string": `{"pages":[{"page_number":1,"text":5}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodePagesJSON([]byte(payload)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	txt := writeFile(t, dir, "notes.txt", []byte("P-101\fV-200"))
	doc, err := Load(txt)
	if err != nil {
		t.Fatalf("Load(txt) error = %v", err)
	}
	if doc.Source.FileName != "notes.txt" || doc.Source.SizeBytes != 11 || len(doc.Pages) != 2 {
		t.Errorf("txt document = %+v", doc)
	}

	js := writeFile(t, dir, "pages.json", []byte(`{"file_name":"drawing.pdf","pages":[{"page_number":3,"text":"K-2801"}]}`))
	doc, err = Load(js)
	if err != nil {
		t.Fatalf("Load(json) error = %v", err)
	}
	if doc.Source.FileName != "drawing.pdf" || doc.Pages[0].PageNumber != 3 {
		t.Errorf("json document = %+v", doc)
	}

	pdf := writeFile(t, dir, "set.pdf", buildPDF("K-2801"))
	doc, err = Load(pdf)
	if err != nil {
		t.Fatalf("Load(pdf) error = %v", err)
	}
	if len(doc.Pages) != 1 {
		t.Errorf("pdf pages = %d, want 1", len(doc.Pages))
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
	docx := writeFile(t, dir, "drawing.docx", []byte("x"))
	if _, err := Load(docx); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("docx error = %v, want ErrUnsupportedFormat", err)
	}
	empty := writeFile(t, dir, "empty.txt", nil)
	if _, err := Load(empty); !errors.Is(err, ErrNoPages) {
		t.Errorf("empty error = %v, want ErrNoPages", err)
	}
}

func TestLoad_EmptyJSONPages(t *testing.T) {
	path := writeFile(t, t.TempDir(), "none.json", []byte(`{"file_name":"blank.pdf","pages":[]}`))
	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Source.FileName != "blank.pdf" || len(doc.Pages) != 0 {
		t.Errorf("document = %+v", doc)
	}
}

func TestLoadParts(t *testing.T) {
	dir := t.TempDir()
	p2 := writeFile(t, dir, "unit-100-2.txt", []byte("V-200\fE-300"))
	p10 := writeFile(t, dir, "unit-100-10.txt", []byte("K-2801"))
	p1 := writeFile(t, dir, "unit-100-1.txt", []byte("P-101"))

	doc, err := LoadParts([]string{p10, p2, p1})
	if err != nil {
		t.Fatalf("LoadParts() error = %v", err)
	}
	want := []tags.RawPage{
		{PageNumber: 1, Text: "P-101"},
		{PageNumber: 2, Text: "V-200"},
		{PageNumber: 3, Text: "E-300"},
		{PageNumber: 4, Text: "K-2801"},
	}
	if !reflect.DeepEqual(doc.Pages, want) {
		t.Errorf("pages = %+v", doc.Pages)
	}
	if doc.Source.FileName != "unit-100" || doc.Source.SizeBytes != 22 {
		t.Errorf("source = %+v", doc.Source)
	}

	if _, err := LoadParts(nil); err == nil {
		t.Error("expected error for no paths")
	}
}

func TestSupported(t *testing.T) {
	for path, want := range map[string]bool{
		"a.pdf": true, "B.PDF": true, "c.txt": true, "d.json": true, "e.docx": false, "f": false,
	} {
		if got := Supported(path); got != want {
			t.Errorf("Supported(%q) = %v, want %v", path, got, want)
		}
	}
}
