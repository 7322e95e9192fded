package tagsheet

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestBuild_Workbook(t *testing.T) {
	project := Project{Name: "North Plant", SiteDefault: "S1", UnitCodeDefault: "U1"}
	art, err := NewBuilder(fixedClock).Build(extract(t, scenarioText), project, nil, Metadata{Author: "qa"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if art.FileName != "North_Plant_AllProcesses_TagSheet_2026-10-17.xlsx" {
		t.Errorf("FileName = %q", art.FileName)
	}
	if len(art.Sheets) != 8 {
		t.Errorf("got %d sheets, want 8", len(art.Sheets))
	}

	f := openWorkbook(t, art.Bytes)
	want := []string{"Summary", "Equipment", "Instruments", "Valves", "LineList", "MasterTagList", "Statistics", "Configuration"}
	if got := f.GetSheetList(); !reflect.DeepEqual(got, want) {
		t.Errorf("sheet list = %v, want %v", got, want)
	}

	rows, err := f.GetRows("Equipment")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("equipment rows = %d, want header + 2", len(rows))
	}
	if len(rows[0]) != 30 || rows[0][0] != "Tag Number" || rows[0][29] != "Comments" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "P-101" || rows[2][0] != "V-3701A" {
		t.Errorf("tag column = %q, %q", rows[1][0], rows[2][0])
	}

	master, err := f.GetRows("MasterTagList")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(master) != 6 || master[5][1] != `6"-PG-10001` || master[5][0] != "5" {
		t.Errorf("master list = %v", master)
	}
}

func TestWriteXLSX_HeaderOnlySheets(t *testing.T) {
	art, err := NewBuilder(fixedClock).Build(extract(t, "no tags here"), Project{}, nil, Metadata{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	f := openWorkbook(t, art.Bytes)

	for _, name := range []string{"Equipment", "Instruments", "Valves", "LineList", "MasterTagList"} {
		rows, err := f.GetRows(name)
		if err != nil {
			t.Fatalf("GetRows(%s) error = %v", name, err)
		}
		if len(rows) != 1 {
			t.Errorf("%s: %d rows, want header only", name, len(rows))
		}
	}
}

func TestWriteXLSX_Cells(t *testing.T) {
	sheets := []Sheet{{
		Name:    "Data",
		Columns: []Column{{"Name", 10}, {"Count", 8}},
		Rows: []Row{
			{Heading("Group")},
			{Text("alpha"), Int(3)},
			{Text(""), Int(0)},
		},
	}}
	data, err := WriteXLSX(sheets)
	if err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}
	f := openWorkbook(t, data)

	if v, _ := f.GetCellValue("Data", "B3"); v != "3" {
		t.Errorf("B3 = %q, want 3", v)
	}
	if v, _ := f.GetCellValue("Data", "A2"); v != "Group" {
		t.Errorf("A2 = %q, want Group", v)
	}
	if v, _ := f.GetCellValue("Data", "A4"); v != "" {
		t.Errorf("A4 = %q, want empty", v)
	}
}
