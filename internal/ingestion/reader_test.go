package ingestion

import (
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestFormatFromFileName(t *testing.T) {
	cases := map[string]Format{
		"ships.csv":   FormatCSV,
		"SHIPS.XLSX":  FormatXLSX,
		"legacy.xls":  FormatXLSX,
		"a.b.c.xlsx":  FormatXLSX,
		"regions.CSV": FormatCSV,
	}
	for name, want := range cases {
		got, err := FormatFromFileName(name)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if got != want {
			t.Fatalf("%s: expected %s, got %s", name, want, got)
		}
	}

	_, err := FormatFromFileName("notes.txt")
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected FormatError, got %v", err)
	}
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat in chain, got %v", err)
	}
}

func TestReadRowsCSVStripsBOMAndPadsRaggedRows(t *testing.T) {
	data := "\xEF\xBB\xBFName,Code,Description\nNorth Reef,NR01\n"

	rows, err := ReadRows(FormatCSV, []byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.Index != 1 {
		t.Fatalf("expected index 1, got %d", row.Index)
	}
	if row.Values["name"] != "North Reef" || row.Values["code"] != "NR01" {
		t.Fatalf("unexpected values: %#v", row.Values)
	}
	if v, ok := row.Values["description"]; !ok || v != "" {
		t.Fatalf("expected padded empty description, got %#v", row.Values)
	}
}

func TestReadRowsKeepsInteriorBlankRows(t *testing.T) {
	data := "name,code\nA,1\n,\nB,2\n,\n"

	rows, err := ReadRows(FormatCSV, []byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows (trailing blank dropped), got %d", len(rows))
	}
	if !rows[1].Empty() || rows[1].Index != 2 {
		t.Fatalf("expected blank row 2, got %+v", rows[1])
	}
	if rows[2].Values["name"] != "B" || rows[2].Index != 3 {
		t.Fatalf("expected B at row 3, got %+v", rows[2])
	}
}

func TestReadRowsHeaderDetection(t *testing.T) {
	data := ",,\nRegistration Number,Home-Port\nKM-01,Ambon\n"

	rows, err := ReadRows(FormatCSV, []byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Values["registration_number"] != "KM-01" || rows[0].Values["home_port"] != "Ambon" {
		t.Fatalf("headers not normalised: %#v", rows[0].Values)
	}
}

func TestReadRowsWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &[]any{"name", "length", "year_built"}); err != nil {
		t.Fatalf("set header: %v", err)
	}
	if err := f.SetSheetRow(sheet, "A2", &[]any{"Bahari", 20.5, 2020}); err != nil {
		t.Fatalf("set row: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	rows, err := ReadRows(FormatXLSX, buf.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	got := rows[0].Values
	if got["name"] != "Bahari" || got["length"] != "20.5" || got["year_built"] != "2020" {
		t.Fatalf("unexpected workbook values: %#v", got)
	}
}

func TestReadRowsRejectsUnreadableContent(t *testing.T) {
	cases := []struct {
		name   string
		format Format
		data   string
	}{
		{"corrupt workbook", FormatXLSX, "definitely not a zip archive"},
		{"no header", FormatCSV, ",,\n , \n"},
		{"broken quoting", FormatCSV, "name,code\n\"North,NR01\n"},
		{"latin-1 bytes", FormatCSV, "name,code,description\nK\xe9pulauan,NR01,demo\n"},
	}
	for _, tc := range cases {
		_, err := ReadRows(tc.format, []byte(tc.data))
		var formatErr *FormatError
		if !errors.As(err, &formatErr) {
			t.Fatalf("%s: expected FormatError, got %v", tc.name, err)
		}
	}
}
