package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Format is the file type of a download.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ErrUnknownFormat is returned by ParseFormat for anything but xlsx or csv.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat reads a ?format= value. Empty means xlsx.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "xlsx", "excel":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, value)
	}
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Sheet is a single worksheet: a header row followed by data rows.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// Write serialises the sheet in format.
func Write(w io.Writer, format Format, sheet Sheet) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, sheet)
	case FormatXLSX:
		return writeWorkbook(w, sheet)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeCSV(w io.Writer, sheet Sheet) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(sheet.Headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(sheet.Headers))
	for _, row := range sheet.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = formatValue(row[i])
			}
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("flush rows: %w", err)
	}
	return nil
}

func writeWorkbook(w io.Writer, sheet Sheet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	name := sheet.Name
	if name == "" {
		name = "Sheet1"
	}
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	stream, err := f.NewStreamWriter(name)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	header := make([]any, len(sheet.Headers))
	for i, h := range sheet.Headers {
		header[i] = h
	}
	if err := stream.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for idx, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, idx+2)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for i, v := range row {
			values[i] = cellValue(v)
		}
		if err := stream.SetRow(cell, values); err != nil {
			return fmt.Errorf("write row %d: %w", idx+1, err)
		}
	}
	if err := stream.Flush(); err != nil {
		return fmt.Errorf("flush workbook: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// cellValue dereferences optional values so the workbook keeps numeric and
// boolean cell types. Nil pointers become empty cells.
func cellValue(value any) any {
	switch v := value.(type) {
	case *string:
		if v == nil {
			return nil
		}
		return *v
	case *float64:
		if v == nil {
			return nil
		}
		return *v
	case *int:
		if v == nil {
			return nil
		}
		return *v
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	default:
		return v
	}
}

func formatValue(value any) string {
	switch v := cellValue(value).(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	case json.Number:
		return v.String()
	case float32, float64, int, int32, int64, uint, uint32, uint64:
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func sanitizeFileComponent(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	builder := strings.Builder{}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			builder.WriteRune(r)
		default:
			builder.WriteRune('_')
		}
	}
	result := strings.Trim(builder.String(), "_")
	if result == "" {
		return "export"
	}
	return result
}
