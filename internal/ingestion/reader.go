package ingestion

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// Format is the declared layout of an upload.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// FormatFromFileName maps an upload name to its format. Legacy .xls uploads
// are accepted and handed to the workbook reader.
func FormatFromFileName(fileName string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xls":
		return FormatXLSX, nil
	default:
		return "", &FormatError{
			FileName: fileName,
			Err:      fmt.Errorf("%w %q: only Excel (.xlsx, .xls) or CSV (.csv) files are allowed", ErrUnsupportedFormat, ext),
		}
	}
}

// ImportRow is one data row of an upload. Index is 1-based and counts data
// rows only, so the header is never row 1.
type ImportRow struct {
	Index  int
	Values map[string]string
}

// Empty reports whether every cell of the row is blank.
func (r ImportRow) Empty() bool {
	for _, v := range r.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ReadRows parses payload as format. The first non-blank row is the header.
// Blank rows after the header are kept so row numbers follow the source.
func ReadRows(format Format, payload []byte) ([]ImportRow, error) {
	var (
		records [][]string
		err     error
	)
	switch format {
	case FormatCSV:
		records, err = readCSV(payload)
	case FormatXLSX:
		records, err = readWorkbook(payload)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, &FormatError{Err: err}
	}

	rows, err := normalizeTable(records)
	if err != nil {
		return nil, &FormatError{Err: err}
	}
	return rows, nil
}

func readCSV(payload []byte) ([][]string, error) {
	payload = bytes.TrimPrefix(payload, byteOrderMark)
	if !utf8.Valid(payload) {
		return nil, errors.New("file is not valid UTF-8")
	}

	csvReader := csv.NewReader(bytes.NewReader(payload))
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return records, nil
}

func readWorkbook(payload []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	// Raw values keep numbers free of display formatting such as "1,234.50".
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from workbook: %w", err)
	}
	return rows, nil
}

func normalizeTable(records [][]string) ([]ImportRow, error) {
	headerIndex := -1
	for idx, row := range records {
		if !blankRow(row) {
			headerIndex = idx
			break
		}
	}
	if headerIndex < 0 {
		return nil, errors.New("header row could not be detected")
	}

	headers := sanitizeHeaders(records[headerIndex])
	dataRows := records[headerIndex+1:]

	// Trailing blank rows are spreadsheet padding, not data.
	for len(dataRows) > 0 && blankRow(dataRows[len(dataRows)-1]) {
		dataRows = dataRows[:len(dataRows)-1]
	}

	rows := make([]ImportRow, 0, len(dataRows))
	for i, raw := range dataRows {
		padded := padRow(raw, len(headers))
		values := make(map[string]string, len(headers))
		for col, header := range headers {
			if _, dup := values[header]; dup {
				continue
			}
			values[header] = strings.TrimSpace(padded[col])
		}
		rows = append(rows, ImportRow{Index: i + 1, Values: values})
	}
	return rows, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// sanitizeHeaders lower-cases headers and folds separators to underscores so
// "Registration Number" matches registration_number.
func sanitizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	for idx, value := range raw {
		name := strings.ToLower(strings.TrimSpace(value))
		name = strings.NewReplacer(" ", "_", ".", "_", "-", "_").Replace(name)
		name = strings.Trim(name, "_")
		if name == "" {
			name = fmt.Sprintf("column_%d", idx+1)
		}
		headers[idx] = name
	}
	return headers
}

func padRow(row []string, length int) []string {
	if len(row) >= length {
		return row[:length]
	}
	padded := make([]string, length)
	copy(padded, row)
	return padded
}
