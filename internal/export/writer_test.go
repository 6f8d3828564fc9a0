package export

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rpattn/fleetreg/internal/ingestion"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("pdf")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestWriteCSVDereferencesOptionalValues(t *testing.T) {
	length := 20.5
	var port *string
	sheet := Sheet{
		Headers: []string{"name", "length", "home_port", "active"},
		Rows:    [][]any{{"Bahari", &length, port, true}},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sheet))
	assert.Equal(t, "name,length,home_port,active\nBahari,20.5,,true\n", buf.String())
}

func TestTemplateWorkbookIsImportable(t *testing.T) {
	service := NewService(nil, nil, nil, nil)
	sheet, name, err := service.Template(ingestion.ResourceShips)
	require.NoError(t, err)
	assert.Equal(t, "ships_import_template", name)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, sheet))

	rows, err := ingestion.ReadRows(ingestion.FormatXLSX, buf.Bytes())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "EX123456", rows[0].Values["registration_number"])
	assert.Equal(t, "20.5", rows[0].Values["length"])
	assert.Equal(t, "Captain Smith", rows[0].Values["captain_name"])
}

func TestTemplateUnknownResource(t *testing.T) {
	_, _, err := NewService(nil, nil, nil, nil).Template("harbours")
	assert.True(t, errors.Is(err, ErrUnknownResource))
}
