package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Subject", "Lecturer", "Total Hours"},
		Rows: []map[string]string{
			{"Subject": "CS101", "Lecturer": "A. Lecturer", "Total Hours": "45"},
			{"Subject": "CS102", "Lecturer": "B. Lecturer", "Total Hours": "30.5"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("docx")
	assert.Error(t, err)
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset(), "ignored")
	require.NoError(t, err)

	body := strings.TrimPrefix(string(out), "\ufeff")
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Subject,Lecturer,Total Hours", lines[0])
	assert.Equal(t, "CS102,B. Lecturer,30.5", lines[2])
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Yearly workload 2567")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXExporterRender(t *testing.T) {
	out, err := NewXLSXExporter().Render(sampleDataset(), "Yearly workload 2567")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	assert.Equal(t, []string{xlsxSheet}, f.GetSheetList())
	header, err := f.GetCellValue(xlsxSheet, "C3")
	require.NoError(t, err)
	assert.Equal(t, "Total Hours", header)
	hours, err := f.GetCellValue(xlsxSheet, "C5")
	require.NoError(t, err)
	assert.Equal(t, "30.5", hours)
}

func TestRenderersRequireHeaders(t *testing.T) {
	for _, format := range []Format{FormatCSV, FormatPDF, FormatXLSX} {
		r, err := ForFormat(format)
		require.NoError(t, err)
		_, err = r.Render(Dataset{}, "")
		assert.Error(t, err, string(format))
	}
}
