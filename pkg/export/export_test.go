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
	d := Dataset{Title: "Harehiet 2024-05-02", Headers: []string{"Navn", "Status"}}
	d.Append("Ola", "Levert • 08:15")
	d.Append("Kari", "Syk", "ignored")
	d.Append("Per")
	return d
}

func TestNew(t *testing.T) {
	for format, contentType := range map[string]string{
		"csv":   "text/csv",
		"PDF":   "application/pdf",
		" xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	} {
		r, err := New(format)
		require.NoError(t, err)
		assert.Equal(t, contentType, r.ContentType())
		assert.Equal(t, strings.ToLower(strings.TrimSpace(format)), r.Extension())
	}

	_, err := New("docx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestAppendNormalizesRowWidth(t *testing.T) {
	d := sampleDataset()
	assert.Equal(t, [][]string{{"Ola", "Levert • 08:15"}, {"Kari", "Syk"}, {"Per", ""}}, d.Rows)
}

func TestCSVRender(t *testing.T) {
	out, err := CSV{}.Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "Navn,Status\nOla,Levert • 08:15\nKari,Syk\nPer,\n", string(out))

	_, err = CSV{}.Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	data := sampleDataset()
	for i := 0; i < 80; i++ {
		data.Append("Barn med et svært langt navn som ikke får plass i kolonnen", "Hentet")
	}
	out, err := PDF{}.Render(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = PDF{}.Render(Dataset{})
	assert.Error(t, err)
}

func TestXLSXRender(t *testing.T) {
	out, err := XLSX{}.Render(sampleDataset())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Harehiet 2024-05-02"}, f.GetSheetList())
	value, err := f.GetCellValue("Harehiet 2024-05-02", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Kari", value)
	header, err := f.GetCellValue("Harehiet 2024-05-02", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Status", header)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Report", sheetName("  "))
	assert.Equal(t, "Harehiet 2024-05-02", sheetName("Harehiet 2024-05-02"))
	assert.Equal(t, "a-b-c", sheetName("a/b:c"))
	assert.Len(t, []rune(sheetName(strings.Repeat("æ", 40))), 31)
}
