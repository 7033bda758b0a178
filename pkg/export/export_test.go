package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Teachers",
		Headers: []string{"uuid", "lastname", "afm"},
		Rows: [][]string{
			{"a-1", "Papadopoulos", "123456789"},
			{"b-2", "Georgiou, Jr", "987654321"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "uuid,lastname,afm\na-1,Papadopoulos,123456789\nb-2,\"Georgiou, Jr\",987654321\n", string(out))
}

func TestExportersRejectRaggedRows(t *testing.T) {
	ds := sampleDataset()
	ds.Rows = append(ds.Rows, []string{"only-one"})

	_, err := NewCSVExporter().Render(ds)
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(ds)
	assert.Error(t, err)
	_, err = NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
