package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"tasklist/app/models"
	"tasklist/app/services"
)

var tasks = []models.Task{
	{ID: 1700000000000, Text: "Buy milk", Author: "Alice", Completed: true},
	{ID: 1700000000001, Text: "Walk, dog", Author: "Bob", Deleted: true},
}

func TestExport_JSON(t *testing.T) {
	b, ct, err := NewExporter().Export(tasks, "json")
	require.NoError(t, err)
	assert.Equal(t, "application/json", ct)

	got, err := services.DecodeTasks(b)
	require.NoError(t, err)
	assert.Equal(t, tasks, got)
}

func TestExport_CSV(t *testing.T) {
	b, _, err := NewExporter().Export(tasks, "CSV")
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "text", "author", "completed", "deleted"}, rows[0])
	assert.Equal(t, []string{"1700000000001", "Walk, dog", "Bob", "false", "true"}, rows[2])
}

func TestExport_YAML(t *testing.T) {
	b, ct, err := NewExporter().Export(tasks, "yaml")
	require.NoError(t, err)
	assert.Equal(t, "application/yaml", ct)

	var got []models.Task
	require.NoError(t, yaml.Unmarshal(b, &got))
	assert.Equal(t, tasks, got)
}

func TestExport_PDF(t *testing.T) {
	b, ct, err := NewExporter().Export(tasks, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", ct)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))
}

func TestExport_UnknownFormat(t *testing.T) {
	_, _, err := NewExporter().Export(tasks, "xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "json", Extension(""))
	assert.Equal(t, "yaml", Extension("YML"))
	assert.Equal(t, "pdf", Extension("pdf"))
}
