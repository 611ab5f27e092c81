package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"gopkg.in/yaml.v3"

	"tasklist/app/models"
	"tasklist/app/services"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Formats lists the supported export formats.
func Formats() []string { return []string{"json", "csv", "yaml", "pdf"} }

type Exporter struct {
	now func() time.Time
}

func NewExporter() *Exporter { return &Exporter{now: time.Now} }

// Export renders tasks in format and returns the bytes with their content type.
func (e *Exporter) Export(tasks []models.Task, format string) ([]byte, string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		b, err := services.EncodeTasks(tasks)
		return b, "application/json", err
	case "csv":
		b, err := exportCSV(tasks)
		return b, "text/csv; charset=utf-8", err
	case "yaml", "yml":
		if tasks == nil {
			tasks = []models.Task{}
		}
		b, err := yaml.Marshal(tasks)
		return b, "application/yaml", err
	case "pdf":
		b, err := e.exportPDF(tasks)
		return b, "application/pdf", err
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// Extension is the file extension for format.
func Extension(format string) string {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "":
		return "json"
	case "yml":
		return "yaml"
	default:
		return f
	}
}

func exportCSV(tasks []models.Task) ([]byte, error) {
	var b bytes.Buffer
	w := csv.NewWriter(&b)
	_ = w.Write([]string{"id", "text", "author", "completed", "deleted"})
	for _, t := range tasks {
		_ = w.Write([]string{
			strconv.FormatInt(t.ID, 10),
			t.Text,
			t.Author,
			strconv.FormatBool(t.Completed),
			strconv.FormatBool(t.Deleted),
		})
	}
	w.Flush()
	return b.Bytes(), w.Error()
}

func (e *Exporter) exportPDF(tasks []models.Task) ([]byte, error) {
	counts := services.Summarize(tasks)

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Task List")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s - Total Tasks: %d - Completed Tasks: %d",
		e.now().UTC().Format(time.RFC3339), counts.Total, counts.Completed))
	pdf.Ln(10)

	for _, t := range tasks {
		status := "[ ]"
		if t.Completed {
			status = "[x]"
		}
		if t.Deleted {
			status += " (deleted)"
		}
		line := fmt.Sprintf("%s %s - Created by: %s", status, t.Text, t.Author)
		pdf.MultiCell(0, 6, tr(line), "0", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
