package system

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"reminder-board/storage"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

type Exporter struct{ store storage.TaskStore }

func NewExporter(store storage.TaskStore) *Exporter { return &Exporter{store: store} }

// Export returns the task list in the given format and its content type.
func (e *Exporter) Export(ctx context.Context, format string) ([]byte, string, error) {
	tasks, err := e.store.ListAll(ctx)
	if err != nil {
		return nil, "", err
	}
	tasks = tasksOrEmpty(tasks)
	switch strings.ToLower(format) {
	case "", "json":
		b, err := json.MarshalIndent(tasks, "", "  ")
		return b, "application/json", err
	case "csv":
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		_ = w.Write([]string{"id", "task", "time"})
		for _, t := range tasks {
			_ = w.Write([]string{strconv.FormatInt(t.ID, 10), t.Text, t.Time})
		}
		w.Flush()
		return buf.Bytes(), "text/csv", w.Error()
	case "pdf":
		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 14)
		pdf.Cell(40, 10, "Scheduled Tasks")
		pdf.Ln(12)
		pdf.SetFont("Arial", "", 10)
		tr := pdf.UnicodeTranslatorFromDescriptor("")
		for _, t := range tasks {
			pdf.MultiCell(0, 6, tr(fmt.Sprintf("%s  %s", t.Time, t.Text)), "0", "L", false)
		}
		var buf bytes.Buffer
		if err := pdf.Output(&buf); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "application/pdf", nil
	default:
		return nil, "", fmt.Errorf("unknown format %s", format)
	}
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	switch format {
	case "", "json", "csv", "pdf":
	default:
		writeJSON(w, http.StatusBadRequest, StatusResponse{Status: "error", Message: "format must be one of: json, csv, pdf"})
		return
	}

	body, contentType, err := NewExporter(h.Store).Export(r.Context(), format)
	if err != nil {
		h.Logger.Error("export tasks", zap.String("format", format), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, StatusResponse{Status: "error", Message: err.Error()})
		return
	}
	if format == "csv" || format == "pdf" {
		name := fmt.Sprintf("tasks-%s.%s", time.Now().Format("20060102"), format)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(body)
}
