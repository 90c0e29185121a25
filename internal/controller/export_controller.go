package controller

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/mailto-campaigns/internal/export"
	"github.com/unclebandit/mailto-campaigns/internal/model"
	"github.com/unclebandit/mailto-campaigns/internal/service"
)

type ExportController struct {
	DashboardService *service.DashboardService
	Log              logrus.FieldLogger
}

func (c *ExportController) CSV(w http.ResponseWriter, r *http.Request) {
	c.serve(w, r, "text/csv; charset=utf-8", export.CSVFilename, export.WriteCSV)
}

func (c *ExportController) XLSX(w http.ResponseWriter, r *http.Request) {
	c.serve(w, r, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.XLSXFilename, export.WriteXLSX)
}

// serve renders into a buffer first so a failed render can still answer 500.
func (c *ExportController) serve(w http.ResponseWriter, r *http.Request, contentType, filename string, write func(io.Writer, []*model.Submission) error) {
	rows, err := c.DashboardService.ExportRows(r.Context())
	if err != nil {
		writeError(w, r, c.Log, fmt.Errorf("export rows: %w", err))
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, rows); err != nil {
		writeError(w, r, c.Log, fmt.Errorf("render %s: %w", filename, err))
		return
	}

	logFor(c.Log).WithFields(logrus.Fields{"file": filename, "rows": len(rows)}).Info("submissions exported")
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
