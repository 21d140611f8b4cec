package web

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/JonMunkholm/pension/internal/export"
	"github.com/JonMunkholm/pension/internal/logging"
	"github.com/JonMunkholm/pension/internal/metrics"
)

// exportFormat is a download encoding of a sheet.
type exportFormat struct {
	ext         string
	contentType string
	write       func(io.Writer, export.Sheet) error
}

var (
	formatCSV  = exportFormat{ext: "csv", contentType: export.ContentTypeCSV, write: export.WriteCSV}
	formatXLSX = exportFormat{ext: "xlsx", contentType: export.ContentTypeXLSX, write: export.WriteXLSX}
)

// sheetBuilder produces the sheet to download, or an error to report before any bytes are sent.
type sheetBuilder func(r *http.Request) (export.Sheet, error)

// handleExport serves the sheet built for the request as a file download.
func (s *Server) handleExport(prefix string, f exportFormat, build sheetBuilder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sheet, err := build(r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		filename := fmt.Sprintf("%s_%s.%s", prefix, time.Now().Format("20060102_150405"), f.ext)
		w.Header().Set("Content-Type", f.contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

		// Headers are sent once writing starts, so failures can only be logged.
		err = f.write(w, sheet)
		s.metrics.ObserveQuery(metrics.OpExport, start, len(sheet.Rows), err)
		if err != nil {
			logging.WithFields(r.Context(), "sheet", sheet.Name, "format", f.ext).
				Error("export failed", "rows", len(sheet.Rows), "error", err)
		}
	}
}

// findSheet exports every Find match for ?name=.
func (s *Server) findSheet(r *http.Request) (export.Sheet, error) {
	name, err := s.parseName(r)
	if err != nil {
		return export.Sheet{}, err
	}
	return export.Matches(s.registry.Find(name)), nil
}

// compareSheet exports the industry comparison for ?name=.
func (s *Server) compareSheet(r *http.Request) (export.Sheet, error) {
	name, err := s.parseName(r)
	if err != nil {
		return export.Sheet{}, err
	}
	c, err := s.registry.Compare(name)
	if err != nil {
		return export.Sheet{}, err
	}
	return export.Comparison(c), nil
}

// dataSheet exports the full working table.
func (s *Server) dataSheet(*http.Request) (export.Sheet, error) {
	return export.Records(s.registry.Data()), nil
}
