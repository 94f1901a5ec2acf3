package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/taskdesk/internal/core"
	"github.com/JonMunkholm/taskdesk/internal/web/templates"
)

func importKind(r *http.Request) core.ImportKind {
	return core.ImportKind(chi.URLParam(r, "kind"))
}

func (s *Server) handleListKinds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.ListImports())
}

// handlePreview validates an uploaded file without writing anything.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	name, data, err := s.readUploadFile(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.service.Preview(r.Context(), importKind(r), name, data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleImport validates an uploaded file and bulk-writes its valid rows.
// HTMX requests get a summary fragment; everything else gets JSON.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	name, data, err := s.readUploadFile(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.service.Import(withRequestMetadata(r), importKind(r), name, data)
	if err != nil {
		s.respondImportError(w, r, err, &result)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		templates.ImportSummary(result).Render(r.Context(), w)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleTemplate downloads the import template as CSV, or as a workbook
// with ?format=xlsx.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	body, fileName, err := s.service.Template(importKind(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "xlsx" {
		book, err := core.TemplateXLSX(body)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		fileName = strings.TrimSuffix(fileName, ".csv") + ".xlsx"
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
		w.Write(book)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	w.Write([]byte(body))
}

func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.service.ImportHistory(r.Context(), parseIntParam(r, "limit", core.DefaultHistoryLimit))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}
