package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/taskdesk/internal/core"
	"github.com/JonMunkholm/taskdesk/internal/logging"
	"github.com/JonMunkholm/taskdesk/internal/web/templates"
)

// ErrorResponse is the JSON body of every API error. RowErrors and
// MissingColumns are filled for failed imports.
type ErrorResponse struct {
	Error          string             `json:"error"`
	Message        string             `json:"message"`
	Action         string             `json:"action,omitempty"`
	Code           string             `json:"code"`
	RowErrors      []string           `json:"rowErrors,omitempty"`
	MissingColumns []string           `json:"missingColumns,omitempty"`
	Result         *core.ImportResult `json:"result,omitempty"`
}

// errNoFile is returned when a multipart request has no "file" part.
var errNoFile = errors.New("no file provided")

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var structural *core.StructuralError
	switch {
	case errors.Is(err, core.ErrUnknownImport), errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.As(err, &structural),
		errors.Is(err, core.ErrNoValidRows),
		errors.Is(err, core.ErrEmptyFile):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrInvalidInput),
		errors.Is(err, core.ErrUnsupportedFile),
		errors.Is(err, errNoFile),
		strings.Contains(err.Error(), "invalid spreadsheet"):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err with the request ID and writes the mapped user
// message as an HTMX fragment, JSON or plain text.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	s.respondImportError(w, r, err, nil)
}

// respondImportError is respondError plus the partial import outcome, so
// row errors are shown next to the failure.
func (s *Server) respondImportError(w http.ResponseWriter, r *http.Request, err error, result *core.ImportResult) {
	status := statusFor(err)
	msg := core.MapError(err)

	log := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", msg.Code,
		"error", err,
	}
	if status >= http.StatusInternalServerError {
		log.Error("request error", attrs...)
	} else {
		log.Warn("request error", attrs...)
	}

	resp := ErrorResponse{
		Error:   core.UserFacingMessage(err),
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
		Result:  result,
	}
	var structural *core.StructuralError
	if errors.As(err, &structural) {
		resp.MissingColumns = structural.Missing
	}
	if result != nil {
		resp.RowErrors = result.Errors
	}

	switch {
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		templates.ErrorAlert(msg.Message, msg.Action, msg.Code, resp.RowErrors...).Render(r.Context(), w)
	case wantsJSON(r):
		writeJSON(w, status, resp)
	default:
		http.Error(w, msg.Message+" ("+msg.Code+")", status)
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether the client accepts JSON. API routes always do.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json") ||
		strings.HasPrefix(r.URL.Path, "/api/")
}
