package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/taskdesk/internal/core"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// parseIntParam returns the positive integer query parameter name, or def.
func parseIntParam(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v < 1 {
		return def
	}
	return v
}

// decodeJSON reads a bounded JSON body into v and rejects unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: request body: %v", core.ErrInvalidInput, err)
	}
	return nil
}

// readUploadFile returns the name and contents of the multipart "file" part.
func (s *Server) readUploadFile(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	limit := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return "", nil, fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, limit)
		}
		return "", nil, fmt.Errorf("%w: %v", errNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, errNoFile
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return "", nil, fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, limit)
	}
	return header.Filename, data, nil
}

// taskRequest is the JSON body for creating or replacing a task. Dates use
// the import formats and amounts are whole currency units.
type taskRequest struct {
	Client            string `json:"client"`
	TaskCategory      string `json:"taskCategory"`
	SubCategory       string `json:"subCategory"`
	Status            string `json:"status"`
	PaymentStatus     string `json:"paymentStatus"`
	AssigneeName      string `json:"assigneeName"`
	CaptainName       string `json:"captainName"`
	Comment           string `json:"comment"`
	DueDate           string `json:"dueDate"`
	AssignmentDate    string `json:"assignmentDate"`
	CompletionDate    string `json:"completionDate"`
	Bill              int64  `json:"bill"`
	AdvanceReceived   int64  `json:"advanceReceived"`
	OutstandingAmount int64  `json:"outstandingAmount"`
}

func (t taskRequest) row() core.TaskImportRow {
	return core.TaskImportRow{
		Client:            t.Client,
		TaskCategory:      t.TaskCategory,
		SubCategory:       t.SubCategory,
		Status:            t.Status,
		PaymentStatus:     t.PaymentStatus,
		AssigneeName:      t.AssigneeName,
		CaptainName:       t.CaptainName,
		Comment:           t.Comment,
		DueDate:           core.ParseImportDate(t.DueDate),
		AssignmentDate:    core.ParseImportDate(t.AssignmentDate),
		CompletionDate:    core.ParseImportDate(t.CompletionDate),
		Bill:              t.Bill,
		AdvanceReceived:   t.AdvanceReceived,
		OutstandingAmount: t.OutstandingAmount,
	}
}

// taskFilter reads list filters from the query string.
func taskFilter(r *http.Request) core.TaskFilter {
	q := r.URL.Query()
	get := func(k string) string { return strings.TrimSpace(q.Get(k)) }
	return core.TaskFilter{
		Client:        get("client"),
		TaskCategory:  get("category"),
		SubCategory:   get("sub_category"),
		Status:        get("status"),
		PaymentStatus: get("payment_status"),
		AssigneeName:  get("assignee"),
		CaptainName:   get("captain"),
		Limit:         parseIntParam(r, "limit", 0),
	}
}
