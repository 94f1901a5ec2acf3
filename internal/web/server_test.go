package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/taskdesk/internal/config"
	"github.com/JonMunkholm/taskdesk/internal/core"
	_ "github.com/JonMunkholm/taskdesk/internal/core/imports"
	"github.com/JonMunkholm/taskdesk/internal/store/memory"
)

const tasksCSV = `Client Name,Task Category,Sub Category,Status,Comment,Assigned Name,Due Date,Assignment Date,Completion Date,Bill,Advance Received,Outstanding Amount,Payment Status
ABC Corp,Design,Logo Design,In Progress,,John Doe,2026-03-15,,,5000,2000,3000,Partially Paid
Globex,Audit,Quarterly,,,,,,,,,,
`

const assigneesCSV = `Assignee Name,Captain Name
John Doe,Jane Smith
Mary Major,
`

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{RequestTimeout: 5 * time.Second},
		Upload:   config.UploadConfig{MaxFileSize: 1 << 20},
		Security: config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"test-key"}},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *memory.Store) {
	t.Helper()
	st := memory.New()
	svc := core.NewService(st, core.ServiceOptions{MaxFileSize: cfg.Upload.MaxFileSize})
	srv := NewServer(svc, cfg)
	t.Cleanup(func() { srv.Shutdown(t.Context()) })
	return srv, st
}

func uploadRequest(t *testing.T, path, fileName, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatal(err)
		}
		part.Write([]byte(content))
	} else {
		mw.WriteField("note", "no file here")
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-API-Key", "test-key")
	return req
}

func jsonRequest(method, path string, v any) *http.Request {
	var body bytes.Buffer
	json.NewEncoder(&body).Encode(v)
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", "test-key")
	return req
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestImport_Tasks(t *testing.T) {
	srv, st := newTestServer(t, testConfig())

	rec := serve(srv, uploadRequest(t, "/api/import/tasks", "tasks.csv", tasksCSV))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	res := decode[core.ImportResult](t, rec)
	if res.Valid != 2 || res.Written != 2 {
		t.Errorf("result = %+v", res)
	}

	tasks, _ := st.ListTasks(t.Context(), core.TaskFilter{})
	if len(tasks) != 2 {
		t.Errorf("stored %d tasks, want 2", len(tasks))
	}

	history := decode[[]core.ImportBatch](t, serve(srv, httptest.NewRequest(http.MethodGet, "/api/imports", nil)))
	if len(history) != 1 || history[0].IPAddress == "" {
		t.Errorf("history = %+v", history)
	}
}

func TestImport_HTMXSummary(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	req := uploadRequest(t, "/api/import/assignees", "people.csv", assigneesCSV)
	req.Header.Set("HX-Request", "true")
	rec := serve(srv, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Imported 1 of 1 valid rows") || !strings.Contains(body, "Missing captain name") {
		t.Errorf("fragment = %s", body)
	}
}

func TestImport_Failures(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		file     string
		content  string
		status   int
		code     string
		checkRes func(t *testing.T, e ErrorResponse)
	}{
		{
			name: "missing column", path: "/api/import/tasks", file: "t.csv",
			content: "Client Name,Task Category\nAcme,Design\n",
			status:  http.StatusUnprocessableEntity, code: "VAL004",
			checkRes: func(t *testing.T, e ErrorResponse) {
				if len(e.MissingColumns) != 1 || e.MissingColumns[0] != "Sub Category" {
					t.Errorf("MissingColumns = %v", e.MissingColumns)
				}
			},
		},
		{
			name: "no valid rows", path: "/api/import/assignees", file: "a.csv",
			content: "Assignee Name,Captain Name\nJohn,\n",
			status:  http.StatusUnprocessableEntity, code: "VAL007",
			checkRes: func(t *testing.T, e ErrorResponse) {
				if len(e.RowErrors) != 1 {
					t.Errorf("RowErrors = %v", e.RowErrors)
				}
			},
		},
		{
			name: "unknown kind", path: "/api/import/invoices", file: "i.csv",
			content: "a,b\n1,2\n", status: http.StatusNotFound, code: "IMP001",
		},
		{
			name: "unsupported file", path: "/api/import/tasks", file: "t.pdf",
			content: "%PDF", status: http.StatusBadRequest, code: "FILE002",
		},
		{
			name: "no file", path: "/api/import/tasks",
			status: http.StatusBadRequest, code: "FILE004",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, testConfig())
			rec := serve(srv, uploadRequest(t, tt.path, tt.file, tt.content))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tt.status, rec.Body)
			}
			e := decode[ErrorResponse](t, rec)
			if e.Code != tt.code {
				t.Errorf("code = %q, want %q (%+v)", e.Code, tt.code, e)
			}
			if tt.checkRes != nil {
				tt.checkRes(t, e)
			}
		})
	}
}

func TestImport_TooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxFileSize = 64
	srv, _ := newTestServer(t, cfg)

	rec := serve(srv, uploadRequest(t, "/api/import/tasks", "t.csv", strings.Repeat("x", 100)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestImport_RequiresAPIKey(t *testing.T) {
	srv, st := newTestServer(t, testConfig())

	req := uploadRequest(t, "/api/import/tasks", "tasks.csv", tasksCSV)
	req.Header.Del("X-API-Key")
	if rec := serve(srv, req); rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if n, _ := st.CountTasks(t.Context(), core.CountByStatus); len(n) != 0 {
		t.Errorf("tasks written without a key: %v", n)
	}
}

func TestPreview(t *testing.T) {
	srv, st := newTestServer(t, testConfig())

	req := uploadRequest(t, "/api/preview/tasks", "tasks.csv", tasksCSV)
	req.Header.Del("X-API-Key")
	rec := serve(srv, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	p := decode[core.PreviewResult](t, rec)
	if p.Valid != 2 || p.Error != "" {
		t.Errorf("preview = %+v", p)
	}
	if tasks, _ := st.ListTasks(t.Context(), core.TaskFilter{}); len(tasks) != 0 {
		t.Errorf("preview wrote %d tasks", len(tasks))
	}
}

func TestTemplateDownload(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/templates/assignees", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != core.AssigneeTemplate() {
		t.Errorf("body = %q, want template", got)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "assignee_import_template.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/api/templates/tasks?format=xlsx", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("xlsx status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "task_upload_template.xlsx") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("xlsx body is not a zip archive")
	}

	if rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/templates/nope", nil)); rec.Code != http.StatusNotFound {
		t.Errorf("unknown template status = %d", rec.Code)
	}
}

func TestTaskEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := serve(srv, jsonRequest(http.MethodPost, "/api/tasks", map[string]any{
		"client": "Acme", "taskCategory": "Design", "subCategory": "Logo",
		"dueDate": "03/15/2026", "bill": 1200,
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body)
	}
	created := decode[core.Task](t, rec)
	if created.Status != "Pending" || created.PaymentStatus != "Unpaid" || created.DueDate.Year() != 2026 {
		t.Errorf("created = %+v", created)
	}

	rec = serve(srv, jsonRequest(http.MethodPost, "/api/tasks", map[string]any{"client": "Acme"}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid create status = %d", rec.Code)
	}

	rec = serve(srv, jsonRequest(http.MethodPut, "/api/tasks/"+created.ID, map[string]any{
		"client": "Acme", "taskCategory": "Design", "subCategory": "Logo", "status": "Completed",
	}))
	if rec.Code != http.StatusOK || decode[core.Task](t, rec).Status != "Completed" {
		t.Errorf("update status = %d", rec.Code)
	}

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/api/tasks?status=Completed", nil))
	if list := decode[[]core.Task](t, rec); len(list) != 1 {
		t.Errorf("filtered list = %+v", list)
	}

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/api/dashboard/counts", nil))
	if counts := decode[core.DashboardCounts](t, rec); counts.Total != 1 {
		t.Errorf("counts = %+v", counts)
	}

	rec = serve(srv, jsonRequest(http.MethodPost, "/api/tasks/delete", map[string]any{"ids": []string{created.ID}}))
	if got := decode[map[string]int](t, rec); got["deleted"] != 1 {
		t.Errorf("delete = %v", got)
	}

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/api/tasks/"+created.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("get deleted status = %d", rec.Code)
	}
}

func TestReferenceEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	body := map[string]string{"name": "Logo Design", "parent": "Design"}
	if rec := serve(srv, jsonRequest(http.MethodPost, "/api/reference/sub_category", body)); rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body)
	}
	rec := serve(srv, jsonRequest(http.MethodPost, "/api/reference/sub_category", body))
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d", rec.Code)
	}
	if e := decode[ErrorResponse](t, rec); e.Code != "DB001" {
		t.Errorf("duplicate code = %q", e.Code)
	}

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/api/reference/sub_category", nil))
	if list := decode[[]core.ReferenceValue](t, rec); len(list) != 1 || list[0].Parent != "Design" {
		t.Errorf("list = %+v", list)
	}

	if rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/reference/colours", nil)); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown list status = %d", rec.Code)
	}
}

func TestAssigneeEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	rec := serve(srv, jsonRequest(http.MethodPut, "/api/assignees/John%20Doe", map[string]string{"captain": "Jane"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/api/assignees", nil))
	list := decode[[]core.AssigneeRow](t, rec)
	if len(list) != 1 || list[0].AssigneeName != "John Doe" || list[0].CaptainName != "Jane" {
		t.Errorf("list = %+v", list)
	}

	rec = serve(srv, jsonRequest(http.MethodPost, "/api/assignees/delete", map[string]any{"names": []string{"John Doe"}}))
	if got := decode[map[string]int](t, rec); got["deleted"] != 1 {
		t.Errorf("delete = %v", got)
	}
}

func TestDashboardAndHealth(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	serve(srv, uploadRequest(t, "/api/import/tasks", "tasks.csv", tasksCSV))

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "2 total") {
		t.Errorf("dashboard status = %d, body = %s", rec.Code, rec.Body)
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("security headers missing")
	}

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("health = %d %s", rec.Code, rec.Body)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrUnknownImport, http.StatusNotFound},
		{fmt.Errorf("get: %w", core.ErrNotFound), http.StatusNotFound},
		{core.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{core.ErrDuplicate, http.StatusConflict},
		{core.ErrTooManyImports, http.StatusServiceUnavailable},
		{&core.StructuralError{Missing: []string{"Client Name"}}, http.StatusUnprocessableEntity},
		{core.ErrNoValidRows, http.StatusUnprocessableEntity},
		{core.ErrInvalidInput, http.StatusBadRequest},
		{errNoFile, http.StatusBadRequest},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
