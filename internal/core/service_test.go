package core_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/taskdesk/internal/core"
	_ "github.com/JonMunkholm/taskdesk/internal/core/imports"
	"github.com/JonMunkholm/taskdesk/internal/store/memory"
)

const taskCSV = `Client Name,Task Category,Sub Category,Status,Comment,Assigned Name,Due Date,Assignment Date,Completion Date,Bill,Advance Received,Outstanding Amount,Payment Status
ABC Corp,Design,Logo Design,In Progress,,John Doe,2026-03-15,,,"5,000",2000,3000,Partially Paid
,Design,Missing Client,,,,,,,,,,
Globex,Audit,Quarterly,,,Mary Major,,,,,,,
`

func newService(t *testing.T, opts core.ServiceOptions) (*core.Service, *memory.Store) {
	t.Helper()
	st := memory.New()
	return core.NewService(st, opts), st
}

func TestService_ImportTasks(t *testing.T) {
	svc, st := newService(t, core.ServiceOptions{})
	ctx := core.WithClient(context.Background(), core.Client{IP: "203.0.113.7"})

	res, err := svc.Import(ctx, core.KindTasks, "tasks.csv", []byte(taskCSV))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Valid != 2 || res.Written != 2 {
		t.Errorf("Valid=%d Written=%d, want 2/2", res.Valid, res.Written)
	}
	if res.BatchID == "" {
		t.Error("BatchID empty")
	}

	tasks, _ := st.ListTasks(ctx, core.TaskFilter{Client: "ABC Corp"})
	if len(tasks) != 1 || tasks[0].Bill != 5000 {
		t.Errorf("stored tasks = %+v", tasks)
	}

	history, _ := svc.ImportHistory(ctx, 0)
	if len(history) != 1 {
		t.Fatalf("history len = %d, want 1", len(history))
	}
	h := history[0]
	if h.Status != core.ImportSucceeded || h.Written != 2 || h.IPAddress != "203.0.113.7" || h.ID != res.BatchID {
		t.Errorf("history = %+v", h)
	}
}

func TestService_ImportNoValidRows(t *testing.T) {
	svc, st := newService(t, core.ServiceOptions{})
	ctx := context.Background()

	text := "Client Name,Task Category,Sub Category\n,A,B\n,C,D\n"
	res, err := svc.Import(ctx, core.KindTasks, "tasks.csv", []byte(text))
	if !errors.Is(err, core.ErrNoValidRows) {
		t.Fatalf("err = %v, want ErrNoValidRows", err)
	}
	if res.Written != 0 {
		t.Errorf("Written = %d, want 0", res.Written)
	}

	tasks, _ := st.ListTasks(ctx, core.TaskFilter{})
	if len(tasks) != 0 {
		t.Errorf("store has %d tasks, want 0", len(tasks))
	}

	history, _ := svc.ImportHistory(ctx, 10)
	if len(history) != 1 || history[0].Status != core.ImportFailed {
		t.Errorf("history = %+v, want one failed batch", history)
	}
}

func TestService_ImportStructuralFailure(t *testing.T) {
	svc, _ := newService(t, core.ServiceOptions{})

	res, err := svc.Import(context.Background(), core.KindAssignees, "a.csv", []byte("Assignee Name\nAlice\n"))
	var se *core.StructuralError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StructuralError", err)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "Captain Name") {
		t.Errorf("Errors = %q", res.Errors)
	}
}

func TestService_ImportAssigneesWithRowErrors(t *testing.T) {
	svc, st := newService(t, core.ServiceOptions{})
	ctx := context.Background()

	text := "Assignee Name,Captain Name\nAlice,Zed\n,Yolanda\nBob,Xavier\n"
	res, err := svc.Import(ctx, core.KindAssignees, "a.csv", []byte(text))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Written != 2 {
		t.Errorf("Written = %d, want 2", res.Written)
	}
	if len(res.Errors) != 1 || res.Errors[0] != "Row 3: Missing assignee name" {
		t.Errorf("Errors = %q", res.Errors)
	}

	pairs, _ := st.ListAssignees(ctx)
	if len(pairs) != 2 {
		t.Errorf("directory = %+v", pairs)
	}
}

func TestService_ImportStoreFailure(t *testing.T) {
	svc, st := newService(t, core.ServiceOptions{})
	st.FailBulk = errors.New("connect postgres://app:hunter2@db/tasks: permission denied")

	_, err := svc.Import(context.Background(), core.KindTasks, "tasks.csv", []byte(taskCSV))
	if err == nil {
		t.Fatal("Import succeeded, want store error")
	}
	if !errors.Is(err, st.FailBulk) {
		t.Errorf("err = %v, want wrapped store error", err)
	}

	history, _ := svc.ImportHistory(context.Background(), 1)
	if len(history) != 1 {
		t.Fatal("failed import not recorded")
	}
	if strings.Contains(history[0].Error, "hunter2") {
		t.Errorf("history error leaks credentials: %q", history[0].Error)
	}
}

func TestService_FillCaptainFromDirectory(t *testing.T) {
	svc, st := newService(t, core.ServiceOptions{FillCaptainFromDirectory: true})
	ctx := context.Background()

	if _, err := st.UpsertAssignees(ctx, []core.AssigneeRow{{AssigneeName: "John Doe", CaptainName: "Jane Smith"}}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Import(ctx, core.KindTasks, "tasks.csv", []byte(taskCSV)); err != nil {
		t.Fatalf("Import: %v", err)
	}

	john, _ := st.ListTasks(ctx, core.TaskFilter{AssigneeName: "John Doe"})
	if len(john) != 1 || john[0].CaptainName != "Jane Smith" {
		t.Errorf("John's task = %+v, want captain Jane Smith", john)
	}
	mary, _ := st.ListTasks(ctx, core.TaskFilter{AssigneeName: "Mary Major"})
	if len(mary) != 1 || mary[0].CaptainName != "" {
		t.Errorf("Mary's task = %+v, want no captain", mary)
	}
}

func TestService_PolicyOverride(t *testing.T) {
	legacy := "Client,Category,Sub-category\nACME,Audit,Quarterly\n"

	exact, _ := newService(t, core.ServiceOptions{})
	if _, err := exact.Import(context.Background(), core.KindTasks, "t.csv", []byte(legacy)); err == nil {
		t.Error("exact policy accepted legacy header")
	}

	substring, _ := newService(t, core.ServiceOptions{
		Policies: map[core.ImportKind]core.MatchPolicy{core.KindTasks: core.MatchSubstring},
	})
	res, err := substring.Import(context.Background(), core.KindTasks, "t.csv", []byte(legacy))
	if err != nil || res.Written != 1 {
		t.Errorf("substring import = %+v, %v", res, err)
	}
}

func TestService_Preview(t *testing.T) {
	svc, st := newService(t, core.ServiceOptions{})
	ctx := context.Background()

	res, err := svc.Preview(ctx, core.KindTasks, "tasks.csv", []byte(taskCSV))
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if res.Valid != 2 || res.Error != "" {
		t.Errorf("preview = %+v", res)
	}
	if sample, ok := res.Sample.([]core.TaskImportRow); !ok || len(sample) != 2 {
		t.Errorf("Sample = %#v", res.Sample)
	}

	tasks, _ := st.ListTasks(ctx, core.TaskFilter{})
	if len(tasks) != 0 {
		t.Error("Preview wrote to the store")
	}

	bad, err := svc.Preview(ctx, core.KindAssignees, "a.csv", []byte("Captain Name\nZed\n"))
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if len(bad.MissingColumns) != 1 || bad.Error == "" {
		t.Errorf("structural preview = %+v", bad)
	}
}

func TestService_ImportRejectsUnknownAndOversized(t *testing.T) {
	svc, _ := newService(t, core.ServiceOptions{MaxFileSize: 16})
	ctx := context.Background()

	if _, err := svc.Import(ctx, "invoices", "x.csv", []byte("a")); !errors.Is(err, core.ErrUnknownImport) {
		t.Errorf("unknown kind err = %v", err)
	}
	if _, err := svc.Import(ctx, core.KindTasks, "x.csv", []byte(taskCSV)); !errors.Is(err, core.ErrFileTooLarge) {
		t.Errorf("oversized err = %v", err)
	}
	if _, err := svc.Import(ctx, core.KindTasks, "x.pdf", []byte("a")); !errors.Is(err, core.ErrUnsupportedFile) {
		t.Errorf("pdf err = %v", err)
	}
}

func TestService_ImportBusy(t *testing.T) {
	svc, _ := newService(t, core.ServiceOptions{MaxConcurrentImports: 1, ImportWait: 20 * time.Millisecond})
	if !svc.Limiter().TryAcquire() {
		t.Fatal("TryAcquire failed")
	}
	defer svc.Limiter().Release()

	_, err := svc.Import(context.Background(), core.KindTasks, "t.csv", []byte(taskCSV))
	if !errors.Is(err, core.ErrTooManyImports) {
		t.Errorf("err = %v, want ErrTooManyImports", err)
	}
}

func TestService_Template(t *testing.T) {
	svc, _ := newService(t, core.ServiceOptions{})

	body, name, err := svc.Template(core.KindAssignees)
	if err != nil {
		t.Fatal(err)
	}
	if name != core.AssigneeTemplateFileName || body != core.AssigneeTemplate() {
		t.Errorf("Template = %q, %q", name, body)
	}

	if _, _, err := svc.Template("nope"); !errors.Is(err, core.ErrUnknownImport) {
		t.Errorf("err = %v, want ErrUnknownImport", err)
	}

	kinds := svc.ListImports()
	if len(kinds) != 2 || kinds[0].Kind != core.KindAssignees || kinds[1].Kind != core.KindTasks {
		t.Errorf("ListImports = %+v", kinds)
	}
}

func TestService_TaskCRUD(t *testing.T) {
	svc, _ := newService(t, core.ServiceOptions{})
	ctx := context.Background()

	if _, err := svc.CreateTask(ctx, core.TaskImportRow{Client: "ACME"}); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("CreateTask without category err = %v", err)
	}

	task, err := svc.CreateTask(ctx, core.TaskImportRow{Client: " ACME ", TaskCategory: "Audit", SubCategory: "Q1"})
	if err != nil {
		t.Fatal(err)
	}
	if task.Client != "ACME" || task.Status != core.DefaultTaskStatus {
		t.Errorf("created = %+v", task)
	}

	updated, err := svc.UpdateTask(ctx, task.ID, core.TaskImportRow{Client: "ACME", TaskCategory: "Audit", SubCategory: "Q1", Status: "Completed"})
	if err != nil || updated.Status != "Completed" {
		t.Errorf("UpdateTask = %+v, %v", updated, err)
	}

	if _, err := svc.UpdateTask(ctx, "missing", core.TaskImportRow{Client: "a", TaskCategory: "b", SubCategory: "c"}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("update missing err = %v", err)
	}

	counts, err := svc.Counts(ctx)
	if err != nil || counts.Total != 1 {
		t.Errorf("Counts = %+v, %v", counts, err)
	}

	n, err := svc.DeleteTasks(ctx, []string{task.ID, task.ID, " "})
	if err != nil || n != 1 {
		t.Errorf("DeleteTasks = %d, %v", n, err)
	}
	if _, err := svc.DeleteTasks(ctx, nil); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("empty delete err = %v", err)
	}
}

func TestService_Reference(t *testing.T) {
	svc, _ := newService(t, core.ServiceOptions{})
	ctx := context.Background()

	if _, err := svc.CreateReference(ctx, core.ReferenceValue{Kind: core.RefSubCategory, Name: "Logo"}); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("sub-category without parent err = %v", err)
	}
	if _, err := svc.CreateReference(ctx, core.ReferenceValue{Kind: "colour", Name: "Red"}); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("unknown kind err = %v", err)
	}

	v, err := svc.CreateReference(ctx, core.ReferenceValue{Kind: core.RefStatus, Name: " Done ", Parent: "ignored"})
	if err != nil {
		t.Fatal(err)
	}
	if v.Name != "Done" || v.Parent != "" || v.ID == "" {
		t.Errorf("created = %+v", v)
	}

	list, err := svc.ListReference(ctx, core.RefStatus)
	if err != nil || len(list) != 1 {
		t.Errorf("ListReference = %+v, %v", list, err)
	}
}

func TestService_Directory(t *testing.T) {
	svc, _ := newService(t, core.ServiceOptions{})
	ctx := context.Background()

	if err := svc.SetCaptain(ctx, "Alice", ""); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("SetCaptain without captain err = %v", err)
	}
	if err := svc.SetCaptain(ctx, "Alice", "Zed"); err != nil {
		t.Fatal(err)
	}
	if err := svc.SetCaptain(ctx, "Alice", "Yolanda"); err != nil {
		t.Fatal(err)
	}

	pairs, _ := svc.ListAssignees(ctx)
	if len(pairs) != 1 || pairs[0].CaptainName != "Yolanda" {
		t.Errorf("directory = %+v", pairs)
	}

	n, err := svc.DeleteAssignees(ctx, []string{"Alice", "Nobody"})
	if err != nil || n != 1 {
		t.Errorf("DeleteAssignees = %d, %v", n, err)
	}
}

func TestService_PurgeHistory(t *testing.T) {
	svc, st := newService(t, core.ServiceOptions{})
	ctx := context.Background()

	old := core.ImportBatch{ID: "old", CreatedAt: time.Now().Add(-100 * 24 * time.Hour)}
	recent := core.ImportBatch{ID: "recent", CreatedAt: time.Now().Add(-time.Hour)}
	_ = st.RecordImport(ctx, old)
	_ = st.RecordImport(ctx, recent)

	n, err := svc.PurgeHistory(ctx, 90*24*time.Hour)
	if err != nil || n != 1 {
		t.Fatalf("PurgeHistory = %d, %v", n, err)
	}
	left, _ := svc.ImportHistory(ctx, 10)
	if len(left) != 1 || left[0].ID != "recent" {
		t.Errorf("remaining = %+v", left)
	}
}
