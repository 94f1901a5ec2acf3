package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const taskCSV = `Client Name,Task Category,Sub Category,Status,Comment,Assigned Name,Due Date,Assignment Date,Completion Date,Bill,Advance Received,Outstanding Amount,Payment Status
ABC Corp,Design,Logo Design,In Progress,,John Doe,2026-03-15,,,"5,000",2000,3000,Partially Paid
,Design,Missing Client,,,,,,,,,,
Globex,Audit,Quarterly,,,Mary Major,,,,,,,
`

// run executes the root command against an in-process store.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "memory://")
	t.Setenv("LOG_LEVEL", "error")

	var out, errOut bytes.Buffer
	root := newRootCmd(&out, &errOut)
	root.SetArgs(append([]string{"--env-file", ""}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		body    string
		want    string
		wantErr bool
	}{
		{
			name: "valid tasks",
			kind: "tasks",
			body: taskCSV,
			want: "2 valid tasks rows",
		},
		{
			name:    "missing column",
			kind:    "assignees",
			body:    "Assignee Name,Team\nJohn Doe,Red\n",
			want:    "missing columns: Captain Name",
			wantErr: true,
		},
		{
			name:    "no valid rows",
			kind:    "assignees",
			body:    "Assignee Name,Captain Name\nJohn Doe,\n",
			want:    "Row 2: Missing captain name",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "validate", tt.kind, writeFile(t, "in.csv", tt.body))
			if tt.wantErr != errors.Is(err, errValidationFailed) {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestValidate_UnknownKind(t *testing.T) {
	_, err := run(t, "validate", "invoices", writeFile(t, "in.csv", taskCSV))
	if err == nil {
		t.Fatal("unknown kind accepted")
	}
}

func TestImport(t *testing.T) {
	out, err := run(t, "import", "tasks", writeFile(t, "tasks.csv", taskCSV))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "Imported 2 tasks from tasks.csv") {
		t.Errorf("output = %q", out)
	}
}

func TestImport_Failure(t *testing.T) {
	out, err := run(t, "import", "assignees", writeFile(t, "dir.csv", "Assignee Name,Captain Name\n,Jane Smith\n"))
	if err == nil {
		t.Fatal("import of file without valid rows succeeded")
	}
	if !strings.Contains(out, "Missing assignee name") {
		t.Errorf("row errors not printed: %q", out)
	}
}

func TestTemplate(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "assignees.csv")
	if _, err := run(t, "template", "assignees", "-o", csvPath); err != nil {
		t.Fatalf("template: %v", err)
	}
	data, err := os.ReadFile(csvPath)
	if err != nil || !strings.HasPrefix(string(data), "Assignee Name,Captain Name\n") {
		t.Errorf("csv template = %q, %v", data, err)
	}

	xlsxPath := filepath.Join(dir, "tasks.xlsx")
	if _, err := run(t, "template", "tasks", "--xlsx", "-o", xlsxPath); err != nil {
		t.Fatalf("template --xlsx: %v", err)
	}
	book, err := os.ReadFile(xlsxPath)
	if err != nil || !bytes.HasPrefix(book, []byte("PK")) {
		t.Errorf("xlsx template is not a zip archive: %v", err)
	}

	out, err := run(t, "template", "tasks", "-o", "-")
	if err != nil || !strings.HasPrefix(out, "Client Name,") {
		t.Errorf("stdout template = %q, %v", out, err)
	}
}

func TestSeed(t *testing.T) {
	path := writeFile(t, "seed.yaml", "statuses: [Pending, Completed]\npayment_statuses: [Paid]\n")

	out, err := run(t, "seed", path)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out, "3 created, 0 existing") {
		t.Errorf("output = %q", out)
	}
}

func TestKinds(t *testing.T) {
	out, err := run(t, "kinds")
	if err != nil {
		t.Fatalf("kinds: %v", err)
	}
	for _, want := range []string{"tasks", "assignees", "Captain Name"} {
		if !strings.Contains(out, want) {
			t.Errorf("kinds output missing %q:\n%s", want, out)
		}
	}
}
