package core

import (
	"context"
	"time"
)

// MatchPolicy selects how header cells are matched to canonical column names.
type MatchPolicy int

const (
	// MatchExact requires the lower-cased, trimmed header cell to equal the
	// canonical name or one of its aliases.
	MatchExact MatchPolicy = iota

	// MatchSubstring accepts any header cell containing one of the column's
	// keywords and none of its exclusion words. Kept for legacy templates.
	MatchSubstring
)

// String returns the configuration spelling of the policy.
func (p MatchPolicy) String() string {
	switch p {
	case MatchSubstring:
		return "substring"
	default:
		return "exact"
	}
}

// ParseMatchPolicy converts a configuration value to a MatchPolicy.
// Unknown values fall back to MatchExact.
func ParseMatchPolicy(s string) MatchPolicy {
	switch s {
	case "substring", "keyword", "substring_keyword":
		return MatchSubstring
	default:
		return MatchExact
	}
}

// ColumnSpec describes one expected column of an import file.
type ColumnSpec struct {
	Name     string   // Canonical header, as written in the template: "Client Name"
	Aliases  []string // Extra exact spellings (lower-case): "client"
	Keywords []string // Substring policy: any of these must appear in the header
	Exclude  []string // Substring policy: none of these may appear in the header
	Required bool
}

// Key returns the HeaderMap key for the column.
func (c ColumnSpec) Key() string {
	return normalizeHeader(c.Name)
}

// RawRow is one line split into its unquoted, trimmed cells.
type RawRow []string

// HeaderMap maps canonical column keys (lower-case) to a zero-based column index.
type HeaderMap map[string]int

// Cell returns the trimmed cell for a column, or "" if the column is absent
// or the row is too short.
func (h HeaderMap) Cell(row RawRow, column string) string {
	pos, ok := h[normalizeHeader(column)]
	if !ok || pos < 0 || pos >= len(row) {
		return ""
	}
	return row[pos]
}

// Has reports whether the column was found in the header.
func (h HeaderMap) Has(column string) bool {
	_, ok := h[normalizeHeader(column)]
	return ok
}

// AssigneeRow is one validated assignee/captain pair.
type AssigneeRow struct {
	AssigneeName string `json:"assigneeName"`
	CaptainName  string `json:"captainName"`
}

// TaskImportRow is one validated task ready for the bulk write.
type TaskImportRow struct {
	Client            string    `json:"client"`
	TaskCategory      string    `json:"taskCategory"`
	SubCategory       string    `json:"subCategory"`
	Status            string    `json:"status"`
	PaymentStatus     string    `json:"paymentStatus"`
	AssigneeName      string    `json:"assigneeName"`
	CaptainName       string    `json:"captainName"`
	Comment           string    `json:"comment"`
	DueDate           time.Time `json:"dueDate"`
	AssignmentDate    time.Time `json:"assignmentDate"`
	CompletionDate    time.Time `json:"completionDate"`
	Bill              int64     `json:"bill"`
	AdvanceReceived   int64     `json:"advanceReceived"`
	OutstandingAmount int64     `json:"outstandingAmount"`
}

// ValidationResult is the outcome of parsing one import file.
//
// When MissingColumns is non-empty Data is always empty. Row-level problems are
// reported in Errors alongside whatever rows did validate.
type ValidationResult[T any] struct {
	Data           []T      `json:"data"`
	Errors         []string `json:"errors"`
	MissingColumns []string `json:"missingColumns,omitempty"`

	// empty marks a file rejected before its header was read.
	empty bool
}

// Structural reports whether the file failed before any row was read.
func (r ValidationResult[T]) Structural() bool {
	return len(r.MissingColumns) > 0
}

// Err returns the file-level failure for the result, if any:
// a *StructuralError for missing columns, ErrEmptyFile for files without data,
// ErrNoValidRows when every row was dropped. Row errors alone are not fatal.
func (r ValidationResult[T]) Err() error {
	if r.Structural() {
		return &StructuralError{Missing: r.MissingColumns}
	}
	if len(r.Data) > 0 {
		return nil
	}
	if r.empty {
		return ErrEmptyFile
	}
	return ErrNoValidRows
}

// ImportKind identifies a registered import flow.
type ImportKind string

const (
	KindTasks     ImportKind = "tasks"
	KindAssignees ImportKind = "assignees"
)

// ImportInfo contains display information about an import flow.
type ImportInfo struct {
	Kind             ImportKind `json:"kind"`
	Label            string     `json:"label"`
	TemplateFileName string     `json:"templateFileName"`
	Columns          []string   `json:"columns"`
}

// ParseFunc validates raw file text under the given header policy.
type ParseFunc func(text string, policy MatchPolicy) ParsedFile

// WriteFunc persists the rows of a ParsedFile with a single bulk write.
// It returns the number of records written.
type WriteFunc func(ctx context.Context, store Store, file ParsedFile) (int, error)

// ImportDefinition contains everything needed to run one import flow.
type ImportDefinition struct {
	Info     ImportInfo
	Columns  []ColumnSpec
	Policy   MatchPolicy // default policy; Service may override from config
	Parse    ParseFunc
	Template func() string
	Write    WriteFunc
}

// ParsedFile is the kind-erased form of a ValidationResult used by the service.
type ParsedFile struct {
	Kind           ImportKind
	Rows           any // []TaskImportRow or []AssigneeRow
	Count          int
	Errors         []string
	MissingColumns []string
	err            error
}

// Err returns the file-level failure, see ValidationResult.Err.
func (p ParsedFile) Err() error {
	return p.err
}

// NewParsedFile converts a typed ValidationResult.
func NewParsedFile[T any](kind ImportKind, r ValidationResult[T]) ParsedFile {
	return ParsedFile{
		Kind:           kind,
		Rows:           r.Data,
		Count:          len(r.Data),
		Errors:         r.Errors,
		MissingColumns: r.MissingColumns,
		err:            r.Err(),
	}
}

// Tasks returns the task rows, or nil if the file is not a task import.
func (p ParsedFile) Tasks() []TaskImportRow {
	rows, _ := p.Rows.([]TaskImportRow)
	return rows
}

// Assignees returns the assignee rows, or nil if the file is not an assignee import.
func (p ParsedFile) Assignees() []AssigneeRow {
	rows, _ := p.Rows.([]AssigneeRow)
	return rows
}

// ImportResult contains the final result of an import.
type ImportResult struct {
	BatchID  string        `json:"batchId"`
	Kind     ImportKind    `json:"kind"`
	FileName string        `json:"fileName"`
	Valid    int           `json:"valid"`
	Written  int           `json:"written"`
	Errors   []string      `json:"errors,omitempty"`
	Duration time.Duration `json:"duration"`
}

// PreviewResult shows what an import would do without writing anything.
type PreviewResult struct {
	Kind           ImportKind `json:"kind"`
	FileName       string     `json:"fileName"`
	Valid          int        `json:"valid"`
	Errors         []string   `json:"errors,omitempty"`
	MissingColumns []string   `json:"missingColumns,omitempty"`
	Sample         any        `json:"sample,omitempty"`
	Error          string     `json:"error,omitempty"`
}

// ImportStatus records whether a batch was written.
type ImportStatus string

const (
	ImportSucceeded ImportStatus = "succeeded"
	ImportFailed    ImportStatus = "failed"
)

// ImportBatch is one entry in the import history.
type ImportBatch struct {
	ID        string       `json:"id"`
	Kind      ImportKind   `json:"kind"`
	FileName  string       `json:"fileName"`
	Status    ImportStatus `json:"status"`
	Valid     int          `json:"valid"`
	Written   int          `json:"written"`
	RowErrors int          `json:"rowErrors"`
	Error     string       `json:"error,omitempty"`
	IPAddress string       `json:"ipAddress,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}
