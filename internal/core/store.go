package core

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Store implementations when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned by Store implementations when a unique value
// already exists.
var ErrDuplicate = errors.New("duplicate key")

// Task is a persisted task.
type Task struct {
	ID                string    `json:"id"`
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
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// TaskFilter narrows ListTasks. Empty fields match everything.
type TaskFilter struct {
	Client        string
	TaskCategory  string
	SubCategory   string
	Status        string
	PaymentStatus string
	AssigneeName  string
	CaptainName   string
	Limit         int
}

// CountDimension selects the grouping column for dashboard counts.
type CountDimension string

const (
	CountByCategory      CountDimension = "category"
	CountByStatus        CountDimension = "status"
	CountByPaymentStatus CountDimension = "payment_status"
)

// Column returns the task column the dimension groups by.
func (d CountDimension) Column() (string, bool) {
	switch d {
	case CountByCategory:
		return "task_category", true
	case CountByStatus:
		return "status", true
	case CountByPaymentStatus:
		return "payment_status", true
	default:
		return "", false
	}
}

// Count is one bucket of a dashboard count.
type Count struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// ReferenceKind names a reference data list.
type ReferenceKind string

const (
	RefCategory      ReferenceKind = "category"
	RefSubCategory   ReferenceKind = "sub_category"
	RefStatus        ReferenceKind = "status"
	RefPaymentStatus ReferenceKind = "payment_status"
)

// Valid reports whether k is a known reference kind.
func (k ReferenceKind) Valid() bool {
	switch k {
	case RefCategory, RefSubCategory, RefStatus, RefPaymentStatus:
		return true
	}
	return false
}

// ReferenceValue is one category, sub-category, status or payment status.
// Parent is set for sub-categories only and names the owning category.
type ReferenceValue struct {
	ID     string        `json:"id"`
	Kind   ReferenceKind `json:"kind"`
	Name   string        `json:"name"`
	Parent string        `json:"parent,omitempty"`
}

// Store is the persistence boundary. Implementations own authorization-free
// storage only; every method is a single request/response.
type Store interface {
	CreateTask(ctx context.Context, t TaskImportRow) (Task, error)
	UpdateTask(ctx context.Context, id string, t TaskImportRow) (Task, error)
	GetTask(ctx context.Context, id string) (Task, error)
	ListTasks(ctx context.Context, f TaskFilter) ([]Task, error)
	DeleteTasks(ctx context.Context, ids []string) (int, error)
	BulkCreateTasks(ctx context.Context, rows []TaskImportRow) (int, error)
	CountTasks(ctx context.Context, dim CountDimension) ([]Count, error)

	ListReference(ctx context.Context, kind ReferenceKind) ([]ReferenceValue, error)
	CreateReference(ctx context.Context, v ReferenceValue) (ReferenceValue, error)

	ListAssignees(ctx context.Context) ([]AssigneeRow, error)
	UpsertAssignees(ctx context.Context, pairs []AssigneeRow) (int, error)
	DeleteAssignees(ctx context.Context, names []string) (int, error)

	RecordImport(ctx context.Context, b ImportBatch) error
	ListImports(ctx context.Context, limit int) ([]ImportBatch, error)
	PurgeImports(ctx context.Context, before time.Time) (int64, error)

	Ping(ctx context.Context) error
	Close()
}
