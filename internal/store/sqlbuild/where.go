// Package sqlbuild assembles parameterised WHERE clauses shared by the SQL
// store backends.
package sqlbuild

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/taskdesk/internal/core"
)

// Placeholder renders the n-th (1-based) bind parameter.
type Placeholder func(n int) string

// Dollar is the PostgreSQL placeholder style: $1, $2, ...
func Dollar(n int) string { return fmt.Sprintf("$%d", n) }

// Numbered is the SQLite numbered placeholder style: ?1, ?2, ...
func Numbered(n int) string { return fmt.Sprintf("?%d", n) }

// WhereBuilder collects AND-ed conditions and their arguments.
// Column names are trusted identifiers; values are always bound.
type WhereBuilder struct {
	ph         Placeholder
	conditions []string
	args       []any
	argIndex   int
}

// NewWhereBuilder returns an empty builder using ph for placeholders.
func NewWhereBuilder(ph Placeholder) *WhereBuilder {
	return &WhereBuilder{ph: ph, argIndex: 1}
}

// Add appends "col = value". Empty values are skipped.
func (w *WhereBuilder) Add(col, value string) *WhereBuilder {
	if value == "" {
		return w
	}
	w.conditions = append(w.conditions, fmt.Sprintf("%s = %s", col, w.bind(value)))
	return w
}

// AddIn appends "col IN (...)". An empty list is skipped.
func (w *WhereBuilder) AddIn(col string, values []string) *WhereBuilder {
	if len(values) == 0 {
		return w
	}
	ph := make([]string, len(values))
	for i, v := range values {
		ph[i] = w.bind(v)
	}
	w.conditions = append(w.conditions, fmt.Sprintf("%s IN (%s)", col, strings.Join(ph, ", ")))
	return w
}

// AddBefore appends "col < value".
func (w *WhereBuilder) AddBefore(col string, value any) *WhereBuilder {
	w.conditions = append(w.conditions, fmt.Sprintf("%s < %s", col, w.bind(value)))
	return w
}

// AddTaskFilter adds one equality condition per non-empty filter field.
func (w *WhereBuilder) AddTaskFilter(f core.TaskFilter) *WhereBuilder {
	return w.
		Add("client", f.Client).
		Add("task_category", f.TaskCategory).
		Add("sub_category", f.SubCategory).
		Add("status", f.Status).
		Add("payment_status", f.PaymentStatus).
		Add("assignee_name", f.AssigneeName).
		Add("captain_name", f.CaptainName)
}

// NextArgIndex returns the index the next bound argument will take, for
// callers that append LIMIT or OFFSET after the WHERE clause.
func (w *WhereBuilder) NextArgIndex() int {
	return w.argIndex
}

// Placeholder returns the next placeholder and binds value to it.
func (w *WhereBuilder) Placeholder(value any) string {
	return w.bind(value)
}

// Build returns " WHERE ..." (with a leading space) and the arguments, or ""
// and nil when no condition was added.
func (w *WhereBuilder) Build() (string, []any) {
	if len(w.conditions) == 0 {
		if len(w.args) == 0 {
			return "", nil
		}
		return "", w.args
	}
	return " WHERE " + strings.Join(w.conditions, " AND "), w.args
}

func (w *WhereBuilder) bind(value any) string {
	p := w.ph(w.argIndex)
	w.args = append(w.args, value)
	w.argIndex++
	return p
}
