package core

// Task template columns.
const (
	ColClient            = "Client Name"
	ColTaskCategory      = "Task Category"
	ColSubCategory       = "Sub Category"
	ColStatus            = "Status"
	ColComment           = "Comment"
	ColAssignedName      = "Assigned Name"
	ColCaptain           = "Captain Name"
	ColDueDate           = "Due Date"
	ColAssignmentDate    = "Assignment Date"
	ColCompletionDate    = "Completion Date"
	ColBill              = "Bill"
	ColAdvanceReceived   = "Advance Received"
	ColOutstandingAmount = "Outstanding Amount"
	ColPaymentStatus     = "Payment Status"
)

// Task defaults applied when the optional cells are empty or absent.
const (
	DefaultTaskStatus    = "Pending"
	DefaultPaymentStatus = "Unpaid"
)

// TaskTemplateFileName is the download name of the task template.
const TaskTemplateFileName = "task_upload_template.csv"

// minTaskCells is the shortest row that can carry the three required fields.
const minTaskCells = 3

// TaskColumns are the columns of a task import in template order. Keywords and
// Exclude only apply under MatchSubstring.
var TaskColumns = []ColumnSpec{
	{Name: ColClient, Keywords: []string{"client"}, Required: true},
	{Name: ColTaskCategory, Keywords: []string{"category"}, Exclude: []string{"sub"}, Required: true},
	{Name: ColSubCategory, Aliases: []string{"subcategory", "sub-category"}, Keywords: []string{"sub"}, Required: true},
	{Name: ColStatus, Keywords: []string{"status"}, Exclude: []string{"payment"}},
	{Name: ColComment, Aliases: []string{"comments"}, Keywords: []string{"comment", "note"}},
	{Name: ColAssignedName, Aliases: []string{"assignee name", "assignee"}, Keywords: []string{"assign"}, Exclude: []string{"date"}},
	{Name: ColCaptain, Aliases: []string{"captain"}, Keywords: []string{"captain"}},
	{Name: ColDueDate, Keywords: []string{"due"}},
	{Name: ColAssignmentDate, Keywords: []string{"assignment date", "assigned date", "assigned on"}},
	{Name: ColCompletionDate, Keywords: []string{"complet"}},
	{Name: ColBill, Aliases: []string{"bill amount"}, Keywords: []string{"bill"}},
	{Name: ColAdvanceReceived, Aliases: []string{"advance"}, Keywords: []string{"advance"}},
	{Name: ColOutstandingAmount, Aliases: []string{"outstanding"}, Keywords: []string{"outstanding", "balance"}},
	{Name: ColPaymentStatus, Keywords: []string{"payment"}},
}

// TaskTemplateColumns is the header of the downloadable template. Captain Name
// is accepted on import but left out of the template; captains normally come
// from the assignee directory.
var TaskTemplateColumns = []string{
	ColClient, ColTaskCategory, ColSubCategory, ColStatus, ColComment,
	ColAssignedName, ColDueDate, ColAssignmentDate, ColCompletionDate,
	ColBill, ColAdvanceReceived, ColOutstandingAmount, ColPaymentStatus,
}

var taskTemplateExample = []string{
	"ABC Corp", "Design", "Logo Design", "In Progress", "Initial draft completed",
	"John Doe", "2026-03-15", "2026-02-01", "2026-03-10",
	"5000", "2000", "3000", "Partially Paid",
}

// ParseTaskCSV validates a task file using exact header matching.
func ParseTaskCSV(text string) ValidationResult[TaskImportRow] {
	return ParseTasks(text, MatchExact)
}

// ParseTasks validates a task file under the given header policy.
//
// Unlike the assignee import, a row missing a required field is dropped
// without an error message. Optional cells take their defaults, and dates and
// amounts that fail to parse become EpochZero and 0 rather than rejecting the
// row. A file whose rows are all dropped comes back with empty Data and no
// MissingColumns; its Err is ErrNoValidRows.
func ParseTasks(text string, policy MatchPolicy) ValidationResult[TaskImportRow] {
	result := ValidationResult[TaskImportRow]{Data: []TaskImportRow{}, Errors: []string{}}

	rows := SplitRows(text)
	if len(rows) < 2 {
		result.Errors = append(result.Errors, msgNoDataRows)
		result.empty = true
		return result
	}

	idx, missing := ResolveHeader(rows[0], TaskColumns, policy)
	if len(missing) > 0 {
		for _, name := range missing {
			result.Errors = append(result.Errors, MissingColumnMessage(name))
		}
		result.MissingColumns = missing
		return result
	}

	for _, row := range rows[1:] {
		if len(row) < minTaskCells {
			continue
		}
		task, ok := buildTaskRow(row, idx)
		if !ok {
			continue
		}
		result.Data = append(result.Data, task)
	}

	return result
}

// buildTaskRow converts one data row. It returns false when a required field
// is empty.
func buildTaskRow(row RawRow, idx HeaderMap) (TaskImportRow, bool) {
	client := idx.Cell(row, ColClient)
	category := idx.Cell(row, ColTaskCategory)
	sub := idx.Cell(row, ColSubCategory)
	if client == "" || category == "" || sub == "" {
		return TaskImportRow{}, false
	}

	return TaskImportRow{
		Client:            client,
		TaskCategory:      category,
		SubCategory:       sub,
		Status:            orDefault(idx.Cell(row, ColStatus), DefaultTaskStatus),
		PaymentStatus:     orDefault(idx.Cell(row, ColPaymentStatus), DefaultPaymentStatus),
		AssigneeName:      idx.Cell(row, ColAssignedName),
		CaptainName:       idx.Cell(row, ColCaptain),
		Comment:           idx.Cell(row, ColComment),
		DueDate:           ParseImportDate(idx.Cell(row, ColDueDate)),
		AssignmentDate:    ParseImportDate(idx.Cell(row, ColAssignmentDate)),
		CompletionDate:    ParseImportDate(idx.Cell(row, ColCompletionDate)),
		Bill:              ParseAmount(idx.Cell(row, ColBill)),
		AdvanceReceived:   ParseAmount(idx.Cell(row, ColAdvanceReceived)),
		OutstandingAmount: ParseAmount(idx.Cell(row, ColOutstandingAmount)),
	}, true
}

// TaskTemplate returns the task import template: the canonical header line
// and one example row. The output is identical on every call.
func TaskTemplate() string {
	return JoinRow(TaskTemplateColumns) + "\n" + JoinRow(taskTemplateExample)
}

// NewTaskRow applies the import defaults to a partially filled row, for
// tasks created outside a file import.
func NewTaskRow(t TaskImportRow) TaskImportRow {
	t.Status = orDefault(t.Status, DefaultTaskStatus)
	t.PaymentStatus = orDefault(t.PaymentStatus, DefaultPaymentStatus)
	if t.DueDate.IsZero() {
		t.DueDate = EpochZero
	}
	if t.AssignmentDate.IsZero() {
		t.AssignmentDate = EpochZero
	}
	if t.CompletionDate.IsZero() {
		t.CompletionDate = EpochZero
	}
	return t
}
