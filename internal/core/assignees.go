package core

import "fmt"

// Assignee template columns.
const (
	ColAssigneeName = "Assignee Name"
	ColCaptainName  = "Captain Name"
)

// AssigneeTemplateFileName is the download name of the assignee template.
const AssigneeTemplateFileName = "assignee_import_template.csv"

// AssigneeColumns are the columns of an assignee/captain import.
var AssigneeColumns = []ColumnSpec{
	{Name: ColAssigneeName, Aliases: []string{"assignee"}, Keywords: []string{"assignee"}, Required: true},
	{Name: ColCaptainName, Aliases: []string{"captain"}, Keywords: []string{"captain"}, Required: true},
}

// ParseAssigneeCSV validates an assignee/captain file using exact header matching.
func ParseAssigneeCSV(text string) ValidationResult[AssigneeRow] {
	return ParseAssignees(text, MatchExact)
}

// ParseAssignees validates an assignee/captain file.
//
// Rows with both cells empty are skipped silently. A row with only one of the
// two names is skipped and reported as "Row N: Missing ... name", where N
// counts non-blank lines from the header (line 1). Duplicate assignees are
// passed through unchanged.
func ParseAssignees(text string, policy MatchPolicy) ValidationResult[AssigneeRow] {
	result := ValidationResult[AssigneeRow]{Data: []AssigneeRow{}, Errors: []string{}}

	lines := SplitLines(text)
	if len(lines) == 0 {
		result.Errors = append(result.Errors, msgEmptyCSV)
		result.empty = true
		return result
	}

	// The header goes through the same quote-aware split as the data rows.
	idx, missing := ResolveHeader(SplitLine(lines[0]), AssigneeColumns, policy)
	if len(missing) > 0 {
		for _, name := range missing {
			result.Errors = append(result.Errors, MissingColumnMessage(name))
		}
		result.MissingColumns = missing
		return result
	}

	for i := 1; i < len(lines); i++ {
		line := i + 1
		row := SplitLine(lines[i])

		assignee := idx.Cell(row, ColAssigneeName)
		captain := idx.Cell(row, ColCaptainName)

		switch {
		case assignee == "" && captain == "":
			continue
		case assignee == "":
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Missing assignee name", line))
			continue
		case captain == "":
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Missing captain name", line))
			continue
		}

		result.Data = append(result.Data, AssigneeRow{
			AssigneeName: assignee,
			CaptainName:  captain,
		})
	}

	return result
}

// AssigneeTemplate returns the assignee import template: a header line and
// one example row. The output is identical on every call.
func AssigneeTemplate() string {
	return JoinRow([]string{ColAssigneeName, ColCaptainName}) + "\n" +
		JoinRow([]string{"John Doe", "Jane Smith"})
}
