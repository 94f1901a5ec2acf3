package imports

import (
	"context"

	"github.com/JonMunkholm/taskdesk/internal/core"
)

func init() {
	registerAssignees()
}

func registerAssignees() {
	core.Register(core.ImportDefinition{
		Info: core.ImportInfo{
			Kind:             core.KindAssignees,
			Label:            "Assignees & Captains",
			TemplateFileName: core.AssigneeTemplateFileName,
		},
		Columns: core.AssigneeColumns,
		Policy:  core.MatchExact,
		Parse: func(text string, policy core.MatchPolicy) core.ParsedFile {
			return core.NewParsedFile(core.KindAssignees, core.ParseAssignees(text, policy))
		},
		Template: core.AssigneeTemplate,
		Write:    writeAssignees,
	})
}

// writeAssignees upserts every pair in one call. A later row for the same
// assignee overwrites an earlier one.
func writeAssignees(ctx context.Context, store core.Store, file core.ParsedFile) (int, error) {
	return store.UpsertAssignees(ctx, file.Assignees())
}
