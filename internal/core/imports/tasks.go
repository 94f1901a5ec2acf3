package imports

import (
	"context"

	"github.com/JonMunkholm/taskdesk/internal/core"
)

func init() {
	registerTasks()
}

func registerTasks() {
	core.Register(core.ImportDefinition{
		Info: core.ImportInfo{
			Kind:             core.KindTasks,
			Label:            "Tasks",
			TemplateFileName: core.TaskTemplateFileName,
			Columns:          core.TaskTemplateColumns,
		},
		Columns: core.TaskColumns,
		Policy:  core.MatchExact,
		Parse: func(text string, policy core.MatchPolicy) core.ParsedFile {
			return core.NewParsedFile(core.KindTasks, core.ParseTasks(text, policy))
		},
		Template: core.TaskTemplate,
		Write:    writeTasks,
	})
}

func writeTasks(ctx context.Context, store core.Store, file core.ParsedFile) (int, error) {
	return store.BulkCreateTasks(ctx, file.Tasks())
}
