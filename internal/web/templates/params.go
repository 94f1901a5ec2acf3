// Package templates renders the dashboard page and the HTMX fragments
// returned by the import endpoints. Components are written in .templ files;
// run `templ generate` after editing them.
package templates

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/taskdesk/internal/core"
)

// DashboardParams is everything the dashboard page shows.
type DashboardParams struct {
	Counts  core.DashboardCounts
	Imports []core.ImportInfo
	History []core.ImportBatch
}

func itoa[T ~int | ~int64](n T) string {
	return strconv.FormatInt(int64(n), 10)
}

func countName(c core.Count) string {
	if c.Name == "" {
		return "(none)"
	}
	return c.Name
}

func importURL(kind core.ImportKind) string {
	return "/api/import/" + string(kind)
}

func resultID(kind core.ImportKind) string {
	return "result-" + string(kind)
}

func templateURL(kind core.ImportKind, format string) templ.SafeURL {
	u := "/api/templates/" + string(kind)
	if format != "" {
		u += "?format=" + format
	}
	return templ.URL(u)
}

func batchTime(b core.ImportBatch) string {
	return b.CreatedAt.Format("2006-01-02 15:04")
}
