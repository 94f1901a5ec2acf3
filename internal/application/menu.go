package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/taskdesk/internal/core"
)

// ActionTimeout bounds every store call made from the menu.
const ActionTimeout = 30 * time.Second

/* ----------------------------------------
	MENU TREE
---------------------------------------- */

type MenuItem struct {
	Label   string
	Submenu *Menu
	Action  func() tea.Cmd

	// PromptKind, when set, asks for a file path and imports it as this kind.
	PromptKind core.ImportKind
}

type Menu struct {
	Title  string
	Items  []MenuItem
	Parent *Menu
}

// DoneMsg carries the text shown after an action succeeds.
type DoneMsg string

// ErrMsg carries a failed action.
type ErrMsg struct{ Err error }

func linkParents(menu *Menu, parent *Menu) {
	menu.Parent = parent

	for i := range menu.Items {
		item := &menu.Items[i]

		if item.Label == "Back" {
			item.Submenu = parent
			continue
		}

		if item.Submenu != nil {
			linkParents(item.Submenu, menu)
		}
	}
}

func buildMenuTree(svc *core.Service, dir string) *Menu {
	importMenu := &Menu{Title: "Import"}
	templateMenu := &Menu{Title: "Templates"}
	for _, info := range svc.ListImports() {
		importMenu.Items = append(importMenu.Items, MenuItem{
			Label:      info.Label,
			PromptKind: info.Kind,
		})
		kind := info.Kind
		templateMenu.Items = append(templateMenu.Items, MenuItem{
			Label:  "Write " + info.TemplateFileName,
			Action: func() tea.Cmd { return writeTemplate(svc, kind, dir) },
		})
	}
	importMenu.Items = append(importMenu.Items, MenuItem{Label: "Back"})
	templateMenu.Items = append(templateMenu.Items, MenuItem{Label: "Back"})

	historyMenu := &Menu{
		Title: "History",
		Items: []MenuItem{
			{Label: "Recent imports", Action: func() tea.Cmd { return showHistory(svc) }},
			{Label: "Purge all history", Action: func() tea.Cmd { return purgeHistory(svc) }},
			{Label: "Back"},
		},
	}

	root := &Menu{
		Title: "Main Menu",
		Items: []MenuItem{
			{Label: "Import ->", Submenu: importMenu},
			{Label: "Templates ->", Submenu: templateMenu},
			{Label: "Task counts", Action: func() tea.Cmd { return showCounts(svc) }},
			{Label: "History ->", Submenu: historyMenu},
		},
	}

	linkParents(root, nil)
	return root
}

/* ----------------------------------------
	ACTIONS
---------------------------------------- */

func runImport(svc *core.Service, kind core.ImportKind, path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("read %s: %w", path, err)}
		}

		ctx, cancel := context.WithTimeout(context.Background(), ActionTimeout)
		defer cancel()

		res, err := svc.Import(ctx, kind, filepath.Base(path), data)
		if err != nil {
			if len(res.Errors) > 0 {
				err = fmt.Errorf("%s\n%s", core.UserFacingMessage(err), strings.Join(res.Errors, "\n"))
				return ErrMsg{Err: err}
			}
			return ErrMsg{Err: fmt.Errorf("%s", core.UserFacingMessage(err))}
		}
		return DoneMsg(FormatImportResult(res))
	}
}

func writeTemplate(svc *core.Service, kind core.ImportKind, dir string) tea.Cmd {
	return func() tea.Msg {
		body, name, err := svc.Template(kind)
		if err != nil {
			return ErrMsg{Err: err}
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return ErrMsg{Err: err}
		}
		return DoneMsg("Wrote " + path)
	}
}

func showCounts(svc *core.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ActionTimeout)
		defer cancel()

		counts, err := svc.Counts(ctx)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return DoneMsg(FormatCounts(counts))
	}
}

func showHistory(svc *core.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ActionTimeout)
		defer cancel()

		batches, err := svc.ImportHistory(ctx, 10)
		if err != nil {
			return ErrMsg{Err: err}
		}
		if len(batches) == 0 {
			return DoneMsg("No imports yet")
		}
		var b strings.Builder
		for _, batch := range batches {
			fmt.Fprintf(&b, "%s  %-9s %-9s %-24s written=%d\n",
				batch.CreatedAt.Local().Format("2006-01-02 15:04"),
				batch.Kind, batch.Status, batch.FileName, batch.Written)
		}
		return DoneMsg(strings.TrimRight(b.String(), "\n"))
	}
}

func purgeHistory(svc *core.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ActionTimeout)
		defer cancel()

		n, err := svc.PurgeHistory(ctx, 0)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return DoneMsg(fmt.Sprintf("Purged %d history entries", n))
	}
}

// FormatImportResult renders an import outcome for terminal output.
func FormatImportResult(res core.ImportResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Imported %d %s from %s (%d valid, batch %s)",
		res.Written, res.Kind, res.FileName, res.Valid, res.BatchID)
	for _, e := range res.Errors {
		b.WriteString("\n  ")
		b.WriteString(e)
	}
	return b.String()
}

// FormatCounts renders dashboard counts for terminal output.
func FormatCounts(c core.DashboardCounts) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total tasks: %d", c.Total)
	groups := []struct {
		title  string
		counts []core.Count
	}{
		{"By category", c.ByCategory},
		{"By status", c.ByStatus},
		{"By payment status", c.ByPaymentStatus},
	}
	for _, g := range groups {
		if len(g.counts) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:", g.title)
		for _, n := range g.counts {
			name := n.Name
			if name == "" {
				name = "(none)"
			}
			fmt.Fprintf(&b, "\n  %-20s %d", name, n.Count)
		}
	}
	return b.String()
}
