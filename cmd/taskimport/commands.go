package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/taskdesk/internal/application"
	"github.com/JonMunkholm/taskdesk/internal/core"
	"github.com/JonMunkholm/taskdesk/internal/logging"
)

func kindNames() []string {
	kinds := make([]string, 0, core.ImportCount())
	for _, def := range core.All() {
		kinds = append(kinds, string(def.Info.Kind))
	}
	return kinds
}

func (c *cli) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <kind> <file>",
		Short: "Check a file without writing anything",
		Args:  cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return kindNames(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveDefault
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			res, err := c.offlineService().Preview(cmd.Context(), core.ImportKind(args[0]), filepath.Base(args[1]), data)
			if err != nil {
				return errors.New(core.UserFacingMessage(err))
			}
			return writePreview(c.out, res)
		},
	}
}

// writePreview prints a validation report and fails on file-level errors.
func writePreview(w io.Writer, res core.PreviewResult) error {
	fmt.Fprintf(w, "%s: %d valid %s rows\n", res.FileName, res.Valid, res.Kind)
	if len(res.MissingColumns) > 0 {
		fmt.Fprintf(w, "missing columns: %s\n", strings.Join(res.MissingColumns, ", "))
	}
	for _, e := range res.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
	if res.Error != "" {
		fmt.Fprintln(w, res.Error)
		return errValidationFailed
	}
	return nil
}

func (c *cli) newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <kind> <file>",
		Short: "Validate a file and write its rows to the store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			app, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer c.closeApp(app)

			ctx := core.WithClient(cmd.Context(), core.Client{UserAgent: "taskimport"})
			res, err := app.Service.Import(ctx, core.ImportKind(args[0]), filepath.Base(args[1]), data)
			if err != nil {
				for _, e := range res.Errors {
					fmt.Fprintf(c.out, "  %s\n", e)
				}
				return errors.New(core.UserFacingMessage(err))
			}
			fmt.Fprintln(c.out, application.FormatImportResult(res))
			return nil
		},
	}
}

func (c *cli) newTemplateCmd() *cobra.Command {
	var (
		output string
		xlsx   bool
	)
	cmd := &cobra.Command{
		Use:   "template <kind>",
		Short: "Write the import template for a kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, name, err := c.offlineService().Template(core.ImportKind(args[0]))
			if err != nil {
				return err
			}

			data := []byte(body + "\n")
			if xlsx {
				if data, err = core.TemplateXLSX(body); err != nil {
					return err
				}
				name = strings.TrimSuffix(name, filepath.Ext(name)) + ".xlsx"
			}

			switch output {
			case "-":
				_, err = c.out.Write(data)
				return err
			case "":
				output = name
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path, - for stdout (default: template file name)")
	cmd.Flags().BoolVar(&xlsx, "xlsx", false, "write an .xlsx workbook instead of CSV")
	return cmd
}

func (c *cli) newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Load reference data from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer c.closeApp(app)

			seed, err := core.LoadSeedFile(args[0])
			if err != nil {
				return err
			}
			res, err := app.Service.ApplySeed(cmd.Context(), seed)
			if err != nil {
				return errors.New(core.UserFacingMessage(err))
			}
			fmt.Fprintf(c.out, "reference values: %d created, %d existing; assignees: %d\n",
				res.Created, res.Existing, res.Assignees)
			return nil
		},
	}
}

func (c *cli) newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List import kinds and their columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, info := range c.offlineService().ListImports() {
				fmt.Fprintf(c.out, "%-10s %s\n", info.Kind, info.Label)
				fmt.Fprintf(c.out, "%-10s columns: %s\n", "", strings.Join(info.Columns, ", "))
			}
			return nil
		},
	}
}

func (c *cli) newMenuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Open the interactive import menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer c.closeApp(app)

			dir, err := os.Getwd()
			if err != nil {
				return err
			}

			// Log lines would tear the full-screen view.
			restore := silenceLogs(c.cfg.Logging.Format)
			defer restore()

			_, err = tea.NewProgram(application.NewModel(app.Service, dir), tea.WithAltScreen()).Run()
			return err
		},
	}
}

func silenceLogs(format string) func() {
	prev := slog.Default()
	slog.SetDefault(logging.New(io.Discard, "error", format))
	return func() { slog.SetDefault(prev) }
}
