package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/taskdesk/internal/application"
	"github.com/JonMunkholm/taskdesk/internal/config"
	"github.com/JonMunkholm/taskdesk/internal/core"
	"github.com/JonMunkholm/taskdesk/internal/logging"
	"github.com/JonMunkholm/taskdesk/internal/store/memory"
)

// errValidationFailed makes validate exit non-zero after printing its report.
var errValidationFailed = errors.New("validation failed")

// cli holds state shared by every subcommand.
type cli struct {
	out    io.Writer
	errOut io.Writer

	envFile string
	verbose bool

	cfg *config.Config
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "taskimport",
		Short: "Validate and import task and assignee files",
		Long: `taskimport runs the task and assignee import pipeline from the terminal.

The store is chosen by DATABASE_URL exactly as for the server:
postgres:// for PostgreSQL, sqlite://path for an embedded database,
memory:// for a throwaway in-process store.

Examples:
  taskimport validate tasks tasks.csv
  taskimport import assignees directory.xlsx
  taskimport template tasks --xlsx -o tasks.xlsx
  taskimport seed reference.yaml`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file to load if present")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		c.newValidateCmd(),
		c.newImportCmd(),
		c.newTemplateCmd(),
		c.newSeedCmd(),
		c.newKindsCmd(),
		c.newMenuCmd(),
	)
	return root
}

// setup loads the environment and configuration and installs the logger.
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	if c.envFile != "" {
		if err := godotenv.Load(c.envFile); err == nil {
			slog.Debug("loaded env file", "path", c.envFile)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c.cfg = cfg

	level := cfg.Logging.Level
	if c.verbose {
		level = "debug"
	}
	slog.SetDefault(logging.New(c.errOut, level, cfg.Logging.Format))
	return nil
}

// offlineService validates without touching any database.
func (c *cli) offlineService() *core.Service {
	return core.NewService(memory.New(), application.ServiceOptions(c.cfg))
}

// openApp connects to the configured store.
func (c *cli) openApp(ctx context.Context) (*application.App, error) {
	return application.New(ctx, c.cfg)
}

func (c *cli) closeApp(app *application.App) {
	app.Close(c.cfg.Server.ShutdownTimeout + time.Second)
}
