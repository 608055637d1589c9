package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/app"
	"github.com/nhle/taskboard/internal/logging"
	"github.com/nhle/taskboard/internal/model"
)

var flagListID string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the task board",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&flagListID, "list", "", "show only the tasks of this list")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// stdout belongs to the terminal UI, so the log goes to a file.
	logger, err := logging.New(cfg.Log, true)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	svc, err := newService(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("Starting TUI",
		zap.String("base_url", cfg.API.BaseURL),
		zap.String("user", cfg.API.UserID))

	m := app.New(svc, logger, app.Options{
		ListID:        flagListID,
		MarkdownStyle: markdownStyle(cfg.Display),
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// markdownStyle maps the display config to a glamour style name.
func markdownStyle(d model.DisplayConfig) string {
	if !d.Markdown {
		return ""
	}
	switch d.Theme {
	case "dark", "light", "notty", "dracula", "pink", "tokyo-night":
		return d.Theme
	}
	return "auto"
}
