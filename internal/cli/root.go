// Package cli implements the taskboard commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/cache"
	"github.com/nhle/taskboard/internal/credential"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/taskdetail"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagConfig string
	flagJSON   bool
	flagUser   string
)

var rootCmd = &cobra.Command{
	Use:   "taskboard",
	Short: "Collaborative task board in the terminal",
	Long: `taskboard is a terminal client for a shared task board: lists of tasks with
subtasks, threaded comments, collaborators, tags and an activity feed.
Run "taskboard serve" to start the backend and "taskboard tui" to open the board.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", model.DefaultConfigPath(), "path to the config file")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "act as this user (overrides api.user_id)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if flagJSON {
			_ = writeJSON(os.Stdout, errorOutput(err))
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// errorOutput is the JSON shape of a failed command. Request failures
// carry the HTTP status.
func errorOutput(err error) map[string]interface{} {
	out := map[string]interface{}{"error": err.Error()}
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		out["status"] = apiErr.Status
	}
	var valErr *api.ValidationError
	if errors.As(err, &valErr) {
		out["fields"] = valErr.Fields
	}
	return out
}

// loadConfig reads the config file named by --config and applies flag
// overrides.
func loadConfig() (*model.AppConfig, error) {
	cfg, err := model.LoadConfig(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagUser != "" {
		cfg.API.UserID = flagUser
	}
	return cfg, nil
}

// newClient builds an API client for cfg, sending the stored token when
// one exists.
func newClient(cfg *model.AppConfig) (*api.Client, error) {
	token, err := credential.Token()
	if err != nil {
		return nil, fmt.Errorf("reading api token: %w", err)
	}

	var opts []api.Option
	if token != "" {
		opts = append(opts, api.WithToken(token))
	}
	return api.NewClient(cfg.API.BaseURL, cfg.API.UserID, opts...), nil
}

// newService wires the client, the cache and the logger into the task
// detail service.
func newService(cfg *model.AppConfig, logger *zap.Logger) (*taskdetail.Service, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	c := cache.New(cache.WithLogger(logger))
	return taskdetail.New(client, c, logger, cfg.Display.ActivityPageSize), nil
}

// writeJSON writes data as indented JSON.
func writeJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}
