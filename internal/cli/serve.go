package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/taskboard/internal/logging"
	"github.com/nhle/taskboard/internal/server"
	"github.com/nhle/taskboard/internal/store"
)

var (
	flagAddr   string
	flagDBPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the taskboard backend",
	Long: `Serves the REST API under /api/v1 backed by a SQLite database.
The acting user is read from the X-User-ID header and defaults to api.user_id.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().StringVar(&flagDBPath, "db", "", "database path (overrides server.db_path)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagAddr != "" {
		cfg.Server.Addr = flagAddr
	}
	if flagDBPath != "" {
		cfg.Server.DBPath = flagDBPath
	}

	logger, err := logging.New(cfg.Log, false)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if dir := filepath.Dir(cfg.Server.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	st, err := store.NewSQLiteStore(cfg.Server.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()
	logger.Info("Opened database", zap.String("path", cfg.Server.DBPath))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(st, logger, cfg.API.UserID).Run(ctx, cfg.Server.Addr)
}
