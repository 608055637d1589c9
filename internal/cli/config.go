package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/model"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if flagJSON {
			return writeJSON(os.Stdout, cfg)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "config file:  %s\n", flagConfig)
		fmt.Fprintf(w, "api:          %s as %s\n", cfg.API.BaseURL, cfg.API.UserID)
		fmt.Fprintf(w, "server:       %s (%s)\n", cfg.Server.Addr, cfg.Server.DBPath)
		fmt.Fprintf(w, "display:      theme=%s markdown=%t activity_page_size=%d\n",
			cfg.Display.Theme, cfg.Display.Markdown, cfg.Display.ActivityPageSize)
		fmt.Fprintf(w, "log:          level=%s file=%s\n", cfg.Log.Level, cfg.Log.File)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := model.SaveConfig(flagConfig, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", flagConfig)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
