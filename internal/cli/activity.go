package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/ui"
)

var (
	flagActivityType   string
	flagActivityLimit  int
	flagActivityOffset int
)

var activityCmd = &cobra.Command{
	Use:   "activity TASK_ID",
	Short: "Print the activity feed of a task, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runActivity,
}

func init() {
	activityCmd.Flags().StringVar(&flagActivityType, "type", "", "only show this activity type")
	activityCmd.Flags().IntVar(&flagActivityLimit, "limit", 0, "page size (defaults to display.activity_page_size)")
	activityCmd.Flags().IntVar(&flagActivityOffset, "offset", 0, "number of records to skip")
	rootCmd.AddCommand(activityCmd)
}

func runActivity(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	limit := flagActivityLimit
	if limit == 0 {
		limit = cfg.Display.ActivityPageSize
	}

	page, err := client.ListActivity(context.Background(), api.ActivityQuery{
		TaskID: args[0],
		Limit:  limit,
		Offset: flagActivityOffset,
		Type:   flagActivityType,
	})
	if err != nil {
		return err
	}

	if flagJSON {
		return writeJSON(os.Stdout, map[string]interface{}{
			"items":    page.Items,
			"has_more": page.HasMore,
		})
	}

	w := cmd.OutOrStdout()
	if len(page.Items) == 0 {
		fmt.Fprintln(w, "No activity.")
		return nil
	}
	for _, a := range page.Items {
		fmt.Fprintf(w, "%-10s %s\n", ui.RelativeTime(a.CreatedAt), model.FormatActivity(a))
	}
	if page.HasMore {
		fmt.Fprintf(w, "\nMore available: --offset %d\n", flagActivityOffset+len(page.Items))
	}
	return nil
}
