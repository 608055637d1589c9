package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/thread"
)

var subtasksCmd = &cobra.Command{
	Use:   "subtasks TASK_ID",
	Short: "Print the subtasks of a task with completion progress",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubtasks,
}

func init() {
	rootCmd.AddCommand(subtasksCmd)
}

func runSubtasks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	subtasks, err := client.ListSubtasks(context.Background(), args[0])
	if err != nil {
		return err
	}
	progress := thread.SubtaskProgress(subtasks)

	if flagJSON {
		return writeJSON(os.Stdout, map[string]interface{}{
			"subtasks": subtasks,
			"progress": progress,
			"percent":  progress.Percent(),
		})
	}

	w := cmd.OutOrStdout()
	for _, st := range subtasks {
		box := "[ ]"
		if st.Completed {
			box = "[x]"
		}
		fmt.Fprintf(w, "%s %s  (%s)\n", box, st.Title, st.ID)
	}
	fmt.Fprintf(w, "\n%s done (%d%%)\n", progress.Badge(), progress.Percent())
	return nil
}
