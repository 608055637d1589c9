package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/thread"
	"github.com/nhle/taskboard/internal/ui"
)

var commentsCmd = &cobra.Command{
	Use:   "comments TASK_ID",
	Short: "Print the comment threads of a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runComments,
}

func init() {
	rootCmd.AddCommand(commentsCmd)
}

func runComments(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	comments, err := client.ListComments(context.Background(), args[0])
	if err != nil {
		return err
	}
	threads := thread.BuildTree(comments)

	if flagJSON {
		return writeJSON(os.Stdout, threads)
	}
	printThreads(cmd.OutOrStdout(), threads)
	return nil
}

func printThreads(w io.Writer, threads []thread.Thread) {
	if len(threads) == 0 {
		fmt.Fprintln(w, "No comments.")
		return
	}
	for _, t := range threads {
		printComment(w, t.Comment, "")
		for _, r := range t.Replies {
			printComment(w, r, "    ")
		}
	}
	fmt.Fprintf(w, "\n%d comments\n", thread.CountComments(threads))
}

func printComment(w io.Writer, c model.Comment, indent string) {
	meta := c.Author + " · " + ui.RelativeTime(c.CreatedAt)
	if c.EditedAt != nil && !c.IsDeleted {
		meta += " · edited"
	}
	fmt.Fprintf(w, "%s%s  [%s]\n%s  %s\n", indent, meta, c.ID, indent, c.DisplayContent())
}
