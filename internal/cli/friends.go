package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/model"
)

var friendsCmd = &cobra.Command{
	Use:   "friends",
	Short: "List friendships of the acting user",
	Args:  cobra.NoArgs,
	RunE:  runFriends,
}

var friendsAddCmd = &cobra.Command{
	Use:   "add USER_ID",
	Short: "Send a friend request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, c *api.Client) error {
			f, err := c.RequestFriendship(ctx, api.RequestFriendshipRequest{FriendID: args[0]})
			if err != nil {
				return err
			}
			return printFriendship(cmd, *f)
		})
	},
}

var friendsAcceptCmd = &cobra.Command{
	Use:   "accept FRIENDSHIP_ID",
	Short: "Accept a pending friend request",
	Args:  cobra.ExactArgs(1),
	RunE:  respondFriendship(model.FriendshipAccepted),
}

var friendsRejectCmd = &cobra.Command{
	Use:   "reject FRIENDSHIP_ID",
	Short: "Reject a pending friend request",
	Args:  cobra.ExactArgs(1),
	RunE:  respondFriendship(model.FriendshipRejected),
}

var friendsRemoveCmd = &cobra.Command{
	Use:   "remove FRIENDSHIP_ID",
	Short: "Remove a friendship in any state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, c *api.Client) error {
			if err := c.RemoveFriendship(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Friendship removed.")
			return nil
		})
	},
}

func init() {
	friendsCmd.AddCommand(friendsAddCmd, friendsAcceptCmd, friendsRejectCmd, friendsRemoveCmd)
	rootCmd.AddCommand(friendsCmd)
}

func withClient(fn func(context.Context, *api.Client) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	return fn(context.Background(), client)
}

func runFriends(cmd *cobra.Command, _ []string) error {
	return withClient(func(ctx context.Context, c *api.Client) error {
		friendships, err := c.ListFriendships(ctx)
		if err != nil {
			return err
		}
		if flagJSON {
			return writeJSON(os.Stdout, friendships)
		}

		w := cmd.OutOrStdout()
		if len(friendships) == 0 {
			fmt.Fprintln(w, "No friendships.")
			return nil
		}
		for _, f := range friendships {
			other := f.FriendID
			if other == c.UserID() {
				other = f.UserID
			}
			fmt.Fprintf(w, "%-12s %-9s %s\n", other, f.Status, f.ID)
		}
		return nil
	})
}

func respondFriendship(status string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, c *api.Client) error {
			f, err := c.RespondFriendship(ctx, api.RespondFriendshipRequest{FriendshipID: args[0], Status: status})
			if err != nil {
				return err
			}
			return printFriendship(cmd, *f)
		})
	}
}

func printFriendship(cmd *cobra.Command, f model.Friendship) error {
	if flagJSON {
		return writeJSON(os.Stdout, f)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s → %s: %s (%s)\n", f.UserID, f.FriendID, f.Status, f.ID)
	return nil
}
