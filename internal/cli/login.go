package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/credential"
)

var flagToken string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the API token in the system keyring",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored API token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := credential.Delete(credential.TokenKey); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Token removed.")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&flagToken, "token", "", "token to store (prompted when omitted)")
	rootCmd.AddCommand(loginCmd, logoutCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	token := strings.TrimSpace(flagToken)
	if token == "" {
		err := huh.NewInput().
			Title("API token").
			EchoMode(huh.EchoModePassword).
			Value(&token).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("token is required")
				}
				return nil
			}).
			Run()
		if err != nil {
			return fmt.Errorf("reading token: %w", err)
		}
		token = strings.TrimSpace(token)
	}

	if err := credential.Set(credential.TokenKey, token); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Token stored.")
	return nil
}
