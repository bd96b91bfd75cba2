package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pwgsync/pwgsync/pkg/piwigo"
)

// newLoginCmd creates and returns a new login command
func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check the credentials against the gallery",
		Long: `Log in to the gallery, print the session details and log out again.

The password is taken from --password, the PWGSYNC_PASSWORD environment
variable or the config file, in that order.

Example:
  pwgsync login --password=mypassword
  PWGSYNC_PASSWORD=mypassword pwgsync login`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}
	addCredentialFlags(cmd)
	return cmd
}

// runLogin handles the login command execution
func runLogin(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, c *piwigo.Client) error {
		session := c.Session()
		status, err := c.GetStatus(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, map[string]any{
				"result":   1,
				"server":   session.BaseURL,
				"username": session.Username,
				"status":   status.Status,
				"version":  status.RawVersion,
			})
		}
		okLabel.Fprintf(out, "Logged in as %s", session.Username)
		fmt.Fprintf(out, " (%s)\n", status.Status)
		fmt.Fprintf(out, "Server: %s\n", session.BaseURL)
		fmt.Fprintf(out, "Piwigo version: %s\n", status.RawVersion)
		return nil
	})
}

func init() {
	rootCmd.AddCommand(newLoginCmd())
}
