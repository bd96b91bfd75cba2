package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"github.com/pwgsync/pwgsync/pkg/piwigo"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Get server status and upload capabilities",
	Long: `Get server status from pwg.session.getStatus. Without --login the
status is fetched anonymously.

Examples:
  # Get server status
  pwgsync status

  # Fail unless the server runs Piwigo 14 or later
  pwgsync status --require ">=14.0.0"

  # Get the status of the configured account in JSON format
  pwgsync status --login -j`,
	Args: cobra.NoArgs,
	RunE: getStatus,
}

// getStatus handles retrieving server status information
func getStatus(cmd *cobra.Command, args []string) error {
	requirement, _ := cmd.Flags().GetString("require")
	var constraint *semver.Constraints
	if requirement != "" {
		var err error
		constraint, err = semver.NewConstraint(requirement)
		if err != nil {
			return fmt.Errorf("invalid version requirement %q: %w", requirement, err)
		}
	}

	show := func(ctx context.Context, c *piwigo.Client) error {
		status, err := c.GetStatus(ctx)
		if err != nil {
			return err
		}
		if err := checkVersion(status, constraint); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, map[string]any{
				"result":      1,
				"version_cli": getCLIVersion(),
				"value":       status,
			})
		}
		fmt.Fprintf(out, "pwgsync %s\n", getCLIVersion())
		printStatusPretty(out, c.Config().BaseURL, status)
		return nil
	}

	if login, _ := cmd.Flags().GetBool("login"); login {
		return withSession(cmd, show)
	}
	client, err := newClient(GetConfig())
	if err != nil {
		return err
	}
	return show(cmd.Context(), client)
}

// checkVersion fails when the server version does not satisfy constraint.
func checkVersion(status *piwigo.StatusInfo, constraint *semver.Constraints) error {
	if constraint == nil {
		return nil
	}
	if status.Version == nil {
		return fmt.Errorf("server version %q is not a release version", status.RawVersion)
	}
	if ok, errs := constraint.Validate(status.Version); !ok {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return fmt.Errorf("server version %s does not satisfy %s: %s", status.Version, constraint, strings.Join(msgs, "; "))
	}
	return nil
}

// printStatusPretty prints the status information in a human-readable format
func printStatusPretty(w io.Writer, server string, status *piwigo.StatusInfo) {
	fmt.Fprintf(w, "Server: %s\n", server)
	fmt.Fprintf(w, "Piwigo version: %s\n", status.RawVersion)
	if status.CurrentDatetime != "" {
		fmt.Fprintf(w, "Server time: %s\n", status.CurrentDatetime)
	}
	fmt.Fprintf(w, "User: %s (%s)\n", status.Username, status.Status)
	if status.Language != "" {
		fmt.Fprintf(w, "Language: %s\n", status.Language)
	}

	fmt.Fprintln(w)
	if len(status.AcceptedMimeTypes) == 0 {
		warnLabel.Fprintln(w, "No upload formats reported")
		return
	}
	fmt.Fprintf(w, "Upload extensions: %s\n", status.UploadFileTypes)
	fmt.Fprintf(w, "Upload formats: %s\n", strings.Join(status.AcceptedMimeTypes, ", "))
	if status.UploadChunkSize > 0 {
		fmt.Fprintf(w, "Upload chunk size: %d KiB\n", status.UploadChunkSize)
	}
}

// init initializes the status command and adds it to the root command
func init() {
	statusCmd.Flags().Bool("login", false, "Log in with the configured account first")
	statusCmd.Flags().String("require", "", "Fail unless the server version satisfies this constraint")
	addCredentialFlags(statusCmd)
	rootCmd.AddCommand(statusCmd)
}
