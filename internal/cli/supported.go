package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/h2non/filetype"
	"github.com/spf13/cobra"

	"github.com/pwgsync/pwgsync/pkg/piwigo"
)

// supportedCmd represents the supported command
var supportedCmd = &cobra.Command{
	Use:   "supported <mime-type|file>...",
	Short: "Check whether the gallery accepts a format",
	Long: `Check whether the gallery accepts uploads of the given formats.
Arguments naming an existing file are identified by their content.
The command fails when any format is not accepted.

Examples:
  pwgsync supported image/jpeg image/x-canon-cr2
  pwgsync supported ~/Pictures/*.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSupported,
}

type formatCheck struct {
	Arg       string `json:"arg"`
	MimeType  string `json:"mime_type"`
	Supported bool   `json:"supported"`
}

func runSupported(cmd *cobra.Command, args []string) error {
	client, err := newClient(GetConfig())
	if err != nil {
		return err
	}
	return checkFormats(cmd.Context(), cmd.OutOrStdout(), client, args)
}

func checkFormats(ctx context.Context, out io.Writer, client *piwigo.Client, args []string) error {
	if _, err := client.GetStatus(ctx); err != nil {
		return err
	}

	checks := make([]formatCheck, 0, len(args))
	allSupported := true
	for _, arg := range args {
		mt, err := detectMimeType(arg)
		if err != nil {
			return err
		}
		ok := client.IsFormatSupported(mt)
		allSupported = allSupported && ok
		checks = append(checks, formatCheck{Arg: arg, MimeType: mt, Supported: ok})
	}

	if jsonOutput {
		if err := printJSON(out, checks); err != nil {
			return err
		}
	} else {
		for _, c := range checks {
			label := okLabel.Sprint("supported")
			if !c.Supported {
				label = errorLabel.Sprint("not supported")
			}
			if c.Arg != c.MimeType {
				fmt.Fprintf(out, "%s (%s): %s\n", c.Arg, c.MimeType, label)
			} else {
				fmt.Fprintf(out, "%s: %s\n", c.MimeType, label)
			}
		}
	}
	if !allSupported {
		return ErrAlreadyHandled
	}
	return nil
}

// detectMimeType returns arg itself unless it names a regular file, in which
// case the type is sniffed from the file header.
func detectMimeType(arg string) (string, error) {
	info, err := os.Stat(arg)
	if err != nil || info.IsDir() {
		return arg, nil
	}
	kind, err := filetype.MatchFile(arg)
	if err != nil {
		return "", fmt.Errorf("unable to identify %s: %w", arg, err)
	}
	if kind == filetype.Unknown {
		return "", errors.New(arg + ": unknown file type")
	}
	return kind.MIME.Value, nil
}

func init() {
	rootCmd.AddCommand(supportedCmd)
}
