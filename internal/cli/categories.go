package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pwgsync/pwgsync/pkg/piwigo"
)

// retryDelay is the initial back-off between ensure-category attempts.
var retryDelay = time.Second

// categoriesCmd represents the categories command
var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"albums"},
	Short:   "Print the album tree",
	Long: `Print every album visible to the configured account as a tree.

Examples:
  pwgsync categories
  pwgsync categories --ids
  pwgsync categories -j`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		showIDs, _ := cmd.Flags().GetBool("ids")
		return withSession(cmd, func(ctx context.Context, c *piwigo.Client) error {
			return listCategories(ctx, cmd.OutOrStdout(), c, showIDs)
		})
	},
}

func listCategories(ctx context.Context, out io.Writer, c *piwigo.Client, showIDs bool) error {
	cats, err := c.ListCategories(ctx)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(out, cats)
	}
	printCategoryTree(out, buildCategoryTree(cats), showIDs)
	return nil
}

// ensureCategoryCmd represents the ensure-category command
var ensureCategoryCmd = &cobra.Command{
	Use:   "ensure-category PATH",
	Short: "Create an album path if it does not exist",
	Long: `Resolve a slash separated album path, creating every missing album on
the way, and print the id of the last one. Use \/ for a slash inside an
album name. Transport failures are retried with back-off.

Examples:
  pwgsync ensure-category "Trips/Norway"
  pwgsync ensure-category 'Music/AC\/DC' --retries 5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		retries, _ := cmd.Flags().GetUint("retries")
		return withSession(cmd, func(ctx context.Context, c *piwigo.Client) error {
			return ensureCategory(ctx, cmd.OutOrStdout(), c, args[0], retries)
		})
	},
}

// ensureCategory resolves path, retrying retryable failures up to retries
// extra times. Albums created by a failed attempt are found again by the next.
func ensureCategory(ctx context.Context, out io.Writer, c piwigo.Storage, path string, retries uint) error {
	id, err := retry.DoWithData(
		func() (int64, error) {
			return c.EnsureCategory(ctx, path)
		},
		retry.Context(ctx),
		retry.Attempts(retries+1),
		retry.Delay(retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(piwigo.IsRetryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n+1).Str("path", path).Msg("retrying album resolution")
		}),
	)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(out, map[string]any{
			"result": 1,
			"path":   path,
			"id":     id,
		})
	}
	okLabel.Fprintf(out, "%s", piwigo.JoinCategoryPath(piwigo.SplitCategoryPath(path)))
	fmt.Fprintf(out, ": album %d\n", id)
	return nil
}

func init() {
	categoriesCmd.Flags().Bool("ids", false, "Show album ids")
	addCredentialFlags(categoriesCmd)
	rootCmd.AddCommand(categoriesCmd)

	ensureCategoryCmd.Flags().Uint("retries", 2, "Extra attempts after a transport failure")
	addCredentialFlags(ensureCategoryCmd)
	rootCmd.AddCommand(ensureCategoryCmd)
}
