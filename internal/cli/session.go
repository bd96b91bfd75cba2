package cli

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pwgsync/pwgsync/pkg/piwigo"
)

// PasswordEnv names the environment variable read when no --password is given.
const PasswordEnv = "PWGSYNC_PASSWORD"

// newClient builds an unauthenticated client from the loaded configuration.
func newClient(cfg *Config) (*piwigo.Client, error) {
	if cfg == nil {
		return nil, errors.New("no configuration loaded")
	}
	pc, err := cfg.ClientConfig()
	if err != nil {
		return nil, err
	}
	return piwigo.NewClient(pc, piwigo.WithLogger(log.Logger.With().Str("component", "piwigo").Logger()))
}

// resolvePassword returns the password from the --password flag, the
// PWGSYNC_PASSWORD environment variable or the config file, in that order.
func resolvePassword(cmd *cobra.Command, cfg *Config) ([]byte, error) {
	if f := cmd.Flags().Lookup("password"); f != nil && f.Value.String() != "" {
		return []byte(f.Value.String()), nil
	}
	if p := os.Getenv(PasswordEnv); p != "" {
		return []byte(p), nil
	}
	if cfg.Password != "" {
		return []byte(cfg.Password), nil
	}
	return nil, errors.New("no password provided. Use --password, set " + PasswordEnv + " or store it with the config file")
}

func addCredentialFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("user", "u", "", "Account name (overrides the config file)")
	cmd.Flags().String("password", "", "Password (overrides "+PasswordEnv+" and the config file)")
}

// withSession logs in, runs fn and logs out again. A logout failure is
// logged but does not mask the result of fn.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, c *piwigo.Client) error) error {
	cfg := GetConfig()
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	username := cfg.Username
	if f := cmd.Flags().Lookup("user"); f != nil && f.Value.String() != "" {
		username = f.Value.String()
	}
	if username == "" {
		return errors.New("no username configured. Use --user or \"pwgsync config --username\"")
	}
	password, err := resolvePassword(cmd, cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := client.Login(ctx, username, password); err != nil {
		return err
	}
	defer func() {
		if err := client.Logout(ctx); err != nil {
			log.Warn().Err(err).Msg("logout failed")
		}
	}()

	return fn(ctx, client)
}
