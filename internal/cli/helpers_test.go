package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/pwgsync/pwgsync/pkg/piwigo/piwigotest"
)

const (
	testUser     = "admin"
	testPassword = "s3cret"
)

func newFakeServer(t *testing.T) *piwigotest.Server {
	t.Helper()
	srv := piwigotest.NewServer()
	srv.AddUser(testUser, testPassword)
	t.Cleanup(srv.Close)
	return srv
}

// writeTestConfig stores a config pointing at srv and returns its path.
func writeTestConfig(t *testing.T, srv *piwigotest.Server, withPassword bool) string {
	t.Helper()
	cfg := &Config{
		Version:   configVersion,
		ServerURL: srv.URL,
		Username:  testUser,
		Timeout:   "5s",
	}
	if withPassword {
		cfg.Password = testPassword
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, cfg.WriteConfig(path))
	return path
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// runCLI executes the root command with args and returns what it printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	resetFlags(rootCmd)
	jsonOutput = false
	configFile = ""
	config = nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	err := rootCmd.Execute()
	return out.String(), err
}
