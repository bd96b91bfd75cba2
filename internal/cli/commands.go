package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	jsonitor "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pwgsync/pwgsync/internal/common/logtrace"
)

var json = jsonitor.ConfigCompatibleWithStandardLibrary

var (
	// Global flags
	jsonOutput bool
	configFile string
	logLevel   string
	verbose    bool
)

var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var warnLabel = color.New(color.FgYellow)
var errorLabel = color.New(color.FgRed)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pwgsync [command] [flags]",
	Short: "pwgsync - A command line client for Piwigo galleries",
	Long: `pwgsync is a command line client for the Piwigo web service.
It logs in to a gallery, reports what the server accepts for upload and
creates album hierarchies the way "mkdir -p" creates directories.

Examples:
  # Configure the gallery
  pwgsync config --server https://example.org/piwigo --username admin

  # Check the credentials
  pwgsync login

  # Create Trips and Trips/Norway if they are missing
  pwgsync ensure-category "Trips/Norway"

  # Print the album tree
  pwgsync categories`,
	PersistentPreRunE: preRunHandlePersistents,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests to stderr in a human readable format")

	rootCmd.AddCommand(newVersionCmd())
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true // Prevent Cobra from printing the error
	rootCmd.SilenceUsage = true  // Prevent Cobra from printing usage on error

	// an interrupt cancels the request in flight
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if errors.Is(err, ErrAlreadyHandled) {
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(os.Stdout, map[string]string{
				"error": err.Error(),
			})
		} else {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// needsConfig reports whether cmd talks to a gallery and therefore needs a
// loaded config file.
func needsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "config", "version", "help", "completion":
			return false
		}
	}
	return true
}

// preRunHandlePersistents sets up logging and loads the configuration before command execution
func preRunHandlePersistents(cmd *cobra.Command, args []string) error {
	level := logtrace.ParseLevel(logLevel)
	if verbose && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}
	logtrace.InitLogger(level, verbose)

	if !needsConfig(cmd) {
		return nil
	}

	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	if err := LoadConfig(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file not found. Configure pwgsync with \"pwgsync config --server <url>\" first")
		}
		return err
	}
	return nil
}

// newVersionCmd creates and returns a new version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of pwgsync",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath()
			if err != nil {
				configPath = "unknown"
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"version":     getCLIVersion(),
					"config_file": configPath,
				})
			}
			cmd.Printf("pwgsync %s\n", getCLIVersion())
			cmd.Printf("Config file: %s\n", configPath)
			return nil
		},
	}
}

// printJSON prints data as indented JSON
func printJSON(w io.Writer, data any) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format JSON output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

// getCLIVersion returns the current CLI version
func getCLIVersion() string {
	return "v0.1.0"
}
