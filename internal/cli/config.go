package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pwgsync/pwgsync/pkg/piwigo"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

const configVersion = "0.1.0"

// Config represents the configuration for the pwgsync CLI.
// It holds the gallery connection details and the account to log in with.
type Config struct {
	// Version of the configuration file format
	Version string `yaml:"version" toml:"version"`
	// ServerURL is the gallery root, e.g. https://example.org/piwigo
	ServerURL string `yaml:"server_url" toml:"server_url"`
	// Username is the Piwigo account name
	Username string `yaml:"username" toml:"username"`
	// Password is the Piwigo password (stored for convenience)
	Password string `yaml:"password,omitempty" toml:"password,omitempty"`
	// VerifyTLS enables certificate verification; nil means enabled
	VerifyTLS *bool `yaml:"verify_tls,omitempty" toml:"verify_tls,omitempty"`
	// Timeout bounds a single request, e.g. "30s"
	Timeout string `yaml:"timeout,omitempty" toml:"timeout,omitempty"`
	// CaseInsensitiveNames makes album path matching ignore case
	CaseInsensitiveNames bool `yaml:"case_insensitive_names,omitempty" toml:"case_insensitive_names,omitempty"`
}

var config *Config

// GetDefaultConfigPath returns the default path for the config file
// It uses the OS-specific config directory (e.g., ~/.config/pwgsync on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "pwgsync", DefaultConfigFile), nil
}

func isTOML(file string) bool {
	return strings.EqualFold(filepath.Ext(file), ".toml")
}

// LoadConfig loads the configuration from the specified file
// If no file is specified, it uses the default config location.
// Files ending in .toml are read as TOML, anything else as YAML.
func LoadConfig(file string) error {
	c, err := readConfig(file)
	if err != nil {
		return err
	}
	config = c
	return nil
}

func readConfig(file string) (*Config, error) {
	if file == "" {
		var err error
		file, err = GetDefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get default config path: %w", err)
		}
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	raw, err = PreprocessConfig(raw)
	if err != nil {
		return nil, fmt.Errorf("unable to expand config file: %w", err)
	}

	var c Config
	if isTOML(file) {
		if _, err := toml.Decode(string(raw), &c); err != nil {
			return nil, fmt.Errorf("unable to parse config file: %w", err)
		}
	} else if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	if err := c.ValidateConfig(); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	return config
}

// WriteConfig writes the configuration to the specified file with owner-only
// permissions, in TOML or YAML depending on the file extension.
func (cfg *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}

	err := os.MkdirAll(filepath.Dir(file), 0o700)
	if err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	var data []byte
	if isTOML(file) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("unable to generate configuration: %w", err)
		}
		data = buf.Bytes()
	} else {
		data, err = yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("unable to generate configuration: %w", err)
		}
	}

	err = os.WriteFile(file, data, os.FileMode(0600))
	if err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}

	return nil
}

// ValidateConfig checks the fields a client needs.
func (cfg *Config) ValidateConfig() error {
	if cfg.ServerURL == "" {
		return errors.New("server_url is required")
	}
	if _, err := cfg.GetTimeout(); err != nil {
		return err
	}
	pc, err := cfg.ClientConfig()
	if err != nil {
		return err
	}
	return pc.Validate()
}

// GetTimeout parses the timeout setting. An empty value yields zero, which
// the client replaces with its default.
func (cfg *Config) GetTimeout() (time.Duration, error) {
	if cfg.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", cfg.Timeout, err)
	}
	return d, nil
}

// GetVerifyTLS reports whether certificates are verified.
func (cfg *Config) GetVerifyTLS() bool {
	return cfg.VerifyTLS == nil || *cfg.VerifyTLS
}

// ClientConfig converts the file settings into a client configuration.
func (cfg *Config) ClientConfig() (piwigo.Config, error) {
	timeout, err := cfg.GetTimeout()
	if err != nil {
		return piwigo.Config{}, err
	}
	return piwigo.Config{
		BaseURL:              MorphServer(cfg.ServerURL),
		VerifyTLS:            cfg.GetVerifyTLS(),
		Timeout:              timeout,
		UserAgent:            "pwgsync/" + getCLIVersion(),
		CaseInsensitiveNames: cfg.CaseInsensitiveNames,
	}, nil
}

// MorphServer ensures the server URL is properly formatted
// Adds https:// prefix if missing and removes trailing slashes
func MorphServer(server string) string {
	server = strings.TrimSpace(server)
	if server == "" {
		return server
	}

	server = strings.TrimRight(server, "/")

	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "https://" + server
	}

	return server
}

func resolveConfigPath() (string, error) {
	if configFile != "" {
		return configFile, nil
	}
	return GetDefaultConfigPath()
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage the gallery connection settings stored in the config file.

Examples:
  # Point pwgsync at a gallery
  pwgsync config --server https://example.org/piwigo --username admin

  # Use a self-signed certificate
  pwgsync config --server https://nas.local/piwigo --username admin --insecure`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serverFlag, _ := cmd.Flags().GetString("server")
		if serverFlag == "" {
			return cmd.Help()
		}
		username, _ := cmd.Flags().GetString("username")
		insecure, _ := cmd.Flags().GetBool("insecure")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		caseInsensitive, _ := cmd.Flags().GetBool("case-insensitive")

		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		cfg := &Config{
			Version:              configVersion,
			ServerURL:            MorphServer(serverFlag),
			Username:             username,
			CaseInsensitiveNames: caseInsensitive,
		}
		if insecure {
			verify := false
			cfg.VerifyTLS = &verify
		}
		if timeout > 0 {
			cfg.Timeout = timeout.String()
		}
		return setServerConfig(cmd, cfg, path)
	},
}

// configShowCmd prints the active configuration without the password
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		cfg, err := readConfig(path)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, map[string]any{
				"config_file":            path,
				"server_url":             cfg.ServerURL,
				"username":               cfg.Username,
				"verify_tls":             cfg.GetVerifyTLS(),
				"timeout":                cfg.Timeout,
				"case_insensitive_names": cfg.CaseInsensitiveNames,
				"password_set":           cfg.Password != "",
			})
		}
		cfg.Print(out, path)
		return nil
	},
}

// configClearCmd represents the config clear command
var configClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove stored credentials from the configuration",
	Long: `Remove the stored username and password from the configuration.
The server settings are kept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		cfg, err := readConfig(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("config file not found. Configure pwgsync with \"pwgsync config --server <url>\" first")
			}
			return err
		}
		cfg.Username = ""
		cfg.Password = ""

		if err := cfg.WriteConfig(path); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]int{"result": 1})
		}
		okLabel.Fprintln(cmd.OutOrStdout(), "Credentials removed")
		return nil
	},
}

func init() {
	configCmd.Flags().String("server", "", "Gallery URL (e.g., https://example.org/piwigo)")
	configCmd.Flags().String("username", "", "Piwigo account name")
	configCmd.Flags().Bool("insecure", false, "Skip TLS certificate verification")
	configCmd.Flags().Duration("timeout", 0, "Per request timeout (default 30s)")
	configCmd.Flags().Bool("case-insensitive", false, "Ignore case when matching album names")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configClearCmd)
	rootCmd.AddCommand(configCmd)
}

// Print prints the configuration in a human-readable format
func (cfg *Config) Print(w io.Writer, path string) {
	fmt.Fprintf(w, "Config file: %s\n", path)
	fmt.Fprintf(w, "Server: %s\n", cfg.ServerURL)
	if cfg.Username != "" {
		fmt.Fprintf(w, "Username: %s\n", cfg.Username)
	}
	fmt.Fprintf(w, "Verify TLS: %t\n", cfg.GetVerifyTLS())
	if cfg.Timeout != "" {
		fmt.Fprintf(w, "Timeout: %s\n", cfg.Timeout)
	}
	if cfg.CaseInsensitiveNames {
		fmt.Fprintln(w, "Album names: case insensitive")
	}
	if cfg.Password != "" {
		fmt.Fprintln(w, "Password: stored")
	}
}

// setServerConfig writes a fresh configuration for a server
func setServerConfig(cmd *cobra.Command, cfg *Config, path string) error {
	if err := cfg.ValidateConfig(); err != nil {
		return err
	}
	if err := cfg.WriteConfig(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]string{
			"server":      cfg.ServerURL,
			"config_file": path,
		})
	}
	fmt.Fprintf(out, "Server configured: %s\n", cfg.ServerURL)
	fmt.Fprintf(out, "Config file: %s\n", path)
	return nil
}
