package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/planroom/drawings/internal/common/httpclient"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

// EnvPrefix prefixes environment variables that override config fields,
// e.g. DRAWINGS_SERVER_URL.
const EnvPrefix = "DRAWINGS_"

const defaultTimeout = 30 * time.Second

// Config holds the connection details for the Drawing and Upload services
// and the user the CLI acts as.
type Config struct {
	// Version of the configuration file format
	Version string `json:"version,omitempty" yaml:"version" toml:"version" mapstructure:"version"`
	// ServerURL is the base URL of the Drawing Service
	ServerURL string `json:"server_url,omitempty" yaml:"server_url" toml:"server_url" mapstructure:"server_url"`
	// UploadURL is the base URL of the Upload Service. Defaults to ServerURL.
	UploadURL string `json:"upload_url,omitempty" yaml:"upload_url,omitempty" toml:"upload_url,omitempty" mapstructure:"upload_url"`
	// APIKey is sent as a bearer token when no session token is set
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" toml:"api_key,omitempty" mapstructure:"api_key"`
	// Token is the session token. Its claims name the current user.
	Token string `json:"token,omitempty" yaml:"token,omitempty" toml:"token,omitempty" mapstructure:"token"`
	// TokenExpiry is when Token expires, RFC 3339
	TokenExpiry string `json:"token_expiry,omitempty" yaml:"token_expiry,omitempty" toml:"token_expiry,omitempty" mapstructure:"token_expiry"`
	// Timeout bounds every request, e.g. "30s"
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout,omitempty" mapstructure:"timeout"`
	// LogLevel is the zerolog level for diagnostics on stderr
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty" toml:"log_level,omitempty" mapstructure:"log_level"`
	// UserID and UserName identify the user when no token is set
	UserID   string `json:"user_id,omitempty" yaml:"user_id,omitempty" toml:"user_id,omitempty" mapstructure:"user_id"`
	UserName string `json:"user_name,omitempty" yaml:"user_name,omitempty" toml:"user_name,omitempty" mapstructure:"user_name"`
}

var config *Config

var _ httpclient.Configurator = (*Config)(nil)

// GetDefaultConfigPath returns the default path for the config file
// It uses the OS-specific config directory (e.g., ~/.config/drawings on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "drawings", DefaultConfigFile), nil
}

func isTOML(file string) bool {
	return strings.EqualFold(filepath.Ext(file), ".toml")
}

// LoadConfig loads the configuration from file, applies environment
// overrides and validates the result.
func LoadConfig(file string) error {
	if file == "" {
		var err error
		file, err = GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get default config path: %w", err)
		}
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("unable to read config file: %w", err)
	}

	var c Config
	if isTOML(file) {
		err = toml.Unmarshal(raw, &c)
	} else {
		err = yaml.Unmarshal(raw, &c)
	}
	if err != nil {
		return fmt.Errorf("unable to parse config file: %w", err)
	}

	if err := c.applyEnv(envOverrides()); err != nil {
		return err
	}
	if err := c.ValidateConfig(); err != nil {
		return err
	}

	c.ServerURL = MorphServer(c.ServerURL)
	c.UploadURL = MorphServer(c.UploadURL)

	config = &c
	return nil
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	return config
}

// envOverrides collects DRAWINGS_* variables from a .env file in the working
// directory and the process environment. The process environment wins.
func envOverrides() map[string]string {
	vars := map[string]string{}
	if dotenv, err := godotenv.Read(".env"); err == nil {
		for k, v := range dotenv {
			vars[k] = v
		}
	}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			vars[k] = v
		}
	}

	out := map[string]string{}
	for k, v := range vars {
		if name, ok := strings.CutPrefix(k, EnvPrefix); ok && name != "" {
			out[strings.ToLower(name)] = v
		}
	}
	return out
}

func (cfg *Config) applyEnv(vars map[string]string) error {
	if len(vars) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(vars); err != nil {
		return fmt.Errorf("invalid %s environment override: %w", EnvPrefix, err)
	}
	return nil
}

// WriteConfig writes the configuration to file, as TOML when the file name
// ends in .toml and YAML otherwise.
func (cfg *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}

	err := os.MkdirAll(filepath.Dir(file), os.ModePerm)
	if err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	var out []byte
	if isTOML(file) {
		var b strings.Builder
		err = toml.NewEncoder(&b).Encode(cfg)
		out = []byte(b.String())
	} else {
		out, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to generate configuration: %w", err)
	}

	err = os.WriteFile(file, out, os.FileMode(0600))
	if err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}

	return nil
}

// ValidateConfig checks for required fields and proper formatting
func (cfg *Config) ValidateConfig() error {
	if cfg.ServerURL == "" {
		return errors.New("server_url is required")
	}
	if cfg.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Timeout); err != nil || d <= 0 {
			return fmt.Errorf("timeout %q is not a positive duration", cfg.Timeout)
		}
	}
	if cfg.TokenExpiry != "" {
		if _, err := time.Parse(time.RFC3339, cfg.TokenExpiry); err != nil {
			return fmt.Errorf("token_expiry %q is not an RFC 3339 time", cfg.TokenExpiry)
		}
	}
	return nil
}

// MorphServer ensures the server URL is properly formatted
// Adds https:// prefix if missing and removes trailing slashes
func MorphServer(server string) string {
	if server == "" {
		return server
	}

	server = strings.TrimRight(server, "/")

	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "https://" + server
	}

	return server
}

// GetServerURL returns the properly formatted Drawing Service URL
func (cfg *Config) GetServerURL() string {
	return MorphServer(cfg.ServerURL)
}

// GetUploadURL returns the Upload Service URL, falling back to the server URL
func (cfg *Config) GetUploadURL() string {
	if cfg.UploadURL == "" {
		return cfg.GetServerURL()
	}
	return MorphServer(cfg.UploadURL)
}

// GetAPIKey returns the API key from the configuration
func (cfg *Config) GetAPIKey() string {
	return cfg.APIKey
}

// GetToken returns the session token from the configuration
func (cfg *Config) GetToken() string {
	return cfg.Token
}

// GetTokenExpiry returns the token expiry time from the configuration
func (cfg *Config) GetTokenExpiry() time.Time {
	if cfg.TokenExpiry == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, cfg.TokenExpiry)
	if err != nil {
		return time.Time{}
	}
	return t
}

// GetTimeout returns the per-request timeout
func (cfg *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(cfg.Timeout)
	if err != nil || d <= 0 {
		return defaultTimeout
	}
	return d
}

// uploadConfig points an HTTP client at the Upload Service with the same
// credentials.
type uploadConfig struct {
	*Config
}

func (u uploadConfig) GetServerURL() string {
	return u.GetUploadURL()
}

// Print prints the current configuration in a human-readable format
func (cfg *Config) Print(w io.Writer) {
	fmt.Fprintf(w, "Server: %s\n", cfg.GetServerURL())
	fmt.Fprintf(w, "Upload server: %s\n", cfg.GetUploadURL())
	fmt.Fprintf(w, "Timeout: %s\n", cfg.GetTimeout())
	if cfg.Token != "" {
		fmt.Fprintln(w, "Token: set")
	}
	if cfg.UserID != "" {
		fmt.Fprintf(w, "User: %s\n", cfg.UserID)
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long: `Manage CLI configuration settings like server connection and the signed-in user.

Examples:
  # Point the CLI at a Drawing Service
  drawings config --server drawings.example.com

  # Use a separate upload service and a session token
  drawings config --server drawings.example.com --upload-server files.example.com --token eyJ...

  # Act as a fixed user when no token is available
  drawings config --server localhost:8080 --user-id u-1 --user-name "Ana Ruiz"`,
		RunE: runConfig,
	}
	cmd.Flags().String("server", "", "Drawing Service URL (e.g., drawings.example.com)")
	cmd.Flags().String("upload-server", "", "Upload Service URL, if different from the server")
	cmd.Flags().String("api-key", "", "API key")
	cmd.Flags().String("token", "", "Session token")
	cmd.Flags().String("timeout", "", "Request timeout (e.g., 30s)")
	cmd.Flags().String("user-id", "", "User ID to act as when no token is set")
	cmd.Flags().String("user-name", "", "Display name for --user-id")

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear the session token and user",
		RunE:  runConfigClear,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE:  runConfigShow,
	})
	return cmd
}

// runConfig writes a new configuration from flags
func runConfig(cmd *cobra.Command, args []string) error {
	server, _ := cmd.Flags().GetString("server")
	if server == "" {
		return cmd.Help()
	}

	cfg := &Config{Version: "0.1.0", ServerURL: MorphServer(server)}
	upload, _ := cmd.Flags().GetString("upload-server")
	cfg.UploadURL = MorphServer(upload)
	cfg.APIKey, _ = cmd.Flags().GetString("api-key")
	cfg.Token, _ = cmd.Flags().GetString("token")
	cfg.Timeout, _ = cmd.Flags().GetString("timeout")
	cfg.UserID, _ = cmd.Flags().GetString("user-id")
	cfg.UserName, _ = cmd.Flags().GetString("user-name")

	if err := cfg.ValidateConfig(); err != nil {
		return err
	}
	if err := cfg.WriteConfig(configFile); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]string{
			"server":      cfg.ServerURL,
			"config_file": configFile,
		})
	}
	fmt.Fprintf(out, "Server configured: %s\n", cfg.ServerURL)
	fmt.Fprintf(out, "Config file: %s\n", configFile)
	return nil
}

func runConfigClear(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(configFile); err != nil {
		return err
	}
	cfg := GetConfig()
	cfg.Token = ""
	cfg.TokenExpiry = ""
	cfg.UserID = ""
	cfg.UserName = ""

	if err := cfg.WriteConfig(configFile); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]int{"result": 1})
	}
	okLabel.Fprintln(cmd.OutOrStdout(), "Signed out")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(configFile); err != nil {
		return err
	}
	cfg := GetConfig()
	if jsonOutput {
		redacted := *cfg
		if redacted.Token != "" {
			redacted.Token = "***"
		}
		if redacted.APIKey != "" {
			redacted.APIKey = "***"
		}
		return printJSON(cmd.OutOrStdout(), redacted)
	}
	cfg.Print(cmd.OutOrStdout())
	return nil
}
