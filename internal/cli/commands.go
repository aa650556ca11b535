package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/planroom/drawings/internal/common/logtrace"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// Global flags
	jsonOutput bool
	configFile string
	logLevel   string
)

var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)

// NewRootCmd builds the drawings command tree.
func NewRootCmd() *cobra.Command {
	jsonOutput = false
	configFile = ""
	logLevel = ""
	config = nil

	rootCmd := &cobra.Command{
		Use:   "drawings [command] [flags]",
		Short: "Drawings CLI - browse, version and comment on project drawings",
		Long: `Drawings CLI is a command line client for the project Drawing Service.
It lists and filters drawings, uploads new drawings and revisions, and posts
review comments. Every command loads the current drawing list first.

Examples:
  # List architecture drawings whose code or title mentions "norte"
  drawings list --discipline ARQ --search norte

  # Upload a new drawing
  drawings create -f plan.pdf --code A-101 --title "Planta baja" --discipline ARQ

  # Upload a revision
  drawings add-version 3f1c... -f plan-r2.pdf

  # Comment on a drawing
  drawings comment 3f1c... "Revisar cotas del eje 4"`,
		PersistentPreRunE: preRunHandlePersistents,
		SilenceErrors:     true, // Prevent Cobra from printing the error
		SilenceUsage:      true, // Prevent Cobra from printing usage on error
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "", "", "Log level for diagnostics on stderr (debug, info, warn, error)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newDescribeCmd())
	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newAddVersionCmd())
	rootCmd.AddCommand(newCommentCmd())
	return rootCmd
}

// Execute runs the command tree. This is called by main.main().
func Execute() {
	rootCmd := NewRootCmd()
	err := rootCmd.Execute()
	if err != nil {
		if errors.Is(err, ErrAlreadyHandled) {
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(os.Stdout, map[string]string{"error": errorText(err)})
		} else {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", errorText(err))
		}
		os.Exit(1)
	}
}

// errorText prefers the full cause chain of application errors.
func errorText(err error) string {
	type allMessager interface{ ErrorAll() string }
	var am allMessager
	if errors.As(err, &am) {
		return am.ErrorAll()
	}
	return err.Error()
}

// preRunHandlePersistents resolves the config path and loads the config for
// commands that talk to the services.
func preRunHandlePersistents(cmd *cobra.Command, args []string) error {
	if configFile == "" {
		var err error
		configFile, err = GetDefaultConfigPath()
		if err != nil {
			return err
		}
	}

	if !needsConfig(cmd) {
		logtrace.InitLoggerWithWriter(cmd.ErrOrStderr(), logLevel)
		return nil
	}

	if err := LoadConfig(configFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("drawings config file not found. Configure the CLI with \"drawings config --server <url>\" first")
		}
		return err
	}

	level := logLevel
	if level == "" {
		level = GetConfig().LogLevel
	}
	if level == "" {
		level = "warn"
	}
	logtrace.InitLoggerWithWriter(cmd.ErrOrStderr(), level)
	return nil
}

func needsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" || c.Name() == "version" {
			return false
		}
	}
	return true
}

// newVersionCmd creates and returns a new version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of the drawings CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, map[string]string{
					"version":     getCLIVersion(),
					"config_file": configFile,
				})
			}
			fmt.Fprintf(out, "drawings CLI %s\n", getCLIVersion())
			fmt.Fprintf(out, "Config file: %s\n", configFile)
			return nil
		},
	}
}

// printJSON writes data to w as indented JSON
func printJSON(w io.Writer, data any) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format JSON output: %w", err)
	}
	fmt.Fprintln(w, string(jsonData))
	return nil
}

// getCLIVersion returns the current CLI version
func getCLIVersion() string {
	return "v0.1.0"
}
