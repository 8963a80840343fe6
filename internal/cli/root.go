package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "caserun",
		Short:   "A data-driven HTTP API test runner",
		Version: version,
		Long: `caserun reads test cases from CSV, TSV, Excel, YAML or JSON files,
resolves them against layered interface and environment configuration,
sends each request and checks the JSON response against the expected result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			// If no subcommand is provided, print help
			cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("settings", "caserun.yaml", "Settings file (optional)")
	flags.StringArrayP("config", "c", nil, "Interface, environment or INI config file (can be used multiple times)")
	flags.StringP("env", "e", "", "Environment to run against")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "console", "Log format (console, json)")
	flags.Bool("no-color", false, "Disable colored output")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newCallCmd())
	rootCmd.AddCommand(newInterfacesCmd())
	rootCmd.AddCommand(newValidateCmd())

	return rootCmd
}

// Execute runs the command line. This is called by main.main().
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
