// Package cli provides the command-line interface for Synthline.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/synthline-labs/synthline/internal/cli/commands"
	"github.com/synthline-labs/synthline/internal/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "synthline",
		Short: "Synthline - Synthetic Business Dataset Generator",
		Long: `Synthline generates relational business datasets with realistic
cross-table references.

It seeds a consulting-firm schema (clients, team members, projects,
assignments, tickets, invoices, contracts), scales the base tables with a
fitted column model, and exports the result as a CSV bundle that can be
loaded into DuckDB or Postgres.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := commands.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
			cmd.SetContext(commands.NewContext(cmd.Context(), cfg, logger))

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", configFile)
				}
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Synthetic relational dataset generator
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./synthline.yaml)")
	rootCmd.PersistentFlags().Int("clients", 0, "Number of base client rows to seed")
	rootCmd.PersistentFlags().Int("team-members", 0, "Number of base team member rows to seed")
	rootCmd.PersistentFlags().Int("projects", 0, "Number of base project rows to seed")
	rootCmd.PersistentFlags().IntP("multiplier", "m", 0, "Row-count multiplier applied to the base tables")
	rootCmd.PersistentFlags().Int64("seed", 0, "Random seed (0 picks one from the clock)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output directory for the CSV bundle")
	rootCmd.PersistentFlags().String("state", "", "Path to the run-state database")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewGenerateCommand())
	rootCmd.AddCommand(commands.NewTablesCommand())
	rootCmd.AddCommand(commands.NewRunsCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewLoadCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for Synthline.

To load completions:

Bash:
  $ source <(synthline completion bash)

Zsh:
  $ synthline completion zsh > "${fpath[1]}/_synthline"

Fish:
  $ synthline completion fish | source

PowerShell:
  PS> synthline completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
