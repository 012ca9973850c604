// cmd/depwalk/cli/app.go
package cli

import (
	"github.com/spf13/cobra"
	"github.com/evanlloyd/depwalk/cmd/depwalk/output"
)

var rootCmd = &cobra.Command{
	Use:   "depwalk",
	Short: "Transitive dependency aggregation CLI",
	Long: `depwalk walks a project's dependency graph and aggregates the transitive
closure used by a solver, grouping dependencies and computing the environment
markers each one applies under.

Complete documentation is available at https://github.com/evanlloyd/depwalk`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		// Show help when no command is provided
		_ = cmd.Help()
	},
}

// Console is the global console for CLI commands
var Console *output.Console

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Initialize console
	Console = output.DefaultConsole()

	// Add common flags that will be used by subcommands
	rootCmd.PersistentFlags().StringP("configfile", "", "", "project configuration file to use")
	rootCmd.PersistentFlags().StringP("verbosity", "", "normal", "Display verbosity (quiet, normal, detailed)")
	rootCmd.PersistentFlags().BoolP("non-interactive", "", false, "Do not prompt for user input or confirmations")

	// Disable Cobra's built-in help command; we render our own
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.SetHelpFunc(customHelpFunc)
}

// customHelpFunc provides custom help output for the root command.
// Only applies custom formatting to the root command; subcommands use Cobra's default help
func customHelpFunc(cmd *cobra.Command, args []string) {
	// Only use custom help for root command; let subcommands use Cobra's default
	if cmd != cmd.Root() {
		// Use Cobra's default template-based help for subcommands
		usage := cmd.Long
		if usage == "" {
			usage = cmd.Short
		}
		if usage != "" {
			Console.Println(usage)
			Console.Println("")
		}
		Console.Print(cmd.UsageString())
		return
	}

	version := cmd.Root().Version
	if version == "" {
		version = "dev"
	}

	Console.Println("depwalk " + version)
	Console.Println("")
	Console.Println("Usage: depwalk [options] [command]")
	Console.Println("")
	Console.Println("Options:")
	Console.Println("  -h|--help  Show help information")
	Console.Println("  --version  Show version information")
	Console.Println("")
	Console.Println("Commands:")

	// Commands to hide from help output
	hideCommands := map[string]bool{
		"completion": true, // Cobra auto-generated
		"version":    true, // Only a flag, not a command
	}

	// Print commands in alphabetical order
	for _, subCmd := range cmd.Root().Commands() {
		if subCmd.Hidden || hideCommands[subCmd.Name()] {
			continue
		}
		name := subCmd.Name()
		short := subCmd.Short
		if short == "" {
			short = subCmd.Long
		}
		Console.Println("  " + padRight(name, 8) + " " + short)
	}

	Console.Println("")
	Console.Println("Use \"depwalk [command] --help\" for more information about a command.")
}

// padRight pads a string to the right with spaces
func padRight(s string, length int) string {
	for len(s) < length {
		s += " "
	}
	return s
}

// GetRootCommand returns the root command for use by help command
func GetRootCommand() *cobra.Command {
	return rootCmd
}

// SetupVersion configures version information after variables are set
func SetupVersion() {
	rootCmd.SetVersionTemplate(GetFullVersion() + "\n")
	rootCmd.Version = GetVersion()
}

// AddCommand adds a command to the root command
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}
