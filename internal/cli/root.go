// Package cli implements the keylex command line.
package cli

import (
	"github.com/spf13/cobra"
)

func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "keylex",
		Short: "Compile regular expressions to DFAs and lex live key input",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
		},
	}

	cobra.EnableCommandSorting = false

	rootCmd.AddCommand(
		newCompileCmd(),
		newTestCmd(),
		newWatchCmd(),
	)
	return rootCmd
}
