package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:           "volumetric",
		Short:         "Version control for container volumes.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	bindGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewAddCommand())
	rootCmd.AddCommand(NewExternalCommand())
	rootCmd.AddCommand(NewRmCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewCommitCommand())
	rootCmd.AddCommand(NewResetCommand())
	rootCmd.AddCommand(NewLogCommand())
	rootCmd.AddCommand(NewShowCommand())
	rootCmd.AddCommand(NewGenerateCommand())
	rootCmd.AddCommand(NewDeployCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewGcCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

func main() {
	cobra.OnInitialize(initConfig)
	if err := newRootCommand().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
