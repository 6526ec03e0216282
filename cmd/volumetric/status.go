package main

import (
	"github.com/fatih/color"
	"github.com/gingerrexayers/volumetric/internal/volumetric/commands"
	"github.com/spf13/cobra"
)

func NewStatusCommand() *cobra.Command {
	var stat, noColor bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show volumes that differ between staging and the last commit.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cmd)
			if err != nil {
				return err
			}
			_, err = engine.Status(commands.StatusOptions{Stat: stat, Color: !noColor && !color.NoColor})
			return err
		},
	}

	cmd.Flags().BoolVar(&stat, "stat", false, "Estimate how much of each changed snapshot is reused")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}
