package main

import (
	"github.com/spf13/cobra"
)

func NewGenerateCommand() *cobra.Command {
	var stdout bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the deployable descriptor for the last commit.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cmd)
			if err != nil {
				return err
			}
			out, err := engine.Generate(!stdout)
			if err != nil {
				return err
			}
			if stdout {
				_, err = cmd.OutOrStdout().Write(out)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&stdout, "stdout", false, "Print the descriptor instead of writing volumetric.yaml")

	return cmd
}
