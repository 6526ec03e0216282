package main

import (
	"github.com/spf13/cobra"
)

func NewRmCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rm <volume>...",
		Short:             "Stop tracking volumes.",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: volumeCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cmd)
			if err != nil {
				return err
			}
			for _, name := range args {
				if err := engine.Remove(name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
