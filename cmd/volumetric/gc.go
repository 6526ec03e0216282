package main

import (
	"github.com/spf13/cobra"
)

func NewGcCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "gc",
		Short: "Delete stored snapshots that no commit or staged manifest references.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cmd)
			if err != nil {
				return err
			}
			_, err = engine.Prune()
			return err
		},
	}
}
