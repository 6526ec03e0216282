package main

import (
	"github.com/spf13/cobra"
)

func NewCommitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "commit",
		Short: "Record the staging area as the new repository state.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cmd)
			if err != nil {
				return err
			}
			_, err = engine.Commit()
			return err
		},
	}
}

func NewResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard everything in the staging area.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cmd)
			if err != nil {
				return err
			}
			return engine.Reset()
		},
	}
}
