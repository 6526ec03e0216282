package main

import (
	"github.com/spf13/cobra"
)

func NewAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <volume>...",
		Short: "Snapshot runtime volumes into the staging area.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cmd)
			if err != nil {
				return err
			}
			for _, name := range args {
				if _, err := engine.Add(name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
