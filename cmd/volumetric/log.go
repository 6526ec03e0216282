package main

import (
	"github.com/spf13/cobra"
)

func NewLogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "List committed manifests, oldest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cmd)
			if err != nil {
				return err
			}
			_, err = engine.Log()
			return err
		},
	}
}

func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "show <commit>",
		Short:             "Print the manifest of a commit, by index or digest prefix.",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: commitCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cmd)
			if err != nil {
				return err
			}
			_, _, err = engine.Show(args[0])
			return err
		},
	}
}
