package main

import (
	"fmt"

	"github.com/gingerrexayers/volumetric/internal/volumetric/lib"
	"github.com/spf13/cobra"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and change repository settings.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print every setting.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cmd)
			if err != nil {
				return err
			}
			settings, err := engine.ConfigList()
			if err != nil {
				return err
			}
			for _, s := range settings {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", s.Key, s.Value)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "get <key>",
		Short:     "Print one setting.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: lib.SettingKeys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cmd)
			if err != nil {
				return err
			}
			value, err := engine.ConfigGet(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Change one setting.",
		Args:      cobra.ExactArgs(2),
		ValidArgs: lib.SettingKeys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cmd)
			if err != nil {
				return err
			}
			return engine.ConfigSet(args[0], &args[1])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "unset <key>",
		Short:     "Restore one setting to its default.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: lib.SettingKeys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cmd)
			if err != nil {
				return err
			}
			return engine.ConfigSet(args[0], nil)
		},
	})

	return cmd
}
