package main

import (
	"github.com/gingerrexayers/volumetric/internal/volumetric/lib"
	"github.com/spf13/cobra"
)

func NewExternalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "external <volume> <digest> <uri>",
		Short: "Stage a volume whose snapshot is hosted outside the repository.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := lib.ParseDigest(args[1])
			if err != nil {
				return err
			}
			engine, err := newEngine(cmd)
			if err != nil {
				return err
			}
			return engine.AddExternal(args[0], d, args[2])
		},
	}
}
