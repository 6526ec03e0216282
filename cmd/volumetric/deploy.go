package main

import (
	"os"
	"path/filepath"

	"github.com/gingerrexayers/volumetric/internal/volumetric/lib"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewDeployCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deploy [descriptor]",
		Short: "Recreate the volumes described by a deployable descriptor.",
		Long: `Recreate runtime volumes from a deployable descriptor.

Without an argument the repository's volumetric.yaml is used. Existing
volumes are skipped or replaced according to the descriptor's deployment
policy.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := filepath.Join(viper.GetString(keyRepository), lib.DeployableFilename)
			if len(args) == 1 {
				file = args[0]
			}
			descriptor, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			engine, err := newEngine(cmd)
			if err != nil {
				return err
			}
			_, err = engine.Deploy(descriptor)
			return err
		},
	}
}
