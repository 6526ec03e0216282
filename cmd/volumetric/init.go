package main

import (
	"github.com/gingerrexayers/volumetric/internal/volumetric/lib"
	"github.com/spf13/cobra"
)

func NewInitCommand() *cobra.Command {
	var ociRuntime, policy, remote string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty volumetric repository.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := lib.DefaultSettings()
			for _, s := range []lib.Setting{
				{Key: "oci_runtime", Value: ociRuntime},
				{Key: "deployment_policy", Value: policy},
				{Key: "remote_uri", Value: remote},
			} {
				if s.Value == "" {
					continue
				}
				if err := settings.Set(s.Key, &s.Value); err != nil {
					return err
				}
			}
			engine, err := newEngine(cmd)
			if err != nil {
				return err
			}
			return engine.Init(settings)
		},
	}

	cmd.Flags().StringVarP(&ociRuntime, "runtime", "r", "", "OCI runtime owning the volumes (docker or podman)")
	cmd.Flags().StringVarP(&policy, "policy", "p", "", "Deployment policy (overwrite or nooverwrite)")
	cmd.Flags().StringVar(&remote, "remote", "", "Remote repository URI")

	return cmd
}
