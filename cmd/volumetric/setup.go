package main

import (
	"errors"
	"os"
	"strings"

	"github.com/gingerrexayers/volumetric/internal/volumetric/commands"
	"github.com/gingerrexayers/volumetric/internal/volumetric/logger"
	"github.com/gingerrexayers/volumetric/internal/volumetric/runtime"
	"github.com/gingerrexayers/volumetric/internal/volumetric/transport"
	"github.com/gingerrexayers/volumetric/internal/volumetric/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Viper keys shared by flags, environment and the config file.
const (
	keyRepository   = "repository"
	keyLogLevel     = "log-level"
	keyDockerSocket = "docker-socket"
	keyPodmanBinary = "podman-binary"
)

// bindGlobalFlags registers the persistent flags and binds them to viper.
func bindGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringP(keyRepository, "C", ".", "Path to the repository")
	flags.String(keyLogLevel, logger.LogLevelWarn, "Log level: debug, info, warn, error or none")
	flags.String(keyDockerSocket, runtime.DefaultDockerSocket, "Docker Engine API socket")
	flags.String(keyPodmanBinary, "podman", "Podman executable")
	for _, key := range []string{keyRepository, keyLogLevel, keyDockerSocket, keyPodmanBinary} {
		_ = viper.BindPFlag(key, flags.Lookup(key))
	}
}

// initConfig reads in the config file and environment variables if set.
func initConfig() {
	viper.SetDefault(keyRepository, ".")
	viper.SetDefault(keyLogLevel, logger.LogLevelWarn)
	viper.SetDefault(keyDockerSocket, runtime.DefaultDockerSocket)
	viper.SetDefault(keyPodmanBinary, "podman")

	if cfg := os.Getenv("VOLUMETRIC_CONFIG"); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.AddConfigPath("$HOME/.config/volumetric")
		viper.AddConfigPath("/etc/volumetric")
		viper.SetConfigName("config")
	}
	viper.SetEnvPrefix("VOLUMETRIC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			cobra.CheckErr(err)
		}
	}
}

// newEngine wires an engine for the configured repository.
func newEngine(cmd *cobra.Command) (*commands.Engine, error) {
	log, err := logger.GetLogger(viper.GetString(keyLogLevel))
	if err != nil {
		return nil, err
	}
	t, err := transport.NewLocalDir(viper.GetString(keyRepository))
	if err != nil {
		return nil, err
	}
	opts := runtime.Options{
		DockerSocket: viper.GetString(keyDockerSocket),
		PodmanBinary: viper.GetString(keyPodmanBinary),
	}
	return commands.New(t,
		commands.WithLogger(log),
		commands.WithOutput(cmd.OutOrStdout()),
		commands.WithRuntimes(func(kind types.RuntimeKind) (runtime.OciRuntime, error) {
			return runtime.New(kind, opts)
		}),
	), nil
}
