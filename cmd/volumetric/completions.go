package main

import (
	"fmt"

	"github.com/gingerrexayers/volumetric/internal/volumetric/lib"
	"github.com/gingerrexayers/volumetric/internal/volumetric/transport"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// volumeCompletions suggests the names of volumes in the staged manifest,
// falling back to the committed one.
func volumeCompletions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	t, err := transport.NewLocalDir(viper.GetString(keyRepository))
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	paths := lib.DefaultPaths()

	manifestPath := paths.StagingManifest
	if ok, _ := t.Exists(manifestPath); !ok {
		manifestPath = paths.Manifest
	}
	m, err := lib.LoadManifest(t, manifestPath)
	if err != nil {
		// Don't return an error, just fail to complete.
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	taken := make(map[string]bool, len(args))
	for _, a := range args {
		taken[a] = true
	}
	var suggestions []string
	for _, name := range m.Names() {
		if !taken[name] {
			suggestions = append(suggestions, fmt.Sprintf("%s\t%s", name, m[name].Scheme))
		}
	}
	return suggestions, cobra.ShellCompDirectiveNoFileComp
}

// commitCompletions suggests commit indexes annotated with digest prefixes.
func commitCompletions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// This completion function is for the first argument only.
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	t, err := transport.NewLocalDir(viper.GetString(keyRepository))
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	history, err := lib.LoadHistory(t, lib.DefaultPaths().History)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var suggestions []string
	for i, d := range history {
		suggestions = append(suggestions, fmt.Sprintf("%d\t%s", i+1, d.Encoded()[:12]))
	}
	return suggestions, cobra.ShellCompDirectiveNoFileComp
}
