package main

import (
	"github.com/h2hmarketing/site/internal/config"
	"github.com/spf13/cobra"
)

// newRootCmd builds the sitectl command tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "sitectl",
		Short:        "Operator tools for the H2H site",
		Long:         "Seed the local record store, talk to the chat assistant, and smoke-test a running server.",
		SilenceUsage: true,
	}
	root.AddCommand(newSeedCmd(), newChatCmd(), newSmokeCmd())
	return root
}

// loadConfig reads SITE_* overrides so flag defaults match the server.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(cmd.Context())
}
