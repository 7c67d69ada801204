package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "distill",
		Short:        "Turn expert conversations into a queryable knowledge base",
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "", "TOML config file (default $CONFIG_PATH or config/config.toml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")

	root.AddCommand(serveCmd())
	root.AddCommand(extractCmd())
	root.AddCommand(queryCmd())
	root.AddCommand(statsCmd())
	root.AddCommand(conceptCmd())
	root.AddCommand(relationsCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(importCmd())
	root.AddCommand(chatCmd())
	root.AddCommand(mcpCmd())
	root.AddCommand(versionCmd())
	return root
}
