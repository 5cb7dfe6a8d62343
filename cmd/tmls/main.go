package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	get_completions "github.com/walteh/tmls/cmd/tmls/get-completions"
	get_hover "github.com/walteh/tmls/cmd/tmls/get-hover"
	"github.com/walteh/tmls/cmd/tmls/registry"
	serve_lsp "github.com/walteh/tmls/cmd/tmls/serve-lsp"
	"github.com/walteh/tmls/pkg/config"
)

func main() {
	if err := run(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:          "tmls",
		Short:        "completion and hover docs for tm-* components",
		SilenceUsage: true,
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	config.AddFlags(rootCmd.PersistentFlags())

	cmdVersion := &cobra.Command{
		Use: "raw-version",
		Run: func(cmdz *cobra.Command, args []string) {
			cmdz.Println(rootCmd.Version)
		},
		Hidden: true,
	}

	rootCmd.AddCommand(cmdVersion)

	rootCmd.AddCommand(serve_lsp.NewServeLSPCommand(rootCmd.Version))
	rootCmd.AddCommand(get_completions.NewGetCompletionsCommand())
	rootCmd.AddCommand(get_hover.NewGetHoverCommand())
	rootCmd.AddCommand(registry.NewRegistryCommand())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}

	return nil
}
