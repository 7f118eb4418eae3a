package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ngtmpls/cmd/ngtmpls/cli"
	getcompletionscmd "github.com/walteh/ngtmpls/cmd/ngtmpls/get-completions"
	getdefinitioncmd "github.com/walteh/ngtmpls/cmd/ngtmpls/get-definition"
	getdiagnosticscmd "github.com/walteh/ngtmpls/cmd/ngtmpls/get-diagnostics"
	getquickinfocmd "github.com/walteh/ngtmpls/cmd/ngtmpls/get-quickinfo"
	projectcmd "github.com/walteh/ngtmpls/cmd/ngtmpls/project"
)

func main() {
	if err := run(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	logFlags := &cli.LogFlags{}

	rootCmd := &cobra.Command{
		Use:   "ngtmpls",
		Short: "Type aware tooling for markup templates embedded in go components",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logFlags.Install(cmd, os.Stderr)
		},
	}
	logFlags.Register(rootCmd)

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	cmdVersion := &cobra.Command{
		Use: "raw-version",
		Run: func(cmdz *cobra.Command, args []string) {
			cmdz.Println(rootCmd.Version)
		},
		Hidden: true,
	}

	rootCmd.AddCommand(cmdVersion)
	rootCmd.AddCommand(getdiagnosticscmd.NewGetDiagnosticsCommand())
	rootCmd.AddCommand(getcompletionscmd.NewGetCompletionsCommand())
	rootCmd.AddCommand(getquickinfocmd.NewGetQuickInfoCommand())
	rootCmd.AddCommand(getdefinitioncmd.NewGetDefinitionCommand())
	rootCmd.AddCommand(projectcmd.NewProjectCommand())

	rootCmd.SilenceUsage = true

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}

	return nil
}
