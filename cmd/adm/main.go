// Package main provides the entry point for the culturology admin CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"culturology/cmd/adm/commands"
	"culturology/internal/config"
	"culturology/internal/di"
	"culturology/internal/observability"

	"github.com/spf13/cobra"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Override log level for admin tool
	cfg.Server.LogLevel = "error"

	// Disable all OpenTelemetry features for admin CLI to avoid connection errors
	cfg.OpenTelemetry.EnableTracing = false
	cfg.OpenTelemetry.EnableMetrics = false
	cfg.OpenTelemetry.EnableLogging = false

	_, _, logger, err := observability.SetupObservabilityWithLevel(&cfg.OpenTelemetry, "culturology-admin",
		observability.ParseLevel(cfg.Server.LogLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}

	// commands that touch data open the container on demand so `apikey hash` works without a database
	var container *di.ServiceContainer
	openContainer := func(ctx context.Context) (*di.ServiceContainer, error) {
		if container != nil {
			return container, nil
		}
		sc := di.NewServiceContainer(cfg, logger, nil)
		if err := sc.Initialize(ctx); err != nil {
			return nil, err
		}
		container = sc
		return container, nil
	}
	rootCmd := &cobra.Command{
		Use:   "adm",
		Short: "Culturology administration tool",
		Long: `Culturology administration tool

Provides commands for database migrations, culture data management,
quiz previews and admin API key hashing.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				fmt.Printf("Error showing help: %v\n", err)
			}
		},
	}

	rootCmd.AddCommand(commands.DatabaseCommands(cfg, logger))
	rootCmd.AddCommand(commands.CultureCommands(openContainer, logger))
	rootCmd.AddCommand(commands.QuizCommands(openContainer, logger))
	rootCmd.AddCommand(commands.APIKeyCommands())
	rootCmd.AddCommand(commands.VersionCommand())

	os.Exit(executeAndClose(ctx, rootCmd, func(ctx context.Context) error {
		if container == nil {
			return nil
		}
		return container.Shutdown(ctx)
	}))
}

// executeAndClose runs the command tree and then closeFn, returning the process exit code.
func executeAndClose(ctx context.Context, root *cobra.Command, closeFn func(context.Context) error) int {
	code := 0
	if err := root.ExecuteContext(ctx); err != nil {
		code = 1
	}
	if err := closeFn(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to shut down services: %v\n", err)
		code = 1
	}
	return code
}
