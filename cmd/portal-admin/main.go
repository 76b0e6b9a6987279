package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/student-portal/internal/app"
	"github.com/SAP-F-2025/student-portal/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "portal-admin",
		Short:         "Administer the student portal from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newRegisterCmd(),
		newExportUsersCmd(),
		newLookupCmd(),
		newGradesheetsCmd(),
	)
	return rootCmd
}

// withPortal loads configuration, builds the portal and closes it after fn
func withPortal(ctx context.Context, fn func(portal *app.App) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	portal, err := app.New(ctx, cfg, app.NewLogger(cfg))
	if err != nil {
		return err
	}
	defer func() {
		if err := portal.Close(context.Background()); err != nil {
			portal.Logger.Error("Failed to shutdown portal", "error", err)
		}
	}()

	return fn(portal)
}
