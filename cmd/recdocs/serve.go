package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"recdocs/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the document backend over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		return withApp(cmd, "Serve", func(ctx context.Context, a *app.RecDocsApp) error {
			if err := a.ValidateSetup(ctx); err != nil {
				return fmt.Errorf("storage not ready: %w", err)
			}
			srv, err := a.NewServer()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.ListenAddr()
			}
			return srv.ListenAndServe(ctx, addr)
		})
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the local database",
}

var dbBackupCmd = &cobra.Command{
	Use:   "backup PATH",
	Short: "Write a snapshot of the local database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "BackupDatabase", func(ctx context.Context, a *app.RecDocsApp) error {
			if err := a.BackupDatabase(args[0]); err != nil {
				return err
			}
			fmt.Printf("Database written to %s\n", args[0])
			return nil
		})
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config)")
	dbCmd.AddCommand(dbBackupCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dbCmd)
}
