package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/SAP-F-2025/intervention-service/internal/app"
	"github.com/SAP-F-2025/intervention-service/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "intervention-service",
	Short: "Intervention plan and prescriptive analysis engine",
	Long: `intervention-service keeps one live intervention plan per student and
literacy category, tracks progress on every answered question and regenerates
prescriptive analyses whenever a category result arrives.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("env-file", "", "Load environment from this file before reading configuration")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(linksCmd)
}

// loadConfig prefers --env-file, then a .env in the working directory.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("env-file"); path != "" {
		return config.LoadConfigFile(path)
	}
	return config.LoadConfig()
}

// withApp builds the application, runs fn and releases every resource.
// The context is cancelled on SIGINT and SIGTERM.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.Logger.Warn("Failed to release resources", "error", err)
		}
	}()

	return fn(ctx, a)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
