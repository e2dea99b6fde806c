package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/recipebook-backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()
	root := &cobra.Command{
		Use:           "recipebook",
		Short:         "Recipe sharing API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.AddCommand(serve, newMigrateCmd(), newSeedCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), nil, func(ctx context.Context, a *app.App) error {
				return a.Run(ctx)
			})
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables or graph constraints for the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			noAuto := func(cfg *app.Config) { cfg.AutoMigrate = false }
			return withApp(cmd.Context(), noAuto, func(ctx context.Context, a *app.App) error {
				if err := a.Clients.Migrate(ctx, a.Log); err != nil {
					return err
				}
				a.Log.Info("Migration complete", "store", a.Cfg.StoreBackend)
				return nil
			})
		},
	}
}

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users and recipes from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := app.LoadSeedFile(file)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), nil, func(ctx context.Context, a *app.App) error {
				res, err := app.Seed(ctx, a.Services, sf)
				if err != nil {
					return err
				}
				a.Log.Info("Seed complete",
					"users_created", res.UsersCreated,
					"recipes_created", res.RecipesCreated,
					"recipes_skipped", res.RecipesSkipped,
				)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "seed file path")
	return cmd
}

func withApp(ctx context.Context, tweak func(*app.Config), fn func(context.Context, *app.App) error) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	if tweak != nil {
		tweak(&cfg)
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close(context.Background())
	return fn(ctx, a)
}
