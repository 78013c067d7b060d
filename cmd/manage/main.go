// Command manage runs maintenance tasks against the configured database and cache.
package main

import (
	"fmt"
	"os"
	"time"
	dbadapter "yatube/internal/adapters/database"
	mediaadapter "yatube/internal/adapters/media"
	redisadapter "yatube/internal/adapters/redis"
	"yatube/internal/config"
	groupapp "yatube/internal/core/group/service"
	"yatube/internal/workers"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	config.InitLogger(os.Getenv("APP_ENV"))
	defer config.Logger.Sync()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg *config.Config
	root := &cobra.Command{
		Use:          "manage",
		Short:        "Maintenance commands for yatube",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Init()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			config.Close()
		},
	}
	root.AddCommand(
		migrateCmd(&cfg),
		clearCacheCmd(&cfg),
		createGroupCmd(&cfg),
		cleanMediaCmd(&cfg),
	)
	return root
}

func migrateCmd(cfg **config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.InitDB(*cfg); err != nil {
				return err
			}
			if err := dbadapter.Migrate(config.DB); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func clearCacheCmd(cfg **config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "clearcache",
		Short: "Drop every cached page",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := config.InitRedis(ctx, *cfg); err != nil {
				return err
			}
			if err := redisadapter.NewPageCacheRedis(config.RedisClient).Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "page cache cleared")
			return nil
		},
	}
}

func createGroupCmd(cfg **config.Config) *cobra.Command {
	var title, slug, description string
	cmd := &cobra.Command{
		Use:   "creategroup",
		Short: "Create a community posts can be published to",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.InitDB(*cfg); err != nil {
				return err
			}
			svc := groupapp.NewGroupService(dbadapter.NewGroupRepositoryDatabase(config.DB))
			g, err := svc.CreateGroup(cmd.Context(), title, slug, description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "group %q created (%s)\n", g.Slug, g.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "group title")
	cmd.Flags().StringVar(&slug, "slug", "", "unique URL slug")
	cmd.Flags().StringVar(&description, "description", "", "group description")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("slug")
	return cmd
}

func cleanMediaCmd(cfg **config.Config) *cobra.Command {
	var grace time.Duration
	cmd := &cobra.Command{
		Use:   "cleanmedia",
		Short: "Remove uploaded images no post refers to",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.InitDB(*cfg); err != nil {
				return err
			}
			janitor := workers.NewMediaJanitor(
				mediaadapter.NewImageStorageLocal((*cfg).MediaRoot),
				dbadapter.NewPostRepositoryDatabase(config.DB),
				grace, 0, config.Logger,
			)
			removed, err := janitor.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			config.Logger.Info("Media cleaned", zap.Int("removed", removed))
			fmt.Fprintf(cmd.OutOrStdout(), "%d orphaned images removed\n", removed)
			return nil
		},
	}
	cmd.Flags().DurationVar(&grace, "grace", time.Hour, "keep files younger than this")
	return cmd
}
