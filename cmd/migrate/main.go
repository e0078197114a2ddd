package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
)

func main() {
	// bootstrap logger early (then re-init after config load)
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(logg).ExecuteContext(ctx); err != nil {
		logg.Error(ctx, "migrate failed", err)
		os.Exit(1)
	}
}

func newRootCmd(logg *logger.Logger) *cobra.Command {
	var dir string

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "migrate manages the storefront Postgres schema with goose.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dir, "dir", "", "migrations directory (defaults to the embedded set, or "+migrate.DefaultDir+" for create/validate)")

	withRunner := func(fn func(ctx context.Context, r *migrate.Runner, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logg = logger.New(logger.Options{
				ServiceName: "migrate",
				Level:       logger.ParseLevel(cfg.App.LogLevel),
				WarnStack:   cfg.App.LogWarnStack,
			})
			if cfg.DB.IsSQLite() {
				return fmt.Errorf("goose migrations target postgres; sqlite schemas are created by %s_AUTO_MIGRATE", config.EnvPrefix)
			}

			ctx := logg.WithFields(cmd.Context(), map[string]any{"env": cfg.App.Env, "cmd": cmd.Name()})
			client, err := db.New(ctx, cfg.DB, logg)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}
			defer client.Close()

			sqlDB, err := client.SQL()
			if err != nil {
				return fmt.Errorf("sql database: %w", err)
			}
			runner, err := migrate.NewRunner(sqlDB, dir)
			if err != nil {
				return err
			}
			logg.Info(ctx, "migrate ready")
			return fn(ctx, runner, args)
		}
	}

	sourceDir := func() string {
		if dir == "" {
			return migrate.DefaultDir
		}
		return dir
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations.",
			Args:  cobra.NoArgs,
			RunE: withRunner(func(ctx context.Context, r *migrate.Runner, _ []string) error {
				applied, err := r.Up(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("applied %d migrations %v\n", len(applied), applied)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration.",
			Args:  cobra.NoArgs,
			RunE: withRunner(func(ctx context.Context, r *migrate.Runner, _ []string) error {
				version, err := r.Down(ctx)
				if err != nil {
					return err
				}
				fmt.Println("rolled back:", version)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied.",
			Args:  cobra.NoArgs,
			RunE: withRunner(func(ctx context.Context, r *migrate.Runner, _ []string) error {
				statuses, err := r.Status(ctx)
				if err != nil {
					return err
				}
				for _, st := range statuses {
					state := "pending"
					if st.Applied {
						state = "applied"
					}
					fmt.Printf("%-8s %d %s\n", state, st.Version, st.Path)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "to <version>",
			Short: "Migrate up or down to the given YYYYMMDDHHMMSS version.",
			Args:  cobra.ExactArgs(1),
			RunE: withRunner(func(ctx context.Context, r *migrate.Runner, args []string) error {
				return r.ToVersion(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "create <name>",
			Short: "Write a new timestamped SQL migration.",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				path, err := migrate.CreateSQLMigration(sourceDir(), strings.Join(args, " "))
				if err != nil {
					return fmt.Errorf("create migration: %w", err)
				}
				fmt.Println("created migration:", path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Check migration filenames and goose annotations.",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				versions, err := migrate.ValidateDir(sourceDir())
				if err != nil {
					return fmt.Errorf("migration validation failed: %w", err)
				}
				fmt.Printf("migration validation passed (%d migrations)\n", len(versions))
				return nil
			},
		},
	)
	return root
}
