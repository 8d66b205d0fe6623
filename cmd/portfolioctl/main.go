package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ad/go-portfolio-admin/internal/config"
	"github.com/ad/go-portfolio-admin/internal/db"
	"github.com/ad/go-portfolio-admin/internal/logging"
)

// store bundles the repositories a maintenance command works with.
type store struct {
	conn     *sqlx.DB
	queue    *db.DBQueue
	projects *db.ProjectRepository
	settings *db.SettingsRepository
}

func (s *store) Close() {
	s.queue.Close()
	_ = s.conn.Close()
}

func openStore(dsn string) (*store, error) {
	conn, dialect, err := db.Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(conn, dialect); err != nil {
		_ = conn.Close()
		return nil, err
	}
	queue := db.NewDBQueue(conn)
	return &store{
		conn:     conn,
		queue:    queue,
		projects: db.NewProjectRepository(queue),
		settings: db.NewSettingsRepository(queue),
	}, nil
}

func newRootCmd() *cobra.Command {
	var (
		cfg   *config.Config
		dbDSN string
	)

	root := &cobra.Command{
		Use:           "portfolioctl",
		Short:         "Maintenance tasks for the portfolio admin bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			if dbDSN != "" {
				loaded.DB = dbDSN
			}
			logging.Setup(loaded.LogLevel, loaded.LogFormat)
			cfg = loaded
			return nil
		},
	}
	root.PersistentFlags().StringVar(&dbDSN, "db", "", "database path or postgres:// URL (overrides DB)")

	withStore := func(run func(cmd *cobra.Command, args []string, s *store) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cfg.DB)
			if err != nil {
				return err
			}
			defer s.Close()
			return run(cmd, args, s)
		}
	}

	root.AddCommand(
		newInitAdminCmd(withStore),
		newCheckCmd(withStore),
		newAddProjectCmd(withStore),
		newSetMenuPhotoCmd(withStore),
		newBackupCmd(withStore),
		newWhoamiCmd(func() *config.Config { return cfg }),
	)
	return root
}

type storeRunner func(run func(cmd *cobra.Command, args []string, s *store) error) func(*cobra.Command, []string) error

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		cancel()
		os.Exit(1)
	}
}
