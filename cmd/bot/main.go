package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	_ "github.com/joho/godotenv/autoload"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/ad/go-portfolio-admin/internal/config"
	"github.com/ad/go-portfolio-admin/internal/db"
	"github.com/ad/go-portfolio-admin/internal/handlers"
	"github.com/ad/go-portfolio-admin/internal/logging"
	"github.com/ad/go-portfolio-admin/internal/presenter"
	"github.com/ad/go-portfolio-admin/internal/services"
	"github.com/ad/go-portfolio-admin/internal/session"
)

const (
	pollTimeout      = 15 * time.Second
	maxStartAttempts = 5
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.RequireBotToken(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	conn, dialect, err := db.Open(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer conn.Close()

	if err := db.Migrate(conn, dialect); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	dbQueue := db.NewDBQueue(conn)
	defer dbQueue.Close()

	projectRepo := db.NewProjectRepository(dbQueue)
	settingsRepo := db.NewSettingsRepository(dbQueue)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	registry := services.NewAdminRegistry(settingsRepo)
	// ADMIN_IDS only seeds an empty registry; the stored list wins afterwards.
	if len(cfg.AdminIDs) > 0 {
		seeded, err := registry.Seed(ctx, cfg.AdminIDs)
		if err != nil {
			log.Warn().Err(err).Msg("failed to seed admins from environment")
		} else if seeded {
			log.Info().Strs("admin_ids", cfg.AdminIDs).Msg("admin registry seeded from environment")
		}
	}

	sessions, closeSessions, err := openSessionStore(ctx, cfg, dbQueue)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.SessionBackend).Msg("failed to open session store")
	}
	defer closeSessions()

	httpClient := services.BuildHTTPClient(cfg.HTTPTimeout())

	b, botUser, err := connect(ctx, cfg.BotToken, httpClient)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Telegram API")
	}

	uploader := services.NewImgBBUploader(cfg.ImgBBAPIKey, services.WithUploadClient(httpClient))
	if !uploader.Enabled() {
		log.Warn().Msg("IMGBB_API_KEY is not set, projects will be stored without images")
	}

	handler := handlers.NewPortfolioAdminHandler(
		b,
		services.NewAccessGate(settingsRepo),
		registry,
		projectRepo,
		sessions,
		presenter.New(b, settingsRepo),
		uploader,
		services.NewPhotoFetcher(b, httpClient),
		cfg.ProjectsPerPage,
	)
	handler.Register(b, logMiddleware)

	log.Info().
		Str("db", string(dialect)).
		Str("sessions", cfg.SessionBackend).
		Str("bot", "@"+botUser.Username).
		Msg("bot started")

	b.Start(ctx)
	log.Info().Msg("bot stopped")
}

func openSessionStore(ctx context.Context, cfg *config.Config, queue *db.DBQueue) (session.Store, func(), error) {
	switch cfg.SessionBackend {
	case config.SessionBackendMemory:
		return session.NewMemoryStore(), func() {}, nil
	case config.SessionBackendRedis:
		client, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return session.NewRedisStore(client, session.DefaultRedisPrefix), func() { _ = client.Close() }, nil
	}
	return db.NewSessionRepository(queue), func() {}, nil
}

// connect creates the bot and checks the token with GetMe, retrying with a
// growing delay while the API is unreachable.
func connect(ctx context.Context, token string, client *http.Client) (*bot.Bot, *tgmodels.User, error) {
	var lastErr error
	for i := 0; i < maxStartAttempts; i++ {
		if i > 0 {
			delay := time.Duration(i*3) * time.Second
			log.Info().Dur("delay", delay).Msg("retrying Telegram connection")
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		log.Info().Int("attempt", i+1).Int("max", maxStartAttempts).Msg("connecting to Telegram API")
		b, err := bot.New(token, bot.WithHTTPClient(pollTimeout, client))
		if err != nil {
			lastErr = err
			log.Warn().Err(err).Msg("failed to create bot")
			continue
		}

		getMeCtx, getMeCancel := context.WithTimeout(ctx, 10*time.Second)
		user, err := b.GetMe(getMeCtx)
		getMeCancel()
		if err == nil {
			return b, user, nil
		}
		lastErr = err
		log.Warn().Err(err).Msg("failed to get bot info")
	}
	return nil, nil, errors.Wrapf(lastErr, "giving up after %d attempts", maxStartAttempts)
}

func logMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
		switch {
		case update.Message != nil && update.Message.From != nil:
			log.Debug().
				Int64("user_id", update.Message.From.ID).
				Str("text", update.Message.Text).
				Bool("photo", len(update.Message.Photo) > 0).
				Msg("message received")
		case update.CallbackQuery != nil:
			log.Debug().
				Int64("user_id", update.CallbackQuery.From.ID).
				Str("data", update.CallbackQuery.Data).
				Msg("callback received")
		}
		next(ctx, b, update)
	}
}
