package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clarity-score-service/internal/app"
	"clarity-score-service/internal/config"
	"clarity-score-service/internal/flow"
	"clarity-score-service/internal/infra/memory"
	pgloader "clarity-score-service/internal/infra/postgres"
	redisinfra "clarity-score-service/internal/infra/redis"
	"clarity-score-service/internal/share"
	transport "clarity-score-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz and results server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer logger.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	service, sessions, err := buildService(cfg, logger, redisClient, redisTTL, pool)
	if err != nil {
		return err
	}

	api := transport.NewAPI(service, transport.RouterConfig{
		DefaultQuestionnaireID: cfg.QuestionnaireID(),
		AllowedOrigins:         cfg.Server.AllowedOrigins,
		Sessions:               sessions,
	}, logger)
	wsHandler := transport.NewWSHandler(service, cfg.QuestionnaireID(), logger)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(api, wsHandler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting clarity score service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildService wires the questionnaire source and session store. Postgres
// replaces the config-defined questionnaires when configured, and Redis
// replaces the in-process caches. The returned counter is the session store.
func buildService(cfg config.Config, logger *zap.Logger, redisClient *redis.Client, redisTTL time.Duration, pool *pgxpool.Pool) (*app.QuizService, transport.SessionCounter, error) {
	static, err := cfg.Questionnaires()
	if err != nil {
		return nil, nil, err
	}
	var loader memory.QuestionnaireLoader = memory.NewStaticLoader(static)
	if pool != nil {
		loader = pgloader.NewQuestionnaireLoader(pool)
	}

	questionnaireTTL := config.TTLDuration(cfg.Questionnaire.TTL, 10*time.Minute)
	var questionnaires app.QuestionnaireRepository
	if redisClient != nil {
		questionnaires = redisinfra.NewQuestionnaireRepository(redisClient, loader, questionnaireTTL)
	} else {
		questionnaires = memory.NewQuestionnaireRepository(loader, questionnaireTTL)
	}

	var (
		store   app.SessionRepository
		counter transport.SessionCounter
	)
	if redisClient != nil {
		redisSessions := redisinfra.NewSessionStore(redisClient, redisTTL)
		store, counter = redisSessions, redisSessions
	} else {
		memorySessions := memory.NewSessionStore()
		store, counter = memorySessions, memorySessions
	}

	service := app.NewQuizService(store, questionnaires, app.Options{
		ResultsPath:    cfg.Quiz.ResultsPath,
		PublicHost:     cfg.Server.PublicHost,
		Countdown:      flow.NewCountdown(cfg.Quiz.Countdown, 0),
		Share:          share.NewBuilder(cfg.Share.EmailMessage),
		ExportFilename: cfg.Share.ExportFilename,
		Logger:         logger,
	})
	return service, counter, nil
}
