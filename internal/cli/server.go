package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"atpl-quiz-service/internal/app"
	"atpl-quiz-service/internal/config"
	"atpl-quiz-service/internal/infra/memory"
	pgstore "atpl-quiz-service/internal/infra/postgres"
	redissession "atpl-quiz-service/internal/infra/redis"
	"atpl-quiz-service/internal/question"
	transport "atpl-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
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
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := runMigrations(ctx, cfg, log); err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	sessionTimeout := config.TTLDuration(cfg.Session.Timeout, app.DefaultSessionTimeout)
	onlineWindow := config.TTLDuration(cfg.Leaderboard.OnlineWindow, app.DefaultOnlineWindow)
	cacheTTL := config.TTLDuration(cfg.Questions.CacheTTL, 10*time.Minute)

	var sessions app.SessionStore = memory.NewSessionStore()
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		sessions = redissession.NewSessionStore(client, sessionTimeout)
	}

	loader := question.NewLoader(cfg.Questions.Dir, log)
	cache := question.NewCache(loader, cacheTTL)

	users := pgstore.NewUserStore(pool)
	scores := pgstore.NewScoreStore(pool)
	chat := app.NewChatLog(pgstore.NewChatStore(pool), users)

	service := app.NewQuizService(app.Config{
		Users:          users,
		Scores:         scores,
		Sessions:       sessions,
		Questions:      cache,
		Chat:           chat,
		SessionTimeout: sessionTimeout,
		OnlineWindow:   onlineWindow,
		ResetScope:     app.ResetScope(cfg.Quiz.ResetScope),
		Logger:         log,
	})

	hub := transport.NewChatHub(log)
	handler := transport.NewHandler(service, hub, log)
	router := transport.NewRouter(handler)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
