package main

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/finbuddy/backend/modules/alerts"
	"github.com/finbuddy/backend/modules/finance"
	"github.com/finbuddy/backend/pkg/config"
	"github.com/finbuddy/backend/pkg/email"
	"github.com/finbuddy/backend/pkg/httpserver"
	"github.com/finbuddy/backend/pkg/logger"
	"github.com/finbuddy/backend/pkg/mongo"
	"github.com/finbuddy/backend/pkg/notify"
	"github.com/finbuddy/backend/pkg/redis"
	"github.com/finbuddy/backend/pkg/respond"
	"github.com/finbuddy/backend/pkg/secrets"
)

type appConfig struct {
	Environment string   `env:"APP_ENV" envDefault:"development"`
	HTTPAddr    string   `env:"HTTP_ADDR" envDefault:":8000"`
	MongoURL    string   `env:"MONGODB_URL"`
	RedisURL    string   `env:"REDIS_URL"`
	AppSecret   string   `env:"APP_SECRET"`
	NotifyEmail string   `env:"NOTIFY_EMAIL" envDefault:"user@finbuddy.app"`
	DigestCron  string   `env:"DIGEST_CRON" envDefault:"0 8 * * *"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithEnvironment(cfg.Environment, "finbuddy-backend"),
	)
	logger.SetAsDefault(log)

	if err := run(ctx, cfg, log); err != nil {
		log.LogAttrs(ctx, slog.LevelError, "server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	var healthchecks []func(context.Context) error

	// Storage: MongoDB when configured, otherwise in-memory for dev.
	var (
		accountStorage finance.AccountStorage
		txnStorage     finance.TransactionStorage
	)
	if cfg.MongoURL != "" {
		var mongoCfg mongo.Config
		config.MustLoad(&mongoCfg)
		db, err := mongo.NewWithDatabase(ctx, mongoCfg)
		if err != nil {
			return err
		}
		storage := finance.NewMongoStorage(db)
		accountStorage, txnStorage = storage, storage
		healthchecks = append(healthchecks, mongo.Healthcheck(db.Client()))
		log.InfoContext(ctx, "using mongodb storage", slog.String("database", mongoCfg.Database))
	} else {
		storage := finance.NewMemoryStorage()
		accountStorage, txnStorage = storage, storage
		log.InfoContext(ctx, "using in-memory storage")
	}

	// Notification store is in-memory; delivery history moves to redis
	// when configured so throttling survives restarts.
	store := notify.NewMemoryStore()
	var history notify.History = store.HistoryView()
	if cfg.RedisURL != "" {
		var redisCfg redis.Config
		config.MustLoad(&redisCfg)
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer client.Close()
		history = notify.NewRedisHistory(client)
		log.InfoContext(ctx, "using redis delivery history")
	}

	// Email: Postmark when a server token is present, log-only otherwise.
	var emailCfg email.Config
	config.MustLoad(&emailCfg)
	mailer := email.NewLogSender(log)
	if emailCfg.PostmarkServerToken != "" {
		var err error
		mailer, err = email.NewPostmarkClient(emailCfg)
		if err != nil {
			return err
		}
		log.InfoContext(ctx, "using postmark email sender")
	}

	dispatcher := notify.NewDispatcher(
		notify.WithSender(notify.ChannelEmail, alerts.NewEmailSender(mailer, alerts.StaticAddress(cfg.NotifyEmail))),
		notify.WithSender(notify.ChannelPush, alerts.NewLogPushSender(log)),
		notify.WithDispatcherLogger(log),
	)
	policy := notify.NewThrottlePolicy(history, notify.WithPolicyLogger(log))
	engine := notify.NewEngine(store, history, policy, dispatcher, notify.WithEngineLogger(log))

	// Finance services, with field encryption when a secret is set.
	txnOpts := []finance.TransactionServiceOption{
		finance.WithAlertSubmitter(engine),
		finance.WithServiceLogger(log),
	}
	if cfg.AppSecret != "" {
		key := sha256.Sum256([]byte(cfg.AppSecret))
		cipher, err := secrets.New(key[:])
		if err != nil {
			return err
		}
		txnOpts = append(txnOpts, finance.WithCipher(cipher))
	}
	accounts := finance.NewAccountService(accountStorage, log)
	transactions := finance.NewTransactionService(txnStorage, txnOpts...)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)
	r.Use(securityHeaders)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		for _, check := range healthchecks {
			if err := check(req.Context()); err != nil {
				log.ErrorContext(req.Context(), "healthcheck failed", logger.Error(err))
				respond.Error(w, http.StatusServiceUnavailable, "unhealthy")
				return
			}
		}
		respond.OK(w, map[string]any{"status": "healthy"})
	})
	r.Mount("/api", finance.Router(accounts, transactions))
	r.Mount("/api/notifications", alerts.Router(engine))

	// Daily digest of unread notifications.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.DigestCron, func() {
		if _, err := engine.Digest(context.Background(), "default_user"); err != nil {
			log.Error("digest run failed", logger.Error(err))
		}
	}); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := httpserver.New(
		httpserver.WithAddr(cfg.HTTPAddr),
		httpserver.WithLogger(log),
	)
	return srv.Run(ctx, r)
}

// securityHeaders sets baseline response headers on every request.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
