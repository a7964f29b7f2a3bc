package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/paulexconde/vaxreview/internal/config"
	"github.com/paulexconde/vaxreview/internal/locales"
	"github.com/paulexconde/vaxreview/internal/models"
	"github.com/paulexconde/vaxreview/internal/notify"
	"github.com/paulexconde/vaxreview/internal/pkg/workerpool"
	"github.com/paulexconde/vaxreview/internal/repository"
	"github.com/paulexconde/vaxreview/internal/server"
	"github.com/paulexconde/vaxreview/internal/services"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the yaml config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.AppEnv,
		EnableTracing:    true,
		TracesSampleRate: 0.2,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlx.Connect("postgres", cfg.Postgres.DSN)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	if err := repository.Migrate(ctx, db); err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	bundle, err := locales.New(cfg.Locale)
	if err != nil {
		log.Fatalf("Failed to load locales: %v", err)
	}
	localizer := bundle.Localizer()

	// Background jobs outlive the signal context so queued mail still drains.
	pool := workerpool.NewWorkerPool(context.Background(), cfg.Workers.Count, cfg.Workers.QueueSize)
	mailer := notify.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
	pusher := notify.NewFCMPusher(cfg.Push.Endpoint, cfg.Push.ServerKey, cfg.Push.PerSecond,
		cfg.Workers.Retries, cfg.Workers.RetryDelay, &http.Client{Timeout: 10 * time.Second})
	dispatcher := notify.NewDispatcher(pool, mailer, pusher, cfg.Workers.Retries, cfg.Workers.RetryDelay)

	users := repository.NewUserRepository(db)
	surveys := repository.NewSurveyRepository(db)
	reviews := repository.NewReviewRepository(db)
	comments := repository.NewCommentRepository(db)
	likes := repository.NewLikeRepository(db)
	inquiries := repository.NewInquiryRepository(db)

	validator, err := services.NewAnswerValidator(services.DefaultRules)
	if err != nil {
		log.Fatalf("Failed to compile survey rules: %v", err)
	}
	nicknames := services.NewNicknamePool(cfg.Nickname.Adjectives, cfg.Nickname.Nouns, cfg.Nickname.CharacterImages)

	notifier := services.NewKeywordNotifier(users, dispatcher, localizer)
	surveys.OnReviewCreated(func(review models.Review, keywords []string) {
		notifier.ReviewCreated(review, keywords)
	})

	srv := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Logger:          log.New(os.Stdout, "[server] ", log.LstdFlags),
		Auth:            server.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		Bundle:          bundle,
		Feed:            services.NewFeedService(reviews, comments, likes, users, cfg.Feed.PageSize),
		Surveys:         services.NewSurveyService(services.NewSurveyNormalizer(validator), users, surveys),
		Comments:        services.NewCommentService(comments, reviews, users),
		Likes:           services.NewLikeService(likes, reviews, comments, users),
		Reports:         services.NewReportService(reviews, comments, users, dispatcher, localizer, cfg.SMTP.ReportTo),
		Accounts:        services.NewAccountService(users, nicknames),
		Inquiries:       services.NewInquiryService(inquiries, users),
	})

	log.Println("Starting server")
	if err := srv.Run(ctx); err != nil {
		sentry.CaptureException(err)
		log.Printf("Server stopped with error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	pool.Shutdown(shutdownCtx)
	log.Println("Server stopped")
}
