package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/paulexconde/vaxreview/internal/locales"
	"github.com/paulexconde/vaxreview/internal/services"
)

type Config struct {
	Addr            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	Logger          *log.Logger

	Auth      *Authenticator
	Bundle    *locales.Bundle
	Feed      services.FeedService
	Surveys   services.SurveyService
	Comments  services.CommentService
	Likes     services.LikeService
	Reports   services.ReportService
	Accounts  services.AccountService
	Inquiries services.InquiryService
}

// Server wires the services to HTTP routes.
type Server struct {
	logger          *log.Logger
	addr            string
	allowedOrigins  []string
	shutdownTimeout time.Duration

	auth      *Authenticator
	bundle    *locales.Bundle
	feed      services.FeedService
	surveys   services.SurveyService
	comments  services.CommentService
	likes     services.LikeService
	reports   services.ReportService
	accounts  services.AccountService
	inquiries services.InquiryService
}

func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[server] ", log.LstdFlags)
	}
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Server{
		logger:          logger,
		addr:            cfg.Addr,
		allowedOrigins:  cfg.AllowedOrigins,
		shutdownTimeout: timeout,
		auth:            cfg.Auth,
		bundle:          cfg.Bundle,
		feed:            cfg.Feed,
		surveys:         cfg.Surveys,
		comments:        cfg.Comments,
		likes:           cfg.Likes,
		reports:         cfg.Reports,
		accounts:        cfg.Accounts,
		inquiries:       cfg.Inquiries,
	}
}

func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "time": time.Now().Format(time.RFC3339)})
	})

	router.Route("/v1", func(r chi.Router) {
		r.Post("/users", s.registerHandler)
		r.Post("/login/local", s.loginHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.OptionalUser)
			r.Get("/reviews", s.reviewListHandler)
			r.Get("/reviews/{id}", s.reviewDetailHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.auth.RequireUser)

			r.Post("/reviews", s.reviewCreateHandler)
			r.Delete("/reviews/{id}", s.reviewDeleteHandler)
			r.Post("/reviews/{id}/like_status", s.reviewLikeHandler)
			r.Post("/reviews/{id}/comment", s.commentCreateHandler)
			r.Post("/reviews/{id}/report", s.reviewReportHandler)

			r.Post("/comments/{id}", s.commentReplyHandler)
			r.Patch("/comments/{id}", s.commentEditHandler)
			r.Delete("/comments/{id}", s.commentDeleteHandler)
			r.Post("/comments/{id}/like_status", s.commentLikeHandler)
			r.Post("/comments/{id}/report", s.commentReportHandler)

			r.Post("/surveys/join", s.joinSurveyHandler)

			r.Get("/users/me", s.profileHandler)
			r.Put("/users/me/keywords", s.keywordsHandler)
			r.Delete("/users/me", s.withdrawHandler)

			r.Post("/qna", s.inquiryCreateHandler)
			r.Get("/qna", s.inquiryListHandler)
			r.Post("/qna/{id}/process", s.inquirySolveHandler)
			r.Delete("/qna/{id}", s.inquiryDeleteHandler)
		})
	})

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP server listening on %s", s.addr)
		errChan <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Println("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) localizer(r *http.Request) *locales.Localizer {
	return s.bundle.Localizer(r.Header.Get("Accept-Language"))
}

func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			_, ok := allowed[origin]
			if origin == "" || (!allowAll && !ok) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type,Accept-Language")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
