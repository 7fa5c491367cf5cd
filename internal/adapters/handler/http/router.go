package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handlers struct {
	Polls *PollHandler
	Votes *VoteHandler
	Posts *PostHandler
	Auth  *AuthHandler
}

type Options struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	VoteLimiter    *RateLimiter
	Metrics        *Metrics
	DB             Pinger
	Logger         *zap.Logger
	// TrustProxy takes the client address from X-Forwarded-For and X-Real-IP.
	// Only set it when a proxy in front of the server overwrites those headers.
	TrustProxy bool
}

func NewHandler(h Handlers, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", health(opts.DB))
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(opts.RequestTimeout))

		r.Post("/login", h.Auth.Login)

		r.Route("/votes", func(r chi.Router) {
			r.With(limit(opts.VoteLimiter)).Post("/", h.Votes.CastVote)
			r.Get("/status", h.Votes.VoteStatus)
		})

		r.Route("/polls", func(r chi.Router) {
			r.Get("/", h.Polls.ListPolls)
			r.Get("/live", h.Polls.LivePolls)
			r.Get("/{id}", h.Polls.GetPoll)

			r.Group(func(r chi.Router) {
				r.Use(h.Auth.RequireAdmin)
				r.Post("/", h.Polls.CreatePoll)
				r.Put("/{id}", h.Polls.UpdatePoll)
				r.Delete("/{id}", h.Polls.DeletePoll)
			})
		})

		r.Get("/county/{countyName}", h.Polls.FindByCounty)

		r.Route("/blogs", func(r chi.Router) {
			r.Get("/", h.Posts.ListPosts)
			r.Get("/{id}", h.Posts.GetPost)

			r.Group(func(r chi.Router) {
				r.Use(h.Auth.RequireAdmin)
				r.Post("/", h.Posts.CreatePost)
				r.Delete("/{id}", h.Posts.DeletePost)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAdmin)
			r.Put("/update-admin", h.Auth.UpdateAdmin)
			r.Get("/me", h.Auth.Me)
		})
	})

	return r
}

func limit(rl *RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Handler
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				writeMessage(w, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
