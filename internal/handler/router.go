package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/limiter"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/resp"
)

const (
	AuthRate  = 0.5
	AuthBurst = 20
	WSRate    = 1
	WSBurst   = 20

	healthTimeout = 2 * time.Second
)

// Router sets up the HTTP routing table. Rate limiter cleanup goroutines run until
// ctx is cancelled.
func Router(ctx context.Context, deps *AppDeps) http.Handler {
	authLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(AuthRate), AuthBurst)
	wsLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(WSRate), WSBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	// Credentialed CORS cannot use "*", so development reflects any origin instead.
	corsOptions := cors.Options{
		AllowedOrigins:   deps.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-PoW-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if deps.Config.IsDevelopment() {
		corsOptions.AllowOriginFunc = func(string) bool { return true }
	}
	r.Use(cors.New(corsOptions).Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := deps.Store.Ping(ctx); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"status":      "ok",
			"service":     "dmchat",
			"onlineUsers": deps.Registry.Len(),
		})
	})

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(a chi.Router) {
			a.Group(func(public chi.Router) {
				public.Use(authLimiter.Middleware)

				public.With(deps.Pow.Middleware).Post("/signup", HandleSignup(deps))
				public.Post("/login", HandleLogin(deps))
				public.Post("/logout", HandleLogout(deps))
				public.Get("/challenge", HandleGetChallenge(deps))
				public.Post("/challenge", HandleVerifyChallenge(deps))
			})

			a.Group(func(protected chi.Router) {
				protected.Use(deps.Guard.Protect)

				protected.Put("/update-profile", HandleUpdateProfile(deps))
				protected.Get("/check", HandleCheckAuth())
			})
		})

		api.Route("/messages", func(m chi.Router) {
			m.Use(deps.Guard.Protect)

			m.Get("/users", HandleListUsers(deps))
			m.Get("/{id}", HandleGetMessages(deps))
			m.Post("/send/{id}", HandleSendMessage(deps))
		})
	})

	r.With(wsLimiter.Middleware).Get("/ws", HandleWebSocket(wsUpgrader, deps))

	return r
}
