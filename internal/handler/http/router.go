package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
	"github.com/securepass-ai/securepass-backend-go/internal/handler/http/middleware"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/jwt"
)

// RouterConfig carries the settings the router needs from the app config.
type RouterConfig struct {
	Env         string
	FrontendURL string
	// UploadDir is served under /uploads when set.
	UploadDir string
}

func NewRouter(
	cfg RouterConfig,
	JWTService jwt.Service,
	authHandler AuthHandler,
	companyHandler CompanyHandler,
	adminHandler AdminHandler,
	userHandler UserHandler,
	doorHandler DoorHandler,
	accessHandler AccessHandler,
	historyHandler HistoryHandler,
	messageHandler MessageHandler,
	eventsHandler EventsHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "securepass"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if cfg.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/logout", authHandler.Logout)
			r.With(jwtauth.Verifier(JWTService.JWTAuth()), middleware.AuthRequired(JWTService)).Get("/sse-token", authHandler.SSEToken)
			r.Route("/oauth/callback", func(r chi.Router) {
				r.Get("/google", authHandler.OAuthCallbackGoogle)
			})

			r.Route("/login", func(r chi.Router) {
				r.Post("/", authHandler.LoginUser)
				r.Post("/admin", authHandler.LoginAdmin)
				r.Route("/oauth", func(r chi.Router) {
					r.Get("/google", authHandler.LoginWithGoogle)
				})
			})
		})

		// Authenticated by a short-lived query token
		r.Get("/events", eventsHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Get("/me", adminHandler.GetProfile)
				r.Put("/me", adminHandler.UpdateProfile)

				// Super admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireSuperAdmin)
					r.Get("/admin-users", adminHandler.List)
					r.Post("/admin-users", adminHandler.Create)
				})
			})

			r.Route("/companies", func(r chi.Router) {
				r.With(middleware.AdminOnly).Get("/{id}", companyHandler.GetByID)

				// Super admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireSuperAdmin)
					r.Get("/", companyHandler.List)
					r.Post("/", companyHandler.Create)
					r.Put("/{id}", companyHandler.Update)
					r.Delete("/{id}", companyHandler.Delete)
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", userHandler.Me)
				r.Get("/{id}", userHandler.Get)
				r.Get("/{id}/access", userHandler.ListAccess)
				r.Get("/{id}/history", userHandler.History)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/", userHandler.List)
					r.Post("/", userHandler.Register)
					r.Put("/{id}", userHandler.Update)
					r.Delete("/{id}", userHandler.Delete)
					r.Post("/{id}/profile-picture", userHandler.UploadProfilePicture)
					r.Delete("/{id}/access/{entryID}", userHandler.RevokeAccess)
				})
			})

			r.Route("/doors", func(r chi.Router) {
				r.Get("/", doorHandler.List)
				r.Get("/{id}", doorHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionDoorManage))
					r.Post("/", doorHandler.Create)
					r.Put("/{id}", doorHandler.Update)
					r.Patch("/{id}/status", doorHandler.UpdateStatus)
					r.Delete("/{id}", doorHandler.Delete)
				})
			})

			r.Route("/access-requests", func(r chi.Router) {
				r.Post("/", accessHandler.CreateRequest)
				r.Get("/", accessHandler.ListRequests)
				r.Get("/{id}", accessHandler.GetRequest)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionRequestDecide))
					r.Post("/{id}/approve", accessHandler.ApproveRequest)
					r.Post("/{id}/reject", accessHandler.RejectRequest)
				})
			})

			r.Get("/access/check", accessHandler.CheckAccess)

			r.Route("/scans", func(r chi.Router) {
				r.Post("/entry", historyHandler.RecordEntry)
				r.Post("/exit", historyHandler.RecordExit)
			})

			r.Route("/messages", func(r chi.Router) {
				// User side
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionMessageCreate))
					r.Post("/", messageHandler.Create)
					r.Get("/mine", messageHandler.ListOwn)
					r.Patch("/{id}/reply-read", messageHandler.MarkReplyRead)
				})

				// Admin side
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionMessageManage))
					r.Get("/", messageHandler.List)
					r.Patch("/{id}/read", messageHandler.ToggleRead)
					r.Post("/{id}/reply", messageHandler.Reply)
				})
			})
		})
	})
	return r
}
