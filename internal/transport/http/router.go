package http

import (
	"net/http"

	"github.com/go-account-api/internal/config"
	"github.com/go-account-api/internal/transport/http/handler"
	appmiddleware "github.com/go-account-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	healthH := handler.NewHealthHandler(cfg.StoreBackend)
	authH := handler.NewAuthHandler(deps.Auth)
	profileH := handler.NewProfileHandler(deps.Profile)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Check)

		r.Post("/auth/register", authH.Register)
		r.Post("/auth/verify-otp", authH.VerifyRegistration)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/login/request-otp", authH.RequestLoginOTP)
		r.Post("/auth/login/verify-otp", authH.VerifyLoginOTP)
		r.Post("/auth/forgot-password", authH.ForgotPassword)
		r.Post("/auth/reset-password", authH.ResetPassword)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.Tokens))

			r.Post("/auth/change-password", authH.ChangePassword)
			r.Get("/profile/me", profileH.Me)
			r.Put("/profile", profileH.Update)
		})
	})

	return r
}
