package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mrm-console/internal/config"
	"mrm-console/internal/handler"
	"mrm-console/internal/middleware"
	"mrm-console/internal/websocket"
)

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	authHandler *handler.AuthHandler,
	tableHandler *handler.TableHandler,
	viewHandler *handler.ViewHandler,
	hub *websocket.Hub,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Websocket connections outlive the request timeout, so the route sits
	// outside the /api/v1 group.
	r.With(authMiddleware.RequireAuth).Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		websocket.ServeWS(hub, w, r)
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", authHandler.Login)
			auth.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles("admin")).Post("/register", authHandler.Register)
			auth.Post("/refresh", authHandler.Refresh)
			auth.With(authMiddleware.RequireAuth).Post("/logout", authHandler.Logout)
			auth.With(authMiddleware.RequireAuth).Get("/me", authHandler.Me)
		})

		api.With(authMiddleware.RequireAuth).Get("/dashboard", tableHandler.Dashboard)

		api.Route("/tables/{entity}", func(table chi.Router) {
			table.Use(authMiddleware.RequireAuth)

			table.Get("/rows", tableHandler.Rows)
			table.Get("/columns", tableHandler.Columns)
			table.Get("/export", tableHandler.Export)

			table.Get("/views", viewHandler.List)
			table.Post("/views", viewHandler.Create)
			table.Put("/views/{viewID}", viewHandler.Update)
			table.Delete("/views/{viewID}", viewHandler.Delete)
			table.Post("/views/{viewID}/activate", viewHandler.Activate)

			table.Get("/preferences", viewHandler.GetPreferences)
			table.Put("/preferences", viewHandler.UpdatePreferences)
		})
	})

	return r
}
