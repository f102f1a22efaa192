package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	adminHandler "github.com/symptomsync/healthai/backend/internal/handler/admin"
	authHandler "github.com/symptomsync/healthai/backend/internal/handler/auth"
	chatHandler "github.com/symptomsync/healthai/backend/internal/handler/chat"
	realtimeHandler "github.com/symptomsync/healthai/backend/internal/handler/realtime"
	middlewarePkg "github.com/symptomsync/healthai/backend/internal/middleware"
	"github.com/symptomsync/healthai/backend/internal/model/admin"
	authService "github.com/symptomsync/healthai/backend/internal/service/auth"
	chatService "github.com/symptomsync/healthai/backend/internal/service/chat"
	"github.com/symptomsync/healthai/backend/internal/service/realtime"
	"github.com/symptomsync/healthai/backend/pkg/utils"
)

// Deps are the services the HTTP layer is wired to.
type Deps struct {
	Auth             authService.Provider
	PasswordRedirect string
	Chat             *chatService.Service
	Hub              *realtime.Hub
	Admin            admin.Store
	AllowedOrigins   []string
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(deps.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	auth := authHandler.New(deps.Auth, deps.PasswordRedirect)
	admins := adminHandler.New(deps.Admin)
	chat := chatHandler.New(deps.Chat)
	notifications := realtimeHandler.New(deps.Hub)

	r.Route("/api", func(api chi.Router) {
		session := middlewarePkg.RequireSession(deps.Auth)

		admins.RegisterPublicRoutes(api)
		api.Route("/auth", func(ar chi.Router) {
			auth.RegisterPublicRoutes(ar)
			ar.With(session).Group(auth.RegisterSessionRoutes)
		})

		// everything below needs a signed-in user
		api.Group(func(private chi.Router) {
			private.Use(session)

			private.Route("/chat", chat.RegisterRoutes)
			private.Route("/realtime", notifications.RegisterRoutes)
			private.Route("/admin", admins.RegisterRoutes)
		})
	})

	return r
}
