package http

import (
	"net/http"

	"gomate-backend/internal/security"
	"gomate-backend/internal/service"
	"gomate-backend/internal/storage"

	"github.com/gorilla/mux"
)

// RouterConfig bundles everything the HTTP surface needs. LocalStorage is
// nil when uploads go straight to the bucket via signed URLs.
type RouterConfig struct {
	TokenManager security.TokenManager

	AuthSvc     service.AuthService
	UserSvc     service.UserService
	LocationSvc service.LocationService
	TeamSvc     service.TeamService
	NoteSvc     service.NotificationService

	CreateLimiter *Limiter
	JoinLimiter   *Limiter

	LocalStorage *storage.LocalBackend
	AllowedTypes []string
}

func NewRouter(cfg RouterConfig) *mux.Router {
	router := mux.NewRouter()

	authHandler := NewAuthHandler(cfg.AuthSvc)
	userHandler := NewUserHandler(cfg.UserSvc)
	locationHandler := NewLocationHandler(cfg.LocationSvc)
	teamHandler := NewTeamHandler(cfg.TeamSvc)
	noteHandler := NewNotificationHandler(cfg.NoteSvc)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	// Public endpoints.
	api.HandleFunc("/auth/signup", authHandler.Signup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", authHandler.Refresh).Methods(http.MethodPost)
	api.HandleFunc("/locations", locationHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/locations/{id}", locationHandler.Get).Methods(http.MethodGet)

	// Team reads are public but show pending applicants to the leader, so
	// they pick up the identity when a token is present.
	public := api.NewRoute().Subrouter()
	public.Use(MaybeAuthenticate(cfg.TokenManager))
	public.HandleFunc("/teams", teamHandler.List).Methods(http.MethodGet)
	public.HandleFunc("/teams/{id}", teamHandler.Get).Methods(http.MethodGet)

	// Everything below requires an access token.
	authed := api.NewRoute().Subrouter()
	authed.Use(Authenticate(cfg.TokenManager))

	create := authed.NewRoute().Subrouter()
	create.Use(RateLimit(cfg.CreateLimiter, "team-create"))
	create.HandleFunc("/teams", teamHandler.Create).Methods(http.MethodPost)

	join := authed.NewRoute().Subrouter()
	join.Use(RateLimit(cfg.JoinLimiter, "team-join"))
	join.HandleFunc("/teams/{id}/join", teamHandler.Join).Methods(http.MethodPost)

	authed.HandleFunc("/teams/{id}/members/{userId}/approve", teamHandler.Approve).Methods(http.MethodPost)
	authed.HandleFunc("/teams/{id}/members/{userId}/reject", teamHandler.Reject).Methods(http.MethodPost)
	authed.HandleFunc("/teams/{id}/members/me", teamHandler.Leave).Methods(http.MethodDelete)
	authed.HandleFunc("/teams/{id}", teamHandler.Dissolve).Methods(http.MethodDelete)

	authed.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)

	authed.HandleFunc("/me/teams", teamHandler.ListMine).Methods(http.MethodGet)
	authed.HandleFunc("/me/profile", userHandler.GetProfile).Methods(http.MethodGet)
	authed.HandleFunc("/me/profile", userHandler.UpdateProfile).Methods(http.MethodPut)
	authed.HandleFunc("/me/avatar/upload-url", userHandler.AvatarUploadURL).Methods(http.MethodPost)
	authed.HandleFunc("/me/avatar/confirm", userHandler.ConfirmAvatar).Methods(http.MethodPost)
	authed.HandleFunc("/me/notifications", noteHandler.List).Methods(http.MethodGet)
	authed.HandleFunc("/me/notifications/{id}/read", noteHandler.MarkRead).Methods(http.MethodPost)

	if cfg.LocalStorage != nil {
		RegisterStorageRoutes(router, cfg.LocalStorage, cfg.AllowedTypes)
	}

	return router
}
