package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shubhamchhangani/hindu-matrimony/api/controllers"
	"github.com/shubhamchhangani/hindu-matrimony/api/middleware"
	"github.com/shubhamchhangani/hindu-matrimony/internal/auth"
	"github.com/shubhamchhangani/hindu-matrimony/internal/chats"
	"github.com/shubhamchhangani/hindu-matrimony/internal/events"
	"github.com/shubhamchhangani/hindu-matrimony/internal/posts"
	"github.com/shubhamchhangani/hindu-matrimony/internal/profileimages"
	"github.com/shubhamchhangani/hindu-matrimony/internal/profiles"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/auth/session"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/config"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/enums"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/logger"
	"github.com/shubhamchhangani/hindu-matrimony/pkg/metrics"
	redisclient "github.com/shubhamchhangani/hindu-matrimony/pkg/redis"
)

// Dependencies carries everything the HTTP surface needs. Optional fields may
// be nil; the affected routes respond with a dependency error instead of
// panicking at wire-up.
type Dependencies struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              controllers.Pinger
	Redis           *redisclient.Client
	Storage         controllers.Pinger
	SessionVerifier session.AccessSessionChecker
	MetricsRegistry *prometheus.Registry
	HTTPMetrics     *metrics.HTTPMetrics

	AuthService         auth.Service
	ProfileService      profiles.Service
	ProfileImageService profileimages.Service
	PostService         posts.Service
	EventService        events.Service
	ChatService         chats.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)

	maxUpload := cfg.Uploads.MaxUploadBytes()

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"postgres": deps.DB,
			"redis":    pinger(deps.Redis),
			"gcs":      deps.Storage,
		}))
	})

	if deps.MetricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(signupPolicy, deps.Redis, logg)).Post("/signup", controllers.AuthSignup(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionVerifier, logg))

		r.Route("/profiles", func(r chi.Router) {
			r.Post("/", controllers.ProfileCreate(deps.ProfileService, logg))
			r.Get("/me", controllers.ProfileMe(deps.ProfileService, logg))
			r.Get("/feed", controllers.ProfileFeed(deps.ProfileService, logg))
			r.Get("/{profileId}", controllers.ProfileGet(deps.ProfileService, logg))
			r.Put("/{profileId}", controllers.ProfileUpdate(deps.ProfileService, logg))

			r.Route("/{profileId}/images", func(r chi.Router) {
				r.Get("/", controllers.ProfileImagesList(deps.ProfileImageService, logg))
				r.Post("/", controllers.ProfileImageAdd(deps.ProfileImageService, maxUpload, logg))
				r.Put("/{imageId}", controllers.ProfileImageUpdate(deps.ProfileImageService, maxUpload, logg))
				r.Delete("/{imageId}", controllers.ProfileImageDelete(deps.ProfileImageService, logg))
				r.Post("/{imageId}/primary", controllers.ProfileImageSetPrimary(deps.ProfileImageService, logg))
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", controllers.PostsList(deps.PostService, logg))
			r.Post("/", controllers.PostCreate(deps.PostService, maxUpload, logg))
			r.Delete("/{postId}", controllers.PostDelete(deps.PostService, logg))
			r.Post("/{postId}/like", controllers.PostToggleLike(deps.PostService, logg))
			r.Get("/{postId}/comments", controllers.PostListComments(deps.PostService, logg))
			r.Post("/{postId}/comments", controllers.PostAddComment(deps.PostService, logg))
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", controllers.EventsList(deps.EventService, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleAdmin.String(), logg))
				r.Post("/", controllers.EventCreate(deps.EventService, logg))
				r.Put("/{eventId}", controllers.EventUpdate(deps.EventService, logg))
				r.Delete("/{eventId}", controllers.EventDelete(deps.EventService, logg))
			})
		})

		r.Route("/chats", func(r chi.Router) {
			r.Get("/", controllers.ChatsList(deps.ChatService, logg))
			r.Post("/", controllers.ChatOpen(deps.ChatService, logg))
			r.Get("/{chatId}/messages", controllers.ChatMessages(deps.ChatService, logg))
			r.Post("/{chatId}/messages", controllers.ChatSendMessage(deps.ChatService, logg))
			r.Get("/{chatId}/ws", controllers.ChatWS(deps.ChatService, deps.Redis, logg))
		})
	})

	return r
}

// pinger keeps a typed-nil redis client from leaking into the readiness map
// as a non-nil interface.
func pinger(c *redisclient.Client) controllers.Pinger {
	if c == nil {
		return nil
	}
	return c
}
