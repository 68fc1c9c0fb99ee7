package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/cuisports/sportsreg/internal/api/http/handler"
	"github.com/cuisports/sportsreg/internal/api/http/middleware"
	"github.com/cuisports/sportsreg/internal/api/http/response"
	"github.com/cuisports/sportsreg/internal/apierror"
	"github.com/cuisports/sportsreg/internal/logger"
	"github.com/cuisports/sportsreg/internal/metrics"
	"github.com/cuisports/sportsreg/internal/model"
	"github.com/cuisports/sportsreg/internal/service"
)

// Options holds router settings that do not come from services.
type Options struct {
	AdminToken     string
	MaxUploadBytes int64
}

// Router builds the HTTP routing tree of the registration API.
type Router struct {
	registration   *service.Registration
	auth           *service.Auth
	db             handler.Pinger
	contextManager model.ContextManager
	metrics        *metrics.Metrics
	opts           Options
	logger         *logger.Logger
}

// New creates new Router instance.
func New(
	registration *service.Registration,
	auth *service.Auth,
	db handler.Pinger,
	contextManager model.ContextManager,
	m *metrics.Metrics,
	opts Options,
	logger *logger.Logger,
) *Router {
	return &Router{
		registration:   registration,
		auth:           auth,
		db:             db,
		contextManager: contextManager,
		metrics:        m,
		opts:           opts,
		logger:         logger,
	}
}

// Register returns the handler serving every route.
func (r *Router) Register() http.Handler {
	logging := middleware.NewLogging(r.logger)

	mux := chi.NewRouter()
	mux.Use(
		chimw.RequestID,
		chimw.RealIP,
		logging.Handle,
		middleware.Metrics(r.metrics),
		middleware.Recover(r.logger),
	)
	mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, apierror.NewErrRouteNotFound())
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, apierror.NewErrMethodNotAllowed())
	})

	r.registerHealthRoutes(mux)
	r.registerAuthRoutes(mux)

	if r.metrics != nil {
		mux.Method(http.MethodGet, "/metrics", r.metrics.Handler())
	}

	return mux
}

func (r *Router) registerHealthRoutes(mux chi.Router) {
	health := handler.NewHealth(r.db, r.logger)
	mux.Get("/api/health", health.Check)
	mux.Get("/api/db-status", health.DBStatus)
}

func (r *Router) registerAuthRoutes(mux chi.Router) {
	auth := handler.NewAuth(r.registration, r.auth, r.contextManager, r.opts.MaxUploadBytes, r.logger)
	admin := handler.NewAdmin(r.registration, r.logger)
	authenticate := middleware.NewAuthenticate(r.auth, r.contextManager, r.logger)

	mux.Route("/auth", func(ar chi.Router) {
		ar.Post("/signup-init", auth.SignupInit)
		ar.Post("/send-otp", auth.SendOTP)
		ar.Post("/verify-otp", auth.VerifyOTP)
		ar.Post("/upload-id", auth.UploadID)
		ar.Post("/login", auth.Login)

		ar.With(authenticate.Handle).Get("/me", auth.Me)

		ar.Group(func(admr chi.Router) {
			admr.Use(middleware.RequireAdminToken(r.opts.AdminToken, r.logger))
			admr.Post("/approve-id/{regNo}", admin.ApproveID)
			admr.Get("/id-card/{regNo}", admin.IDCard)
		})
	})
}
