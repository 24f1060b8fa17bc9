package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/wardenhq/warden/internal/admin/service"
	"github.com/wardenhq/warden/internal/admin/store"
	"github.com/wardenhq/warden/pkg/httpx"
	"github.com/wardenhq/warden/pkg/slogx"

	_ "github.com/wardenhq/warden/api/admin" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store            store.Store
	SessionService   *service.SessionService
	UserService      *service.UserService
	RolesService     *service.RolesService
	LockoutService   *service.LockoutService
	BootstrapService *service.BootstrapService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerUsers()
	r.registerLockout()
	r.registerRoles()
	r.registerSystem()
	r.registerBootstrap()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Warden Admin Service API
//	@version		0.1.0
//	@description	Role-based admin panel backend: role hierarchy, account
//	@description	lockout and user administration on top of an external
//	@description	identity provider. Authentication uses provider-issued ID
//	@description	tokens passed as Bearer tokens.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Identity-provider ID token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}
	authn := AuthnMiddleware(r.SessionService)

	// POST /users/signup - strict rate limit by IP (public endpoint)
	signup := &SignupHandler{UserService: r.UserService}
	r.Mux.Handle("POST /v1/users/signup",
		httpx.Chain(signup,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Admin CRUD - authenticated, moderate rate limit
	r.Mux.Handle("POST /v1/users",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			authn,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/users",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			authn,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			authn,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /v1/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			authn,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			authn,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerLockout() {
	h := &LockoutHandler{
		UserService:    r.UserService,
		LockoutService: r.LockoutService,
	}
	authn := AuthnMiddleware(r.SessionService)

	// Public lock-state lookup for the SPA login and forgot-password
	// flows - strict rate limit keyed by IP and the looked-up email.
	r.Mux.Handle("GET /v1/users/email/{email}",
		httpx.Chain(http.HandlerFunc(h.HandleLockStatus),
			httpx.RateLimitByIPAndPathValue(httpx.StrictLimit, "email"),
		),
	)

	// Public failure recorder - the brute-force surface, strictest limit.
	r.Mux.Handle("PUT /v1/users/{email}/failedAttempt",
		httpx.Chain(http.HandlerFunc(h.HandleFailedAttempt),
			httpx.RateLimitByIPAndPathValue(httpx.StrictLimit, "email"),
		),
	)

	// Public login gate.
	r.Mux.Handle("POST /v1/login/check",
		httpx.Chain(http.HandlerFunc(h.HandleLoginCheck),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Admin lockout controls.
	r.Mux.Handle("PUT /v1/users/{id}/resetAttempts",
		httpx.Chain(http.HandlerFunc(h.HandleResetAttempts),
			authn,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /v1/users/{id}/unlock",
		httpx.Chain(http.HandlerFunc(h.HandleUnlock),
			authn,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /v1/users/{id}/lock",
		httpx.Chain(http.HandlerFunc(h.HandleLock),
			authn,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerRoles() {
	h := &RolesHandler{RolesService: r.RolesService}
	authn := AuthnMiddleware(r.SessionService)

	r.Mux.Handle("GET /v1/roles",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			authn,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/roles",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			authn,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /v1/roles/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			authn,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/roles/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			authn,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}

func (r *Router) registerBootstrap() {
	// POST /bootstrap - very strict rate limit by IP (one-time setup endpoint)
	bootstrapHandler := &BootstrapHandler{BootstrapService: r.BootstrapService}
	r.Mux.Handle("POST /v1/bootstrap",
		httpx.Chain(bootstrapHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}
