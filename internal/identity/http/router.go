package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/foodcar/internal/identity/metrics"
	"github.com/aussiebroadwan/foodcar/internal/identity/service"
	"github.com/aussiebroadwan/foodcar/internal/identity/sms"
	"github.com/aussiebroadwan/foodcar/internal/identity/store"
	"github.com/aussiebroadwan/foodcar/pkg/httpx"
	"github.com/aussiebroadwan/foodcar/pkg/jwtx"
	"github.com/aussiebroadwan/foodcar/pkg/slogx"

	_ "github.com/aussiebroadwan/foodcar/api/identity" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	metrics      *metrics.Metrics

	store            store.Store
	ChallengeService *service.ChallengeService
	OTPService       *service.OTPService
	RecordService    *service.RecordService
	IdentityService  *service.IdentityService

	// DevCodes exposes sent codes over HTTP. Nil leaves the route out.
	DevCodes *sms.DevCodes
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		metrics:      m,
		logger:       logger,
	}

	// Metrics wrap the mux so the matched pattern is known when the request
	// is counted.
	r.middlewares = []httpx.Middleware{slogx.HTTPMiddleware(r.logger)}
	if m != nil {
		r.middlewares = append(r.middlewares, m.Middleware)
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerChallenges()
	r.registerOTP()
	r.registerSession()
	r.registerRecords()
	r.registerDev()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			FoodCar Identity Service API
//	@version		0.1.0
//	@description	Phone number sign in for FoodCar. A client renders a challenge, asks for a one time code by SMS and
//	@description	exchanges the code for an identity token. The token authorises access to the caller's profile record.
//	@description
//	@description				Identity tokens are EdDSA signed JWTs.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/foodcar
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
//	@description				Identity token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerChallenges() {
	h := &ChallengeHandler{ChallengeService: r.ChallengeService}

	r.Mux.Handle("POST /v1/challenges",
		httpx.Chain(h,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerOTP() {
	send := &SendCodeHandler{OTPService: r.OTPService}
	confirm := &ConfirmCodeHandler{OTPService: r.OTPService}

	// Per phone throttling happens in the service; this guards the IP.
	r.Mux.Handle("POST /v1/otp/send",
		httpx.Chain(send,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/otp/confirm",
		httpx.Chain(confirm,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSession() {
	h := &SessionHandler{IdentityService: r.IdentityService}

	r.Mux.Handle("GET /v1/session",
		httpx.Chain(h,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitBySubject(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerRecords() {
	h := &RecordsHandler{RecordService: r.RecordService}
	update := &UpdateUserHandler{RecordService: r.RecordService}

	r.Mux.Handle("GET /v1/records/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireSubjectParam("id"),
			httpx.RateLimitBySubject(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /v1/records/{id}",
		httpx.Chain(http.HandlerFunc(h.HandlePut),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireSubjectParam("id"),
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /auth/update-user",
		httpx.Chain(update,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerDev() {
	if r.DevCodes == nil {
		return
	}
	r.Mux.Handle("GET /v1/dev/otp/{verification_id}",
		httpx.Chain(DevCodeHandler(r.DevCodes),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	if r.metrics != nil {
		r.Mux.Handle("GET /metrics", r.metrics.Handler())
	}
}
