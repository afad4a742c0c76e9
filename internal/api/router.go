package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/hirehub/server/internal/api/handlers"
	mw "github.com/hirehub/server/internal/api/middleware"
	"github.com/hirehub/server/internal/auth"
	"github.com/hirehub/server/internal/realtime"
)

type Dependencies struct {
	Tokens         *auth.TokenManager
	Resolver       auth.Resolver
	AllowedOrigins []string
	// AuthLimiter throttles credential endpoints per client IP. Optional.
	AuthLimiter *mw.RateLimiter

	AuthHandler    *handlers.AuthHandler
	AccountHandler *handlers.AccountHandler
	ChatHandler    *handlers.ChatHandler
	HandoffHandler *handlers.HandoffHandler
	AdsHandler     *handlers.AdsHandler
	HealthHandler  *handlers.HealthHandler
	Realtime       *realtime.Server
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Gate(dep.Tokens, dep.Resolver))
	r.Use(mw.Logging)
	r.Use(mw.CORS(dep.AllowedOrigins))

	if dep.HealthHandler != nil {
		r.Get("/healthz", dep.HealthHandler.Liveness)
		r.Get("/readyz", dep.HealthHandler.Readiness)
	}

	// Live chat: native WebSocket at /ws, SockJS transports below it.
	// Kept outside Compress, which cannot wrap a hijacked connection.
	if dep.Realtime != nil {
		r.Get(realtime.Endpoint, dep.Realtime.ServeWS)
		r.Handle(realtime.Endpoint+"/*", dep.Realtime.SockJS())
	}

	r.Get("/swagger-ui/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger-ui/doc.json"),
	))

	r.Group(func(g chi.Router) {
		g.Use(chimid.Compress(5))

		g.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":true,"data":{"service":"hirehub"}}`))
		})

		// Identity-provider redirect target.
		g.Get("/{provider}/callback", dep.AuthHandler.ProviderCallback)

		g.Route("/api", func(api chi.Router) {
			api.Route("/auth", func(ar chi.Router) {
				if dep.AuthLimiter != nil {
					ar.Use(dep.AuthLimiter.Handler)
				}
				ar.Post("/signup", dep.AuthHandler.Signup)
				ar.Post("/login", dep.AuthHandler.Login)
				ar.Get("/me", dep.AuthHandler.Me)
				ar.Get("/{provider}", dep.AuthHandler.ProviderRedirect)
			})

			api.Get("/ads", dep.AdsHandler.List)

			api.Post("/onboarding/save", dep.AccountHandler.SaveOnboarding)
			api.Delete("/mypage/withdraw", dep.AccountHandler.Withdraw)

			api.Route("/chat", func(cr chi.Router) {
				cr.Post("/send", dep.ChatHandler.Send)
				cr.Get("/history/{sessionId}", dep.ChatHandler.History)
			})

			api.Route("/handoff", func(hr chi.Router) {
				hr.Get("/", dep.HandoffHandler.Pending)
				hr.Post("/", dep.HandoffHandler.Request)
			})
		})
	})

	return r
}
