package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	rh "github.com/coreybb/scriptcast/route-handlers"
	"github.com/coreybb/scriptcast/webutil"
)

const (
	apiBasePath     = "/api"
	scriptsBasePath = "/scripts"
	generateSubPath = "/generate-from-pdf"
)

const (
	paramID = "id" // General parameter name for resource IDs
)

// RouterConfig carries the request-surface settings that vary by deployment.
type RouterConfig struct {
	TrustedOrigins    []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

func SetupRoutes(scriptHandler *rh.ScriptHandler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)                 // Recover from panics
	r.Use(middleware.Timeout(5 * time.Minute))  // Generation requests hold the connection through the model call
	r.Use(corsHandler(cfg.TrustedOrigins))

	// Admission control wraps only the API surface: excess requests are
	// rejected per client address and route, never queued.
	r.Group(func(r chi.Router) {
		r.Use(RateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow))
		r.Route(apiBasePath, func(r chi.Router) {
			configureScriptRoutes(r, scriptHandler)
		})
	})

	// Health check endpoint, outside admission control so probes never
	// consume or exhaust a client's budget.
	r.Get("/healthz", handleHealthCheck)

	return r
}

// Helper for constructing paths with a parameter
func pathWithParam(basePath string, paramName string) string {
	if basePath == "" {
		return "/{" + paramName + "}"
	}
	return basePath + "/{" + paramName + "}"
}

// --- Script Routes ---
func configureScriptRoutes(r chi.Router, handler *rh.ScriptHandler) {
	specificScriptPath := pathWithParam("", paramID) // e.g., "/{id}"

	r.Route(scriptsBasePath, func(r chi.Router) {
		r.Post(generateSubPath, webutil.MakeHandler(handler.HandleGenerateFromPDF))
		r.Get("/", webutil.MakeHandler(handler.HandleGetScripts))
		r.Get(specificScriptPath, webutil.MakeHandler(handler.HandleGetScript))
		r.Delete(specificScriptPath, webutil.MakeHandler(handler.HandleDeleteScript))
	})
}

// --- Utility Functions ---

// handleHealthCheck responds to a health check request.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(webutil.HeaderContentType, webutil.ContentTypeTextPlainUTF8)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// corsHandler allows the configured trusted origins with credentials.
func corsHandler(trustedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   trustedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{webutil.HeaderContentType, webutil.HeaderAuthorization},
		AllowCredentials: true,
	})
}
