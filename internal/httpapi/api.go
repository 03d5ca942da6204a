package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"denialdesk.org/internal/auth"
	"denialdesk.org/internal/claims"
	"denialdesk.org/internal/obs"
)

// ReadyProbe checks backing dependencies for the readiness endpoint.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Options carries the tunables the HTTP layer needs from configuration.
type Options struct {
	Version        string
	RateLimitRPS   float64
	RateLimitBurst int
	MaxUploadBytes int64
	CookieSecure   bool
}

// API is the HTTP layer over the auth and claims services.
type API struct {
	mux        *http.ServeMux
	users      *auth.Service
	claims     *claims.Service
	tokens     *auth.Tokens
	readyProbe ReadyProbe
	opts       Options
}

// New wires every route.
func New(users *auth.Service, claimsSvc *claims.Service, tokens *auth.Tokens, rp ReadyProbe, opts Options) *API {
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = 20
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 40
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 16 << 20
	}
	a := &API{
		mux:        http.NewServeMux(),
		users:      users,
		claims:     claimsSvc,
		tokens:     tokens,
		readyProbe: rp,
		opts:       opts,
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/auth/register", a.handleRegister)
	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("/v1/auth/logout", a.handleLogout)
	a.mux.HandleFunc("/v1/auth/profile", a.handleProfile)

	a.mux.HandleFunc("/v1/claims", a.handleClaimsCollection)
	a.mux.HandleFunc("/v1/claims/", a.handleClaimResource)
	a.mux.HandleFunc("/v1/claims/upload", a.handleUpload)
	a.mux.HandleFunc("/v1/claims/sample-csv", a.handleSampleCSV)
	a.mux.HandleFunc("/v1/denial-codes", a.handleDenialCodes)

	a.mux.HandleFunc("/v1/admin/users", a.handleAdminUsers)
	a.mux.HandleFunc("/v1/admin/users/", a.handleAdminUserResource)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler assembles the middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, a.opts.MaxUploadBytes)
	h = RateLimit(h, a.opts.RateLimitRPS, a.opts.RateLimitBurst)
	h = LoggingJSON(h)
	h = SecurityHeaders(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "denialdesk-api",
		"version": a.opts.Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}
