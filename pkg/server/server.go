package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gridscope/gridscope/pkg/forecast"
	"github.com/gridscope/gridscope/pkg/log"
	"github.com/gridscope/gridscope/pkg/storage"
	"github.com/gridscope/gridscope/pkg/types"
	"github.com/gridscope/gridscope/web"
	"github.com/levenlabs/go-lflag"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const authTokenCookie = "auth_token"

// DefaultUserID is the preference owner in single-user deployments.
const DefaultUserID = "default"

type contextKey string

const userContextKey contextKey = "user"

// tokenVerifier is a function that validates a Google ID token.
type tokenVerifier func(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)

// ForecastService is the slice of the forecast client the handlers use.
type ForecastService interface {
	Models(ctx context.Context) ([]types.ModelInfo, error)
	CurrentModel(ctx context.Context) (string, error)
	SelectModel(ctx context.Context, modelID string) (bool, error)
	CurrentMetrics(ctx context.Context) (types.ModelMetrics, error)
	DemandTrend(ctx context.Context, zone string) (types.DemandTrend, error)
}

// Server handles the HTTP API for the GridScope dashboard. It proxies the
// forecast model service, owns zone and preference handling, and serves the
// web frontend.
type Server struct {
	forecast ForecastService
	storage  storage.Database
	metrics  *metrics

	listenAddr string
	devProxy   string
	httpServer *http.Server

	adminEmails      []string
	oidcAudience     string
	verifier         tokenVerifier
	bypassAuth       bool
	serverName       string
	webCacheDuration time.Duration
	defaultTimezone  string
}

// Configured initializes the Server with dependencies.
// It uses lflag to register command-line flags for configuration.
func Configured(f *forecast.Client, db storage.Database) *Server {
	srv := &Server{
		forecast:   f,
		storage:    db,
		metrics:    newMetrics(),
		serverName: "gridscope",
	}
	revision := os.Getenv("K_REVISION")
	if revision != "" {
		srv.serverName = revision
	}

	// get the port from PORT when running in cloud run
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	listenAddr := lflag.String("http-listen", ":"+port, "HTTP server listen address")
	devProxy := lflag.String("dev-proxy", "", "Address of the dev server (e.g. http://localhost:5173)")
	adminEmails := lflag.String("admin-emails", "", "comma-delimited list of email addresses with admin access")
	oidcAudience := lflag.String("oidc-audience", "", "Google OIDC audience/client ID for id token validation (empty disables auth)")
	webCacheDuration := lflag.Duration("web-cache-duration", 0, "Duration to cache web files (e.g. 1h, 5m). 0 means no cache.")
	defaultTimezone := lflag.String("default-timezone", "America/Los_Angeles", "Timezone used to infer default display units for new users")

	lflag.Do(func() {
		srv.listenAddr = *listenAddr
		srv.devProxy = *devProxy
		if *adminEmails != "" {
			srv.adminEmails = strings.Split(*adminEmails, ",")
			for i, email := range srv.adminEmails {
				srv.adminEmails[i] = strings.TrimSpace(email)
			}
		}
		srv.webCacheDuration = *webCacheDuration
		srv.defaultTimezone = *defaultTimezone

		if *oidcAudience != "" {
			provider, err := oidc.NewProvider(context.Background(), "https://accounts.google.com")
			if err != nil {
				log.Ctx(context.Background()).Error("failed to initialize Google OIDC provider", slog.Any("error", err))
				os.Exit(1)
			}
			srv.oidcAudience = *oidcAudience
			srv.verifier = provider.Verifier(&oidc.Config{ClientID: *oidcAudience}).Verify
		} else {
			// without an audience we run in single-user mode
			srv.bypassAuth = true
		}
	})

	return srv
}

func (s *Server) setupHandler() http.Handler {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/models", s.handleListModels)
	apiMux.HandleFunc("GET /api/models/current", s.handleCurrentModel)
	apiMux.HandleFunc("POST /api/models/select/{modelID}", s.handleSelectModel)
	apiMux.HandleFunc("GET /api/models/metrics", s.handleModelMetrics)
	apiMux.HandleFunc("GET /api/zones", s.handleListZones)
	apiMux.HandleFunc("GET /api/zones/{zone}", s.handleGetZone)
	apiMux.HandleFunc("GET /api/demand/trend", s.handleDemandTrend)
	apiMux.HandleFunc("GET /api/preferences", s.handleGetPreferences)
	apiMux.HandleFunc("POST /api/preferences", s.handleUpdatePreferences)
	apiMux.HandleFunc("POST /api/preferences/toggle", s.handleTogglePreference)
	apiMux.HandleFunc("GET /api/admin/users", s.handleListUsers)

	mux := http.NewServeMux()
	mux.Handle("/api/", s.authMiddleware(apiMux))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", s.handleHealthz)

	// serve the web frontend, either from the embedded filesystem or from the dev server
	if s.devProxy != "" {
		u, err := url.Parse(s.devProxy)
		if err != nil {
			panic(fmt.Errorf("invalid dev-proxy url (%s): %w", s.devProxy, err))
		}
		mux.Handle("/", httputil.NewSingleHostReverseProxy(u))
	} else {
		distFS, err := web.Assets()
		if err != nil {
			panic(fmt.Errorf("failed to get web dist fs: %w", err))
		}
		fileServer := http.FileServer(http.FS(distFS))
		mux.Handle("/", s.webHandler(distFS, fileServer))
	}

	return s.requestMiddleware(s.revisionMiddleware(gziphandler.GzipHandler(s.securityHeadersMiddleware(mux))))
}

// Run starts the HTTP server and blocks until the context is canceled or an
// error occurs. It also handles graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.listenAddr,
		Handler:      s.setupHandler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		log.Ctx(ctx).InfoContext(ctx, "starting server", slog.String("addr", s.listenAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Ctx(ctx).InfoContext(ctx, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg}); err != nil {
		slog.Warn("failed to write error response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) webHandler(dir fs.FS, h http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Default to serving index.html for unknown paths (SPA)
		if r.URL.Path != "/" {
			f, err := dir.Open(strings.TrimPrefix(r.URL.Path, "/"))
			if err == nil {
				f.Close()
			} else if errors.Is(err, fs.ErrNotExist) {
				// Don't fall back to index.html for .well-known
				if strings.HasPrefix(r.URL.Path, "/.well-known/") {
					http.Error(w, "not found", http.StatusNotFound)
					return
				}
				r.URL.Path = "/"
			} else {
				log.Ctx(r.Context()).ErrorContext(r.Context(), "failed to open file", "error", err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
		}
		if s.webCacheDuration > 0 {
			w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(s.webCacheDuration.Seconds())))
		}

		h.ServeHTTP(w, r)
	}
}

func (s *Server) revisionMiddleware(next http.Handler) http.Handler {
	if s.serverName == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", s.serverName)
		next.ServeHTTP(w, r)
	})
}
