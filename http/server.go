package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/fwojciec/cookbook"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ShutdownTimeout is the time given for outstanding requests to finish
// before the server is forcibly closed.
const ShutdownTimeout = 10 * time.Second

// MaxRequestBytes caps request bodies.
const MaxRequestBytes = 1 << 20

// UserIDHeader carries the authenticated user, set by the auth proxy in
// front of the API.
const UserIDHeader = "X-User-ID"

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server is the cookbook JSON API. Services are set on the exported fields
// before Open or Handler is called.
type Server struct {
	ln     net.Listener
	server *http.Server

	once    sync.Once
	handler http.Handler

	// Addr is the bind address, e.g. ":8080".
	Addr string

	// Production hides internal error details from responses.
	Production bool

	Logger *slog.Logger

	// Instrument wraps every request, e.g. to record request metrics.
	Instrument func(http.Handler) http.Handler

	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler

	// Pinger is checked by /healthz when set.
	Pinger Pinger

	RecipeService   cookbook.RecipeService
	CategoryManager cookbook.CategoryManager
	RecipeExtractor cookbook.RecipeExtractor
	MetricService   cookbook.MetricService
}

// NewServer creates a new Server.
func NewServer() *Server {
	return &Server{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// Handler returns the routed API handler.
func (s *Server) Handler() http.Handler {
	s.once.Do(func() {
		s.handler = s.routes()
	})
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	if s.Instrument != nil {
		r.Use(s.Instrument)
	}
	r.Use(middleware.RequestSize(MaxRequestBytes))

	r.Get("/healthz", s.handleHealthz)
	if s.MetricsHandler != nil {
		r.Handle("/metrics", s.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/guest/fetch-recipe", s.handleGuestFetchRecipe)

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)

			r.Route("/recipes", func(r chi.Router) {
				r.Get("/", s.handleListRecipes)
				r.Post("/", s.handleCreateRecipe)
				r.Put("/", s.handleUpdateRecipe)
				r.Delete("/", s.handleDeleteRecipe)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", s.handleListCategories)
				r.Put("/rename", s.handleRenameCategory)
				r.Put("/merge", s.handleMergeCategories)
				r.Delete("/delete", s.handleDeleteCategory)
				r.Post("/suggestions", s.handleSuggestCategories)
			})

			r.Post("/fetch-recipe", s.handleFetchRecipe)

			r.Route("/analytics", func(r chi.Router) {
				r.Get("/", s.handleUserAnalytics)
				r.Get("/system", s.handleSystemAnalytics)
			})
		})
	})

	return r
}

// Open binds Addr and serves requests in the background.
func (s *Server) Open() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		// Extraction can take most of a minute.
		WriteTimeout: 90 * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.Logger.Error("serve", "err", err)
		}
	}()
	return nil
}

// URL returns the address the server is listening on.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Close gracefully shuts the server down.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.Pinger != nil {
		if err := s.Pinger.PingContext(r.Context()); err != nil {
			s.Logger.Error("health check", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type userIDKey struct{}

// requireUser rejects requests without a user ID header.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(UserIDHeader)
		if id == "" {
			s.Error(w, r, cookbook.Errorf(cookbook.EUNAUTHORIZED, "Unauthorized"))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey{}, id)))
	})
}

// userID returns the authenticated user of the request.
func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey{}).(string)
	return id
}

// requestUser returns the user a request claims to act for, whether or not
// it has passed requireUser yet.
func requestUser(r *http.Request) string {
	if id := userID(r); id != "" {
		return id
	}
	return r.Header.Get(UserIDHeader)
}

// logRequests logs one line per request with its ID, status and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.Logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"user", requestUser(r),
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
