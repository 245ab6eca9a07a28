// Package web serves the lookup page and a JSON view of it over HTTP.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/frobware/ghlookup/lookup"
	"github.com/frobware/ghlookup/view"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	indexTemplate   = "index.html"
	shutdownTimeout = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Source          lookup.Source
	DefaultHandle   string
	CORSOrigins     []string
	NotificationTTL time.Duration
	LookupOptions   []lookup.Option
	Logger          *log.Entry
	Debug           bool
}

// Server resolves handles on demand, one fetch cycle per request.
type Server struct {
	router        *gin.Engine
	source        lookup.Source
	defaultHandle string
	ttl           time.Duration
	lookupOpts    []lookup.Option
	log           *log.Entry
}

// pageData is what the index template renders.
type pageData struct {
	view.Page
	CopiedTitle        string
	NotificationMillis int64
}

// HealthResponse is returned by the health check.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is returned when a request cannot be served.
type ErrorResponse struct {
	Error string `json:"error"`
}

func NewServer(opts Options) (*Server, error) {
	if opts.Source == nil {
		return nil, errors.New("web: no source configured")
	}

	entry := opts.Logger
	if entry == nil {
		entry = log.NewEntry(log.StandardLogger())
	}
	handle := opts.DefaultHandle
	if handle == "" {
		handle = lookup.DefaultHandle
	}
	ttl := opts.NotificationTTL
	if ttl <= 0 {
		ttl = 3 * time.Second
	}

	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		source:        opts.Source,
		defaultHandle: handle,
		ttl:           ttl,
		lookupOpts:    append(slices.Clone(opts.LookupOptions), lookup.WithLogger(entry)),
		log:           entry,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(entry))
	if c, ok := corsConfig(opts.CORSOrigins); ok {
		router.Use(cors.New(c))
	}
	router.SetHTMLTemplate(tmpl)

	router.GET("/", s.index)
	router.GET("/healthz", s.health)
	api := router.Group("/api")
	{
		api.GET("/users/:handle", s.user)
	}

	s.router = router
	return s, nil
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("server starting")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func (s *Server) resolve(c *gin.Context, handle string) (view.Page, bool) {
	state, err := lookup.Resolve(c.Request.Context(), s.source, handle, s.lookupOpts...)
	if err != nil {
		s.log.WithError(err).WithField("handle", handle).Warn("lookup abandoned")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
		return view.Page{}, false
	}
	return view.NewPage(state), true
}

// index handles GET /?user=handle.
func (s *Server) index(c *gin.Context) {
	handle := strings.TrimSpace(c.DefaultQuery("user", s.defaultHandle))

	page, ok := s.resolve(c, handle)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, indexTemplate, pageData{
		Page:               page,
		CopiedTitle:        view.CopiedTitle,
		NotificationMillis: s.ttl.Milliseconds(),
	})
}

// user handles GET /api/users/:handle.
func (s *Server) user(c *gin.Context) {
	page, ok := s.resolve(c, c.Param("handle"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, page)
}

// health handles GET /healthz.
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy"})
}

func corsConfig(origins []string) (cors.Config, bool) {
	if len(origins) == 0 {
		return cors.Config{}, false
	}

	c := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c, true
}

func requestLogger(entry *log.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("request")
	}
}
