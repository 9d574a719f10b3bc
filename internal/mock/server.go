package mock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultPort matches the default API host
	DefaultPort = 31310
	// DefaultPrefix matches the default API host
	DefaultPrefix = "/v1"

	maxLogs = 1000
)

// Server is a local stand-in for the tokenization backend. Static routes
// from the config are matched first; everything else is answered by the
// in-memory Backend.
type Server struct {
	config   *Config
	backend  *Backend
	routes   []matcher
	workdir  string
	log      zerolog.Logger
	srv      *http.Server
	listener net.Listener

	mu       sync.RWMutex
	requests []RequestLog
}

// matcher is a static route with its path test resolved once
type matcher struct {
	route *Route
	match func(path string) bool
}

// NewServer creates a mock server. Routes with an invalid regex never match;
// LoadConfig rejects them up front.
func NewServer(cfg *Config, workdir string, log zerolog.Logger) *Server {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}

	s := &Server{
		config:  cfg,
		backend: NewBackend(cfg.OrgUID),
		workdir: workdir,
		log:     log,
	}
	for i := range cfg.Routes {
		s.routes = append(s.routes, newMatcher(&cfg.Routes[i]))
	}
	return s
}

func newMatcher(route *Route) matcher {
	m := matcher{route: route}
	switch route.PathType {
	case "prefix":
		m.match = func(p string) bool { return strings.HasPrefix(p, route.Path) }
	case "regex":
		re, err := regexp.Compile(route.Path)
		if err != nil {
			m.match = func(string) bool { return false }
			break
		}
		m.match = re.MatchString
	default:
		m.match = func(p string) bool { return p == route.Path }
	}
	return m
}

// Backend returns the in-memory backend state
func (s *Server) Backend() *Backend {
	return s.backend
}

// Handler returns the request handler, for use with httptest
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handleRequest)
}

// Start binds the listener and serves in the background. A bind failure is
// returned rather than logged.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Str("addr", addr).Msg("mock server stopped")
		}
	}()

	s.log.Info().Str("address", s.GetAddress()).Msg("mock server started")
	return nil
}

// Stop shuts the server down, waiting up to five seconds for requests
func (s *Server) Stop() error {
	if s.srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.srv.Shutdown(ctx)
}

// GetAddress returns the API host clients should be configured with
func (s *Server) GetAddress() string {
	host := net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
	if s.listener != nil {
		host = s.listener.Addr().String()
	}
	return "http://" + host + s.config.Prefix
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, _ := io.ReadAll(r.Body)
	r.Body.Close()

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	rule := s.serve(rec, r, body)

	if !s.config.Logging {
		return
	}
	s.record(RequestLog{
		Timestamp:   start,
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       r.URL.RawQuery,
		Headers:     flattenHeaders(r.Header),
		Body:        string(body),
		MatchedRule: rule,
		Status:      rec.status,
		Duration:    time.Since(start),
	})
	s.log.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("query", r.URL.RawQuery).
		Int("status", rec.status).
		Str("rule", rule).
		Dur("duration", time.Since(start)).
		Msg("mock request")
}

// serve answers one request and returns the name of the rule that did
func (s *Server) serve(w http.ResponseWriter, r *http.Request, body []byte) string {
	path, ok := strings.CutPrefix(r.URL.Path, s.config.Prefix)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody(fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path)))
		return "none"
	}
	if path == "" {
		path = "/"
	}

	if s.config.APIKey != "" && r.Header.Get("x-api-key") != s.config.APIKey {
		writeJSON(w, http.StatusUnauthorized, errorBody("invalid api key"))
		return "auth"
	}

	if route := s.matchRoute(r.Method, path); route != nil {
		s.serveRoute(w, route)
		if route.Name != "" {
			return route.Name
		}
		return route.Method + " " + route.Path
	}

	return s.backend.serve(w, r.Method, path, r.URL.Query(), body)
}

// matchRoute returns the first static route for method and path
func (s *Server) matchRoute(method, path string) *Route {
	for _, m := range s.routes {
		if strings.EqualFold(m.route.Method, method) && m.match(path) {
			return m.route
		}
	}
	return nil
}

func (s *Server) serveRoute(w http.ResponseWriter, route *Route) {
	if route.Delay > 0 {
		time.Sleep(time.Duration(route.Delay) * time.Millisecond)
	}

	body := []byte(route.Body)
	if route.BodyFile != "" {
		path := route.BodyFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.workdir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError,
				errorBody(fmt.Sprintf("failed to read body file %s: %v", route.BodyFile, err)))
			return
		}
		body = data
	}

	h := w.Header()
	for key, value := range route.Headers {
		h.Set(key, value)
	}
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", "application/json")
	}
	if org := s.backend.OrgUID(); org != "" && h.Get("x-org-uid") == "" {
		h.Set("x-org-uid", org)
	}

	status := route.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) record(entry RequestLog) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, entry)
	if len(s.requests) > maxLogs {
		s.requests = s.requests[len(s.requests)-maxLogs:]
	}
}

// GetLogs returns a copy of the recorded requests, oldest first
func (s *Server) GetLogs() []RequestLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]RequestLog, len(s.requests))
	copy(out, s.requests)
	return out
}

// ClearLogs drops the recorded requests
func (s *Server) ClearLogs() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = nil
}

// flattenHeaders keeps the first value of each header
func flattenHeaders(headers http.Header) map[string]string {
	result := make(map[string]string, len(headers))
	for key, values := range headers {
		if len(values) > 0 {
			result[key] = values[0]
		}
	}
	return result
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
