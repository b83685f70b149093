package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/user/job-harvester/internal/domain"
	"github.com/user/job-harvester/internal/monitoring"
	"github.com/user/job-harvester/internal/repository"
	"go.uber.org/zap"
)

// Runner triggers harvests and reports on them.
type Runner interface {
	RunDefault(ctx context.Context) (*domain.RunSummary, error)
	LastRun(ctx context.Context) (*domain.RunSummary, error)
}

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the dependencies for the job board HTTP server.
type Server struct {
	port       string
	router     http.Handler
	httpServer *http.Server
	jobs       repository.JobRepository
	runner     Runner
	checks     map[string]Pinger
	gatherer   prometheus.Gatherer
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

// NewServer builds the server. checks maps a dependency name to its probe.
// A nil gatherer serves the default registry on /metrics.
func NewServer(
	port string,
	jobs repository.JobRepository,
	runner Runner,
	checks map[string]Pinger,
	gatherer prometheus.Gatherer,
	m *monitoring.Metrics,
	l *zap.Logger,
) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		port:     port,
		jobs:     jobs,
		runner:   runner,
		checks:   checks,
		gatherer: gatherer,
		metrics:  m,
		logger:   l,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%s", s.port),
		Handler:     s.router,
		ReadTimeout: 10 * time.Second,
		// run-scraper answers only after a full harvest.
		WriteTimeout: 0,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
