package api

import (
	"github.com/yourname/healthsync/internal"
	"github.com/yourname/healthsync/internal/insight"
	"github.com/yourname/healthsync/internal/service"
	"github.com/yourname/healthsync/internal/storage"
)

// App is what handlers need from the composed application.
type App interface {
	Logger() internal.Logger
	Store() storage.MetricStore
	Engine() *service.AggregationEngine
	Pipeline() *insight.Pipeline
	Subject() string
}

type Server struct {
	logger   internal.Logger
	store    storage.MetricStore
	engine   *service.AggregationEngine
	pipeline *insight.Pipeline
	subject  string
}

func NewServer(logger internal.Logger, store storage.MetricStore, engine *service.AggregationEngine, pipeline *insight.Pipeline, subject string) *Server {
	return &Server{
		logger:   logger,
		store:    store,
		engine:   engine,
		pipeline: pipeline,
		subject:  subject,
	}
}

func (s *Server) Logger() internal.Logger { return s.logger }

func (s *Server) Store() storage.MetricStore { return s.store }

func (s *Server) Engine() *service.AggregationEngine { return s.engine }

func (s *Server) Pipeline() *insight.Pipeline { return s.pipeline }

func (s *Server) Subject() string { return s.subject }

var _ App = (*Server)(nil)
