package server

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"citykiller/internal/config"
	"citykiller/internal/engine"
	"citykiller/internal/logs"
	"citykiller/internal/table"
)

// Server ties together the HTTP API, static files and table hubs.
type Server struct {
	cfg    config.ServerConfig
	tables *table.Manager
	game   engine.GameConfig
	deck   []engine.Citizen
	static fs.FS

	mu   sync.Mutex
	hubs map[string]*Hub

	router *gin.Engine
	srv    *http.Server
}

// New builds the server. static may be nil to serve the API only.
func New(cfg config.ServerConfig, game engine.GameConfig, deck []engine.Citizen, placer *engine.Placer, static fs.FS) *Server {
	s := &Server{
		cfg:    cfg,
		game:   game,
		deck:   deck,
		static: static,
		hubs:   make(map[string]*Hub),
	}
	s.tables = table.NewManager(func(id string) *engine.Game {
		return engine.NewGame(id, deck, game, placer)
	})
	s.router = s.routes()
	s.srv = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.RecoveryWithWriter(zap.NewStdLog(logs.L()).Writer()))
	r.Use(accessLog())

	api := r.Group("/api")
	api.GET("/create", s.HandleCreate)
	api.GET("/groups", s.HandleGroups)
	api.GET("/qr", s.HandleQR)
	api.GET("/viewer-id", s.HandleViewerID)

	tables := api.Group("/tables")
	tables.POST("", s.HandleCreateTable)
	tables.GET("", s.HandleListTables)
	tables.GET("/:id", s.HandleGetTable)
	tables.DELETE("/:id", s.HandleDeleteTable)
	tables.POST("/:id/actions", s.HandleAction)
	tables.GET("/:id/citizens", s.HandleCitizens)
	tables.GET("/:id/neighbors", s.HandleNeighbors)

	r.GET("/ws", s.HandleWS)

	if s.static != nil {
		files := http.FileServer(http.FS(s.static))
		r.NoRoute(gin.WrapH(files))
	}
	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Tables returns the table registry.
func (s *Server) Tables() *table.Manager {
	return s.tables
}

// Start serves until the listener fails or ctx is cancelled, then shuts
// down and disconnects every table.
func (s *Server) Start(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		logs.Info("server starting", zap.String("addr", s.srv.Addr))
		errc <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.stopHubs()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.srv.Shutdown(shutdownCtx)
	s.stopHubs()
	logs.Info("server stopped")
	return err
}

func (s *Server) createTable() (*table.Table, []engine.Event, error) {
	t, events, err := s.tables.Create()
	if err != nil {
		logs.Warn("table setup failed", zap.Error(err))
		return nil, nil, err
	}
	logs.Info("table created", zap.String("table", t.ID), zap.Int("events", len(events)))
	return t, events, nil
}

// hubFor returns the table's hub, starting it on first use. A table removed
// since the caller looked it up gets no hub.
func (s *Server) hubFor(t *table.Table) (*Hub, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if hub, ok := s.hubs[t.ID]; ok {
		return hub, nil
	}
	if _, err := s.tables.Get(t.ID); err != nil {
		return nil, err
	}
	hub := NewHub(t)
	s.hubs[t.ID] = hub
	go hub.Run()
	return hub, nil
}

func (s *Server) existingHub(id string) *Hub {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hubs[id]
}

func (s *Server) removeTable(id string) {
	s.tables.Remove(id)

	s.mu.Lock()
	hub := s.hubs[id]
	delete(s.hubs, id)
	s.mu.Unlock()

	if hub != nil {
		hub.Stop()
	}
	logs.Info("table removed", zap.String("table", id))
}

func (s *Server) stopHubs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, hub := range s.hubs {
		hub.Stop()
		delete(s.hubs, id)
	}
}
