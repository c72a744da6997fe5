// Package api is the local control API a browser UI drives the orchestrator through.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/moyoez/moneylens-go/api/controllers"
	"github.com/moyoez/moneylens-go/api/middlewares"
	"github.com/moyoez/moneylens-go/notify"
	"github.com/moyoez/moneylens-go/orchestrator"
	"github.com/moyoez/moneylens-go/tool"
)

// Server serves /api/self/v1 on 127.0.0.1 only.
type Server struct {
	port   int
	orch   *orchestrator.Orchestrator
	hub    *notify.Hub
	engine *gin.Engine
	server *http.Server
	mu     sync.RWMutex
}

// NewServer builds a server for orch. hub may be nil, which disables /notify-ws.
func NewServer(port int, orch *orchestrator.Orchestrator, hub *notify.Hub) *Server {
	return &Server{port: port, orch: orch, hub: hub}
}

// DashboardURL is the address printed by serve and encoded by /create-qr-code.
func (s *Server) DashboardURL() string {
	return fmt.Sprintf("http://127.0.0.1:%d/api/self/v1/status", s.port)
}

// Engine returns the gin engine, building the routes on first use.
func (s *Server) Engine() *gin.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		s.engine = s.setupRoutes()
	}
	return s.engine
}

func (s *Server) setupRoutes() *gin.Engine {
	if tool.DefaultLogger.GetLevel() == log.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(nil); err != nil {
		tool.DefaultLogger.Warnf("[Server] failed to reset trusted proxies: %v", err)
	}
	engine.Use(gin.Recovery())

	statusCtrl := controllers.NewStatusController(s.orch)
	uploadCtrl := controllers.NewUploadController(s.orch)
	resultsCtrl := controllers.NewResultsController(s.orch)
	selectionCtrl := controllers.NewSelectionController(s.orch)
	exportCtrl := controllers.NewExportController(s.orch)
	healthCtrl := controllers.NewHealthController(s.orch)
	qrCtrl := controllers.NewQRCodeController(s.DashboardURL())

	self := engine.Group("/api/self/v1", middlewares.OnlyAllowLocal)
	{
		self.GET("/status", statusCtrl.HandleStatus)           // phase, status line, error banner
		self.DELETE("/error", statusCtrl.HandleClearError)     // dismiss the error banner
		self.POST("/upload", uploadCtrl.HandleUpload)          // multipart file + mode
		self.GET("/results", resultsCtrl.HandleList)           // ?format=msgpack
		self.GET("/results/:fileId", resultsCtrl.HandleGet)    // one result
		self.POST("/results/reload", resultsCtrl.HandleReload) // rebuild from the API
		self.DELETE("/results/:fileId", resultsCtrl.HandleRemove)
		self.GET("/selection", selectionCtrl.HandleGet)
		self.POST("/selection/all", selectionCtrl.HandleToggleAll)
		self.POST("/selection/:fileId", selectionCtrl.HandleToggle)
		self.DELETE("/selection", selectionCtrl.HandleClear)
		self.POST("/export/selected", exportCtrl.HandleSelected)
		self.POST("/export/summary", exportCtrl.HandleSummary)
		self.POST("/export/transactions", exportCtrl.HandleTransactions)
		self.GET("/health", healthCtrl.HandleHealth)
		self.GET("/create-qr-code", qrCtrl.HandleQRCode)
		if s.hub != nil && notify.WSEnabled() {
			self.GET("/notify-ws", notify.HandleNotifyWS(s.hub))
		}
	}
	return engine
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	engine := s.Engine()

	s.mu.Lock()
	s.server = &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler: engine,
	}
	srv := s.server
	s.mu.Unlock()

	tool.DefaultLogger.Infof("[Server] listening on http://127.0.0.1:%d", s.port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
