package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"market-cache/src/broker"
	"market-cache/src/broker/authcode"
	"market-cache/src/broker/checksum"
	"market-cache/src/helpers"
	"market-cache/src/logger"
	"market-cache/src/models"
	"market-cache/src/reader"
	"market-cache/src/seeder"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request id; a caller-supplied value is kept.
const RequestIDHeader = "X-Request-ID"

// -----------------------------------------------------------------------------
// FastAPIServer
// -----------------------------------------------------------------------------

type FastAPIServer struct {
	Config     *models.MConfig
	Logger     *logger.Logger
	Seeder     *seeder.Seeder
	Reader     *reader.Reader
	Normalizer *broker.Normalizer
	AuthCode   *authcode.Broker // nil when disabled
	Checksum   *checksum.Broker // nil when disabled
	Errors     *helpers.ErrorHandler

	engine     *gin.Engine
	httpServer *http.Server

	// WebSocket clients, owned by the hub goroutine
	clients     map[*Client]struct{}
	connections atomic.Int64
	broadcast   chan *models.MSeedProgress
	register    chan *Client
	unregister  chan *Client
	status      chan *Client
	quit        chan struct{}
	stopOnce    sync.Once

	// Last published seed progress
	latestState *models.MSeedProgress
	stateMutex  sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewFastAPIServer(cfg *models.MConfig, sd *seeder.Seeder, rd *reader.Reader, log *logger.Logger) *FastAPIServer {
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &FastAPIServer{
		Config:     cfg,
		Logger:     log,
		Seeder:     sd,
		Reader:     rd,
		Normalizer: broker.NewNormalizer(cfg),
		Errors:     helpers.NewErrorHandler(log),
		engine:     gin.New(),
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan *models.MSeedProgress, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		status:     make(chan *Client),
		quit:       make(chan struct{}),
		latestState: &models.MSeedProgress{
			Type: "INITIAL",
		},
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(s.requestLogger())

	// CORS and pre-flight
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.handleWebsockets()
	return s
}

// EnableBrokers attaches the configured login flows. Either may be nil.
func (s *FastAPIServer) EnableBrokers(ac *authcode.Broker, cs *checksum.Broker) {
	s.AuthCode = ac
	s.Checksum = cs
}

// Handler exposes the engine for embedding and tests.
func (s *FastAPIServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *FastAPIServer) setupRoutes() {
	api := s.engine.Group("/api")
	api.POST("/seed-historical", s.seedHistorical)
	api.POST("/historical-prices", s.historicalPrices)
	api.POST("/broker/authcode", s.brokerAuthCode)
	api.POST("/broker/checksum", s.brokerChecksum)
	api.GET("/config", s.getConfig)
	api.GET("/health", s.getHealth)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)

	// Unknown paths; OPTIONS never gets here
	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, helpers.ErrorResponse{Error: "not found"})
	})
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start serves until Stop. It returns nil at once if Stop already ran; a
// Shutdown before ListenAndServe also makes it return ErrServerClosed.
func (s *FastAPIServer) Start() error {
	select {
	case <-s.quit:
		return nil
	default:
	}

	s.Logger.Info("Starting server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.quit)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = s.httpServer.Shutdown(ctx)
	})
	return err
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
		s.Logger.Debug("[%s] %s %s -> %d (%s)", id, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
