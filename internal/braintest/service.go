// Package braintest provides an in-process stand-in for the brain
// management service. It serves the workspace resource catalog from an
// in-memory store, speaks the service's error envelope, and stamps the
// tracing and timing headers clients read back, so suites can exercise a
// client end to end without a live deployment.
//
// A single instance answers for both the API and the gateway origin;
// point both base URLs of the client under test at the same server.
package braintest

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/go-brain-sdk/internal/platform/telemetry"
)

// Config configures the fixture service.
type Config struct {
	// Credentials controls Authorization header checks. The zero value
	// accepts any non-empty credential.
	Credentials Credentials

	// Logger receives request and recovery logs. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Service is the fake brain service. Create one with New, seed state
// through Store, then mount Handler on a test server or call Start.
type Service struct {
	store  *Store
	engine *gin.Engine
	logger *slog.Logger
}

// New creates the service with an empty store.
func New(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.TestMode)
	engine := gin.New()

	s := &Service{
		store:  NewStore(),
		engine: engine,
		logger: logger,
	}

	engine.Use(
		recovery(logger),
		stamp(),
		telemetry.TracingMiddleware("braintest"),
		telemetry.Middleware("braintest"),
		requestLogging(logger),
	)

	s.routes(cfg.Credentials)

	return s
}

// Store exposes the backing store for seeding and assertions.
func (s *Service) Store() *Store {
	return s.store
}

// Handler returns the service as an http.Handler.
func (s *Service) Handler() http.Handler {
	return s.engine
}

// Start runs the service on an ephemeral listener and returns its base
// URL. The listener is closed when the test finishes.
func (s *Service) Start(t *testing.T) string {
	t.Helper()

	server := httptest.NewServer(s.engine)
	t.Cleanup(server.Close)

	return server.URL
}

// routes registers the health endpoints and the authenticated resource
// catalog.
func (s *Service) routes(creds Credentials) {
	health := s.engine.Group("/-")
	health.GET("/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	health.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	health.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v2 := s.engine.Group("/v2", auth(creds))
	ws := v2.Group("/workspaces/:workspace")

	ws.GET("/brains", s.listBrains)
	ws.PUT("/brains/:brain", s.createBrain)
	ws.GET("/brains/:brain", s.getBrain)
	ws.PATCH("/brains/:brain", s.updateBrain)
	ws.DELETE("/brains/:brain", s.deleteBrain)

	ws.POST("/brains/:brain/versions", s.createBrainVersion)
	ws.GET("/brains/:brain/versions", s.listBrainVersions)
	ws.GET("/brains/:brain/versions/:version", s.getBrainVersion)
	ws.PATCH("/brains/:brain/versions/:version", s.updateBrainVersion)
	ws.DELETE("/brains/:brain/versions/:version", s.deleteBrainVersion)

	ws.POST("/brains/:brain/versions/:version/startTraining", s.transitionVersion(StateTraining))
	ws.POST("/brains/:brain/versions/:version/stopTraining", s.transitionVersion(StateIdle))
	ws.POST("/brains/:brain/versions/:version/startAssessment", s.transitionVersion(StateAssessing))
	ws.POST("/brains/:brain/versions/:version/stopAssessment", s.transitionVersion(StateIdle))
	ws.POST("/brains/:brain/versions/:version/resetTraining", s.resetTraining)

	ws.PUT("/simulatorpackages/:package", s.createSimulatorPackage)
	ws.GET("/simulatorpackages", s.listSimulatorPackages)
	ws.GET("/simulatorpackages/:package", s.getSimulatorPackage)
	ws.PATCH("/simulatorpackages/:package", s.updateSimulatorPackage)
	ws.DELETE("/simulatorpackages/:package", s.deleteSimulatorPackage)

	ws.POST("/simulatorpackages/:package/simulatorcollections", s.createSimulatorCollection)
	ws.GET("/simulatorpackages/:package/simulatorcollections", s.listSimulatorCollections)
	ws.GET("/simulatorpackages/:package/simulatorcollections/:collection", s.getSimulatorCollection)
	ws.PATCH("/simulatorpackages/:package/simulatorcollections/:collection", s.updateSimulatorCollection)
	ws.DELETE("/simulatorpackages/:package/simulatorcollections/:collection", s.deleteSimulatorCollection)

	ws.GET("/simulatorbaseimages", s.listBaseImages)
	ws.GET("/simulatorbaseimages/:image", s.getBaseImage)

	ws.POST("/exportedBrains", s.createExportedBrain)
	ws.GET("/exportedBrains", s.listExportedBrains)
	ws.GET("/exportedBrains/:exported", s.getExportedBrain)
	ws.PUT("/exportedBrains/:exported", s.updateExportedBrain)
	ws.DELETE("/exportedBrains/:exported", s.deleteExportedBrain)

	// The session patch route uses a different casing than the reads, as
	// the real gateway does.
	ws.GET("/simulatorsessions", s.listSessions)
	ws.GET("/simulatorsessions/:session", s.getSession)
	ws.PATCH("/simulatorSessions/:session", s.patchSession)

	s.engine.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, codeNotFound,
			fmt.Sprintf("no route for %s %s", c.Request.Method, c.Request.URL.Path))
	})
}
