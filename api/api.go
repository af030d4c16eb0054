package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/figmatch/figmatch/pkg/session"
	"github.com/figmatch/figmatch/pkg/storage"
)

// Server is the HTTP server for the figmatch workflow: upload a figure
// photo, crop the three body regions in order, then fetch the catalog
// matches.
type Server struct {
	config      Config
	coordinator *session.Coordinator
	files       *storage.Store
	logger      *zap.Logger
	app         *fiber.App
}

// NewServer creates a new API server.
// The coordinator and file store are injected so they can be shared with
// other components and swapped in tests.
func NewServer(config Config, coordinator *session.Coordinator, files *storage.Store, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:      config,
		coordinator: coordinator,
		files:       files,
		logger:      logger,
		app:         app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/upload", s.handleUpload)
	app.Post("/sessions/:name/regions", s.handleSubmitRegion)
	app.Get("/sessions/:name/results", s.handleResults)

	// Original uploads and cropped parts are served back for the crop UI
	// and the results view. Fiber's static handler rejects path traversal.
	app.Static("/uploads", files.UploadDir())
	app.Static("/cropped", files.CropDir())

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
