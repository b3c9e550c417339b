// Package server exposes the pipeline trigger and status HTTP API.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/pipeline"
	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/runstatus"
)

// Runner starts a pipeline run for a mode.
type Runner interface {
	Run(ctx context.Context, runID string, mode pipeline.Mode) error
}

// Server holds the fiber app and its collaborators.
type Server struct {
	app     *fiber.App
	runner  Runner
	tracker runstatus.Tracker
	secrets []string
	logger  *slog.Logger
}

// New builds the app with its routes registered. secrets is the list of
// accepted bearer tokens for the pipeline endpoints.
func New(runner Runner, tracker runstatus.Tracker, secrets []string, logger *slog.Logger) *Server {
	s := &Server{
		app:     fiber.New(fiber.Config{DisableStartupMessage: true}),
		runner:  runner,
		tracker: tracker,
		secrets: secrets,
		logger:  logger,
	}

	s.app.Get("/health", s.health)

	api := s.app.Group("/api/pipeline", s.requireSecret)
	api.Post("/run", s.triggerRun)
	api.Get("/run", s.triggerRun)
	api.Get("/status/:id", s.runStatus)

	return s
}

// Listen blocks serving on addr.
func (s *Server) Listen(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// requireSecret checks the bearer token against every configured secret.
// Unauthenticated requests get a 401 and trigger no side effects.
func (s *Server) requireSecret(c *fiber.Ctx) error {
	auth := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if ok && token != "" {
		for _, secret := range s.secrets {
			if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1 {
				return c.Next()
			}
		}
	}
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error":   "unauthorized",
	})
}

func (s *Server) triggerRun(c *fiber.Ctx) error {
	mode, err := pipeline.ParseMode(c.Query("mode"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	runID, err := s.tracker.Create(c.Context())
	if err != nil {
		s.logger.Error("create run failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "could not create run",
		})
	}

	// The run outlives the request; it carries its own context.
	go func() {
		if err := s.runner.Run(context.Background(), runID, mode); err != nil {
			s.logger.Error("pipeline run failed", "run_id", runID, "error", err)
		}
	}()

	s.logger.Info("pipeline run triggered", "run_id", runID, "mode", mode)
	return c.JSON(fiber.Map{
		"success":   true,
		"jobId":     runID,
		"statusUrl": "/api/pipeline/status/" + runID,
	})
}

func (s *Server) runStatus(c *fiber.Ctx) error {
	run, err := s.tracker.Get(c.Context(), c.Params("id"))
	if errors.Is(err, runstatus.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "run not found",
		})
	}
	if err != nil {
		s.logger.Error("get run failed", "run_id", c.Params("id"), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "could not read run status",
		})
	}

	resp := fiber.Map{
		"id":     run.ID,
		"status": run.Status,
		"stats":  run.Stats,
	}
	if run.Error != "" {
		resp["error"] = run.Error
	}
	return c.JSON(resp)
}
