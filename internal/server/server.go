// Package server exposes the caption and reframe renderers over HTTP as
// polled background jobs.
package server

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/forPelevin/capgen/internal/jobs"
)

type Server struct {
	pool  *jobs.Pool
	store *jobs.Store
	log   *slog.Logger
}

func New(pool *jobs.Pool, store *jobs.Store, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{pool: pool, store: store, log: log}
}

// App builds the fiber application with all routes registered.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "capgend",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/render", s.startJob(jobs.KindRender))
	app.Get("/render-status/:id", s.jobStatus(jobs.KindRender))

	app.Post("/reframe", s.startJob(jobs.KindReframe))
	app.Get("/reframe-status/:id", s.jobStatus(jobs.KindReframe))

	return app
}

// startJob validates the request payload for the kind and enqueues it. The
// payload is stored verbatim; the runner owns its schema.
func (s *Server) startJob(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := c.Body()
		if input, err := inputPath(kind, body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		} else if _, err := os.Stat(input); err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "input video not found: " + input,
			})
		}

		id := newJobID()
		j, err := s.pool.Enqueue(c.Context(), id, kind, append([]byte(nil), body...))
		if err != nil {
			s.log.Error("enqueue failed", "kind", kind, "error", err)
			status := fiber.StatusInternalServerError
			if errors.Is(err, jobs.ErrQueueFull) {
				status = fiber.StatusServiceUnavailable
			}
			return c.Status(status).JSON(fiber.Map{"error": err.Error()})
		}
		s.log.Info("job queued", "job_id", j.ID, "kind", kind)
		return c.JSON(fiber.Map{"job_id": j.ID, "status": j.Status})
	}
}

func (s *Server) jobStatus(kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		j, err := s.store.Get(c.Context(), c.Params("id"))
		if errors.Is(err, jobs.ErrNotFound) || (err == nil && j.Kind != kind) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "job not found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		resp := fiber.Map{"job_id": j.ID, "status": j.Status}
		if len(j.Result) > 0 {
			resp["result"] = j.Result
		}
		if j.Error != "" {
			resp["error"] = j.Error
		}
		return c.JSON(resp)
	}
}

// Job IDs are short hex strings, long enough to never collide in practice.
func newJobID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
