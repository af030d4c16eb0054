package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/figmatch/figmatch/pkg/catalog"
	"github.com/figmatch/figmatch/pkg/parts"
	"github.com/figmatch/figmatch/pkg/session"
	"github.com/figmatch/figmatch/pkg/storage"
)

// ErrorResponse is the JSON body for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UploadResponse confirms a started session and names the first crop step.
type UploadResponse struct {
	Session  string `json:"session"`
	State    string `json:"state"`
	NextStep string `json:"next_step"`
	Title    string `json:"title"`
}

// regionRequest carries one crop submission. Coordinates arrive as floats
// (browser selection tools report fractional pixels) and are truncated to
// integers.
type regionRequest struct {
	X      float64 `json:"x" form:"x"`
	Y      float64 `json:"y" form:"y"`
	Width  float64 `json:"width" form:"width"`
	Height float64 `json:"height" form:"height"`
	Step   string  `json:"step" form:"step"`
}

// RegionResponse reports the state after a crop submission.
type RegionResponse struct {
	Session  string `json:"session"`
	State    string `json:"state"`
	NextStep string `json:"next_step,omitempty"`
	Title    string `json:"title,omitempty"`
}

// ResultsResponse carries the three per-category matches of a complete
// session. Matching is all-or-nothing: on any failure the response is a
// single ErrorResponse and no partial results.
type ResultsResponse struct {
	Session string                `json:"session"`
	Results []session.MatchResult `json:"results"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleUpload accepts a multipart figure photo and starts its session.
func (s *Server) handleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "file part required"})
	}

	if fileHeader.Filename == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "no selected file"})
	}

	if !storage.AllowedExtension(fileHeader.Filename) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "unsupported file type: png, jpg, jpeg only"})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "unreadable upload"})
	}
	defer f.Close()

	sess, err := s.coordinator.Start(fileHeader.Filename, f)
	if err != nil {
		s.logger.Warn("upload rejected",
			zap.String("filename", fileHeader.Filename),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(UploadResponse{
		Session:  sess.Name,
		State:    string(sess.State),
		NextStep: string(parts.Head),
		Title:    parts.Head.Title(),
	})
}

// handleSubmitRegion accepts one crop rectangle for the session's current
// step and advances the workflow.
func (s *Server) handleSubmitRegion(c *fiber.Ctx) error {
	name := c.Params("name")

	var req regionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "malformed region body"})
	}

	category, err := parts.ParseCategory(req.Step)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	region := parts.Region{
		X:      int(req.X),
		Y:      int(req.Y),
		Width:  int(req.Width),
		Height: int(req.Height),
	}

	sess, err := s.coordinator.SubmitRegion(name, category, region)
	if err != nil {
		return s.regionError(c, err)
	}

	resp := RegionResponse{
		Session: sess.Name,
		State:   string(sess.State),
	}
	if next, ok := sess.State.Expecting(); ok {
		resp.NextStep = string(next)
		resp.Title = next.Title()
	}

	return c.JSON(resp)
}

// regionError maps a submission failure onto a status code.
func (s *Server) regionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
	case errors.Is(err, session.ErrWrongStep),
		errors.Is(err, session.ErrComplete),
		errors.Is(err, session.ErrRegionBounds),
		errors.Is(err, storage.ErrNoUpload):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	default:
		s.logger.Error("region submission failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}
}

// handleResults runs the matching batch for a complete session.
func (s *Server) handleResults(c *fiber.Ctx) error {
	name := c.Params("name")

	results, err := s.coordinator.Results(c.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
		case errors.Is(err, session.ErrNotComplete):
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: err.Error()})
		case errors.Is(err, catalog.ErrNotFound),
			errors.Is(err, catalog.ErrMalformed),
			errors.Is(err, catalog.ErrDimensions):
			s.logger.Error("catalog failure during matching",
				zap.String("session", name),
				zap.Error(err),
			)
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
		default:
			s.logger.Error("similarity search failed",
				zap.String("session", name),
				zap.Error(err),
			)
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
		}
	}

	return c.JSON(ResultsResponse{
		Session: name,
		Results: results,
	})
}
