// Package api exposes bill analysis over HTTP. Each request is an
// independent, stateless unit of work: one uploaded PDF, one response.
package api

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/insightdelivered/phone-bill-splitter/internal/bill"
	"github.com/insightdelivered/phone-bill-splitter/internal/config"
	"github.com/insightdelivered/phone-bill-splitter/internal/models"
	"github.com/insightdelivered/phone-bill-splitter/internal/writer"
)

const version = "1.0.0"

// AnalyzeResponse is the JSON response from the /api/analyze endpoint.
type AnalyzeResponse struct {
	Success       bool                  `json:"success"`
	Error         string                `json:"error,omitempty"`
	BillingPeriod string                `json:"billingPeriod,omitempty"`
	Members       []models.AllocatedRow `json:"members"`
	Total         float64               `json:"total"`
	StatedTotal   float64               `json:"statedTotal"`
	Count         int                   `json:"count"`
	CSV           string                `json:"csv,omitempty"`
	Version       string                `json:"version,omitempty"`
}

// Server wraps the fiber app with the defaults used for /api/analyze.
type Server struct {
	cfg *config.Config
}

// NewServer builds the HTTP server. The config supplies request defaults
// (family count, policy, summary page, member names); individual requests
// may override the numeric ones.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

// App builds the fiber application with routes registered.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 32 << 20, // bills are small; 32MB covers scanned ones
	})
	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/api/health", HandleHealth)
	app.Post("/api/analyze", s.HandleAnalyze)
	return app
}

// HandleHealth reports liveness.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": version,
		"engine":  "fiber",
	})
}

// HandleAnalyze accepts a multipart PDF upload, runs the full analysis
// pipeline, and returns the allocation plus the CSV artifact as a string.
func (s *Server) HandleAnalyze(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		return writeError(c, fiber.StatusBadRequest, "Only PDF files are supported.")
	}

	req := bill.Request{
		BillPath:              "",
		SummaryPage:           s.cfg.PageNumber,
		FamilyCount:           s.cfg.FamilyCount,
		PlanCostForAllMembers: s.cfg.PlanCostForAllMembers,
		MemberNames:           s.cfg.MemberNumbers,
		OCRFallback:           s.cfg.OCRFallback,
	}
	if v, ok := formInt(c, "family_count"); ok {
		req.FamilyCount = v
	}
	if v, ok := formInt(c, "page_number"); ok {
		req.SummaryPage = v
	}
	if v := c.FormValue("plan_cost_for_all_members"); v != "" {
		req.PlanCostForAllMembers = v == "true" || v == "1"
	}
	if req.FamilyCount <= 0 {
		return writeError(c, fiber.StatusBadRequest, "family_count must be positive.")
	}

	tmpFile, err := os.CreateTemp("", "bill-*.pdf")
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to create temp file.")
	}
	defer os.Remove(tmpFile.Name())
	tmpFile.Close()

	if err := c.SaveFile(fileHeader, tmpFile.Name()); err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to save uploaded file.")
	}
	req.BillPath = tmpFile.Name()

	result, err := bill.Analyze(req)
	if err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("Analysis failed: %v", err))
	}

	var csvBuf bytes.Buffer
	w := &writer.SummaryWriter{}
	if err := w.Write(&csvBuf, result.Rows); err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
	}

	// nil marshals to JSON null, not []
	rows := result.Rows
	if rows == nil {
		rows = []models.AllocatedRow{}
	}

	return c.JSON(AnalyzeResponse{
		Success:       true,
		BillingPeriod: result.BillingPeriod,
		Members:       rows,
		Total:         result.ComputedTotal,
		StatedTotal:   result.StatedTotal,
		Count:         len(rows),
		CSV:           csvBuf.String(),
		Version:       version,
	})
}

func formInt(c *fiber.Ctx, key string) (int, bool) {
	v := c.FormValue(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(AnalyzeResponse{
		Success: false,
		Error:   msg,
		Members: []models.AllocatedRow{},
	})
}
