package http

import (
	"context"
	"time"

	"resume-studio/internal/engine"
	"resume-studio/internal/model"
	"resume-studio/internal/registry"
	"resume-studio/internal/render"
	"resume-studio/internal/store"
	"resume-studio/pkg/ai"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PDFRenderer is what the print endpoint needs from infrastructure.
type PDFRenderer interface {
	RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

type Handler struct {
	host     *render.Host
	registry *registry.Registry
	store    *store.TemplateStore
	ai       *ai.Client
	pdf      PDFRenderer
	logger   *zap.Logger
}

func NewHandler(host *render.Host, reg *registry.Registry, st *store.TemplateStore, aiClient *ai.Client, pdf PDFRenderer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{host: host, registry: reg, store: st, ai: aiClient, pdf: pdf, logger: logger}
}

func (h *Handler) Register(app *fiber.App) {
	app.Post("/render", h.RenderPreview)
	app.Post("/render/pdf", h.RenderPDF)
	app.Get("/templates", h.ListTemplates)
	app.Post("/templates", h.SaveTemplate)
	app.Delete("/templates/:id", h.DeleteTemplate)
	app.Post("/templates/validate", h.ValidateTemplate)
	app.Post("/templates/format", h.FormatTemplate)
	app.Post("/templates/generate", h.GenerateTemplate)
	app.Post("/snapshot/import", h.ImportSnapshot)
	app.Post("/snapshot/export", h.ExportSnapshot)
}

type renderReq struct {
	Resume     model.ResumeData `json:"resume"`
	TemplateID string           `json:"templateId"`
	Zoom       float64          `json:"zoom"`
}

func (h *Handler) RenderPreview(c *fiber.Ctx) error {
	var req renderReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	if req.TemplateID == "" {
		req.TemplateID = req.Resume.SelectedTemplate
	}
	preview := h.host.RenderPreview(c.Context(), req.Resume, req.TemplateID, req.Zoom)
	return c.JSON(preview)
}

func (h *Handler) RenderPDF(c *fiber.Ctx) error {
	var req renderReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	if req.TemplateID == "" {
		req.TemplateID = req.Resume.SelectedTemplate
	}
	// print always renders at 100%
	preview := h.host.RenderPreview(c.Context(), req.Resume, req.TemplateID, 1)
	if preview.State == render.StateErrored {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(preview)
	}
	doc := render.PrintDocument(req.Resume.PersonalInfo.Name, preview.HTML)
	pdf, err := h.pdf.RenderHTMLToPDF(c.Context(), doc)
	if err != nil {
		h.logger.Warn("pdf rendering failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "PDF rendering failed: " + err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="resume.pdf"`)
	return c.Send(pdf)
}

func (h *Handler) ListTemplates(c *fiber.Ctx) error {
	return c.JSON(h.registry.All())
}

type saveTemplateReq struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Code        string            `json:"code"`
	Preferences store.Preferences `json:"preferences"`
}

// SaveTemplate validates and repairs the submitted code, then persists it.
// Persistence is deliberately not gated on validity: the author keeps their
// code for editing either way, and only rendering is blocked while invalid.
func (h *Handler) SaveTemplate(c *fiber.Ctx) error {
	var req saveTemplateReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Name == "" {
		req.Name = "Custom template"
	}

	repaired := engine.Repair(req.Code)
	validation := engine.Validate(repaired)

	rec := store.CustomTemplate{
		ID:          req.ID,
		Name:        req.Name,
		Code:        repaired,
		Preferences: req.Preferences,
		CreatedAt:   time.Now(),
	}
	if err := h.store.Save(c.Context(), rec); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"template": rec, "validation": validation})
}

func (h *Handler) DeleteTemplate(c *fiber.Ctx) error {
	h.store.Delete(c.Context(), c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

type codeReq struct {
	Code string `json:"code"`
}

func (h *Handler) ValidateTemplate(c *fiber.Ctx) error {
	var req codeReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	result := engine.Validate(req.Code)
	warnings := engine.MissingKeyWarnings(req.Code)
	return c.JSON(fiber.Map{"result": result, "warnings": warnings})
}

func (h *Handler) FormatTemplate(c *fiber.Ctx) error {
	var req codeReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	return c.JSON(fiber.Map{"code": engine.Format(req.Code)})
}

type generateReq struct {
	APIKey      string            `json:"apiKey"`
	Service     string            `json:"service"`
	Model       string            `json:"model,omitempty"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Preferences store.Preferences `json:"preferences"`
}

// GenerateTemplate runs AI output through the exact same pipeline as manual
// code; there is no trust distinction between the two sources.
func (h *Handler) GenerateTemplate(c *fiber.Ctx) error {
	var req generateReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	candidates, err := h.ai.Generate(c.Context(), req.APIKey, req.Service,
		req.Description, "", req.Preferences.Style, ai.OperationGenerate, req.Model)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error(), "retryable": true})
	}

	repaired := engine.Repair(candidates[0])
	validation := engine.Validate(repaired)
	name := req.Name
	if name == "" {
		name = "Generated template"
	}
	rec := store.CustomTemplate{
		ID:          uuid.NewString(),
		Name:        name,
		Code:        repaired,
		Preferences: req.Preferences,
		CreatedAt:   time.Now(),
	}
	if err := h.store.Save(c.Context(), rec); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"template": rec, "validation": validation})
}

func (h *Handler) ImportSnapshot(c *fiber.Ctx) error {
	resume, err := model.ImportSnapshot(c.Body())
	if err != nil {
		// existing state stays untouched on the client: nothing was accepted
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"resume": resume})
}

func (h *Handler) ExportSnapshot(c *fiber.Ctx) error {
	var req struct {
		Resume model.ResumeData `json:"resume"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	data, err := model.ExportSnapshot(req.Resume)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="resume.json"`)
	return c.Send(data)
}
