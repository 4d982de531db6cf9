package render

import (
	"context"
	"fmt"
	"html"

	"resume-studio/internal/engine"
	"resume-studio/internal/model"
	"resume-studio/internal/registry"

	"go.uber.org/zap"
)

// State tracks a render attempt. Errored is terminal for the attempt; the
// next template or data change starts over at Resolving.
type State string

const (
	StateIdle      State = "idle"
	StateResolving State = "resolving"
	StateRendering State = "rendering"
	StateRendered  State = "rendered"
	StateErrored   State = "errored"
)

// Preview is the outcome of one render attempt. On failure HTML carries the
// fallback panel, never an empty page.
type Preview struct {
	HTML       string `json:"html"`
	State      State  `json:"state"`
	TemplateID string `json:"templateId"`
	Error      string `json:"error,omitempty"`
}

// Host drives the preview surface. It is the error boundary: no template
// failure, including a panic inside a render function, escapes past it.
type Host struct {
	registry *registry.Registry
	logger   *zap.Logger
}

func NewHost(reg *registry.Registry, logger *zap.Logger) *Host {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Host{registry: reg, logger: logger}
}

// RenderPreview resolves the template, renders the resume, and wraps the
// result in an A4 page scaled by zoom (1.0 = 100%).
func (h *Host) RenderPreview(ctx context.Context, resume model.ResumeData, templateID string, zoom float64) Preview {
	p := Preview{State: StateResolving}
	desc := h.registry.Resolve(templateID)
	p.TemplateID = desc.ID

	p.State = StateRendering
	node, err := h.renderGuarded(ctx, desc, resume)
	if err != nil {
		h.logger.Warn("template render failed",
			zap.String("template", desc.ID), zap.Error(err))
		p.State = StateErrored
		p.Error = err.Error()
		p.HTML = pageWrap(fallbackPanel(desc.Name, err), zoom)
		return p
	}
	p.State = StateRendered
	p.HTML = pageWrap(node.HTML(), zoom)
	return p
}

// renderGuarded converts panics from descriptor render functions into plain
// errors so one bad template cannot take the host down.
func (h *Host) renderGuarded(ctx context.Context, desc *registry.Descriptor, resume model.ResumeData) (node *engine.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			node = nil
			err = fmt.Errorf("template panicked: %v", r)
		}
	}()
	node, err = desc.Render(ctx, resume, nil)
	if err == nil && node == nil {
		err = engine.ErrNothingRenderable
	}
	return node, err
}

// pageWrap fixes the output to A4 physical dimensions with a zoom transform.
func pageWrap(inner string, zoom float64) string {
	if zoom <= 0 {
		zoom = 1
	}
	return fmt.Sprintf(
		`<div class="resume-page" style="width:210mm;min-height:297mm;background:#ffffff;transform:scale(%g);transform-origin:top left;">%s</div>`,
		zoom, inner)
}

func fallbackPanel(name string, err error) string {
	return fmt.Sprintf(
		`<div class="render-error" style="padding:24px;font-family:sans-serif;"><h2>Template failed to render</h2><p>%s</p><pre style="white-space:pre-wrap;color:#a33;">%s</pre></div>`,
		html.EscapeString(name), html.EscapeString(err.Error()))
}
