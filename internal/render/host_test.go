package render

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-studio/internal/engine"
	"resume-studio/internal/model"
	"resume-studio/internal/registry"
	"resume-studio/internal/store"
)

func testHost(t *testing.T) (*Host, *store.TemplateStore) {
	t.Helper()
	st := store.NewTemplateStore(context.Background(), nil, nil)
	reg := registry.New(st, engine.NewExecutor(nil), nil)
	return NewHost(reg, nil), st
}

func TestRenderPreviewBuiltin(t *testing.T) {
	h, _ := testHost(t)

	p := h.RenderPreview(context.Background(), model.ResumeData{
		PersonalInfo: model.PersonalInfo{Name: "Dana Kim"},
	}, "modern", 1.0)

	assert.Equal(t, StateRendered, p.State)
	assert.Equal(t, "modern", p.TemplateID)
	assert.Empty(t, p.Error)
	assert.Contains(t, p.HTML, "Dana Kim")
	assert.Contains(t, p.HTML, "width:210mm")
	assert.Contains(t, p.HTML, "min-height:297mm")
}

func TestRenderPreviewZoom(t *testing.T) {
	h, _ := testHost(t)

	p := h.RenderPreview(context.Background(), model.ResumeData{}, "modern", 0.8)
	assert.Contains(t, p.HTML, "scale(0.8)")

	// non-positive zoom falls back to 100%
	p = h.RenderPreview(context.Background(), model.ResumeData{}, "modern", 0)
	assert.Contains(t, p.HTML, "scale(1)")
}

func TestRenderPreviewUnknownTemplateFallsBack(t *testing.T) {
	h, _ := testHost(t)

	p := h.RenderPreview(context.Background(), model.ResumeData{}, "does-not-exist", 1.0)
	assert.Equal(t, StateRendered, p.State)
	assert.Equal(t, "modern", p.TemplateID)
}

func TestRenderPreviewCustomTemplate(t *testing.T) {
	h, st := testHost(t)
	ctx := context.Background()
	require.NoError(t, st.Save(ctx, store.CustomTemplate{
		ID:   "custom-1",
		Name: "One liner",
		Code: "return React.createElement('div', null, personalInfo.name)",
	}))

	p := h.RenderPreview(ctx, model.ResumeData{
		PersonalInfo: model.PersonalInfo{Name: "Sam Ortiz"},
	}, "custom-1", 1.0)

	assert.Equal(t, StateRendered, p.State)
	assert.Equal(t, "custom-1", p.TemplateID)
	assert.Contains(t, p.HTML, "Sam Ortiz")
}

func TestRenderPreviewFailureShowsFallbackPanel(t *testing.T) {
	h, st := testHost(t)
	ctx := context.Background()
	require.NoError(t, st.Save(ctx, store.CustomTemplate{
		ID:   "broken",
		Name: "Broken <one>",
		Code: "return React.createElement('div', null, missingHelper())",
	}))

	p := h.RenderPreview(ctx, model.ResumeData{}, "broken", 1.0)

	assert.Equal(t, StateErrored, p.State)
	assert.Contains(t, p.Error, "missingHelper")
	assert.Contains(t, p.HTML, "render-error")
	assert.Contains(t, p.HTML, "Template failed to render")
	// template name is escaped in the panel
	assert.Contains(t, p.HTML, "Broken &lt;one&gt;")
	assert.NotContains(t, p.HTML, "Broken <one>")
	// the error page is still a full A4 page
	assert.Contains(t, p.HTML, "width:210mm")
}

func TestRenderGuardedStopsPanics(t *testing.T) {
	h, _ := testHost(t)

	desc := &registry.Descriptor{
		ID:   "panicky",
		Name: "Panicky",
		Render: func(context.Context, model.ResumeData, *model.ColorScheme) (*engine.Node, error) {
			panic("boom")
		},
	}
	node, err := h.renderGuarded(context.Background(), desc, model.ResumeData{})
	assert.Nil(t, node)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
