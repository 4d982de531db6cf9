package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-studio/internal/engine"
	"resume-studio/internal/model"
	"resume-studio/internal/store"
)

func testRegistry(t *testing.T) (*Registry, *store.TemplateStore) {
	t.Helper()
	st := store.NewTemplateStore(context.Background(), nil, nil)
	return New(st, engine.NewExecutor(nil), nil), st
}

func TestAllListsBuiltinsFirst(t *testing.T) {
	r, st := testRegistry(t)
	require.NoError(t, st.Save(context.Background(), store.CustomTemplate{
		ID:   "custom-1",
		Name: "Mine",
		Code: "return React.createElement('div', null, personalInfo.name)",
	}))

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, "modern", all[0].ID)
	assert.Equal(t, "classic", all[1].ID)
	assert.Equal(t, "custom-1", all[2].ID)
	assert.False(t, all[0].IsCustom)
	assert.True(t, all[2].IsCustom)
}

func TestResolveFallsBackToDefault(t *testing.T) {
	r, _ := testRegistry(t)

	d := r.Resolve("nonexistent")
	require.NotNil(t, d)
	assert.Equal(t, "modern", d.ID)

	assert.Equal(t, "classic", r.Resolve("classic").ID)
}

func TestResolveSeesSavedTemplateImmediately(t *testing.T) {
	r, st := testRegistry(t)
	ctx := context.Background()

	assert.Equal(t, "modern", r.Resolve("late").ID)

	require.NoError(t, st.Save(ctx, store.CustomTemplate{
		ID:   "late",
		Name: "Late arrival",
		Code: "return React.createElement('div', null, 'ok')",
	}))
	assert.Equal(t, "late", r.Resolve("late").ID)
}

func TestBuiltinRenderUsesNormalizedData(t *testing.T) {
	r, _ := testRegistry(t)

	node, err := r.Resolve("modern").Render(context.Background(), model.ResumeData{}, nil)
	require.NoError(t, err)
	html := node.HTML()
	assert.Contains(t, html, "Your Name")
	assert.Contains(t, html, model.DefaultAccent)
}

func TestCustomRenderRunsInSandbox(t *testing.T) {
	r, st := testRegistry(t)
	ctx := context.Background()
	require.NoError(t, st.Save(ctx, store.CustomTemplate{
		ID:   "custom-1",
		Name: "Accent banner",
		Code: "return React.createElement('div', { style: { color: templateColors.accent } }, personalInfo.name)",
	}))

	node, err := r.Resolve("custom-1").Render(ctx, model.ResumeData{
		PersonalInfo: model.PersonalInfo{Name: "Dana Kim"},
		Colors:       model.ColorScheme{Accent: "#ff8800"},
	}, nil)
	require.NoError(t, err)
	html := node.HTML()
	assert.Contains(t, html, "Dana Kim")
	assert.Contains(t, html, "#ff8800")
}

func TestCustomRenderColorPrecedence(t *testing.T) {
	r, st := testRegistry(t)
	ctx := context.Background()
	require.NoError(t, st.Save(ctx, store.CustomTemplate{
		ID:   "custom-1",
		Name: "Palette carrier",
		Code: "return React.createElement('div', null, templateColors.accent)",
		Preferences: store.Preferences{
			Colors: model.ColorScheme{Accent: "#112233"},
		},
	}))
	d := r.Resolve("custom-1")

	// explicit override wins
	node, err := d.Render(ctx, model.ResumeData{Colors: model.ColorScheme{Accent: "#ff0000"}},
		&model.ColorScheme{Accent: "#00ff00"})
	require.NoError(t, err)
	assert.Contains(t, node.HTML(), "#00ff00")

	// resume colors next
	node, err = d.Render(ctx, model.ResumeData{Colors: model.ColorScheme{Accent: "#ff0000"}}, nil)
	require.NoError(t, err)
	assert.Contains(t, node.HTML(), "#ff0000")

	// stored generation palette when the resume has none
	node, err = d.Render(ctx, model.ResumeData{}, nil)
	require.NoError(t, err)
	assert.Contains(t, node.HTML(), "#112233")
}

func TestPreviewRendersSampleData(t *testing.T) {
	r, _ := testRegistry(t)
	sample := model.SampleResume()

	node, err := r.Resolve("classic").Preview(context.Background())
	require.NoError(t, err)
	assert.Contains(t, node.HTML(), sample.PersonalInfo.Email)
}
