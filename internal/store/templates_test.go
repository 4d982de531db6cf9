package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-studio/internal/model"
)

func memStore(t *testing.T) *TemplateStore {
	t.Helper()
	return NewTemplateStore(context.Background(), nil, nil)
}

func TestSaveThenGet(t *testing.T) {
	s := memStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, CustomTemplate{
		ID:   "tpl-1",
		Name: "Minimal",
		Code: "return React.createElement('div', null, personalInfo.name)",
	}))

	rec, ok := s.Get("tpl-1")
	require.True(t, ok)
	assert.Equal(t, "Minimal", rec.Name)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestSaveAppliesColorDefaults(t *testing.T) {
	s := memStore(t)

	require.NoError(t, s.Save(context.Background(), CustomTemplate{
		ID:          "tpl-1",
		Name:        "Partial colors",
		Code:        "return React.createElement('div', null)",
		Preferences: Preferences{Colors: model.ColorScheme{Primary: "#123456"}},
	}))

	rec, _ := s.Get("tpl-1")
	assert.Equal(t, "#123456", rec.Preferences.Colors.Primary)
	assert.Equal(t, model.DefaultAccent, rec.Preferences.Colors.Accent)
	assert.Equal(t, model.DefaultBackground, rec.Preferences.Colors.Background)
}

func TestListCreationOrder(t *testing.T) {
	s := memStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(ctx, CustomTemplate{ID: "b", Name: "second", Code: "x", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, s.Save(ctx, CustomTemplate{ID: "a", Name: "first", Code: "x", CreatedAt: base}))
	require.NoError(t, s.Save(ctx, CustomTemplate{ID: "c", Name: "third", Code: "x", CreatedAt: base.Add(2 * time.Hour)}))

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestSaveOverwritesExisting(t *testing.T) {
	s := memStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, CustomTemplate{ID: "tpl-1", Name: "v1", Code: "old"}))
	require.NoError(t, s.Save(ctx, CustomTemplate{ID: "tpl-1", Name: "v2", Code: "new"}))

	rec, ok := s.Get("tpl-1")
	require.True(t, ok)
	assert.Equal(t, "v2", rec.Name)
	assert.Equal(t, "new", rec.Code)
	assert.Len(t, s.List(), 1)
}

func TestDelete(t *testing.T) {
	s := memStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, CustomTemplate{ID: "tpl-1", Name: "gone soon", Code: "x"}))
	s.Delete(ctx, "tpl-1")

	_, ok := s.Get("tpl-1")
	assert.False(t, ok)
	assert.Empty(t, s.List())

	// deleting a missing id is a no-op
	s.Delete(ctx, "never-existed")
}
