package registry

import (
	"context"

	"resume-studio/internal/engine"
	"resume-studio/internal/model"
	"resume-studio/internal/store"

	"go.uber.org/zap"
)

// Descriptor is one selectable template. Built-in descriptors wrap trusted
// composition; custom descriptors wrap the sandbox executor behind the same
// signature, so the render host never cares about trust level.
type Descriptor struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	IsCustom      bool   `json:"isCustom"`
	DefaultLayout string `json:"defaultLayout,omitempty"`

	Render func(ctx context.Context, resume model.ResumeData, colors *model.ColorScheme) (*engine.Node, error) `json:"-"`
}

// Preview renders the descriptor against the fixed sample dataset.
func (d *Descriptor) Preview(ctx context.Context) (*engine.Node, error) {
	return d.Render(ctx, model.SampleResume(), nil)
}

// Registry merges built-in templates with sandbox-backed custom templates
// from the store.
type Registry struct {
	builtins []*Descriptor
	store    *store.TemplateStore
	executor *engine.Executor
	logger   *zap.Logger
}

func New(st *store.TemplateStore, ex *engine.Executor, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{builtins: builtinDescriptors(), store: st, executor: ex, logger: logger}
}

// All lists built-ins first, then custom templates in creation order.
func (r *Registry) All() []*Descriptor {
	out := make([]*Descriptor, 0, len(r.builtins))
	out = append(out, r.builtins...)
	if r.store != nil {
		for _, rec := range r.store.List() {
			out = append(out, r.customDescriptor(rec))
		}
	}
	return out
}

// Resolve returns the descriptor for id, falling back deterministically to
// the first built-in. A preview must always have something to show, so this
// never returns nil.
func (r *Registry) Resolve(id string) *Descriptor {
	for _, d := range r.All() {
		if d.ID == id {
			return d
		}
	}
	if id != "" {
		r.logger.Debug("unknown template id, using default", zap.String("id", id))
	}
	return r.builtins[0]
}

func (r *Registry) customDescriptor(rec store.CustomTemplate) *Descriptor {
	return &Descriptor{
		ID:            rec.ID,
		Name:          rec.Name,
		IsCustom:      true,
		DefaultLayout: rec.Preferences.Layout,
		Render: func(ctx context.Context, resume model.ResumeData, colors *model.ColorScheme) (*engine.Node, error) {
			args := model.Normalize(resume)
			switch {
			case colors != nil:
				args.Colors = model.NormalizeColors(*colors)
			case resume.Colors == (model.ColorScheme{}):
				// fall back to the palette the template was generated with
				args.Colors = model.NormalizeColors(rec.Preferences.Colors)
			}
			return r.executor.Execute(ctx, rec.Code, args)
		},
	}
}
