package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"resume-studio/internal/model"

	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

// Preferences are the generation parameters a custom template was created
// with. Older records may omit sub-fields; color defaults are applied on load.
type Preferences struct {
	Style  string            `json:"style,omitempty"`
	Layout string            `json:"layout,omitempty"`
	Colors model.ColorScheme `json:"colors"`
}

// CustomTemplate is the persisted record behind a sandbox-backed template.
// Code is stored verbatim, post-repair; it is re-validated on every render.
type CustomTemplate struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Code        string      `json:"code"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// TemplateStore keeps the custom-template collection. Writes go to the
// in-memory copy first so a save-then-render sequence always reads post-write
// state; the database write is best-effort, like the rest of the persistence
// in this service.
type TemplateStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger

	mu  sync.RWMutex
	mem map[string]CustomTemplate
}

func NewTemplateStore(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) *TemplateStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &TemplateStore{pool: pool, logger: logger, mem: map[string]CustomTemplate{}}
	if pool == nil {
		logger.Warn("template store running memory-only, templates will not survive restarts")
		return s
	}
	if err := s.ensureTable(ctx); err != nil {
		logger.Warn("unable to ensure custom_templates table", zap.Error(err))
		s.pool = nil
		return s
	}
	if err := s.loadAll(ctx); err != nil {
		logger.Warn("unable to load stored templates", zap.Error(err))
	}
	return s
}

func (s *TemplateStore) ensureTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS custom_templates (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		code TEXT NOT NULL,
		preferences JSONB,
		created_at TIMESTAMPTZ NOT NULL
	)`)
	return err
}

func (s *TemplateStore) loadAll(ctx context.Context) error {
	rows, err := s.pool.Query(ctx, `SELECT id, name, code, preferences, created_at FROM custom_templates`)
	if err != nil {
		return err
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for rows.Next() {
		var rec CustomTemplate
		var prefsB []byte
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Code, &prefsB, &rec.CreatedAt); err != nil {
			s.logger.Warn("skipping unreadable template row", zap.Error(err))
			continue
		}
		if len(prefsB) > 0 {
			if err := json.Unmarshal(prefsB, &rec.Preferences); err != nil {
				s.logger.Warn("template preferences unreadable, using defaults",
					zap.String("id", rec.ID), zap.Error(err))
			}
		}
		rec.Preferences.Colors = rec.Preferences.Colors.WithDefaults()
		s.mem[rec.ID] = rec
	}
	return rows.Err()
}

// Save writes through memory synchronously and upserts the row best-effort.
func (s *TemplateStore) Save(ctx context.Context, rec CustomTemplate) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.Preferences.Colors = rec.Preferences.Colors.WithDefaults()

	s.mu.Lock()
	s.mem[rec.ID] = rec
	s.mu.Unlock()

	if s.pool == nil {
		return nil
	}
	prefsB, _ := json.Marshal(rec.Preferences)
	_, err := s.pool.Exec(ctx, `INSERT INTO custom_templates (id, name, code, preferences, created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, code = EXCLUDED.code, preferences = EXCLUDED.preferences`,
		rec.ID, rec.Name, rec.Code, prefsB, rec.CreatedAt)
	if err != nil {
		s.logger.Warn("failed to persist template (kept in memory)", zap.String("id", rec.ID), zap.Error(err))
	}
	return nil
}

func (s *TemplateStore) Get(id string) (CustomTemplate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.mem[id]
	return rec, ok
}

// List returns templates in creation order.
func (s *TemplateStore) List() []CustomTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CustomTemplate, 0, len(s.mem))
	for _, rec := range s.mem {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *TemplateStore) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	delete(s.mem, id)
	s.mu.Unlock()

	if s.pool == nil {
		return
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM custom_templates WHERE id = $1`, id); err != nil {
		s.logger.Warn("failed to delete stored template", zap.String("id", id), zap.Error(err))
	}
}
