package progress

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/verte-zerg/tuiear/internal/model"
)

// Storage keys.
const (
	ProgressKey = "@hearing_training_progress"
	CalendarKey = "@learning_data"
	ClearsKey   = "@clear_data"
)

// KV is a key-value store holding JSON documents.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Repository loads and saves progress documents.
type Repository struct {
	kv KV
}

// NewRepository wraps a key-value store.
func NewRepository(kv KV) *Repository {
	return &Repository{kv: kv}
}

// Load returns the stored progress, or the initial progress when absent.
func (r *Repository) Load(ctx context.Context) (model.UserProgress, error) {
	p := Initial()
	ok, err := r.get(ctx, ProgressKey, &p)
	if err != nil {
		return Initial(), err
	}
	if !ok {
		return Initial(), nil
	}
	return p, nil
}

// Save stores progress.
func (r *Repository) Save(ctx context.Context, p model.UserProgress) error {
	return r.set(ctx, ProgressKey, p)
}

// LoadCalendar returns the stored learned-day calendar.
func (r *Repository) LoadCalendar(ctx context.Context) (Calendar, error) {
	days := map[string]bool{}
	if _, err := r.get(ctx, CalendarKey, &days); err != nil {
		return NewCalendar(), err
	}
	return Calendar{days: days}, nil
}

// SaveCalendar stores the learned-day calendar.
func (r *Repository) SaveCalendar(ctx context.Context, c Calendar) error {
	return r.set(ctx, CalendarKey, c.days)
}

// LoadClears returns the stored per-mode milestones.
func (r *Repository) LoadClears(ctx context.Context) (Clears, error) {
	modes := map[model.TrainingMode]model.ModeClear{}
	if _, err := r.get(ctx, ClearsKey, &modes); err != nil {
		return NewClears(), err
	}
	return Clears{modes: modes}, nil
}

// SaveClears stores the per-mode milestones.
func (r *Repository) SaveClears(ctx context.Context, c Clears) error {
	if c.modes == nil {
		c = NewClears()
	}
	return r.set(ctx, ClearsKey, c.modes)
}

func (r *Repository) get(ctx context.Context, key string, target any) (bool, error) {
	data, ok, err := r.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok || len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (r *Repository) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := r.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
