package progress

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/verte-zerg/tuiear/internal/model"
)

type memKV struct {
	data map[string][]byte
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = value
	return nil
}

type brokenKV struct{}

var errBroken = errors.New("disk full")

func (brokenKV) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errBroken }
func (brokenKV) Set(context.Context, string, []byte) error         { return errBroken }

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(&memKV{})

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if !reflect.DeepEqual(loaded, Initial()) {
		t.Fatalf("expected initial progress, got %+v", loaded)
	}

	updated := AddPerfects(loaded, 12, 66.5, day("2025-09-16"))
	if err := repo.Save(ctx, updated); err != nil {
		t.Fatalf("save: %v", err)
	}
	reloaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reflect.DeepEqual(updated, reloaded) {
		t.Fatalf("round trip mismatch: %+v vs %+v", updated, reloaded)
	}
}

func TestRepositoryStoresOriginalFieldNames(t *testing.T) {
	kv := &memKV{}
	repo := NewRepository(kv)
	if err := repo.Save(context.Background(), model.UserProgress{TotalPerfects: 3, LastTrainingDate: "2025-09-16"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw := string(kv.data[ProgressKey])
	for _, field := range []string{`"totalPerfects":3`, `"lastTrainingDate":"2025-09-16"`} {
		if !strings.Contains(raw, field) {
			t.Fatalf("stored json %s missing %s", raw, field)
		}
	}
}

func TestRepositoryReportsStorageErrors(t *testing.T) {
	repo := NewRepository(brokenKV{})
	p, err := repo.Load(context.Background())
	if !errors.Is(err, errBroken) {
		t.Fatalf("expected wrapped storage error, got %v", err)
	}
	if !reflect.DeepEqual(p, Initial()) {
		t.Fatalf("expected usable initial progress on failure, got %+v", p)
	}
	if err := repo.Save(context.Background(), p); !errors.Is(err, errBroken) {
		t.Fatalf("expected wrapped save error, got %v", err)
	}
}

func TestRepositoryRejectsCorruptDocument(t *testing.T) {
	kv := &memKV{data: map[string][]byte{ProgressKey: []byte("{not json")}}
	if _, err := NewRepository(kv).Load(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestCalendarRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(&memKV{})
	cal, err := repo.LoadCalendar(ctx)
	if err != nil {
		t.Fatalf("load calendar: %v", err)
	}
	cal.Mark(day("2025-09-15"))
	if err := repo.SaveCalendar(ctx, cal); err != nil {
		t.Fatalf("save calendar: %v", err)
	}
	reloaded, err := repo.LoadCalendar(ctx)
	if err != nil {
		t.Fatalf("reload calendar: %v", err)
	}
	if !reloaded.Learned(day("2025-09-15")) || reloaded.Len() != 1 {
		t.Fatalf("calendar not persisted")
	}
}
