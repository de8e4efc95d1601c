package store

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/shenikar/safety_agent_system/internal/models"
)

// IncidentStore — контракт append-only хранилища проверенных инцидентов.
// Операций обновления и удаления нет: исправление записи — это новый Append.
type IncidentStore interface {
	Append(ctx context.Context, inc models.Incident) error
	All(ctx context.Context) ([]models.Incident, error)
	Since(ctx context.Context, window time.Duration) ([]models.Incident, error)
	Between(ctx context.Context, from, to time.Time) ([]models.Incident, error)
	WithinRadius(ctx context.Context, p models.Point, radiusKm float64) ([]models.Incident, error)
	Matching(ctx context.Context, text string) ([]models.Incident, error)
}

// earthRadiusKm — радиус Земли в километрах.
const earthRadiusKm = 6371

// HaversineKm возвращает расстояние по дуге большого круга между точками, км.
func HaversineKm(a, b models.Point) float64 {
	dLat := deg2rad(b.Latitude() - a.Latitude())
	dLng := deg2rad(b.Longitude() - a.Longitude())

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(a.Latitude()))*math.Cos(deg2rad(b.Latitude()))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

func deg2rad(deg float64) float64 {
	return deg * (math.Pi / 180)
}

// MemoryStore — потокобезопасное хранилище инцидентов в памяти.
// Запись сериализуется мьютексом (single-writer), чтение работает
// по снимку. Все фильтры — линейный проход O(n) по полному набору:
// на этом масштабе индекс не нужен, и стоимость скана заложена в дизайн.
type MemoryStore struct {
	mu        sync.RWMutex
	incidents []models.Incident
}

// NewMemoryStore создает хранилище, опционально засеянное начальными данными.
func NewMemoryStore(seed ...models.Incident) *MemoryStore {
	s := &MemoryStore{}
	s.incidents = append(s.incidents, seed...)
	return s
}

// Append добавляет проверенный инцидент в конец журнала.
func (s *MemoryStore) Append(ctx context.Context, inc models.Incident) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incidents = append(s.incidents, inc)
	return nil
}

// All возвращает все инциденты в порядке добавления.
func (s *MemoryStore) All(ctx context.Context) ([]models.Incident, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(), nil
}

// Since возвращает инциденты не старше заданного окна.
func (s *MemoryStore) Since(ctx context.Context, window time.Duration) ([]models.Incident, error) {
	cutoff := time.Now().Add(-window)
	return s.filter(ctx, func(inc models.Incident) bool {
		return inc.Datetime.After(cutoff)
	})
}

// Between возвращает инциденты в интервале [from, to].
func (s *MemoryStore) Between(ctx context.Context, from, to time.Time) ([]models.Incident, error) {
	return s.filter(ctx, func(inc models.Incident) bool {
		return !inc.Datetime.Before(from) && !inc.Datetime.After(to)
	})
}

// WithinRadius возвращает инциденты в радиусе radiusKm от точки,
// по расстоянию большого круга (гаверсинус).
func (s *MemoryStore) WithinRadius(ctx context.Context, p models.Point, radiusKm float64) ([]models.Incident, error) {
	return s.filter(ctx, func(inc models.Incident) bool {
		return HaversineKm(p, inc.Coordinates) <= radiusKm
	})
}

// Matching возвращает инциденты, у которых ключевые слова, резюме или
// идентификатор содержат подстроку (без учета регистра).
func (s *MemoryStore) Matching(ctx context.Context, text string) ([]models.Incident, error) {
	needle := strings.ToLower(text)
	return s.filter(ctx, func(inc models.Incident) bool {
		if strings.Contains(strings.ToLower(inc.Summary), needle) ||
			strings.Contains(strings.ToLower(inc.NewsID), needle) {
			return true
		}
		for _, kw := range inc.Keywords {
			if strings.Contains(strings.ToLower(kw), needle) {
				return true
			}
		}
		return false
	})
}

func (s *MemoryStore) filter(ctx context.Context, keep func(models.Incident) bool) ([]models.Incident, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Incident, 0)
	for _, inc := range s.incidents {
		if keep(inc) {
			out = append(out, inc)
		}
	}
	return out, nil
}

// snapshot копирует журнал под уже взятой блокировкой чтения.
func (s *MemoryStore) snapshot() []models.Incident {
	out := make([]models.Incident, len(s.incidents))
	copy(out, s.incidents)
	return out
}
