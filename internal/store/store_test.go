package store

import (
	"context"
	"testing"
	"time"

	"github.com/shenikar/safety_agent_system/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedIncident(id string, at time.Time, p models.Point) models.Incident {
	return models.Incident{
		Datetime:    at,
		Coordinates: p,
		Type:        models.CrimeProperty,
		NewsID:      id,
		Severity:    3,
		Keywords:    []string{"theft", "Sandton"},
		Summary:     "Vehicle break-in at shopping centre parking.",
	}
}

func TestMemoryStore_AppendPreservesOrder(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	now := time.Now()

	require.NoError(t, st.Append(ctx, seedIncident("a", now, models.NewPoint(28.0, -26.0))))
	require.NoError(t, st.Append(ctx, seedIncident("b", now, models.NewPoint(28.0, -26.0))))
	require.NoError(t, st.Append(ctx, seedIncident("c", now, models.NewPoint(28.0, -26.0))))

	all, err := st.All(ctx)

	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].NewsID)
	assert.Equal(t, "b", all[1].NewsID)
	assert.Equal(t, "c", all[2].NewsID)
}

func TestMemoryStore_SnapshotIsolated(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	st := NewMemoryStore(seedIncident("a", now, models.NewPoint(28.0, -26.0)))

	all, err := st.All(ctx)
	require.NoError(t, err)

	// Изменение снимка не трогает хранилище.
	all[0].NewsID = "mutated"

	again, err := st.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].NewsID)
}

func TestMemoryStore_Since(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	p := models.NewPoint(28.0, -26.0)
	st := NewMemoryStore(
		seedIncident("old", now.Add(-72*time.Hour), p),
		seedIncident("fresh", now.Add(-1*time.Hour), p),
	)

	got, err := st.Since(ctx, 24*time.Hour)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].NewsID)
}

func TestMemoryStore_Between(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	p := models.NewPoint(28.0, -26.0)
	st := NewMemoryStore(
		seedIncident("before", now.Add(-10*time.Hour), p),
		seedIncident("inside", now.Add(-5*time.Hour), p),
		seedIncident("after", now.Add(-1*time.Hour), p),
	)

	got, err := st.Between(ctx, now.Add(-6*time.Hour), now.Add(-2*time.Hour))

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "inside", got[0].NewsID)
}

func TestMemoryStore_WithinRadius(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	sandton := models.NewPoint(28.0473, -26.1076)
	capetown := models.NewPoint(18.4241, -33.9249)
	st := NewMemoryStore(
		seedIncident("near", now, sandton),
		seedIncident("far", now, capetown),
	)

	got, err := st.WithinRadius(ctx, models.NewPoint(28.0473, -26.2041), 15)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "near", got[0].NewsID)
}

func TestMemoryStore_Matching(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	p := models.NewPoint(28.0, -26.0)
	other := seedIncident("capetown-001", now, p)
	other.Keywords = []string{"protest"}
	other.Summary = "March through the city centre."
	st := NewMemoryStore(seedIncident("sandton-001", now, p), other)

	got, err := st.Matching(ctx, "SANDTON")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sandton-001", got[0].NewsID)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	st := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := st.All(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestHaversineKm(t *testing.T) {
	jhb := models.NewPoint(28.0473, -26.2041)
	pta := models.NewPoint(28.1881, -25.7461)

	// Йоханнесбург — Претория, порядка 53 км.
	d := HaversineKm(jhb, pta)

	assert.InDelta(t, 53, d, 3)
	assert.Zero(t, HaversineKm(jhb, jhb))
}
