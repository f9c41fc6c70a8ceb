// ABOUTME: Tests for the two-tier facet cache
// ABOUTME: Covers TTL expiry, cold tier promotion, invalidation, and sweeping
package cache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profitum/outreach/models"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(t *testing.T, hotSize int) (*Store, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	store, err := Open(Options{InMemory: true, HotSize: hotSize, Now: clock.Now})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store, clock
}

func TestSetAndGet(t *testing.T) {
	store, _ := newTestStore(t, 16)
	id := uuid.New()

	facet := models.TimingFacet{Action: models.ActionSendNow, TimingScore: 80}
	store.Set(id, models.FacetTiming, facet)

	payload, ok := store.Get(id, models.FacetTiming)
	require.True(t, ok)

	var got models.TimingFacet
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, models.ActionSendNow, got.Action)
	assert.Equal(t, 80, got.TimingScore)
}

func TestGetMissUnknownProspect(t *testing.T) {
	store, _ := newTestStore(t, 16)

	_, ok := store.Get(uuid.New(), models.FacetProfile)
	assert.False(t, ok)
}

func TestTTLExpiry(t *testing.T) {
	store, clock := newTestStore(t, 16)
	id := uuid.New()

	store.Set(id, models.FacetTiming, models.TimingFacet{TimingScore: 50})

	clock.Advance(time.Hour)
	_, ok := store.Get(id, models.FacetTiming)
	assert.True(t, ok, "timing facet should be readable at 1h")

	clock.Advance(24 * time.Hour)
	_, ok = store.Get(id, models.FacetTiming)
	assert.False(t, ok, "timing facet should expire after 24h")
}

func TestTTLPerFacetKind(t *testing.T) {
	store, clock := newTestStore(t, 16)
	id := uuid.New()

	store.Set(id, models.FacetTiming, models.TimingFacet{})
	store.Set(id, models.FacetOperational, models.OperationalFacet{DataCompleteness: 60})

	clock.Advance(48 * time.Hour)

	_, ok := store.Get(id, models.FacetTiming)
	assert.False(t, ok, "timing expires in a day")

	_, ok = store.Get(id, models.FacetOperational)
	assert.True(t, ok, "operational data lasts 30 days")
}

func TestFacetTimestampsIndependent(t *testing.T) {
	store, clock := newTestStore(t, 16)
	id := uuid.New()

	store.Set(id, models.FacetProfile, models.ProfileFacet{Tenure: "3 years"})

	clock.Advance(48 * time.Hour)
	store.Set(id, models.FacetTiming, models.TimingFacet{})

	// Profile was written 48h before timing; another 25h puts the profile
	// past its 72h limit without touching the fresher timing entry.
	clock.Advance(25 * time.Hour)

	_, ok := store.Get(id, models.FacetProfile)
	assert.False(t, ok)

	_, ok = store.Get(id, models.FacetTiming)
	assert.False(t, ok, "timing has only a 24h window")
}

func TestColdTierPromotion(t *testing.T) {
	store, _ := newTestStore(t, 1)
	id := uuid.New()

	store.Set(id, models.FacetProfile, models.ProfileFacet{Tenure: "5 years"})
	// Second write evicts the profile entry from the single-slot hot tier.
	store.Set(id, models.FacetPresence, models.PresenceFacet{})

	payload, ok := store.Get(id, models.FacetProfile)
	require.True(t, ok, "cold tier should serve evicted entries")

	var got models.ProfileFacet
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, "5 years", got.Tenure)
}

func TestFullSnapshotRoundTrip(t *testing.T) {
	store, _ := newTestStore(t, 16)
	id := uuid.New()

	snapshot := models.EnrichmentSnapshot{
		Version:    models.SnapshotVersion,
		EnrichedAt: time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC),
		Profile:    &models.ProfileFacet{Tenure: "2 years"},
	}
	store.Set(id, models.FacetFull, snapshot)

	payload, ok := store.Get(id, models.FacetFull)
	require.True(t, ok)

	var got models.EnrichmentSnapshot
	require.NoError(t, json.Unmarshal(payload, &got))
	require.NotNil(t, got.Profile)
	assert.Equal(t, "2 years", got.Profile.Tenure)
}

func TestInvalidate(t *testing.T) {
	store, _ := newTestStore(t, 16)
	id := uuid.New()
	other := uuid.New()

	store.Set(id, models.FacetProfile, models.ProfileFacet{})
	store.Set(id, models.FacetTiming, models.TimingFacet{})
	store.Set(other, models.FacetProfile, models.ProfileFacet{})

	store.Invalidate(id)

	_, ok := store.Get(id, models.FacetProfile)
	assert.False(t, ok)
	_, ok = store.Get(id, models.FacetTiming)
	assert.False(t, ok)

	_, ok = store.Get(other, models.FacetProfile)
	assert.True(t, ok, "other prospects keep their entries")
}

func TestInvalidateSingleKind(t *testing.T) {
	store, _ := newTestStore(t, 16)
	id := uuid.New()

	store.Set(id, models.FacetProfile, models.ProfileFacet{})
	store.Set(id, models.FacetTiming, models.TimingFacet{})

	store.Invalidate(id, models.FacetTiming)

	_, ok := store.Get(id, models.FacetTiming)
	assert.False(t, ok)
	_, ok = store.Get(id, models.FacetProfile)
	assert.True(t, ok)
}

func TestSweep(t *testing.T) {
	store, clock := newTestStore(t, 16)
	id := uuid.New()

	store.Set(id, models.FacetTiming, models.TimingFacet{})
	store.Set(id, models.FacetOperational, models.OperationalFacet{})

	clock.Advance(25 * time.Hour)

	evicted := store.Sweep()
	assert.Equal(t, 1, evicted, "only the timing entry has expired")

	assert.Equal(t, 0, store.Sweep(), "second sweep finds nothing")
}

func TestSetUnmarshalablePayloadDegrades(t *testing.T) {
	store, _ := newTestStore(t, 16)
	id := uuid.New()

	store.Set(id, models.FacetProfile, func() {})

	_, ok := store.Get(id, models.FacetProfile)
	assert.False(t, ok)
}
