package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateIntervalRejectsImminentRun(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := ingestDailyPrices(t, f, "EGP 100")

	// next run is at base+24h; move to 30 minutes before it
	f.clock.Advance(23*time.Hour + 30*time.Minute)
	_, err := f.schedule.UpdateInterval(ctx, "user-1", id, 1)
	assert.ErrorIs(t, err, ErrIntervalConflict)
	assert.Equal(t, 24, f.store.ProductList()[0].UpdateInterval)
}

func TestUpdateIntervalRecomputesNextRun(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := ingestDailyPrices(t, f, "EGP 100")

	// next run two hours away
	f.clock.Advance(22 * time.Hour)
	p, err := f.schedule.UpdateInterval(ctx, "user-1", id, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, p.UpdateInterval)
	assert.Equal(t, baseTime.Add(time.Hour), *p.NextRunAt)
	assert.Equal(t, baseTime.Add(time.Hour), *f.store.ProductList()[0].NextRunAt)
}

func TestUpdateIntervalValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := ingestDailyPrices(t, f, "EGP 100")

	_, err := f.schedule.UpdateInterval(ctx, "user-1", id, 0)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = f.schedule.UpdateInterval(ctx, "user-1", id, 25)
	assert.True(t, errors.As(err, &verr))

	_, err = f.schedule.UpdateInterval(ctx, "user-1", 777, 6)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeactivate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := ingestDailyPrices(t, f, "EGP 100")

	assert.ErrorIs(t, f.schedule.Deactivate(ctx, "user-2", id), ErrNotFound)
	require.NoError(t, f.schedule.Deactivate(ctx, "user-1", id))
	assert.False(t, f.store.ProductList()[0].IsActive)
	assert.Len(t, f.store.SnapshotList(), 1, "snapshots are kept")
}
