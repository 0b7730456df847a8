package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-price-tracker/internal/tracker/insight"
)

func ingestDailyPrices(t *testing.T, f *fixture, prices ...string) int64 {
	t.Helper()
	var id int64
	for i, p := range prices {
		if i > 0 {
			f.clock.Advance(24 * time.Hour)
		}
		res, err := f.ingest.Ingest(context.Background(), observation(amazonURL, p))
		require.NoError(t, err)
		id = res.TrackedProductID
	}
	return id
}

func TestInsightComputeAndStore(t *testing.T) {
	f := newFixture()
	id := ingestDailyPrices(t, f, "EGP 100", "EGP 100", "EGP 100", "EGP 100", "EGP 50")

	rec, err := f.insights.ComputeAndStore(context.Background(), "user-1", id)
	require.NoError(t, err)

	assert.Equal(t, 5, rec.SnapshotCount)
	assert.Equal(t, 30, rec.WindowDays)
	assert.Equal(t, insight.TrendDown, rec.Trend)
	assert.Equal(t, 50.0, *rec.MinPrice)
	assert.Equal(t, 100.0, *rec.MaxPrice)
	assert.InDelta(t, 90.0, *rec.AvgPrice, 1e-9)
	assert.Equal(t, 50.5, *rec.SuggestedAlertPrice)
	assert.NotEmpty(t, rec.ExplanationFacts)
	assert.Equal(t, f.clock.Now(), rec.CreatedAt)

	latest, err := f.insights.Latest(context.Background(), "user-1", id)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, latest.ID)
}

func TestInsightWindowExcludesOldSnapshots(t *testing.T) {
	f := newFixture()
	id := ingestDailyPrices(t, f, "EGP 500")
	f.clock.Advance(40 * 24 * time.Hour)
	ingestDailyPrices(t, f, "EGP 100")

	result, err := f.insights.Compute(context.Background(), "user-1", id)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SnapshotCount)
	assert.Equal(t, 100.0, *result.MaxPrice)
}

func TestInsightComputeIsRepeatable(t *testing.T) {
	f := newFixture()
	id := ingestDailyPrices(t, f, "EGP 120", "EGP 118.5", "EGP 121", "EGP 99")

	first, err := f.insights.Compute(context.Background(), "user-1", id)
	require.NoError(t, err)
	second, err := f.insights.Compute(context.Background(), "user-1", id)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestInsightUnknownProduct(t *testing.T) {
	f := newFixture()

	_, err := f.insights.ComputeAndStore(context.Background(), "user-1", 404)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.insights.Latest(context.Background(), "user-1", 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsightOtherOwnerIsNotFound(t *testing.T) {
	f := newFixture()
	id := ingestDailyPrices(t, f, "EGP 100")

	_, err := f.insights.Compute(context.Background(), "user-2", id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsightEmptyWindowPlaceholder(t *testing.T) {
	f := newFixture()
	obs := observation(amazonURL, "")
	obs.Availability = "out_of_stock"
	res, err := f.ingest.Ingest(context.Background(), obs)
	require.NoError(t, err)

	rec, err := f.insights.ComputeAndStore(context.Background(), "user-1", res.TrackedProductID)
	require.NoError(t, err)
	assert.Equal(t, insight.TrendUnknown, rec.Trend)
	assert.Equal(t, insight.RecommendationWatch, rec.Recommendation)
	assert.Equal(t, 0.2, rec.Confidence)
}

func TestInsightRefreshAllIsolatesFailures(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := ingestDailyPrices(t, f, "EGP 100")
	obs := observation("https://www.noon.com/egypt-en/galaxy/N70035211V/p/", "EGP 200")
	obs.Marketplace = "noon"
	b, err := f.ingest.Ingest(ctx, obs)
	require.NoError(t, err)
	require.NoError(t, f.schedule.Deactivate(ctx, "user-1", b.TrackedProductID))

	before := len(f.store.InsightList())
	result := f.insights.RefreshAll(ctx)

	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Succeeded)
	assert.Empty(t, result.Failed)
	assert.Len(t, f.store.InsightList(), before+1)

	latest, err := f.insights.Latest(ctx, "", a)
	require.NoError(t, err)
	assert.Equal(t, a, latest.ProductID)
}
