package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang-price-tracker/internal/tracker/config"
	"golang-price-tracker/internal/tracker/dto"
	"golang-price-tracker/internal/tracker/strategy"
	"golang-price-tracker/pkg/common"
	"golang-price-tracker/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStrategy struct {
	marketplace string
	product     *dto.FetchedProduct
	err         error
	calls       int
}

func (f *fakeStrategy) Marketplace() string       { return f.marketplace }
func (f *fakeStrategy) CanHandle(url string) bool { return false }
func (f *fakeStrategy) Fetch(ctx context.Context, url string) (*dto.FetchedProduct, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.product, nil
}

func newFetchFixture(t *testing.T, fetcher *fakeStrategy) (*fixture, FetchService, dto.FetchTask) {
	t.Helper()
	f := newFixture()

	res, err := f.ingest.Ingest(context.Background(), dto.Observation{
		URL:         "https://www.amazon.eg/dp/B0ABCDEF12",
		Marketplace: common.MarketplaceAmazon,
		PriceRaw:    "1,000 EGP",
		OwnerID:     "owner-1",
	})
	require.NoError(t, err)

	cfg := &config.Config{Scraper: config.Scraper{MaxAttempts: 3, RetryBaseDelay: time.Millisecond}}
	svc := NewFetchService(cfg, logger.NewNop(), nil, strategy.NewRegistry(fetcher), f.ingest, f.notifier)
	task := dto.FetchTask{
		TrackedProductID: res.TrackedProductID,
		URL:              res.URL,
		Marketplace:      common.MarketplaceAmazon,
		OwnerID:          "owner-1",
	}
	return f, svc, task
}

func TestFetch_IngestsScrapedObservation(t *testing.T) {
	fetcher := &fakeStrategy{marketplace: common.MarketplaceAmazon, product: &dto.FetchedProduct{
		Title:        "Headphones",
		PriceRaw:     "899.50 EGP",
		Availability: common.AvailabilityInStock,
	}}
	f, svc, task := newFetchFixture(t, fetcher)
	f.clock.Advance(time.Hour)

	require.NoError(t, svc.Fetch(context.Background(), task))

	snapshots := f.store.SnapshotList()
	require.Len(t, snapshots, 2)
	last := snapshots[1]
	assert.Equal(t, common.SourceBackgroundJob, last.Source)
	require.NotNil(t, last.Price)
	assert.InDelta(t, 899.50, *last.Price, 1e-9)
	assert.Equal(t, 1, fetcher.calls)

	products := f.store.ProductList()
	require.Len(t, products, 1)
	assert.Equal(t, "Headphones", products[0].Title)
}

func TestFetch_ExhaustedRetriesRecordUnknown(t *testing.T) {
	fetcher := &fakeStrategy{marketplace: common.MarketplaceAmazon, err: errors.New("blocked")}
	f, svc, task := newFetchFixture(t, fetcher)
	f.clock.Advance(time.Hour)

	require.NoError(t, svc.Fetch(context.Background(), task))

	assert.Equal(t, 3, fetcher.calls)
	snapshots := f.store.SnapshotList()
	require.Len(t, snapshots, 2)
	assert.Equal(t, common.AvailabilityUnknown, snapshots[1].Availability)
	assert.Nil(t, snapshots[1].Price)

	products := f.store.ProductList()
	require.NotNil(t, products[0].NextRunAt)
	assert.Equal(t, f.clock.Now().Add(24*time.Hour), *products[0].NextRunAt)
}

func TestFetch_InStockWithoutPriceBecomesUnknown(t *testing.T) {
	fetcher := &fakeStrategy{marketplace: common.MarketplaceAmazon, product: &dto.FetchedProduct{
		Title:        "Headphones",
		Availability: common.AvailabilityInStock,
	}}
	f, svc, task := newFetchFixture(t, fetcher)

	require.NoError(t, svc.Fetch(context.Background(), task))

	snapshots := f.store.SnapshotList()
	require.Len(t, snapshots, 2)
	assert.Equal(t, common.AvailabilityUnknown, snapshots[1].Availability)
}

func TestFetch_UnknownMarketplaceStillReschedules(t *testing.T) {
	fetcher := &fakeStrategy{marketplace: common.MarketplaceNoon}
	f, svc, task := newFetchFixture(t, fetcher)
	task.Marketplace = "jumia"

	require.NoError(t, svc.Fetch(context.Background(), task))

	assert.Zero(t, fetcher.calls)
	snapshots := f.store.SnapshotList()
	require.Len(t, snapshots, 2)
	assert.Equal(t, common.AvailabilityUnknown, snapshots[1].Availability)
}

func TestDecodeFetchTask(t *testing.T) {
	task, err := decodeFetchTask(redis.XMessage{ID: "1-0", Values: map[string]interface{}{
		"payload": `{"tracked_product_id":7,"url":"https://www.noon.com/egypt-en/x/N123/p","marketplace":"noon","owner_id":"o"}`,
	}})
	require.NoError(t, err)
	assert.Equal(t, int64(7), task.TrackedProductID)
	assert.Equal(t, "noon", task.Marketplace)

	_, err = decodeFetchTask(redis.XMessage{ID: "2-0", Values: map[string]interface{}{}})
	assert.Error(t, err)

	_, err = decodeFetchTask(redis.XMessage{ID: "3-0", Values: map[string]interface{}{"payload": `{"tracked_product_id":7}`}})
	assert.Error(t, err)
}
