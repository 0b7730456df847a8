package strategy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-price-tracker/internal/tracker/config"
	"golang-price-tracker/pkg/common"
	"golang-price-tracker/pkg/logger"
)

var testScraper = config.Scraper{RequestTimeout: 5 * time.Second, MaxRequestPerMinute: 6000}

const amazonPage = `<html><body>
<span id="productTitle">  Apple iPhone 15 (128 GB) - Black  </span>
<img id="landingImage" data-old-hires="https://m.media-amazon.com/images/I/71.jpg" src="small.jpg">
<div id="corePrice_feature_div"><span class="a-price"><span class="a-offscreen">EGP 45,999.00</span></span></div>
<div id="availability"><span>In Stock</span></div>
</body></html>`

const amazonUnavailablePage = `<html><body>
<span id="productTitle">Old phone</span>
<div id="availability"><span>Currently unavailable.</span></div>
</body></html>`

const noonPage = `<html><head>
<meta property="og:image" content="https://f.nooncdn.com/p/v1.jpg">
<meta property="product:price:amount" content="1299.00">
<meta property="product:price:currency" content="SAR">
</head><body><h1>Galaxy S24 Ultra</h1></body></html>`

const noonScriptPage = `<html><body><h1>Galaxy Buds</h1>
<script>window.__data = {"sku":"N1","price":"EGP 3,499"};</script>
</body></html>`

func serve(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAmazonFetch(t *testing.T) {
	srv := serve(t, amazonPage, http.StatusOK)
	s := NewAmazonStrategy(testScraper, logger.NewNop())

	p, err := s.Fetch(context.Background(), srv.URL+"/dp/B0CHX1W1XY")
	require.NoError(t, err)
	assert.Equal(t, "Apple iPhone 15 (128 GB) - Black", p.Title)
	assert.Equal(t, "EGP 45,999.00", p.PriceRaw)
	assert.Equal(t, "https://m.media-amazon.com/images/I/71.jpg", p.ImageURL)
	assert.Equal(t, common.AvailabilityInStock, p.Availability)
}

func TestAmazonFetchUnavailable(t *testing.T) {
	srv := serve(t, amazonUnavailablePage, http.StatusOK)
	p, err := NewAmazonStrategy(testScraper, logger.NewNop()).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, common.AvailabilityOutOfStock, p.Availability)
	assert.Empty(t, p.PriceRaw)
}

func TestFetchErrorStatus(t *testing.T) {
	srv := serve(t, "blocked", http.StatusServiceUnavailable)
	_, err := NewAmazonStrategy(testScraper, logger.NewNop()).Fetch(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "503")
}

func TestNoonFetchMeta(t *testing.T) {
	var gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("NNLocale"); err == nil {
			gotCookie = c.Value
		}
		_, _ = w.Write([]byte(noonPage))
	}))
	defer srv.Close()

	p, err := NewNoonStrategy(testScraper, logger.NewNop()).Fetch(context.Background(), srv.URL+"/saudi-en/galaxy/N1/p/")
	require.NoError(t, err)
	assert.Equal(t, "Galaxy S24 Ultra", p.Title)
	assert.Equal(t, "SAR 1299.00", p.PriceRaw)
	assert.Equal(t, "https://f.nooncdn.com/p/v1.jpg", p.ImageURL)
	assert.Equal(t, common.AvailabilityInStock, p.Availability)
	assert.Equal(t, "egypt-en", gotCookie, "locale is only read from noon.com URLs")
}

func TestNoonFetchScriptFallback(t *testing.T) {
	srv := serve(t, noonScriptPage, http.StatusOK)
	p, err := NewNoonStrategy(testScraper, logger.NewNop()).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "EGP 3,499", p.PriceRaw)
}

func TestRegistryResolve(t *testing.T) {
	amazon := NewAmazonStrategy(testScraper, logger.NewNop())
	noon := NewNoonStrategy(testScraper, logger.NewNop())
	r := NewRegistry(amazon, noon)

	s, err := r.Resolve("NOON", "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, common.MarketplaceNoon, s.Marketplace())

	s, err = r.Resolve("", "https://www.amazon.sa/dp/B08N5WRWNW")
	require.NoError(t, err)
	assert.Equal(t, common.MarketplaceAmazon, s.Marketplace())

	_, err = r.Resolve("jumia", "https://jumia.com.eg/x")
	assert.Error(t, err)
}
