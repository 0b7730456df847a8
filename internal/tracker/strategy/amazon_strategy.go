package strategy

import (
	"context"
	"strings"

	"golang-price-tracker/internal/tracker/config"
	"golang-price-tracker/internal/tracker/dto"
	"golang-price-tracker/pkg/common"
	"golang-price-tracker/pkg/logger"

	"github.com/PuerkitoBio/goquery"
)

var amazonPriceSelectors = []string{
	"#corePrice_feature_div span.a-price > span.a-offscreen",
	"#corePriceDisplay_desktop_feature_div span.a-price > span.a-offscreen",
	"span.a-price > span.a-offscreen",
	"#priceblock_ourprice",
	"#priceblock_dealprice",
}

type amazonStrategy struct {
	fetcher *httpFetcher
	log     *logger.Logger
}

// NewAmazonStrategy creates the Amazon product page fetcher.
func NewAmazonStrategy(cfg config.Scraper, log *logger.Logger) FetchStrategy {
	return &amazonStrategy{fetcher: newHTTPFetcher(cfg, log), log: log}
}

func (s *amazonStrategy) Marketplace() string { return common.MarketplaceAmazon }

func (s *amazonStrategy) CanHandle(url string) bool {
	u := strings.ToLower(url)
	return strings.Contains(u, "amazon.") || strings.Contains(u, "amzn.")
}

func (s *amazonStrategy) Fetch(ctx context.Context, url string) (*dto.FetchedProduct, error) {
	doc, err := s.fetcher.document(ctx, url, nil, nil)
	if err != nil {
		return nil, err
	}
	product := parseAmazon(doc)
	s.log.Debug("Fetched amazon product", logger.StringField("url", url), logger.StringField("price_raw", product.PriceRaw), logger.StringField("availability", product.Availability))
	return product, nil
}

func parseAmazon(doc *goquery.Document) *dto.FetchedProduct {
	product := &dto.FetchedProduct{
		Title: strings.TrimSpace(doc.Find("#productTitle").First().Text()),
	}

	img := doc.Find("#landingImage").First()
	if src, ok := img.Attr("data-old-hires"); ok && src != "" {
		product.ImageURL = src
	} else if src, ok := img.Attr("src"); ok {
		product.ImageURL = src
	}

	for _, selector := range amazonPriceSelectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text != "" {
			product.PriceRaw = text
			break
		}
	}

	availability := strings.ToLower(strings.TrimSpace(doc.Find("#availability").Text()))
	switch {
	case strings.Contains(availability, "currently unavailable"),
		strings.Contains(availability, "out of stock"):
		product.Availability = common.AvailabilityOutOfStock
	case product.PriceRaw != "":
		product.Availability = common.AvailabilityInStock
	default:
		product.Availability = common.AvailabilityUnknown
	}

	return product
}
