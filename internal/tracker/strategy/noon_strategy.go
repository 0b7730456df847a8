package strategy

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"golang-price-tracker/internal/tracker/config"
	"golang-price-tracker/internal/tracker/dto"
	"golang-price-tracker/pkg/common"
	"golang-price-tracker/pkg/logger"

	"github.com/PuerkitoBio/goquery"
)

var (
	noonScriptPrice = regexp.MustCompile(`"price"\s*:\s*"([^"]+)"`)
	noonLocale      = regexp.MustCompile(`noon\.com/([a-z]+-[a-z]{2})/`)
)

var noonCountries = map[string]string{
	"egypt-en": "EG",
	"saudi-en": "SA",
	"uae-en":   "AE",
}

type noonStrategy struct {
	fetcher *httpFetcher
	log     *logger.Logger
}

// NewNoonStrategy creates the Noon product page fetcher.
func NewNoonStrategy(cfg config.Scraper, log *logger.Logger) FetchStrategy {
	return &noonStrategy{fetcher: newHTTPFetcher(cfg, log), log: log}
}

func (s *noonStrategy) Marketplace() string { return common.MarketplaceNoon }

func (s *noonStrategy) CanHandle(url string) bool {
	return strings.Contains(strings.ToLower(url), "noon.com")
}

func (s *noonStrategy) Fetch(ctx context.Context, url string) (*dto.FetchedProduct, error) {
	locale := "egypt-en"
	if m := noonLocale.FindStringSubmatch(url); len(m) == 2 {
		locale = m[1]
	}
	country := noonCountries[locale]
	if country == "" {
		country = "EG"
	}

	headers := map[string]string{"Referer": "https://www.noon.com/" + locale + "/"}
	cookies := []*http.Cookie{
		{Name: "NNCountry", Value: country},
		{Name: "NNLocale", Value: locale},
	}

	doc, err := s.fetcher.document(ctx, url, headers, cookies)
	if err != nil {
		return nil, err
	}
	product := parseNoon(doc)
	s.log.Debug("Fetched noon product", logger.StringField("url", url), logger.StringField("locale", locale), logger.StringField("price_raw", product.PriceRaw))
	return product, nil
}

func parseNoon(doc *goquery.Document) *dto.FetchedProduct {
	product := &dto.FetchedProduct{
		Title: strings.TrimSpace(doc.Find("h1").First().Text()),
	}
	if img, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		product.ImageURL = img
	}

	product.PriceRaw = strings.TrimSpace(doc.Find(`[data-qa="product-price"]`).First().Text())
	if product.PriceRaw == "" {
		if amount, ok := doc.Find(`meta[property="product:price:amount"]`).Attr("content"); ok && amount != "" {
			product.PriceRaw = amount
			if currency, ok := doc.Find(`meta[property="product:price:currency"]`).Attr("content"); ok && currency != "" {
				product.PriceRaw = currency + " " + amount
			}
		}
	}
	if product.PriceRaw == "" {
		doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := sel.Text()
			if !strings.Contains(strings.ToLower(text), "price") {
				return true
			}
			if m := noonScriptPrice.FindStringSubmatch(text); len(m) == 2 {
				product.PriceRaw = m[1]
				return false
			}
			return true
		})
	}

	availability, _ := doc.Find(`meta[property="product:availability"]`).Attr("content")
	availability = strings.ToLower(availability)
	switch {
	case strings.Contains(availability, "out of stock"), strings.Contains(availability, "outofstock"):
		product.Availability = common.AvailabilityOutOfStock
	case product.PriceRaw != "":
		product.Availability = common.AvailabilityInStock
	default:
		product.Availability = common.AvailabilityUnknown
	}

	return product
}
