package strategy

import (
	"context"
	"fmt"
	"strings"

	"golang-price-tracker/internal/tracker/dto"
)

// FetchStrategy fetches and parses a product page of one marketplace.
type FetchStrategy interface {
	Marketplace() string
	CanHandle(url string) bool
	Fetch(ctx context.Context, url string) (*dto.FetchedProduct, error)
}

// Registry selects the strategy for a fetch task.
type Registry struct {
	strategies []FetchStrategy
}

func NewRegistry(strategies ...FetchStrategy) *Registry {
	return &Registry{strategies: strategies}
}

// Resolve prefers the strategy registered for marketplace and falls back to URL matching.
func (r *Registry) Resolve(marketplace, url string) (FetchStrategy, error) {
	marketplace = strings.ToLower(marketplace)
	for _, s := range r.strategies {
		if s.Marketplace() == marketplace {
			return s, nil
		}
	}
	for _, s := range r.strategies {
		if s.CanHandle(url) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("no fetch strategy for marketplace %q (%s)", marketplace, url)
}
