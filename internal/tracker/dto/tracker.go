package dto

// Observation is one price reading reported by the browser extension or the fetch worker.
type Observation struct {
	URL          string `json:"url" validate:"required,url"`
	Marketplace  string `json:"marketplace" validate:"required"`
	Title        string `json:"title,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	PriceRaw     string `json:"price_raw,omitempty"`
	Availability string `json:"availability,omitempty"`
	Source       string `json:"source,omitempty" validate:"omitempty,oneof=extension monitor"`
	OwnerID      string `json:"-"`
}

// InsightSummary is the short insight attached to an ingest result.
type InsightSummary struct {
	Recommendation string `json:"recommendation"`
	Summary        string `json:"summary"`
}

// IngestResult describes what an ingestion wrote.
type IngestResult struct {
	TrackedProductID     int64           `json:"tracked_product_id"`
	SnapshotID           int64           `json:"snapshot_id"`
	URL                  string          `json:"url"`
	Title                string          `json:"title"`
	Price                *float64        `json:"price"`
	Currency             string          `json:"currency"`
	Availability         string          `json:"availability"`
	AvailabilityChanged  bool            `json:"availability_changed"`
	PreviousAvailability *string         `json:"previous_availability"`
	NextRunAt            string          `json:"next_run_at"`
	Created              bool            `json:"created"`
	Insight              *InsightSummary `json:"insight,omitempty"`
}

// UpdateIntervalRequest changes how often a product is re-fetched.
type UpdateIntervalRequest struct {
	Hours int `json:"hours" validate:"required,min=1,max=24"`
}

// ProductScheduleResponse is the scheduling state after an interval change.
type ProductScheduleResponse struct {
	TrackedProductID int64   `json:"tracked_product_id"`
	UpdateInterval   int     `json:"update_interval"`
	LastScrapedAt    *string `json:"last_scraped_at"`
	NextRunAt        string  `json:"next_run_at"`
}

// CreateAlertRequest arms a target-price alert.
type CreateAlertRequest struct {
	TargetPrice float64 `json:"target_price" validate:"required,gt=0"`
	Message     string  `json:"message,omitempty"`
}

// AckAlertRequest acknowledges a triggered alert.
type AckAlertRequest struct {
	Source string `json:"source,omitempty"`
}

// RefreshResult summarizes a batch insight recomputation.
type RefreshResult struct {
	Total     int     `json:"total"`
	Succeeded int     `json:"succeeded"`
	Failed    []int64 `json:"failed"`
}

// FetchTask is the payload of the product fetch stream.
type FetchTask struct {
	TrackedProductID int64  `json:"tracked_product_id"`
	URL              string `json:"url"`
	Marketplace      string `json:"marketplace"`
	OwnerID          string `json:"owner_id"`
}

// FetchedProduct is what a marketplace strategy extracted from a product page.
type FetchedProduct struct {
	Title        string
	ImageURL     string
	PriceRaw     string
	Availability string
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
