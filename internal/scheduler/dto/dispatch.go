package dto

// FetchTask is the payload published on the product fetch stream.
type FetchTask struct {
	TrackedProductID int64  `json:"tracked_product_id"`
	URL              string `json:"url"`
	Marketplace      string `json:"marketplace"`
	OwnerID          string `json:"owner_id"`
}

// DispatchResult summarizes one poll of due products.
type DispatchResult struct {
	Due       int `json:"due"`
	Published int `json:"published"`
	Leased    int `json:"leased"`
	Failed    int `json:"failed"`
}
