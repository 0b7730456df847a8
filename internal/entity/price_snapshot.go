package entity

import (
	"time"

	"gorm.io/datatypes"
)

// PriceSnapshot is one immutable price/availability observation.
type PriceSnapshot struct {
	ID               int64          `json:"id" gorm:"primaryKey"`
	TrackedProductID int64          `json:"tracked_product_id" gorm:"not null;index"`
	Price            *float64       `json:"price" gorm:"type:numeric(12,2)"`
	Currency         string         `json:"currency" gorm:"not null"`
	RawPriceText     *string        `json:"raw_price_text"`
	Availability     string         `json:"availability"`
	Source           string         `json:"source" gorm:"not null"`
	RawPayload       datatypes.JSON `json:"raw_payload,omitempty" gorm:"type:jsonb"`
	FetchedAt        time.Time      `json:"fetched_at" gorm:"not null"`
}

func (PriceSnapshot) TableName() string {
	return "price_snapshots"
}
