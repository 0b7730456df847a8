package entity

import (
	"time"
)

// TrackedProduct is one distinct real-world product followed by an owner.
type TrackedProduct struct {
	ID               int64      `json:"id" gorm:"primaryKey"`
	OwnerID          string     `json:"owner_id" gorm:"not null;uniqueIndex:ux_tracked_products_owner_canonical;uniqueIndex:ux_tracked_products_owner_url"`
	URL              string     `json:"url" gorm:"not null;uniqueIndex:ux_tracked_products_owner_url"`
	CanonicalURL     string     `json:"canonical_url" gorm:"not null;uniqueIndex:ux_tracked_products_owner_canonical"`
	Marketplace      string     `json:"marketplace" gorm:"not null"`
	Title            string     `json:"title"`
	ImageURL         string     `json:"image_url"`
	Currency         string     `json:"currency" gorm:"not null"`
	IsActive         bool       `json:"is_active" gorm:"not null"`
	UpdateInterval   int        `json:"update_interval" gorm:"not null"`
	LastScrapedAt    *time.Time `json:"last_scraped_at"`
	NextRunAt        *time.Time `json:"next_run_at" gorm:"index"`
	LastAvailability *string    `json:"last_availability"`
	CreatedAt        time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (TrackedProduct) TableName() string {
	return "tracked_products"
}
