package entity

import (
	"time"
)

const EventTypeTargetPrice = "target_price"

// PriceEvent is a standing target-price alert plus its delivery state.
type PriceEvent struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	ProductID    int64      `json:"product_id" gorm:"not null;index"`
	URL          string     `json:"url" gorm:"not null"`
	Marketplace  string     `json:"marketplace"`
	Title        string     `json:"title"`
	TargetPrice  *float64   `json:"target_price"`
	Triggered    bool       `json:"triggered" gorm:"not null"`
	TriggeredAt  *time.Time `json:"triggered_at"`
	Acknowledged bool       `json:"acknowledged" gorm:"not null"`
	AckSource    *string    `json:"ack_source"`
	EventType    string     `json:"event_type" gorm:"not null"`
	Message      *string    `json:"message"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

func (PriceEvent) TableName() string {
	return "price_events"
}
