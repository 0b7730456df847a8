package entity

import (
	"time"

	"github.com/lib/pq"
)

// AIInsight is one persisted insight computation. Never updated after insert.
type AIInsight struct {
	ID            int64 `json:"id" gorm:"primaryKey"`
	ProductID     int64 `json:"product_id" gorm:"not null;index"`
	SnapshotCount int   `json:"snapshot_count"`
	WindowDays    int   `json:"window_days"`

	LastPrice    *float64 `json:"last_price"`
	MinPrice     *float64 `json:"min_price"`
	MaxPrice     *float64 `json:"max_price"`
	AvgPrice     *float64 `json:"avg_price"`
	Volatility   *float64 `json:"volatility"`
	Slope        *float64 `json:"slope"`
	PctChange7d  *float64 `json:"pct_change_7d" gorm:"column:pct_change_7d"`
	PctChange30d *float64 `json:"pct_change_30d" gorm:"column:pct_change_30d"`

	Trend               string         `json:"trend" gorm:"not null"`
	Anomaly             string         `json:"anomaly" gorm:"not null"`
	Recommendation      string         `json:"recommendation" gorm:"not null"`
	Confidence          float64        `json:"confidence"`
	SuggestedAlertPrice *float64       `json:"suggested_alert_price"`
	Explanation         string         `json:"explanation"`
	ExplanationFacts    pq.StringArray `json:"explanation_facts" gorm:"type:text[]"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}

func (AIInsight) TableName() string {
	return "ai_insights"
}
