// Package scheduling holds the re-fetch cadence rules for tracked products.
package scheduling

import (
	"errors"
	"fmt"
	"time"

	"golang-price-tracker/internal/entity"
	"golang-price-tracker/pkg/common"
	"golang-price-tracker/pkg/utils"
)

var (
	ErrIntervalOutOfRange = fmt.Errorf("update interval must be between %d and %d hours",
		common.MinUpdateIntervalHours, common.MaxUpdateIntervalHours)
	// ErrImminentRun rejects an interval change that would skip an already scheduled near-term fetch.
	ErrImminentRun = errors.New("next run is sooner than the requested interval")
)

// ValidateInterval checks hours against the allowed range.
func ValidateInterval(hours int) error {
	if hours < common.MinUpdateIntervalHours || hours > common.MaxUpdateIntervalHours {
		return ErrIntervalOutOfRange
	}
	return nil
}

// NextRunAt is last + interval hours, in UTC.
func NextRunAt(last time.Time, intervalHours int) time.Time {
	return utils.EnsureUTC(last).Add(time.Duration(intervalHours) * time.Hour)
}

// CheckIntervalChange rejects newHours when the pending run is in the future but closer than
// newHours from now.
func CheckIntervalChange(nextRun *time.Time, now time.Time, newHours int) error {
	if err := ValidateInterval(newHours); err != nil {
		return err
	}
	if nextRun == nil {
		return nil
	}
	until := utils.EnsureUTC(*nextRun).Sub(utils.EnsureUTC(now))
	if until > 0 && until < time.Duration(newHours)*time.Hour {
		return ErrImminentRun
	}
	return nil
}

// MarkScraped records a scrape at now and reschedules the product.
func MarkScraped(p *entity.TrackedProduct, now time.Time) {
	if p.UpdateInterval == 0 {
		p.UpdateInterval = common.DefaultUpdateIntervalHours
	}
	now = utils.EnsureUTC(now)
	next := NextRunAt(now, p.UpdateInterval)
	p.LastScrapedAt = &now
	p.NextRunAt = &next
}

// ApplyInterval sets a new interval and recomputes next_run_at from the last scrape, or from now when
// the product was never scraped.
func ApplyInterval(p *entity.TrackedProduct, hours int, now time.Time) {
	p.UpdateInterval = hours
	base := utils.EnsureUTC(now)
	if p.LastScrapedAt != nil {
		base = utils.EnsureUTC(*p.LastScrapedAt)
	}
	next := NextRunAt(base, hours)
	p.NextRunAt = &next
}

// IsDue reports whether an active product should be fetched at now.
func IsDue(p *entity.TrackedProduct, now time.Time) bool {
	if !p.IsActive {
		return false
	}
	return p.NextRunAt == nil || !utils.EnsureUTC(*p.NextRunAt).After(utils.EnsureUTC(now))
}
