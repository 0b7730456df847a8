package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-price-tracker/internal/entity"
	"golang-price-tracker/pkg/utils"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestValidateInterval(t *testing.T) {
	assert.NoError(t, ValidateInterval(1))
	assert.NoError(t, ValidateInterval(24))
	assert.ErrorIs(t, ValidateInterval(0), ErrIntervalOutOfRange)
	assert.ErrorIs(t, ValidateInterval(25), ErrIntervalOutOfRange)
}

func TestCheckIntervalChange(t *testing.T) {
	in30m := now.Add(30 * time.Minute)
	in2h := now.Add(2 * time.Hour)
	past := now.Add(-time.Hour)

	assert.ErrorIs(t, CheckIntervalChange(&in30m, now, 1), ErrImminentRun)
	assert.NoError(t, CheckIntervalChange(&in2h, now, 1))
	assert.NoError(t, CheckIntervalChange(&past, now, 24))
	assert.NoError(t, CheckIntervalChange(nil, now, 24))
	assert.ErrorIs(t, CheckIntervalChange(&in2h, now, 3), ErrImminentRun)
}

func TestCheckIntervalChangeNormalizesZones(t *testing.T) {
	cairo := time.FixedZone("EET", 2*60*60)
	next := now.Add(30 * time.Minute).In(cairo)
	assert.ErrorIs(t, CheckIntervalChange(&next, now, 1), ErrImminentRun)
}

func TestMarkScraped(t *testing.T) {
	p := &entity.TrackedProduct{}
	MarkScraped(p, now)

	assert.Equal(t, 24, p.UpdateInterval)
	require.NotNil(t, p.NextRunAt)
	assert.Equal(t, now.Add(24*time.Hour), *p.NextRunAt)
	assert.Equal(t, now, *p.LastScrapedAt)
}

func TestApplyInterval(t *testing.T) {
	last := now.Add(-30 * time.Minute)
	p := &entity.TrackedProduct{UpdateInterval: 24, LastScrapedAt: &last}

	ApplyInterval(p, 6, now)
	assert.Equal(t, 6, p.UpdateInterval)
	assert.Equal(t, last.Add(6*time.Hour), *p.NextRunAt)

	fresh := &entity.TrackedProduct{}
	ApplyInterval(fresh, 2, now)
	assert.Equal(t, now.Add(2*time.Hour), *fresh.NextRunAt)
}

func TestIsDue(t *testing.T) {
	assert.True(t, IsDue(&entity.TrackedProduct{IsActive: true, NextRunAt: utils.ToPointer(now)}, now))
	assert.True(t, IsDue(&entity.TrackedProduct{IsActive: true}, now))
	assert.False(t, IsDue(&entity.TrackedProduct{IsActive: true, NextRunAt: utils.ToPointer(now.Add(time.Minute))}, now))
	assert.False(t, IsDue(&entity.TrackedProduct{IsActive: false, NextRunAt: utils.ToPointer(now)}, now))
}
