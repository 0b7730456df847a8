package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-price-tracker/internal/entity"
	"golang-price-tracker/pkg/utils"
)

func TestFormatTriggeredAlertsForTelegram(t *testing.T) {
	assert.Nil(t, FormatTriggeredAlertsForTelegram(nil))

	msgs := FormatTriggeredAlertsForTelegram([]entity.PriceEvent{{
		URL:         "https://www.amazon.eg/dp/B0CHX1W1XY",
		Title:       "Phone_case *new*",
		Marketplace: "amazon",
		TargetPrice: utils.ToPointer(100.0),
		Message:     utils.ToPointer("Price dropped to 99.00 EGP"),
	}})

	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Phone\\_case \\*new\\*")
	assert.Contains(t, msgs[0], "*Target:* 100.00")
	assert.Contains(t, msgs[0], "Price dropped to 99.00 EGP")
}

func TestFormatTriggeredAlertsSplitsLongBatches(t *testing.T) {
	events := make([]entity.PriceEvent, 0, 200)
	for i := 0; i < 200; i++ {
		events = append(events, entity.PriceEvent{
			URL:   "https://www.noon.com/egypt-en/item/N" + strings.Repeat("1", 20) + "/p",
			Title: strings.Repeat("x", 60),
		})
	}

	msgs := FormatTriggeredAlertsForTelegram(events)
	require.Greater(t, len(msgs), 1)
	for _, m := range msgs {
		assert.LessOrEqual(t, len(m), maxMessageLen)
	}
	assert.Contains(t, msgs[1], "Part 2")
}
