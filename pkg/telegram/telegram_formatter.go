package telegram

import (
	"fmt"
	"strings"
	"time"

	"golang-price-tracker/internal/entity"
)

const maxMessageLen = 4090

// FormatTriggeredAlertsForTelegram renders triggered alerts as Markdown messages, splitting them so no
// message exceeds the Telegram length limit.
func FormatTriggeredAlertsForTelegram(events []entity.PriceEvent) []string {
	if len(events) == 0 {
		return nil
	}

	var messages []string
	var current strings.Builder
	part := 1

	startNewPart := func() {
		current.Reset()
		if part == 1 {
			current.WriteString("🔔 *Price Alert* 🔔\n\n")
		} else {
			current.WriteString(fmt.Sprintf("---*Price Alert Part %d*---\n\n", part))
		}
	}
	startNewPart()

	for _, e := range events {
		entry := formatAlertEntry(e)
		if current.Len()+len(entry) > maxMessageLen {
			messages = append(messages, current.String())
			part++
			startNewPart()
		}
		current.WriteString(entry)
	}

	return append(messages, current.String())
}

func formatAlertEntry(e entity.PriceEvent) string {
	var b strings.Builder

	title := e.Title
	if title == "" {
		title = e.URL
	}
	b.WriteString(fmt.Sprintf("🛒 *%s*\n", escapeMarkdown(title)))
	if e.Marketplace != "" {
		b.WriteString(fmt.Sprintf("🏪 %s\n", e.Marketplace))
	}
	if e.TargetPrice != nil {
		b.WriteString(fmt.Sprintf("🎯 *Target:* %.2f\n", *e.TargetPrice))
	}
	if e.Message != nil && *e.Message != "" {
		b.WriteString(fmt.Sprintf("💬 %s\n", escapeMarkdown(*e.Message)))
	}
	b.WriteString(e.URL)
	b.WriteString("\n\n")

	return b.String()
}

var markdownReplacer = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escapeMarkdown(s string) string {
	return markdownReplacer.Replace(s)
}

// FormatErrorAlertMessage formats an operational error for the alert chat.
func FormatErrorAlertMessage(at time.Time, message string) string {
	return fmt.Sprintf("⚠️ *Price Tracker Error*\n\n🕒 %s\n💬 %s", at.UTC().Format(time.RFC3339), escapeMarkdown(message))
}
