package service

import (
	"sync"
	"time"

	"golang-price-tracker/internal/tracker/repository/repositorytest"
	"golang-price-tracker/pkg/fingerprint"
	"golang-price-tracker/pkg/logger"
)

var baseTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// clock is a settable time source shared by the services under test.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock { return &clock{now: baseTime} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) SendMessage(text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return nil
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type fixture struct {
	store    *repositorytest.MemStore
	clock    *clock
	notifier *recordingNotifier
	ingest   *ingestService
	insights *insightService
	alerts   AlertService
	schedule *scheduleService
}

func newFixture() *fixture {
	store := repositorytest.New()
	clk := newClock()
	notifier := &recordingNotifier{}
	log := logger.NewNop()

	ingest := NewIngestService(store, fingerprint.New(), notifier, log, 30).(*ingestService)
	ingest.now = clk.Now

	insights := NewInsightService(store, log, 30).(*insightService)
	insights.now = clk.Now

	schedule := NewScheduleService(store, log).(*scheduleService)
	schedule.now = clk.Now

	return &fixture{
		store:    store,
		clock:    clk,
		notifier: notifier,
		ingest:   ingest,
		insights: insights,
		alerts:   NewAlertService(store, log, 50),
		schedule: schedule,
	}
}
