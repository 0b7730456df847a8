// Package insight computes rule-based price statistics and a buy/wait recommendation from a
// product's snapshot window. Everything here is a pure function of its inputs.
package insight

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

const (
	TrendUp      = "up"
	TrendDown    = "down"
	TrendFlat    = "flat"
	TrendUnknown = "unknown"

	AnomalyNone     = "none"
	AnomalyDrop     = "drop"
	AnomalySpike    = "spike"
	AnomalyVolatile = "volatile"

	RecommendationBuy   = "buy"
	RecommendationWait  = "wait"
	RecommendationWatch = "watch"
)

// Thresholds were tuned against the index-based slope; changing the slope definition needs retuning.
const (
	trendThreshold      = 0.002
	zScoreThreshold     = 2.2
	volatilityThreshold = 0.12

	nearMinUpTrend = 0.03
	nearMinFlat    = 0.02

	suggestedAlertMarkup = 1.01

	emptyWindowConfidence  = 0.2
	emptyWindowExplanation = "Not enough price history yet. Keep tracking to unlock AI insights."
)

// Point is one priced snapshot.
type Point struct {
	Price float64
	At    time.Time
}

// Features are the closed-form statistics of a window. All are nil for an empty window.
type Features struct {
	LastPrice    *float64
	MinPrice     *float64
	MaxPrice     *float64
	AvgPrice     *float64
	Volatility   *float64
	Slope        *float64
	PctChange7d  *float64
	PctChange30d *float64
}

// Result is a complete insight computation.
type Result struct {
	Features

	SnapshotCount int
	WindowDays    int

	Trend               string
	Anomaly             string
	Recommendation      string
	Confidence          float64
	SuggestedAlertPrice *float64
	Explanation         string
	// Facts are the explanation sentences in the order they were joined.
	Facts []string
}

// Compute derives features and a recommendation from the priced points that fall inside the
// window [now - windowDays, now]. Points may arrive in any order; they are sorted by time.
func Compute(points []Point, now time.Time, windowDays int) Result {
	now = now.UTC()
	since := now.AddDate(0, 0, -windowDays)

	window := make([]Point, 0, len(points))
	for _, p := range points {
		if p.At.Before(since) || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
			continue
		}
		window = append(window, Point{Price: p.Price, At: p.At.UTC()})
	}
	sort.SliceStable(window, func(i, j int) bool { return window[i].At.Before(window[j].At) })

	if len(window) == 0 {
		return Result{
			WindowDays:     windowDays,
			Trend:          TrendUnknown,
			Anomaly:        AnomalyNone,
			Recommendation: RecommendationWatch,
			Confidence:     emptyWindowConfidence,
			Explanation:    emptyWindowExplanation,
			Facts:          []string{emptyWindowExplanation},
		}
	}

	prices := make([]float64, len(window))
	for i, p := range window {
		prices[i] = p.Price
	}

	last := prices[len(prices)-1]
	minP, maxP := minMax(prices)
	avg := mean(prices)
	std := sampleStd(prices, avg)
	slope := linearSlope(prices)

	var volatility *float64
	if avg > 0 {
		volatility = ptr(std / avg)
	}

	f := Features{
		LastPrice:    ptr(last),
		MinPrice:     ptr(minP),
		MaxPrice:     ptr(maxP),
		AvgPrice:     ptr(avg),
		Volatility:   volatility,
		Slope:        ptr(slope),
		PctChange7d:  pctChange(priceAtOrAfter(window, now.AddDate(0, 0, -7)), last),
		PctChange30d: pctChange(priceAtOrAfter(window, now.AddDate(0, 0, -30)), last),
	}

	trend := classifyTrend(slope, avg)
	anomaly := classifyAnomaly(last, avg, std, volatility)

	distToMin := 0.0
	if minP > 0 {
		distToMin = (last - minP) / minP
	}
	recommendation, confidence := recommend(trend, anomaly, distToMin)

	var suggested *float64
	if minP != 0 {
		suggested = ptr(math.Round(minP*suggestedAlertMarkup*100) / 100)
	}

	facts := explain(trend, anomaly, f, recommendation, confidence)

	return Result{
		Features:            f,
		SnapshotCount:       len(window),
		WindowDays:          windowDays,
		Trend:               trend,
		Anomaly:             anomaly,
		Recommendation:      recommendation,
		Confidence:          confidence,
		SuggestedAlertPrice: suggested,
		Explanation:         strings.Join(facts, " "),
		Facts:               facts,
	}
}

func classifyTrend(slope, avg float64) string {
	rel := 0.0
	if avg > 0 {
		rel = slope / avg
	}
	switch {
	case rel > trendThreshold:
		return TrendUp
	case rel < -trendThreshold:
		return TrendDown
	default:
		return TrendFlat
	}
}

func classifyAnomaly(last, avg, std float64, volatility *float64) string {
	if std > 0 {
		z := (last - avg) / std
		if z <= -zScoreThreshold {
			return AnomalyDrop
		}
		if z >= zScoreThreshold {
			return AnomalySpike
		}
	}
	if volatility != nil && *volatility > volatilityThreshold {
		return AnomalyVolatile
	}
	return AnomalyNone
}

func recommend(trend, anomaly string, distToMin float64) (string, float64) {
	switch {
	case anomaly == AnomalySpike:
		return RecommendationWait, 0.90
	case anomaly == AnomalyDrop:
		return RecommendationBuy, 0.85
	case trend == TrendDown:
		return RecommendationWait, 0.72
	case trend == TrendUp:
		if distToMin <= nearMinUpTrend {
			return RecommendationBuy, 0.68
		}
		return RecommendationWatch, 0.62
	default:
		if distToMin <= nearMinFlat {
			return RecommendationBuy, 0.64
		}
		return RecommendationWatch, 0.55
	}
}

func explain(trend, anomaly string, f Features, recommendation string, confidence float64) []string {
	facts := []string{fmt.Sprintf("Trend: %s.", trend)}

	if anomaly != AnomalyNone {
		facts = append(facts, fmt.Sprintf("Anomaly detected: %s.", anomaly))
		if anomaly == AnomalySpike {
			facts = append(facts, "Significant price jump detected; data may be volatile.")
		}
	}

	facts = append(facts,
		fmt.Sprintf("Avg: %.2f.", *f.AvgPrice),
		fmt.Sprintf("Current: %.2f. Min: %.2f.", *f.LastPrice, *f.MinPrice),
	)

	if f.PctChange7d != nil {
		facts = append(facts, fmt.Sprintf("7d change: %.1f%%.", *f.PctChange7d))
	}

	facts = append(facts, fmt.Sprintf("Recommendation: %s (confidence %.0f%%).",
		strings.ToUpper(recommendation), confidence*100))

	return facts
}

// priceAtOrAfter returns the first price observed at or after t, falling back to the earliest.
func priceAtOrAfter(window []Point, t time.Time) float64 {
	for _, p := range window {
		if !p.At.Before(t) {
			return p.Price
		}
	}
	return window[0].Price
}

func pctChange(old, current float64) *float64 {
	if old == 0 {
		return nil
	}
	return ptr((current - old) / old * 100)
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func sampleStd(xs []float64, m float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	variance := 0.0
	for _, x := range xs {
		variance += (x - m) * (x - m)
	}
	return math.Sqrt(variance / float64(len(xs)-1))
}

// linearSlope is the least-squares slope of prices against their index 0..n-1.
func linearSlope(prices []float64) float64 {
	n := len(prices)
	if n < 2 {
		return 0
	}
	xMean := float64(n-1) / 2
	yMean := mean(prices)

	var num, den float64
	for i, p := range prices {
		dx := float64(i) - xMean
		num += dx * (p - yMean)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func minMax(xs []float64) (float64, float64) {
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}

func ptr(v float64) *float64 { return &v }
