package analytics

import (
	"slices"
	"time"

	"github.com/SergeiKhy/url-analytics/internal/models"
	"github.com/samber/lo"
)

// dateLayout is the UTC calendar-day bucket key.
const dateLayout = "2006-01-02"

// DefaultWindowDays is the histogram window used for single-URL analytics.
const DefaultWindowDays = 7

// Dimension selects the ClickEvent field a breakdown groups on.
type Dimension int

const (
	DimensionOS Dimension = iota
	DimensionDevice
)

func (d Dimension) String() string {
	switch d {
	case DimensionOS:
		return "os"
	case DimensionDevice:
		return "device"
	default:
		return "unknown"
	}
}

// label returns the event's value for the dimension. Empty values are kept as is
// and form their own category.
func (d Dimension) label(e models.ClickEvent) string {
	if d == DimensionDevice {
		return e.DeviceType
	}
	return e.OSName
}

type CategoryStats struct {
	Label          string
	Clicks         int64
	UniqueVisitors int64
}

type DateCount struct {
	Date   string
	Clicks int64
}

type URLStats struct {
	ShortURL    string
	TotalClicks int64
	UniqueUsers int64
}

type URLSummary struct {
	TotalClicks  int64
	UniqueUsers  int64
	ClicksByDate map[string]int64
	OSType       []CategoryStats
	DeviceType   []CategoryStats
}

type TopicSummary struct {
	TotalClicks  int64
	UniqueUsers  int64
	ClicksByDate []DateCount
	URLs         []URLStats
}

type OverallSummary struct {
	TotalURLs    int
	TotalClicks  int64
	UniqueUsers  int64
	ClicksByDate []DateCount
	OSType       []CategoryStats
	DeviceType   []CategoryStats
}

// ByDate counts events per UTC day. With windowDays > 0 only events inside
// [now-windowDays, now] are counted, both ends inclusive; otherwise every event is.
// Days without events are absent from the result.
func ByDate(events []models.ClickEvent, now time.Time, windowDays int) map[string]int64 {
	result := make(map[string]int64)

	var from time.Time
	if windowDays > 0 {
		from = now.Add(-time.Duration(windowDays) * 24 * time.Hour)
	}

	for _, e := range events {
		if windowDays > 0 && (e.Timestamp.Before(from) || e.Timestamp.After(now)) {
			continue
		}
		result[dayKey(e.Timestamp)]++
	}

	return result
}

// ByCategory groups events by the selected dimension, counting clicks and distinct
// IP addresses per label. Categories are returned in first-seen order.
func ByCategory(events []models.ClickEvent, dim Dimension) []CategoryStats {
	counter := newCategoryCounter()
	for _, e := range events {
		counter.add(dim.label(e), e.IPAddress)
	}
	return counter.result()
}

// Lookup finds a category by label.
func Lookup(stats []CategoryStats, label string) (CategoryStats, bool) {
	return lo.Find(stats, func(s CategoryStats) bool {
		return s.Label == label
	})
}

// URL summarises a single link. Totals come from the stored click counter,
// uniques and breakdowns from the event list.
func URL(u models.ShortURL, now time.Time, windowDays int) URLSummary {
	visitors := make(visitorSet)
	for _, e := range u.ClickEvents {
		visitors.add(e.IPAddress)
	}

	return URLSummary{
		TotalClicks:  u.ClickCount,
		UniqueUsers:  visitors.size(),
		ClicksByDate: ByDate(u.ClickEvents, now, windowDays),
		OSType:       ByCategory(u.ClickEvents, DimensionOS),
		DeviceType:   ByCategory(u.ClickEvents, DimensionDevice),
	}
}

// Topic aggregates a set of links sharing a topic. Dates are not windowed.
func Topic(urls []models.ShortURL) TopicSummary {
	summary := TopicSummary{
		URLs: make([]URLStats, 0, len(urls)),
	}
	visitors := make(visitorSet)
	dates := make(map[string]int64)

	for _, u := range urls {
		summary.TotalClicks += u.ClickCount

		urlVisitors := make(visitorSet)
		for _, e := range u.ClickEvents {
			visitors.add(e.IPAddress)
			urlVisitors.add(e.IPAddress)
			dates[dayKey(e.Timestamp)]++
		}

		summary.URLs = append(summary.URLs, URLStats{
			ShortURL:    u.Alias(),
			TotalClicks: u.ClickCount,
			UniqueUsers: urlVisitors.size(),
		})
	}

	summary.UniqueUsers = visitors.size()
	summary.ClicksByDate = sortedDates(dates)

	return summary
}

// Overall aggregates every link of a user. Dates are not windowed.
func Overall(urls []models.ShortURL) OverallSummary {
	summary := OverallSummary{
		TotalURLs: len(urls),
	}
	visitors := make(visitorSet)
	dates := make(map[string]int64)
	osCounter := newCategoryCounter()
	deviceCounter := newCategoryCounter()

	for _, u := range urls {
		summary.TotalClicks += u.ClickCount

		for _, e := range u.ClickEvents {
			visitors.add(e.IPAddress)
			dates[dayKey(e.Timestamp)]++
			osCounter.add(DimensionOS.label(e), e.IPAddress)
			deviceCounter.add(DimensionDevice.label(e), e.IPAddress)
		}
	}

	summary.UniqueUsers = visitors.size()
	summary.ClicksByDate = sortedDates(dates)
	summary.OSType = osCounter.result()
	summary.DeviceType = deviceCounter.result()

	return summary
}

func dayKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// sortedDates converts a day histogram to a slice ordered by date.
func sortedDates(dates map[string]int64) []DateCount {
	keys := lo.Keys(dates)
	slices.Sort(keys)

	return lo.Map(keys, func(date string, _ int) DateCount {
		return DateCount{Date: date, Clicks: dates[date]}
	})
}
