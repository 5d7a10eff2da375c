package models

// Summary holds the headline counters for one link over the query window.
type Summary struct {
	TotalClicks    int64 `json:"total_clicks"`
	UniqueVisitors int64 `json:"unique_visitors"`
}

// TimeseriesPoint is one calendar-day bucket, sorted ascending by date.
type TimeseriesPoint struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Clicks int64  `json:"clicks"`
	Unique int64  `json:"unique"`
}

// Breakdown is a generic name/count row for device, UTM and referrer charts,
// sorted descending by count.
type Breakdown struct {
	Name   string `json:"name"`
	Clicks int64  `json:"clicks"`
}

// LocationRow groups clicks by (country, city).
type LocationRow struct {
	Country string `json:"country"`
	City    string `json:"city"`
	Clicks  int64  `json:"clicks"`
}
