package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"linklytics-be/internal/apperrors"
	"linklytics-be/internal/entities"
	"linklytics-be/internal/models"
)

// utmColumns maps the five enumerated API field names onto their columns.
// Validating through this map is what keeps the grouped column injection-safe.
var utmColumns = map[string]string{
	"utmSource":   "utm_source",
	"utmMedium":   "utm_medium",
	"utmCampaign": "utm_campaign",
	"utmTerm":     "utm_term",
	"utmContent":  "utm_content",
}

// matchPredicate is the shared filter underlying every aggregate query:
// one link, inside the window, bots excluded.
const matchPredicate = `short_code = $1 AND timestamp >= $2 AND is_bot = FALSE`

// ClickRepository persists classified click events and answers the
// time-windowed aggregate queries.
type ClickRepository interface {
	Insert(ctx context.Context, evt *entities.ClickEvent) error
	Summary(ctx context.Context, shortCode string, since time.Time) (*models.Summary, error)
	Timeseries(ctx context.Context, shortCode string, since time.Time) ([]models.TimeseriesPoint, error)
	Devices(ctx context.Context, shortCode string, since time.Time) ([]models.Breakdown, error)
	UTMBreakdown(ctx context.Context, shortCode string, since time.Time, utmField string) ([]models.Breakdown, error)
	Locations(ctx context.Context, shortCode string, since time.Time) ([]models.LocationRow, error)
	Referrers(ctx context.Context, shortCode string, since time.Time) ([]models.Breakdown, error)
}

type clickRepository struct {
	db *sql.DB
}

// NewClickRepository creates a new click repository
func NewClickRepository(db *sql.DB) ClickRepository {
	return &clickRepository{db: db}
}

// Insert appends one click event. Events are never updated or deleted.
func (r *clickRepository) Insert(ctx context.Context, evt *entities.ClickEvent) error {
	query := `
		INSERT INTO click_events (short_code, url_id, timestamp, referrer, browser, os,
			device_type, country, city, is_bot, is_unique, visitor_id,
			utm_source, utm_medium, utm_campaign, utm_term, utm_content)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.db.ExecContext(ctx, query,
		evt.ShortCode, evt.URLID, evt.Timestamp, evt.Referrer, evt.Browser, evt.OS,
		evt.DeviceType, evt.Country, evt.City, evt.IsBot, evt.IsUnique, evt.VisitorID,
		evt.UTMSource, evt.UTMMedium, evt.UTMCampaign, evt.UTMTerm, evt.UTMContent,
	)
	if err != nil {
		return fmt.Errorf("failed to insert click event: %w", err)
	}
	return nil
}

// Summary counts matching events and, among them, those flagged unique.
func (r *clickRepository) Summary(ctx context.Context, shortCode string, since time.Time) (*models.Summary, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_unique)
		FROM click_events
		WHERE ` + matchPredicate

	var s models.Summary
	err := r.db.QueryRowContext(ctx, query, shortCode, since).Scan(&s.TotalClicks, &s.UniqueVisitors)
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	return &s, nil
}

// Timeseries buckets matching events per UTC calendar day, ascending.
func (r *clickRepository) Timeseries(ctx context.Context, shortCode string, since time.Time) ([]models.TimeseriesPoint, error) {
	query := `
		SELECT TO_CHAR(timestamp AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE is_unique)
		FROM click_events
		WHERE ` + matchPredicate + `
		GROUP BY day
		ORDER BY day ASC
	`

	rows, err := r.db.QueryContext(ctx, query, shortCode, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get timeseries: %w", err)
	}
	defer rows.Close()

	var points []models.TimeseriesPoint
	for rows.Next() {
		var p models.TimeseriesPoint
		if err := rows.Scan(&p.Date, &p.Clicks, &p.Unique); err != nil {
			return nil, fmt.Errorf("failed to scan timeseries row: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Devices groups matching events by device type, descending by count.
func (r *clickRepository) Devices(ctx context.Context, shortCode string, since time.Time) ([]models.Breakdown, error) {
	query := `
		SELECT device_type, COUNT(*) AS clicks
		FROM click_events
		WHERE ` + matchPredicate + `
		GROUP BY device_type
		ORDER BY clicks DESC, device_type ASC
	`
	return r.queryBreakdown(ctx, query, shortCode, since)
}

// UTMBreakdown groups by one of the five UTM fields, excluding events where
// that field is absent. Rejects anything outside the enumerated field names.
func (r *clickRepository) UTMBreakdown(ctx context.Context, shortCode string, since time.Time, utmField string) ([]models.Breakdown, error) {
	column, ok := utmColumns[utmField]
	if !ok {
		return nil, apperrors.ErrInvalidUTMField
	}

	query := fmt.Sprintf(`
		SELECT %[1]s, COUNT(*) AS clicks
		FROM click_events
		WHERE %[2]s AND %[1]s IS NOT NULL
		GROUP BY %[1]s
		ORDER BY clicks DESC, %[1]s ASC
	`, column, matchPredicate)

	return r.queryBreakdown(ctx, query, shortCode, since)
}

// Locations groups by (country, city), excluding unresolved countries.
func (r *clickRepository) Locations(ctx context.Context, shortCode string, since time.Time) ([]models.LocationRow, error) {
	query := `
		SELECT country, city, COUNT(*) AS clicks
		FROM click_events
		WHERE ` + matchPredicate + ` AND country <> 'Unknown'
		GROUP BY country, city
		ORDER BY clicks DESC, country ASC, city ASC
	`

	rows, err := r.db.QueryContext(ctx, query, shortCode, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get locations: %w", err)
	}
	defer rows.Close()

	var out []models.LocationRow
	for rows.Next() {
		var l models.LocationRow
		if err := rows.Scan(&l.Country, &l.City, &l.Clicks); err != nil {
			return nil, fmt.Errorf("failed to scan location row: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Referrers groups matching events by referrer string, descending by count.
func (r *clickRepository) Referrers(ctx context.Context, shortCode string, since time.Time) ([]models.Breakdown, error) {
	query := `
		SELECT referrer, COUNT(*) AS clicks
		FROM click_events
		WHERE ` + matchPredicate + `
		GROUP BY referrer
		ORDER BY clicks DESC, referrer ASC
	`
	return r.queryBreakdown(ctx, query, shortCode, since)
}

func (r *clickRepository) queryBreakdown(ctx context.Context, query, shortCode string, since time.Time) ([]models.Breakdown, error) {
	rows, err := r.db.QueryContext(ctx, query, shortCode, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get breakdown: %w", err)
	}
	defer rows.Close()

	var out []models.Breakdown
	for rows.Next() {
		var b models.Breakdown
		if err := rows.Scan(&b.Name, &b.Clicks); err != nil {
			return nil, fmt.Errorf("failed to scan breakdown row: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// IsValidUTMField reports whether the given API field name is one of the five
// enumerated UTM fields.
func IsValidUTMField(field string) bool {
	_, ok := utmColumns[field]
	return ok
}
