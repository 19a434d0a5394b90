package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/eventlab/commerce-analytics-pipeline/internal/domain"
	"github.com/eventlab/commerce-analytics-pipeline/internal/repository"
)

// Repository implements AnalyticsRepository for ClickHouse
type Repository struct {
	client *Client
	log    *zap.Logger
}

// NewRepository creates a new ClickHouse repository
func NewRepository(client *Client, log *zap.Logger) *Repository {
	return &Repository{
		client: client,
		log:    log,
	}
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS events_cleaned (
		client_id String,
		event_name LowCardinality(String),
		timestamp DateTime64(3, 'UTC'),
		page_url String,
		referrer String,
		utm_source String,
		utm_medium String,
		utm_campaign String,
		event_data String,
		source_file LowCardinality(String),
		user_agent String
	) ENGINE = MergeTree()
	ORDER BY (timestamp, source_file)
	PARTITION BY toYYYYMM(timestamp)
	SETTINGS index_granularity = 8192`,

	`CREATE TABLE IF NOT EXISTS sessions (
		session_id String,
		client_id String,
		session_seq Int32,
		start_time DateTime64(3, 'UTC'),
		end_time DateTime64(3, 'UTC'),
		event_count Int32,
		channel LowCardinality(String)
	) ENGINE = MergeTree()
	ORDER BY (client_id, session_seq)`,

	`CREATE TABLE IF NOT EXISTS purchase_attribution (
		purchase_id String,
		client_id String,
		purchase_time DateTime64(3, 'UTC'),
		revenue Float64,
		product_id String,
		first_click_channel LowCardinality(String),
		first_click_medium LowCardinality(String),
		first_click_campaign String,
		last_click_channel LowCardinality(String),
		last_click_medium LowCardinality(String),
		last_click_campaign String
	) ENGINE = MergeTree()
	ORDER BY (purchase_time, purchase_id)`,

	`CREATE TABLE IF NOT EXISTS user_profiles (
		client_id String,
		first_seen DateTime64(3, 'UTC'),
		last_seen DateTime64(3, 'UTC'),
		session_count Int32,
		user_agents Array(String)
	) ENGINE = MergeTree()
	ORDER BY client_id`,

	`CREATE TABLE IF NOT EXISTS monitoring_reports (
		report_date Date,
		status LowCardinality(String),
		payload String,
		generated_at DateTime64(3, 'UTC') DEFAULT now64(3)
	) ENGINE = MergeTree()
	ORDER BY generated_at`,
}

// InitSchema initializes the ClickHouse schema
func (r *Repository) InitSchema(ctx context.Context) error {
	for _, statement := range schemaStatements {
		if err := r.client.Conn().Exec(ctx, statement); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	r.log.Info("ClickHouse schema initialized successfully")
	return nil
}

// FetchCleanedEvents reads the full cleaned event snapshot. The fetch
// order (timestamp, then source file) is deterministic and defines the
// original row order the normalizer uses for tie-breaks.
func (r *Repository) FetchCleanedEvents(ctx context.Context) ([]domain.Event, error) {
	query := `
		SELECT client_id, event_name, timestamp, page_url, referrer,
		       utm_source, utm_medium, utm_campaign, event_data,
		       source_file, user_agent
		FROM events_cleaned
		ORDER BY timestamp, source_file
	`

	rows, err := r.client.Conn().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cleaned events: %w", err)
	}
	defer r.closeRows(rows)

	var events []domain.Event
	for rows.Next() {
		var event domain.Event
		if err := rows.Scan(
			&event.ClientID,
			&event.EventName,
			&event.Timestamp,
			&event.PageURL,
			&event.Referrer,
			&event.UTMSource,
			&event.UTMMedium,
			&event.UTMCampaign,
			&event.RawEventData,
			&event.SourceFile,
			&event.UserAgent,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}

		// Payloads are JSON-parsed upstream; an unparseable payload here
		// just yields no extracted fields.
		if event.RawEventData != "" {
			var payload map[string]any
			if err := json.Unmarshal([]byte(event.RawEventData), &payload); err == nil {
				event.EventData = payload
			}
		}

		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}

// ReplaceSessions replaces the sessions table with a new batch
func (r *Repository) ReplaceSessions(ctx context.Context, sessions []domain.Session) (int, error) {
	if err := r.truncate(ctx, "sessions"); err != nil {
		return 0, err
	}
	if len(sessions) == 0 {
		return 0, nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO sessions")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare sessions batch: %w", err)
	}

	for _, session := range sessions {
		if err := batch.Append(
			session.SessionID,
			session.ClientID,
			int32(session.Sequence),
			session.StartTime,
			session.EndTime,
			int32(session.EventCount),
			session.Channel,
		); err != nil {
			return 0, fmt.Errorf("failed to append session to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send sessions batch: %w", err)
	}

	return len(sessions), nil
}

// ReplaceAttributions replaces the purchase attribution table
func (r *Repository) ReplaceAttributions(ctx context.Context, records []domain.AttributionRecord) (int, error) {
	if err := r.truncate(ctx, "purchase_attribution"); err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO purchase_attribution")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare attribution batch: %w", err)
	}

	for _, record := range records {
		if err := batch.Append(
			record.PurchaseID,
			record.ClientID,
			record.PurchaseTime,
			record.Revenue,
			record.ProductID,
			record.FirstClickChannel,
			record.FirstClickMedium,
			record.FirstClickCampaign,
			record.LastClickChannel,
			record.LastClickMedium,
			record.LastClickCampaign,
		); err != nil {
			return 0, fmt.Errorf("failed to append attribution to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send attribution batch: %w", err)
	}

	return len(records), nil
}

// ReplaceUserProfiles replaces the user profile table
func (r *Repository) ReplaceUserProfiles(ctx context.Context, profiles []domain.UserProfile) (int, error) {
	if err := r.truncate(ctx, "user_profiles"); err != nil {
		return 0, err
	}
	if len(profiles) == 0 {
		return 0, nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO user_profiles")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare user profile batch: %w", err)
	}

	for _, profile := range profiles {
		if err := batch.Append(
			profile.ClientID,
			profile.FirstSeen,
			profile.LastSeen,
			int32(profile.SessionCount),
			profile.UserAgents,
		); err != nil {
			return 0, fmt.Errorf("failed to append user profile to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send user profile batch: %w", err)
	}

	return len(profiles), nil
}

// FetchSessions reads all computed sessions
func (r *Repository) FetchSessions(ctx context.Context) ([]domain.Session, error) {
	query := `
		SELECT session_id, client_id, session_seq, start_time, end_time, event_count, channel
		FROM sessions
		ORDER BY client_id, session_seq
	`

	rows, err := r.client.Conn().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer r.closeRows(rows)

	var sessions []domain.Session
	for rows.Next() {
		var session domain.Session
		var seq, count int32
		if err := rows.Scan(
			&session.SessionID,
			&session.ClientID,
			&seq,
			&session.StartTime,
			&session.EndTime,
			&count,
			&session.Channel,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		session.Sequence = int(seq)
		session.EventCount = int(count)
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}

	return sessions, nil
}

// FetchAttributions reads all attribution records
func (r *Repository) FetchAttributions(ctx context.Context) ([]domain.AttributionRecord, error) {
	query := `
		SELECT purchase_id, client_id, purchase_time, revenue, product_id,
		       first_click_channel, first_click_medium, first_click_campaign,
		       last_click_channel, last_click_medium, last_click_campaign
		FROM purchase_attribution
		ORDER BY purchase_time, purchase_id
	`

	rows, err := r.client.Conn().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query attributions: %w", err)
	}
	defer r.closeRows(rows)

	var records []domain.AttributionRecord
	for rows.Next() {
		var record domain.AttributionRecord
		if err := rows.Scan(
			&record.PurchaseID,
			&record.ClientID,
			&record.PurchaseTime,
			&record.Revenue,
			&record.ProductID,
			&record.FirstClickChannel,
			&record.FirstClickMedium,
			&record.FirstClickCampaign,
			&record.LastClickChannel,
			&record.LastClickMedium,
			&record.LastClickCampaign,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attribution row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attribution rows: %w", err)
	}

	return records, nil
}

// InsertReport stores a monitoring report
func (r *Repository) InsertReport(ctx context.Context, report *domain.MonitoringReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	reportDate, err := time.Parse("2006-01-02", report.Date)
	if err != nil {
		return fmt.Errorf("invalid report date %q: %w", report.Date, err)
	}

	query := "INSERT INTO monitoring_reports (report_date, status, payload) VALUES (?, ?, ?)"
	if err := r.client.Conn().Exec(ctx, query, reportDate, report.Status, string(payload)); err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	return nil
}

// LatestReport returns the most recently stored monitoring report
func (r *Repository) LatestReport(ctx context.Context) (*domain.MonitoringReport, error) {
	query := `
		SELECT payload
		FROM monitoring_reports
		ORDER BY generated_at DESC
		LIMIT 1
	`

	var payload string
	row := r.client.Conn().QueryRow(ctx, query)
	if err := row.Scan(&payload); err != nil {
		return nil, fmt.Errorf("failed to query latest report: %w", err)
	}

	var report domain.MonitoringReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report payload: %w", err)
	}

	return &report, nil
}

// ChannelRevenue aggregates revenue per channel under the given policy
func (r *Repository) ChannelRevenue(ctx context.Context, policy string) ([]domain.ChannelRevenue, error) {
	var channelColumn string
	switch policy {
	case repository.PolicyFirstClick:
		channelColumn = "first_click_channel"
	case repository.PolicyLastClick:
		channelColumn = "last_click_channel"
	default:
		return nil, fmt.Errorf("unsupported attribution policy: %s (supported: first_click, last_click)", policy)
	}

	query := fmt.Sprintf(`
		SELECT
			%s as channel,
			sum(revenue) as revenue,
			count() as purchases
		FROM purchase_attribution
		GROUP BY channel
		ORDER BY revenue DESC
	`, channelColumn)

	rows, err := r.client.Conn().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query channel revenue: %w", err)
	}
	defer r.closeRows(rows)

	var channels []domain.ChannelRevenue
	for rows.Next() {
		var channel domain.ChannelRevenue
		if err := rows.Scan(&channel.Channel, &channel.Revenue, &channel.Purchases); err != nil {
			return nil, fmt.Errorf("failed to scan channel revenue row: %w", err)
		}
		channels = append(channels, channel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channel revenue rows: %w", err)
	}

	return channels, nil
}

// ChannelConversion computes per-channel conversion rates. Each session
// carries its channel (last UTM source, or direct); purchases map to the
// session whose time range contains them.
func (r *Repository) ChannelConversion(ctx context.Context) ([]domain.ChannelConversion, error) {
	query := `
		SELECT
			sc.channel as channel,
			ps.purchases as purchases,
			sc.sessions as sessions,
			round(ps.purchases / sc.sessions, 6) as conversion_rate
		FROM (
			SELECT channel, count() as sessions
			FROM sessions
			GROUP BY channel
		) as sc
		LEFT JOIN (
			SELECT s.channel as channel, count() as purchases
			FROM purchase_attribution as p
			INNER JOIN sessions as s ON p.client_id = s.client_id
			WHERE p.purchase_time >= s.start_time AND p.purchase_time <= s.end_time
			GROUP BY s.channel
		) as ps USING (channel)
		ORDER BY conversion_rate DESC, channel
	`

	rows, err := r.client.Conn().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query channel conversion: %w", err)
	}
	defer r.closeRows(rows)

	var conversions []domain.ChannelConversion
	for rows.Next() {
		var conversion domain.ChannelConversion
		if err := rows.Scan(
			&conversion.Channel,
			&conversion.Purchases,
			&conversion.Sessions,
			&conversion.ConversionRate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan channel conversion row: %w", err)
		}
		conversions = append(conversions, conversion)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channel conversion rows: %w", err)
	}

	return conversions, nil
}

// TopProducts aggregates revenue per product, highest revenue first
func (r *Repository) TopProducts(ctx context.Context, limit int) ([]domain.ProductRevenue, error) {
	query := `
		SELECT
			if(product_id = '', 'unknown', product_id) as product_id,
			count() as purchases,
			sum(revenue) as revenue
		FROM purchase_attribution
		GROUP BY product_id
		ORDER BY revenue DESC
		LIMIT ?
	`

	rows, err := r.client.Conn().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	defer r.closeRows(rows)

	var products []domain.ProductRevenue
	for rows.Next() {
		var product domain.ProductRevenue
		if err := rows.Scan(&product.ProductID, &product.Purchases, &product.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan top product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top product rows: %w", err)
	}

	return products, nil
}

// Ping checks if the ClickHouse connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Conn().Ping(ctx)
}

// Close closes the ClickHouse connection
func (r *Repository) Close() error {
	return r.client.Close()
}

func (r *Repository) truncate(ctx context.Context, table string) error {
	if err := r.client.Conn().Exec(ctx, "TRUNCATE TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("failed to truncate %s: %w", table, err)
	}
	return nil
}

func (r *Repository) closeRows(rows driver.Rows) {
	if err := rows.Close(); err != nil {
		r.log.Error("Failed to close rows", zap.Error(err))
	}
}
