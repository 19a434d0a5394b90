package repository

import (
	"context"

	"github.com/eventlab/commerce-analytics-pipeline/internal/domain"
)

// Attribution policies accepted by ChannelRevenue.
const (
	PolicyFirstClick = "first_click"
	PolicyLastClick  = "last_click"
)

// AnalyticsRepository defines the interface for the analytics storage
// layer. Derived tables are replaced wholesale on every run: no partial
// updates, no in-place patching.
type AnalyticsRepository interface {
	// InitSchema initializes the database schema (creates tables if they don't exist)
	InitSchema(ctx context.Context) error

	// FetchCleanedEvents reads the full cleaned event snapshot in
	// timestamp order
	FetchCleanedEvents(ctx context.Context) ([]domain.Event, error)

	// ReplaceSessions replaces the sessions table with a new batch
	ReplaceSessions(ctx context.Context, sessions []domain.Session) (int, error)

	// ReplaceAttributions replaces the purchase attribution table
	ReplaceAttributions(ctx context.Context, records []domain.AttributionRecord) (int, error)

	// ReplaceUserProfiles replaces the user profile table
	ReplaceUserProfiles(ctx context.Context, profiles []domain.UserProfile) (int, error)

	// FetchSessions reads all computed sessions
	FetchSessions(ctx context.Context) ([]domain.Session, error)

	// FetchAttributions reads all attribution records
	FetchAttributions(ctx context.Context) ([]domain.AttributionRecord, error)

	// InsertReport stores a monitoring report
	InsertReport(ctx context.Context, report *domain.MonitoringReport) error

	// LatestReport returns the most recently stored monitoring report
	LatestReport(ctx context.Context) (*domain.MonitoringReport, error)

	// ChannelRevenue aggregates revenue per channel under the given
	// attribution policy (first_click or last_click)
	ChannelRevenue(ctx context.Context, policy string) ([]domain.ChannelRevenue, error)

	// ChannelConversion computes per-channel conversion rates from the
	// sessions' assigned channels and the purchases inside them
	ChannelConversion(ctx context.Context) ([]domain.ChannelConversion, error)

	// TopProducts aggregates revenue per product, highest revenue first
	TopProducts(ctx context.Context, limit int) ([]domain.ProductRevenue, error)

	// Ping checks if the database connection is alive
	Ping(ctx context.Context) error

	// Close closes the repository and releases resources
	Close() error
}
