package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventlab/commerce-analytics-pipeline/internal/attribution"
	"github.com/eventlab/commerce-analytics-pipeline/internal/config"
	"github.com/eventlab/commerce-analytics-pipeline/internal/identity"
	"github.com/eventlab/commerce-analytics-pipeline/internal/normalizer"
	"github.com/eventlab/commerce-analytics-pipeline/internal/repository"
	"github.com/eventlab/commerce-analytics-pipeline/internal/sessionizer"
)

// Pipeline orchestrates the batch transform: fetch snapshot, normalize,
// sessionize, roll up identities, attribute purchases, and persist every
// derived table. Each run reads a fixed input snapshot and writes complete
// output artifacts; re-runs on identical input are idempotent.
type Pipeline struct {
	normalizer  *normalizer.Normalizer
	sessionizer *sessionizer.Sessionizer
	engine      *attribution.Engine
	repo        repository.AnalyticsRepository
	log         *zap.Logger
}

// Result summarizes one pipeline run.
type Result struct {
	RunID             string
	EventCount        int
	SessionCount      int
	UserCount         int
	PurchaseCount     int
	AttributedRevenue float64
}

// New creates a new pipeline wired from configuration.
func New(cfg *config.Pipeline, repo repository.AnalyticsRepository, log *zap.Logger) *Pipeline {
	return &Pipeline{
		normalizer:  normalizer.New(cfg.EventNameRemap, log),
		sessionizer: sessionizer.New(time.Duration(cfg.SessionGapSeconds)*time.Second, log),
		engine:      attribution.New(time.Duration(cfg.LookbackDays)*24*time.Hour, log),
		repo:        repo,
		log:         log,
	}
}

// Run executes one full batch transform. Any stage error fails the run as
// a whole: there is no partial output and no resumable checkpoint.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	log := p.log.With(zap.String("run_id", runID))

	log.Info("Pipeline run starting")

	raw, err := p.repo.FetchCleanedEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cleaned events: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no cleaned events available")
	}

	events, err := p.normalizer.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("normalization failed: %w", err)
	}

	sessions, err := p.sessionizer.Sessionize(events)
	if err != nil {
		return nil, fmt.Errorf("sessionization failed: %w", err)
	}

	profiles := identity.Rollup(events, sessions, log)

	records, err := p.engine.Attribute(events)
	if err != nil {
		return nil, fmt.Errorf("attribution failed: %w", err)
	}

	sessionCount, err := p.repo.ReplaceSessions(ctx, sessions)
	if err != nil {
		return nil, fmt.Errorf("failed to write sessions: %w", err)
	}
	userCount, err := p.repo.ReplaceUserProfiles(ctx, profiles)
	if err != nil {
		return nil, fmt.Errorf("failed to write user profiles: %w", err)
	}
	recordCount, err := p.repo.ReplaceAttributions(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("failed to write attributions: %w", err)
	}

	result := &Result{
		RunID:         runID,
		EventCount:    len(events),
		SessionCount:  sessionCount,
		UserCount:     userCount,
		PurchaseCount: recordCount,
	}
	for _, record := range records {
		result.AttributedRevenue += record.Revenue
	}

	log.Info("Pipeline run complete",
		zap.Int("event_count", result.EventCount),
		zap.Int("session_count", result.SessionCount),
		zap.Int("user_count", result.UserCount),
		zap.Int("purchase_count", result.PurchaseCount),
		zap.Float64("attributed_revenue", result.AttributedRevenue))

	return result, nil
}
