package queue

import (
	"context"

	"github.com/eventlab/commerce-analytics-pipeline/internal/domain"
)

// ReportPublisher defines the interface for publishing monitoring reports
// to downstream alerting consumers
type ReportPublisher interface {
	PublishReport(ctx context.Context, report *domain.MonitoringReport) error
}
