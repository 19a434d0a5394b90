package monitor

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/eventlab/commerce-analytics-pipeline/internal/config"
	"github.com/eventlab/commerce-analytics-pipeline/internal/domain"
)

// DefaultBaselineDays is the default rolling baseline window length.
const DefaultBaselineDays = 7

// Monitor compares each day's metrics to a rolling historical baseline and
// classifies deviations by severity. Alerts are data: the monitor never
// fails internally on a business-signal breach, it reports it.
type Monitor struct {
	baselineDays int
	thresholds   config.Thresholds
	log          *zap.Logger
}

// New creates a new drift monitor.
func New(baselineDays int, thresholds config.Thresholds, log *zap.Logger) *Monitor {
	if baselineDays <= 0 {
		baselineDays = DefaultBaselineDays
	}
	return &Monitor{
		baselineDays: baselineDays,
		thresholds:   thresholds,
		log:          log,
	}
}

// Evaluate produces the monitoring report for the given evaluation date.
// The date is passed explicitly by the caller (the maximum event date in
// the dataset) so the monitor stays pure and testable. Alert order is
// deterministic: pipeline health, integrity, drift, observational.
func (m *Monitor) Evaluate(evalDate string, snapshots []DailySnapshot) *domain.MonitoringReport {
	current := DailySnapshot{Date: evalDate}
	var prior []DailySnapshot
	for _, snap := range snapshots {
		switch {
		case snap.Date == evalDate:
			current = snap
		case snap.Date < evalDate:
			prior = append(prior, snap)
		}
	}

	// Baseline window: the N most recent days preceding the evaluation
	// date. Shorter history makes baseline metrics ineligible for drift
	// evaluation rather than guessing a degraded baseline.
	var window []DailySnapshot
	eligible := len(prior) >= m.baselineDays
	if eligible {
		window = prior[len(prior)-m.baselineDays:]
	}

	var alerts []domain.Alert

	// Tier-1 pipeline health.
	if current.RowCount == 0 {
		alerts = append(alerts, alert(domain.SeverityCritical, MetricRowCount,
			"No events ingested on evaluation date", current.RowCount, nil))
	}
	if current.PurchaseCount == 0 {
		alerts = append(alerts, alert(domain.SeverityCritical, MetricPurchaseCount,
			"No purchases recorded on evaluation date", current.PurchaseCount, nil))
	}

	// Tier-2 data integrity ceilings.
	if current.NullClientRate > m.thresholds.MaxNullClientRate {
		alerts = append(alerts, alert(domain.SeverityWarn, MetricNullClientRate,
			fmt.Sprintf("High null client_id rate: %.2f%%", current.NullClientRate*100),
			current.NullClientRate, nil))
	}
	if current.DuplicateRate > m.thresholds.MaxDuplicateRate {
		alerts = append(alerts, alert(domain.SeverityWarn, MetricDuplicateRate,
			fmt.Sprintf("Duplicate rate high: %.2f%%", current.DuplicateRate*100),
			current.DuplicateRate, nil))
	}
	if current.InvalidEventRate > m.thresholds.MaxInvalidEventRate {
		alerts = append(alerts, alert(domain.SeverityWarn, MetricInvalidEventRate,
			fmt.Sprintf("Invalid event name rate high: %.2f%%", current.InvalidEventRate*100),
			current.InvalidEventRate, nil))
	}

	// Business drift vs. the rolling baseline.
	if drift := m.driftAlert(MetricRevenue, current.Revenue, window, eligible,
		m.thresholds.MaxRevenueDrop, domain.SeverityCritical, "Revenue drop detected"); drift != nil {
		alerts = append(alerts, *drift)
	}
	if drift := m.driftAlert(MetricPurchaseCount, current.PurchaseCount, window, eligible,
		m.thresholds.MaxPurchaseDrop, domain.SeverityCritical, "Purchase count drop detected"); drift != nil {
		alerts = append(alerts, *drift)
	}
	if drift := m.driftAlert(MetricConversionRate, current.ConversionRate, window, eligible,
		m.thresholds.MaxConversionDrop, domain.SeverityWarn, "Conversion rate drop detected"); drift != nil {
		alerts = append(alerts, *drift)
	}

	if current.DirectShare > m.thresholds.MaxDirectShare {
		alerts = append(alerts, alert(domain.SeverityWarn, MetricDirectShare,
			fmt.Sprintf("Direct traffic unusually high: %.2f%%", current.DirectShare*100),
			current.DirectShare, nil))
	}

	// Observational metrics, no actionable threshold.
	if device, revenue, ok := topDevice(current.DeviceRevenue); ok {
		alerts = append(alerts, alert(domain.SeverityInfo, MetricDeviceRevenue,
			fmt.Sprintf("Top device by revenue: %s (%.2f)", device, revenue), revenue, nil))
	}
	if current.PurchaseCount > 0 {
		alerts = append(alerts, alert(domain.SeverityInfo, MetricAssistedShare,
			fmt.Sprintf("Assisted conversions: %.2f%% of purchases", current.AssistedShare*100),
			current.AssistedShare, nil))
	}

	status := domain.StatusPass
	for _, a := range alerts {
		if a.Severity == domain.SeverityCritical {
			status = domain.StatusFail
			break
		}
	}

	m.log.Info("Monitoring evaluation complete",
		zap.String("date", evalDate),
		zap.Int("alert_count", len(alerts)),
		zap.String("status", status))

	return &domain.MonitoringReport{
		Date:   evalDate,
		Alerts: alerts,
		Status: status,
	}
}

// driftAlert compares the observed value against the baseline mean and
// returns an alert when the relative drop exceeds the threshold. Metrics
// with no eligible baseline or below their volume floor are skipped.
func (m *Monitor) driftAlert(metric string, observed float64, window []DailySnapshot, eligible bool, maxDrop float64, severity domain.Severity, message string) *domain.Alert {
	if !eligible {
		m.log.Debug("Metric ineligible for drift evaluation: baseline window too short",
			zap.String("metric", metric))
		return nil
	}
	if !m.volumeOK(metric, window) {
		m.log.Debug("Metric excluded from drift evaluation by minimum-volume guard",
			zap.String("metric", metric))
		return nil
	}

	baseline := mean(window, func(s DailySnapshot) float64 {
		switch metric {
		case MetricRevenue:
			return s.Revenue
		case MetricPurchaseCount:
			return s.PurchaseCount
		case MetricConversionRate:
			return s.ConversionRate
		}
		return 0
	})
	if baseline <= 0 {
		return nil
	}

	drop := (baseline - observed) / baseline
	if drop <= maxDrop {
		return nil
	}

	a := alert(severity, metric,
		fmt.Sprintf("%s: %.0f vs baseline %.0f", message, observed, baseline),
		observed, &baseline)
	return &a
}

// volumeOK checks the minimum-volume guard: the baseline window's average
// volume must reach the configured floor, preventing false positives from
// small-sample noise. Metrics without a configured floor always pass.
func (m *Monitor) volumeOK(metric string, window []DailySnapshot) bool {
	floor, ok := m.thresholds.MinVolume[metric]
	if !ok || floor <= 0 {
		return true
	}

	volume := mean(window, func(s DailySnapshot) float64 {
		if metric == MetricConversionRate {
			return s.SessionCount
		}
		return s.PurchaseCount
	})

	return volume >= floor
}

func mean(window []DailySnapshot, value func(DailySnapshot) float64) float64 {
	if len(window) == 0 {
		return 0
	}
	var sum float64
	for _, snap := range window {
		sum += value(snap)
	}
	return sum / float64(len(window))
}

// topDevice returns the device with the highest revenue, ties broken by
// name to keep report output deterministic.
func topDevice(revenue map[string]float64) (string, float64, bool) {
	var best string
	var bestRevenue float64
	found := false
	for device, rev := range revenue {
		if !found || rev > bestRevenue || (rev == bestRevenue && device < best) {
			best, bestRevenue, found = device, rev, true
		}
	}
	return best, bestRevenue, found
}

func alert(severity domain.Severity, metric, message string, observed float64, baseline *float64) domain.Alert {
	return domain.Alert{
		Severity:      severity,
		Message:       message,
		MetricName:    metric,
		ObservedValue: &observed,
		BaselineValue: baseline,
	}
}
