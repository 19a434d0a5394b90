package domain

// Severity classifies an alert by required response urgency.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarn     Severity = "WARN"
	SeverityInfo     Severity = "INFO"
)

// Report statuses. Only FAIL should stop a dependent pipeline stage.
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
)

// Alert represents one detected anomaly or observation
type Alert struct {
	Severity      Severity `json:"severity"`
	Message       string   `json:"message"`
	MetricName    string   `json:"metric_name,omitempty"`
	ObservedValue *float64 `json:"observed_value,omitempty"`
	BaselineValue *float64 `json:"baseline_value,omitempty"`
}

// MonitoringReport represents the complete output of one monitoring run.
// Reports are generated fresh per run and never mutated. The report carries
// no run-scoped identifiers so identical inputs produce byte-identical
// reports.
type MonitoringReport struct {
	Date   string  `json:"date"`
	Alerts []Alert `json:"alerts"`
	Status string  `json:"status"`
}

// Failed reports whether the run detected at least one CRITICAL alert.
func (r *MonitoringReport) Failed() bool {
	return r.Status == StatusFail
}
