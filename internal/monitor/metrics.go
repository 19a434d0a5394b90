package monitor

import (
	"fmt"
	"sort"
	"time"

	"github.com/eventlab/commerce-analytics-pipeline/internal/domain"
	"github.com/eventlab/commerce-analytics-pipeline/internal/identity"
)

// Monitored metric names. Threshold and volume-floor configuration is
// keyed by these.
const (
	MetricRowCount         = "row_count"
	MetricPurchaseCount    = "purchase_count"
	MetricRevenue          = "revenue"
	MetricDuplicateRate    = "duplicate_rate"
	MetricNullClientRate   = "null_client_rate"
	MetricInvalidEventRate = "invalid_event_rate"
	MetricConversionRate   = "conversion_rate"
	MetricDirectShare      = "direct_share"
	MetricAssistedShare    = "assisted_share"
	MetricDeviceRevenue    = "device_revenue"
)

// DefaultTaxonomy is the allowed event-name taxonomy after upstream repair.
var DefaultTaxonomy = map[string]struct{}{
	"page_viewed":           {},
	"email_filled_on_popup": {},
	"product_added_to_cart": {},
	"checkout_started":      {},
	"purchase":              {},
}

// DailySnapshot holds every monitored metric for one UTC day.
type DailySnapshot struct {
	Date             string
	RowCount         float64
	PurchaseCount    float64
	Revenue          float64
	DuplicateRate    float64
	NullClientRate   float64
	InvalidEventRate float64
	SessionCount     float64
	ConversionRate   float64
	DirectShare      float64
	AssistedShare    float64
	DeviceRevenue    map[string]float64
}

// BuildSnapshots computes per-day metric snapshots from the pipeline's
// derived tables. Snapshots come back ordered by date ascending.
func BuildSnapshots(events []domain.Event, sessions []domain.Session, records []domain.AttributionRecord, taxonomy map[string]struct{}) []DailySnapshot {
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy
	}

	type accumulator struct {
		snap       DailySnapshot
		nullClient float64
		invalid    float64
		dupKeys    map[string]int
		purchases  float64
		assisted   float64
		directRev  float64
	}
	days := make(map[string]*accumulator)

	day := func(t time.Time) string { return t.UTC().Format("2006-01-02") }
	get := func(d string) *accumulator {
		acc, ok := days[d]
		if !ok {
			acc = &accumulator{
				snap:    DailySnapshot{Date: d, DeviceRevenue: map[string]float64{}},
				dupKeys: map[string]int{},
			}
			days[d] = acc
		}
		return acc
	}

	for _, event := range events {
		acc := get(day(event.Timestamp))
		acc.snap.RowCount++
		if !event.HasClientID() {
			acc.nullClient++
		}
		if _, ok := taxonomy[event.EventName]; !ok {
			acc.invalid++
		}
		key := fmt.Sprintf("%s|%s|%s|%s",
			event.SourceFile, event.Timestamp.UTC().Format(time.RFC3339Nano), event.EventName, event.RawEventData)
		acc.dupKeys[key]++

		if event.IsPurchase() {
			acc.snap.PurchaseCount++
			acc.snap.Revenue += event.Revenue()
			device := identity.Classify(event.UserAgent).DeviceType
			acc.snap.DeviceRevenue[device] += event.Revenue()
		}
	}

	for _, session := range sessions {
		get(day(session.StartTime)).snap.SessionCount++
	}

	for _, record := range records {
		acc := get(day(record.PurchaseTime))
		acc.purchases++
		if record.LastClickChannel == domain.ChannelDirect {
			acc.directRev += record.Revenue
		}
		if record.ConversionType() == domain.ConversionAssisted {
			acc.assisted++
		}
	}

	snapshots := make([]DailySnapshot, 0, len(days))
	for _, acc := range days {
		if acc.snap.RowCount > 0 {
			acc.snap.NullClientRate = acc.nullClient / acc.snap.RowCount
			acc.snap.InvalidEventRate = acc.invalid / acc.snap.RowCount
		}
		if len(acc.dupKeys) > 0 {
			var dup float64
			for _, count := range acc.dupKeys {
				if count > 1 {
					dup++
				}
			}
			acc.snap.DuplicateRate = dup / float64(len(acc.dupKeys))
		}
		if acc.snap.SessionCount > 0 {
			acc.snap.ConversionRate = acc.snap.PurchaseCount / acc.snap.SessionCount
		}
		if acc.snap.Revenue > 0 {
			acc.snap.DirectShare = acc.directRev / acc.snap.Revenue
		}
		if acc.purchases > 0 {
			acc.snap.AssistedShare = acc.assisted / acc.purchases
		}
		snapshots = append(snapshots, acc.snap)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Date < snapshots[j].Date
	})

	return snapshots
}

// LatestDate returns the maximum event date in the snapshot set. The
// monitoring evaluation date anchors on the data, never the wall clock.
func LatestDate(snapshots []DailySnapshot) (string, bool) {
	if len(snapshots) == 0 {
		return "", false
	}
	return snapshots[len(snapshots)-1].Date, true
}
