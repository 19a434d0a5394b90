package attribution

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eventlab/commerce-analytics-pipeline/internal/domain"
)

// DefaultLookback is the default attribution lookback window.
const DefaultLookback = 7 * 24 * time.Hour

// Engine assigns purchase revenue to marketing channels from the
// touchpoint history in a bounded lookback window, under first-click and
// last-click policies.
type Engine struct {
	lookback time.Duration
	log      *zap.Logger
}

// New creates a new attribution engine with the given lookback window.
func New(lookback time.Duration, log *zap.Logger) *Engine {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &Engine{
		lookback: lookback,
		log:      log,
	}
}

// Attribute produces one record per purchase event. Events must be in
// canonical order. The returned records reconcile exactly against the raw
// purchase revenue; a mismatch aborts the stage with a ReconciliationError.
func (e *Engine) Attribute(events []domain.Event) ([]domain.AttributionRecord, error) {
	byClient := make(map[string][]domain.Event)
	for _, event := range events {
		if event.HasClientID() {
			byClient[event.ClientID] = append(byClient[event.ClientID], event)
		}
	}

	var records []domain.AttributionRecord
	var purchases []domain.Event
	var rawRevenue float64

	for _, event := range events {
		if !event.IsPurchase() {
			continue
		}
		purchases = append(purchases, event)
		rawRevenue += event.Revenue()

		history := byClient[event.ClientID]
		if !event.HasClientID() {
			// No identity, no touchpoint history: the purchase itself is
			// the only possible candidate.
			history = []domain.Event{event}
		}

		records = append(records, e.attributePurchase(event, history))
	}

	if err := reconcile(records, purchases); err != nil {
		e.log.Error("Attribution reconciliation failed", zap.Error(err))
		return nil, err
	}

	e.log.Info("Attributed purchases",
		zap.Int("purchase_count", len(records)),
		zap.Float64("attributed_revenue", rawRevenue))

	return records, nil
}

// attributePurchase scans the client's ordered history for touchpoints
// inside [purchase_time - lookback, purchase_time], both ends inclusive.
// The purchase event itself is a candidate only if it carries a UTM value.
func (e *Engine) attributePurchase(purchase domain.Event, history []domain.Event) domain.AttributionRecord {
	record := domain.AttributionRecord{
		PurchaseID:        purchaseID(&purchase),
		ClientID:          purchase.ClientID,
		PurchaseTime:      purchase.Timestamp,
		Revenue:           purchase.Revenue(),
		ProductID:         purchase.ProductID,
		FirstClickChannel: domain.ChannelDirect,
		LastClickChannel:  domain.ChannelDirect,
	}

	windowStart := purchase.Timestamp.Add(-e.lookback)

	var first, last *domain.Event
	for i := range history {
		t := &history[i]
		if !t.IsTouchpoint() {
			continue
		}
		if t.Timestamp.Before(windowStart) || t.Timestamp.After(purchase.Timestamp) {
			continue
		}
		// History is in canonical order, so the first hit is the earliest
		// candidate (earliest row on ties) and the final hit is the latest
		// candidate (latest row on ties).
		if first == nil {
			first = t
		}
		last = t
	}

	if first != nil {
		record.FirstClickChannel = first.UTMSource
		record.FirstClickMedium = first.UTMMedium
		record.FirstClickCampaign = first.UTMCampaign
	}
	if last != nil {
		record.LastClickChannel = last.UTMSource
		record.LastClickMedium = last.UTMMedium
		record.LastClickCampaign = last.UTMCampaign
	}

	return record
}

// purchaseID generates a deterministic purchase ID from the event content.
// Uses SHA-256 of: client_id|timestamp|source_file|row_order.
func purchaseID(purchase *domain.Event) string {
	data := fmt.Sprintf("%s|%s|%s|%d",
		purchase.ClientID,
		purchase.Timestamp.UTC().Format(time.RFC3339Nano),
		purchase.SourceFile,
		purchase.RowOrder,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
