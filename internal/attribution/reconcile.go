package attribution

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eventlab/commerce-analytics-pipeline/internal/domain"
)

// ReconciliationError signals that attributed revenue does not sum to the
// raw purchase revenue. It indicates a defect in event selection (e.g. a
// silently dropped purchase) and must abort the attribution stage.
type ReconciliationError struct {
	RawRevenue        float64
	AttributedRevenue float64
	PurchaseCount     int

	// UnmatchedPurchaseIDs names the purchases behind the mismatch:
	// purchases with no record, records with no purchase, and records
	// whose revenue differs from their purchase's.
	UnmatchedPurchaseIDs []string
}

func (e *ReconciliationError) Error() string {
	msg := fmt.Sprintf(
		"attributed revenue %.2f does not reconcile with raw purchase revenue %.2f across %d purchases",
		e.AttributedRevenue, e.RawRevenue, e.PurchaseCount)
	if len(e.UnmatchedPurchaseIDs) > 0 {
		msg += fmt.Sprintf(" (unmatched purchases: %s)", strings.Join(e.UnmatchedPurchaseIDs, ", "))
	}
	return msg
}

// reconcile enforces the hard invariant: the sum of record revenue equals
// the raw purchase revenue exactly. Record revenue is copied verbatim from
// the purchase events, so the comparison is exact, not tolerance-based. On
// mismatch the error names every purchase whose record is missing, extra,
// or carries a diverged revenue.
func reconcile(records []domain.AttributionRecord, purchases []domain.Event) error {
	var rawRevenue, attributed float64
	for _, record := range records {
		attributed += record.Revenue
	}
	for i := range purchases {
		rawRevenue += purchases[i].Revenue()
	}

	if attributed == rawRevenue && len(records) == len(purchases) {
		return nil
	}

	recorded := make(map[string]float64, len(records))
	for _, record := range records {
		recorded[record.PurchaseID] = record.Revenue
	}

	unmatchedSet := make(map[string]struct{})
	for i := range purchases {
		id := purchaseID(&purchases[i])
		revenue, ok := recorded[id]
		if !ok || revenue != purchases[i].Revenue() {
			unmatchedSet[id] = struct{}{}
		}
		delete(recorded, id)
	}
	for id := range recorded {
		unmatchedSet[id] = struct{}{}
	}

	unmatched := make([]string, 0, len(unmatchedSet))
	for id := range unmatchedSet {
		unmatched = append(unmatched, id)
	}
	sort.Strings(unmatched)

	return &ReconciliationError{
		RawRevenue:           rawRevenue,
		AttributedRevenue:    attributed,
		PurchaseCount:        len(purchases),
		UnmatchedPurchaseIDs: unmatched,
	}
}
