package normalizer

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/eventlab/commerce-analytics-pipeline/internal/domain"
)

// Normalizer validates and repairs the cleaned event stream and produces
// the canonical, ordered event set consumed by all downstream components.
type Normalizer struct {
	remap map[string]string
	log   *zap.Logger
}

// New creates a new normalizer. The remap table translates known taxonomy
// issues (e.g. checkout_completed) into canonical event names; it is
// business configuration, not logic.
func New(remap map[string]string, log *zap.Logger) *Normalizer {
	return &Normalizer{
		remap: remap,
		log:   log,
	}
}

// Normalize canonicalizes a batch of events and returns them ordered by
// timestamp ascending, ties broken by original row order. A record with a
// missing timestamp or event name is a precondition violation and fails
// the whole batch.
func (n *Normalizer) Normalize(events []domain.Event) ([]domain.Event, error) {
	out := make([]domain.Event, 0, len(events))

	for i, event := range events {
		event.RowOrder = i

		event.EventName = strings.TrimSpace(event.EventName)
		if event.EventName == "" {
			return nil, fmt.Errorf("event at row %d has no event name", i)
		}
		if event.Timestamp.IsZero() {
			return nil, fmt.Errorf("event at row %d (%s) has no valid timestamp", i, event.EventName)
		}
		event.Timestamp = event.Timestamp.UTC()

		if canonical, ok := n.remap[event.EventName]; ok {
			n.log.Debug("Remapped event name",
				zap.String("from", event.EventName),
				zap.String("to", canonical))
			event.EventName = canonical
		}

		if event.UTMSource == "" {
			event.UTMSource, event.UTMMedium, event.UTMCampaign = extractUTMs(event.PageURL)
		}
		event.ReferrerDomain = extractDomain(event.Referrer)

		event.UnitPrice = extractPrice(event.EventData)
		event.Quantity = extractQuantity(event.EventData)
		event.ProductID = extractProductID(event.EventData)
		if event.UnitPrice != nil && event.Quantity != nil {
			total := *event.UnitPrice * *event.Quantity
			event.Total = &total
		}

		out = append(out, event)
	}

	// Incoming order is never trusted: sort explicitly. The stable sort
	// preserves row order for equal timestamps.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	n.log.Info("Normalized event batch", zap.Int("event_count", len(out)))

	return out, nil
}

// extractUTMs pulls utm_source/medium/campaign from a page URL query string.
func extractUTMs(pageURL string) (source, medium, campaign string) {
	if pageURL == "" {
		return "", "", ""
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", "", ""
	}
	q := u.Query()
	return q.Get("utm_source"), q.Get("utm_medium"), q.Get("utm_campaign")
}

// extractDomain returns the lowercased host of a referrer URL, or empty.
func extractDomain(referrer string) string {
	if referrer == "" {
		return ""
	}
	u, err := url.Parse(referrer)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
