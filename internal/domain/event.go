package domain

import "time"

// Event represents one tracked action from the cleaned event stream
type Event struct {
	ClientID       string         `ch:"client_id" json:"client_id"`
	EventName      string         `ch:"event_name" json:"event_name"`
	Timestamp      time.Time      `ch:"timestamp" json:"timestamp"`
	PageURL        string         `ch:"page_url" json:"page_url"`
	Referrer       string         `ch:"referrer" json:"referrer,omitempty"`
	ReferrerDomain string         `ch:"referrer_domain" json:"referrer_domain,omitempty"`
	UTMSource      string         `ch:"utm_source" json:"utm_source,omitempty"`
	UTMMedium      string         `ch:"utm_medium" json:"utm_medium,omitempty"`
	UTMCampaign    string         `ch:"utm_campaign" json:"utm_campaign,omitempty"`
	EventData      map[string]any `json:"event_data,omitempty"`
	RawEventData   string         `ch:"event_data" json:"-"`
	SourceFile     string         `ch:"source_file" json:"source_file"`
	UserAgent      string         `ch:"user_agent" json:"user_agent"`

	// Extracted by the normalizer from EventData. Nil means the payload
	// did not carry the field.
	UnitPrice *float64 `json:"unit_price,omitempty"`
	Quantity  *float64 `json:"quantity,omitempty"`
	Total     *float64 `json:"total,omitempty"`
	ProductID string   `json:"product_id,omitempty"`

	// RowOrder is the position of the event in the input snapshot. It is
	// the deterministic tie-break for equal timestamps.
	RowOrder int `json:"row_order"`
}

// EventNamePurchase is the canonical purchase event name.
const EventNamePurchase = "purchase"

// HasClientID reports whether the event carries a client identity.
func (e *Event) HasClientID() bool {
	return e.ClientID != ""
}

// IsPurchase reports whether the event is a purchase.
func (e *Event) IsPurchase() bool {
	return e.EventName == EventNamePurchase
}

// IsTouchpoint reports whether the event is marketing-attributable.
func (e *Event) IsTouchpoint() bool {
	return e.UTMSource != ""
}

// Revenue returns the purchase revenue (unit price times quantity).
// Events without an extracted total contribute zero.
func (e *Event) Revenue() float64 {
	if e.Total == nil {
		return 0
	}
	return *e.Total
}
