package domain

import "time"

// ChannelDirect is the sentinel channel assigned to purchases with no
// eligible touchpoint in the lookback window.
const ChannelDirect = "direct"

// Conversion type labels for the assisted-vs-direct breakdown.
const (
	ConversionPureDirect    = "Pure Direct"
	ConversionSingleChannel = "Single Channel"
	ConversionAssisted      = "Assisted Conversion"
)

// AttributionRecord represents one attributed purchase
type AttributionRecord struct {
	PurchaseID         string    `ch:"purchase_id" json:"purchase_id"`
	ClientID           string    `ch:"client_id" json:"client_id"`
	PurchaseTime       time.Time `ch:"purchase_time" json:"purchase_time"`
	Revenue            float64   `ch:"revenue" json:"revenue"`
	ProductID          string    `ch:"product_id" json:"product_id,omitempty"`
	FirstClickChannel  string    `ch:"first_click_channel" json:"first_click_channel"`
	FirstClickMedium   string    `ch:"first_click_medium" json:"first_click_medium,omitempty"`
	FirstClickCampaign string    `ch:"first_click_campaign" json:"first_click_campaign,omitempty"`
	LastClickChannel   string    `ch:"last_click_channel" json:"last_click_channel"`
	LastClickMedium    string    `ch:"last_click_medium" json:"last_click_medium,omitempty"`
	LastClickCampaign  string    `ch:"last_click_campaign" json:"last_click_campaign,omitempty"`
}

// ConversionType classifies the purchase journey by its first and last
// touchpoints.
func (r *AttributionRecord) ConversionType() string {
	switch {
	case r.FirstClickChannel == ChannelDirect && r.LastClickChannel == ChannelDirect:
		return ConversionPureDirect
	case r.FirstClickChannel == r.LastClickChannel:
		return ConversionSingleChannel
	default:
		return ConversionAssisted
	}
}

// ChannelRevenue represents aggregated revenue for one marketing channel
type ChannelRevenue struct {
	Channel   string  `ch:"channel" json:"channel"`
	Revenue   float64 `ch:"revenue" json:"revenue"`
	Purchases uint64  `ch:"purchases" json:"purchases"`
}

// ChannelConversion represents the conversion rate for sessions assigned
// to one channel (the session's last UTM source)
type ChannelConversion struct {
	Channel        string  `ch:"channel" json:"channel"`
	Purchases      uint64  `ch:"purchases" json:"purchases"`
	Sessions       uint64  `ch:"sessions" json:"sessions"`
	ConversionRate float64 `ch:"conversion_rate" json:"conversion_rate"`
}

// ProductRevenue represents aggregated revenue for one product
type ProductRevenue struct {
	ProductID string  `ch:"product_id" json:"product_id"`
	Purchases uint64  `ch:"purchases" json:"purchases"`
	Revenue   float64 `ch:"revenue" json:"revenue"`
}
