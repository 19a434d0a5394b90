package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"validation_error"`
	Message string `json:"message,omitempty" example:"policy is required"`
}

// ChannelRevenueData represents aggregated revenue for one channel
type ChannelRevenueData struct {
	Channel   string  `json:"channel" example:"google"`
	Revenue   float64 `json:"revenue" example:"15230.50"`
	Purchases uint64  `json:"purchases" example:"42"`
}

// GetChannelRevenueResponse represents the channel revenue query response
type GetChannelRevenueResponse struct {
	Policy   string               `json:"policy" example:"last_click"`
	Channels []ChannelRevenueData `json:"channels"`
}

// ChannelConversionData represents the conversion rate for one channel
type ChannelConversionData struct {
	Channel        string  `json:"channel" example:"google"`
	Purchases      uint64  `json:"purchases" example:"42"`
	Sessions       uint64  `json:"sessions" example:"1800"`
	ConversionRate float64 `json:"conversion_rate" example:"0.023333"`
}

// GetChannelConversionResponse represents the channel conversion query response
type GetChannelConversionResponse struct {
	Channels []ChannelConversionData `json:"channels"`
}

// ProductRevenueData represents aggregated revenue for one product
type ProductRevenueData struct {
	ProductID string  `json:"product_id" example:"sku-1042"`
	Purchases uint64  `json:"purchases" example:"17"`
	Revenue   float64 `json:"revenue" example:"849.83"`
}

// GetTopProductsResponse represents the top products query response
type GetTopProductsResponse struct {
	Limit    int                  `json:"limit" example:"50"`
	Products []ProductRevenueData `json:"products"`
}
