package dto

// GetChannelRevenueRequest represents a channel revenue query request
type GetChannelRevenueRequest struct {
	Policy string `form:"policy" binding:"required" example:"last_click"`
}

// GetTopProductsRequest represents a top products query request
type GetTopProductsRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500" example:"50"`
}
