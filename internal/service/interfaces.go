package service

import (
	"github.com/eventlab/commerce-analytics-pipeline/internal/domain"
	"github.com/eventlab/commerce-analytics-pipeline/internal/dto"
)

// AnalyticsServicer defines the interface for read-side analytics queries
type AnalyticsServicer interface {
	GetChannelRevenue(req *dto.GetChannelRevenueRequest) (*dto.GetChannelRevenueResponse, error)
	GetChannelConversion() (*dto.GetChannelConversionResponse, error)
	GetTopProducts(req *dto.GetTopProductsRequest) (*dto.GetTopProductsResponse, error)
	GetLatestReport() (*domain.MonitoringReport, error)
}
