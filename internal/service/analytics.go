package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/eventlab/commerce-analytics-pipeline/internal/domain"
	"github.com/eventlab/commerce-analytics-pipeline/internal/dto"
	"github.com/eventlab/commerce-analytics-pipeline/internal/repository"
)

// AnalyticsService represents the read-side analytics service
type AnalyticsService struct {
	repository repository.AnalyticsRepository
	log        *zap.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(repo repository.AnalyticsRepository, log *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		repository: repo,
		log:        log,
	}
}

// GetChannelRevenue retrieves per-channel revenue under one attribution policy
func (s *AnalyticsService) GetChannelRevenue(req *dto.GetChannelRevenueRequest) (*dto.GetChannelRevenueResponse, error) {
	ctx := context.Background()

	validPolicies := map[string]bool{
		repository.PolicyFirstClick: true,
		repository.PolicyLastClick:  true,
	}
	if !validPolicies[req.Policy] {
		s.log.Warn("Invalid attribution policy requested",
			zap.String("policy", req.Policy))
		return nil, fmt.Errorf("invalid policy: %s (supported: first_click, last_click)", req.Policy)
	}

	channels, err := s.repository.ChannelRevenue(ctx, req.Policy)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel revenue from repository: %w", err)
	}

	response := &dto.GetChannelRevenueResponse{
		Policy:   req.Policy,
		Channels: make([]dto.ChannelRevenueData, 0, len(channels)),
	}
	for _, channel := range channels {
		response.Channels = append(response.Channels, dto.ChannelRevenueData{
			Channel:   channel.Channel,
			Revenue:   channel.Revenue,
			Purchases: channel.Purchases,
		})
	}

	return response, nil
}

// GetChannelConversion retrieves per-channel conversion rates
func (s *AnalyticsService) GetChannelConversion() (*dto.GetChannelConversionResponse, error) {
	ctx := context.Background()

	conversions, err := s.repository.ChannelConversion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel conversion from repository: %w", err)
	}

	response := &dto.GetChannelConversionResponse{
		Channels: make([]dto.ChannelConversionData, 0, len(conversions)),
	}
	for _, conversion := range conversions {
		response.Channels = append(response.Channels, dto.ChannelConversionData{
			Channel:        conversion.Channel,
			Purchases:      conversion.Purchases,
			Sessions:       conversion.Sessions,
			ConversionRate: conversion.ConversionRate,
		})
	}

	return response, nil
}

// DefaultTopProductsLimit caps the top-products rollup when no limit is given.
const DefaultTopProductsLimit = 50

// GetTopProducts retrieves the highest-revenue products
func (s *AnalyticsService) GetTopProducts(req *dto.GetTopProductsRequest) (*dto.GetTopProductsResponse, error) {
	ctx := context.Background()

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultTopProductsLimit
	}

	products, err := s.repository.TopProducts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top products from repository: %w", err)
	}

	response := &dto.GetTopProductsResponse{
		Limit:    limit,
		Products: make([]dto.ProductRevenueData, 0, len(products)),
	}
	for _, product := range products {
		response.Products = append(response.Products, dto.ProductRevenueData{
			ProductID: product.ProductID,
			Purchases: product.Purchases,
			Revenue:   product.Revenue,
		})
	}

	return response, nil
}

// GetLatestReport retrieves the most recent monitoring report
func (s *AnalyticsService) GetLatestReport() (*domain.MonitoringReport, error) {
	ctx := context.Background()

	report, err := s.repository.LatestReport(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest report from repository: %w", err)
	}

	return report, nil
}
