package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/eventlab/commerce-analytics-pipeline/internal/domain"
	"github.com/eventlab/commerce-analytics-pipeline/internal/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) GetChannelRevenue(req *dto.GetChannelRevenueRequest) (*dto.GetChannelRevenueResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.GetChannelRevenueResponse), args.Error(1)
}

func (m *MockAnalyticsService) GetChannelConversion() (*dto.GetChannelConversionResponse, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.GetChannelConversionResponse), args.Error(1)
}

func (m *MockAnalyticsService) GetTopProducts(req *dto.GetTopProductsRequest) (*dto.GetTopProductsResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.GetTopProductsResponse), args.Error(1)
}

func (m *MockAnalyticsService) GetLatestReport() (*domain.MonitoringReport, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MonitoringReport), args.Error(1)
}

func performRequest(h http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	h := NewHandler(new(MockAnalyticsService), zap.NewNop())

	w := performRequest(h, http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestGetChannelRevenue_OK(t *testing.T) {
	svc := new(MockAnalyticsService)
	svc.On("GetChannelRevenue", &dto.GetChannelRevenueRequest{Policy: "last_click"}).Return(&dto.GetChannelRevenueResponse{
		Policy: "last_click",
		Channels: []dto.ChannelRevenueData{
			{Channel: "google", Revenue: 1500.5, Purchases: 42},
		},
	}, nil)
	h := NewHandler(svc, zap.NewNop())

	w := performRequest(h, http.MethodGet, "/channels/revenue?policy=last_click")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.GetChannelRevenueResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "last_click", resp.Policy)
	assert.Len(t, resp.Channels, 1)
	assert.Equal(t, "google", resp.Channels[0].Channel)
	svc.AssertExpectations(t)
}

func TestGetChannelRevenue_MissingPolicy(t *testing.T) {
	svc := new(MockAnalyticsService)
	h := NewHandler(svc, zap.NewNop())

	w := performRequest(h, http.MethodGet, "/channels/revenue")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp dto.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Error)
	svc.AssertNotCalled(t, "GetChannelRevenue", mock.Anything)
}

func TestGetChannelRevenue_ServiceError(t *testing.T) {
	svc := new(MockAnalyticsService)
	svc.On("GetChannelRevenue", mock.Anything).Return(nil, errors.New("invalid policy: linear"))
	h := NewHandler(svc, zap.NewNop())

	w := performRequest(h, http.MethodGet, "/channels/revenue?policy=linear")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp dto.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "internal_error", resp.Error)
}

func TestGetChannelConversion_OK(t *testing.T) {
	svc := new(MockAnalyticsService)
	svc.On("GetChannelConversion").Return(&dto.GetChannelConversionResponse{
		Channels: []dto.ChannelConversionData{
			{Channel: "google", Purchases: 42, Sessions: 1800, ConversionRate: 0.023333},
		},
	}, nil)
	h := NewHandler(svc, zap.NewNop())

	w := performRequest(h, http.MethodGet, "/channels/conversion")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.GetChannelConversionResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Channels, 1)
	assert.Equal(t, "google", resp.Channels[0].Channel)
	assert.Equal(t, uint64(1800), resp.Channels[0].Sessions)
	svc.AssertExpectations(t)
}

func TestGetChannelConversion_ServiceError(t *testing.T) {
	svc := new(MockAnalyticsService)
	svc.On("GetChannelConversion").Return(nil, errors.New("connection refused"))
	h := NewHandler(svc, zap.NewNop())

	w := performRequest(h, http.MethodGet, "/channels/conversion")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetTopProducts_OK(t *testing.T) {
	svc := new(MockAnalyticsService)
	svc.On("GetTopProducts", &dto.GetTopProductsRequest{Limit: 5}).Return(&dto.GetTopProductsResponse{
		Limit: 5,
		Products: []dto.ProductRevenueData{
			{ProductID: "sku-1042", Purchases: 17, Revenue: 849.83},
		},
	}, nil)
	h := NewHandler(svc, zap.NewNop())

	w := performRequest(h, http.MethodGet, "/products/top?limit=5")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.GetTopProductsResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Limit)
	assert.Len(t, resp.Products, 1)
	assert.Equal(t, "sku-1042", resp.Products[0].ProductID)
	svc.AssertExpectations(t)
}

func TestGetTopProducts_InvalidLimit(t *testing.T) {
	svc := new(MockAnalyticsService)
	h := NewHandler(svc, zap.NewNop())

	w := performRequest(h, http.MethodGet, "/products/top?limit=-1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "GetTopProducts", mock.Anything)
}

func TestGetLatestReport_OK(t *testing.T) {
	svc := new(MockAnalyticsService)
	svc.On("GetLatestReport").Return(&domain.MonitoringReport{
		Date:   "2025-09-10",
		Status: domain.StatusFail,
		Alerts: []domain.Alert{{Severity: domain.SeverityCritical, MetricName: "revenue", Message: "Revenue drop detected"}},
	}, nil)
	h := NewHandler(svc, zap.NewNop())

	w := performRequest(h, http.MethodGet, "/reports/latest")

	assert.Equal(t, http.StatusOK, w.Code)
	var report domain.MonitoringReport
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "2025-09-10", report.Date)
	assert.Equal(t, domain.StatusFail, report.Status)
	assert.Len(t, report.Alerts, 1)
}

func TestGetLatestReport_ServiceError(t *testing.T) {
	svc := new(MockAnalyticsService)
	svc.On("GetLatestReport").Return(nil, errors.New("no reports stored"))
	h := NewHandler(svc, zap.NewNop())

	w := performRequest(h, http.MethodGet, "/reports/latest")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := NewHandler(new(MockAnalyticsService), zap.NewNop())

	// Labeled counters only surface after a first increment.
	performRequest(h, http.MethodGet, "/health")
	w := performRequest(h, http.MethodGet, "/metrics")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "analytics_api_requests_total")
}
