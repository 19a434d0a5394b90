package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/eventlab/commerce-analytics-pipeline/internal/dto"
	"github.com/eventlab/commerce-analytics-pipeline/internal/service"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "analytics_api_requests_total",
	Help: "Total API requests by route and status code.",
}, []string{"route", "code"})

type Handler struct {
	analyticsService service.AnalyticsServicer
	router           *gin.Engine
	log              *zap.Logger
}

func NewHandler(analyticsService service.AnalyticsServicer, log *zap.Logger) *Handler {
	h := &Handler{
		analyticsService: analyticsService,
		router:           gin.Default(),
		log:              log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.Use(countRequests())
	h.router.GET("/health", h.healthCheck)
	h.router.GET("/channels/revenue", h.getChannelRevenue)
	h.router.GET("/channels/conversion", h.getChannelConversion)
	h.router.GET("/products/top", h.getTopProducts)
	h.router.GET("/reports/latest", h.getLatestReport)
	h.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func countRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		requestsTotal.WithLabelValues(c.FullPath(), strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// getChannelRevenue handles GET /channels/revenue
func (h *Handler) getChannelRevenue(c *gin.Context) {
	var req dto.GetChannelRevenueRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Warn("Invalid channel revenue request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	response, err := h.analyticsService.GetChannelRevenue(&req)
	if err != nil {
		h.log.Error("Failed to get channel revenue",
			zap.Error(err),
			zap.String("policy", req.Policy))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// getChannelConversion handles GET /channels/conversion
func (h *Handler) getChannelConversion(c *gin.Context) {
	response, err := h.analyticsService.GetChannelConversion()
	if err != nil {
		h.log.Error("Failed to get channel conversion", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// getTopProducts handles GET /products/top
func (h *Handler) getTopProducts(c *gin.Context) {
	var req dto.GetTopProductsRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Warn("Invalid top products request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	response, err := h.analyticsService.GetTopProducts(&req)
	if err != nil {
		h.log.Error("Failed to get top products",
			zap.Error(err),
			zap.Int("limit", req.Limit))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// getLatestReport handles GET /reports/latest
func (h *Handler) getLatestReport(c *gin.Context) {
	report, err := h.analyticsService.GetLatestReport()
	if err != nil {
		h.log.Error("Failed to get latest report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, report)
}
