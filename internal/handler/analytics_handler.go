package handler

import (
	"errors"
	"net/http"

	"github.com/SergeiKhy/url-analytics/internal/analytics"
	"github.com/SergeiKhy/url-analytics/internal/middleware"
	"github.com/SergeiKhy/url-analytics/internal/repository"
	"github.com/SergeiKhy/url-analytics/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type AnalyticsHandler struct {
	service service.AnalyticsService
	logger  *zap.Logger
}

func NewAnalyticsHandler(service service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger,
	}
}

type OSStat struct {
	OSName       string `json:"osName"`
	UniqueClicks int64  `json:"uniqueClicks"`
	UniqueUsers  int64  `json:"uniqueUsers"`
}

type DeviceStat struct {
	DeviceName   string `json:"deviceName"`
	UniqueClicks int64  `json:"uniqueClicks"`
	UniqueUsers  int64  `json:"uniqueUsers"`
}

type DateClicks struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

type URLStat struct {
	ShortURL    string `json:"shortUrl"`
	TotalClicks int64  `json:"totalClicks"`
	UniqueUsers int64  `json:"uniqueUsers"`
}

type URLAnalyticsResponse struct {
	TotalClicks  int64            `json:"totalClicks"`
	UniqueUsers  int64            `json:"uniqueUsers"`
	ClicksByDate map[string]int64 `json:"clicksByDate"`
	OSType       []OSStat         `json:"osType"`
	DeviceType   []DeviceStat     `json:"deviceType"`
}

type TopicAnalyticsResponse struct {
	TotalClicks  int64        `json:"totalClicks"`
	UniqueUsers  int64        `json:"uniqueUsers"`
	ClicksByDate []DateClicks `json:"clicksByDate"`
	URLs         []URLStat    `json:"urls"`
}

type OverallAnalyticsResponse struct {
	TotalURLs    int          `json:"totalUrls"`
	TotalClicks  int64        `json:"totalClicks"`
	UniqueUsers  int64        `json:"uniqueUsers"`
	ClicksByDate []DateClicks `json:"clicksByDate"`
	OSType       []OSStat     `json:"osType"`
	DeviceType   []DeviceStat `json:"deviceType"`
}

// GetURLAnalytics godoc
// @Summary Analytics for one short URL
// @Description Totals, unique visitors, clicks per day for the recent window and OS/device breakdowns
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param alias path string true "Short code or custom alias"
// @Success 200 {object} URLAnalyticsResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/analytics/{alias} [get]
func (h *AnalyticsHandler) GetURLAnalytics(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		unauthorized(c)
		return
	}
	alias := c.Param("alias")

	summary, err := h.service.URLAnalytics(c.Request.Context(), userID, alias)
	if err != nil {
		if errors.Is(err, repository.ErrURLNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Short URL not found",
			})
			return
		}
		h.internalError(c, err, zap.String("alias", alias))
		return
	}

	c.JSON(http.StatusOK, URLAnalyticsResponse{
		TotalClicks:  summary.TotalClicks,
		UniqueUsers:  summary.UniqueUsers,
		ClicksByDate: summary.ClicksByDate,
		OSType:       osStats(summary.OSType),
		DeviceType:   deviceStats(summary.DeviceType),
	})
}

// GetTopicAnalytics godoc
// @Summary Analytics for a topic
// @Description Aggregated clicks over every short URL of the caller with the given topic
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param topic path string true "Topic"
// @Success 200 {object} TopicAnalyticsResponse
// @Router /api/topicAnalytics/{topic} [get]
func (h *AnalyticsHandler) GetTopicAnalytics(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		unauthorized(c)
		return
	}
	topic := c.Param("topic")

	summary, err := h.service.TopicAnalytics(c.Request.Context(), userID, topic)
	if err != nil {
		h.internalError(c, err, zap.String("topic", topic))
		return
	}

	c.JSON(http.StatusOK, TopicAnalyticsResponse{
		TotalClicks:  summary.TotalClicks,
		UniqueUsers:  summary.UniqueUsers,
		ClicksByDate: dateClicks(summary.ClicksByDate),
		URLs: lo.Map(summary.URLs, func(s analytics.URLStats, _ int) URLStat {
			return URLStat{
				ShortURL:    s.ShortURL,
				TotalClicks: s.TotalClicks,
				UniqueUsers: s.UniqueUsers,
			}
		}),
	})
}

// GetOverallAnalytics godoc
// @Summary Overall analytics
// @Description Aggregated clicks over every short URL of the caller
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} OverallAnalyticsResponse
// @Router /api/overallAnalytics [get]
func (h *AnalyticsHandler) GetOverallAnalytics(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		unauthorized(c)
		return
	}

	summary, err := h.service.OverallAnalytics(c.Request.Context(), userID)
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, OverallAnalyticsResponse{
		TotalURLs:    summary.TotalURLs,
		TotalClicks:  summary.TotalClicks,
		UniqueUsers:  summary.UniqueUsers,
		ClicksByDate: dateClicks(summary.ClicksByDate),
		OSType:       osStats(summary.OSType),
		DeviceType:   deviceStats(summary.DeviceType),
	})
}

func (h *AnalyticsHandler) internalError(c *gin.Context, err error, fields ...zap.Field) {
	h.logger.Error("Failed to build analytics", append(fields, zap.Error(err))...)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "Failed to build analytics",
	})
}

func osStats(stats []analytics.CategoryStats) []OSStat {
	return lo.Map(stats, func(s analytics.CategoryStats, _ int) OSStat {
		return OSStat{OSName: s.Label, UniqueClicks: s.Clicks, UniqueUsers: s.UniqueVisitors}
	})
}

func deviceStats(stats []analytics.CategoryStats) []DeviceStat {
	return lo.Map(stats, func(s analytics.CategoryStats, _ int) DeviceStat {
		return DeviceStat{DeviceName: s.Label, UniqueClicks: s.Clicks, UniqueUsers: s.UniqueVisitors}
	})
}

func dateClicks(dates []analytics.DateCount) []DateClicks {
	return lo.Map(dates, func(d analytics.DateCount, _ int) DateClicks {
		return DateClicks{Date: d.Date, Clicks: d.Clicks}
	})
}
