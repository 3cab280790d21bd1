package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/SergeiKhy/url-analytics/internal/middleware"
	"github.com/SergeiKhy/url-analytics/internal/models"
	"github.com/SergeiKhy/url-analytics/internal/repository"
	"github.com/SergeiKhy/url-analytics/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type URLHandler struct {
	service        service.URLService
	clickProcessor service.ClickProcessor
	baseURL        string
	logger         *zap.Logger
}

func NewURLHandler(service service.URLService, clickProcessor service.ClickProcessor, baseURL string, logger *zap.Logger) *URLHandler {
	return &URLHandler{
		service:        service,
		clickProcessor: clickProcessor,
		baseURL:        strings.TrimRight(baseURL, "/"),
		logger:         logger,
	}
}

type ShortenRequest struct {
	LongURL     string `json:"longUrl" binding:"required"`
	CustomAlias string `json:"customAlias,omitempty"`
	Topic       string `json:"topic,omitempty"`
}

type ShortenResponse struct {
	ShortURL  string    `json:"shortUrl"`
	Alias     string    `json:"alias"`
	CreatedAt time.Time `json:"createdAt"`
}

type URLResponse struct {
	ID          int64     `json:"id"`
	LongURL     string    `json:"longUrl"`
	ShortCode   string    `json:"shortCode"`
	CustomAlias *string   `json:"customAlias,omitempty"`
	Topic       *string   `json:"topic,omitempty"`
	ShortURL    string    `json:"shortUrl"`
	Clicks      int64     `json:"clicks"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Shorten godoc
// @Summary Create a short URL
// @Description Create a new shortened URL with an optional custom alias and topic
// @Tags urls
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ShortenRequest true "Shorten request"
// @Success 201 {object} ShortenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/shorten [post]
func (h *URLHandler) Shorten(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req ShortenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	url, err := h.service.Shorten(c.Request.Context(), &models.CreateURLInput{
		UserID:      userID,
		LongURL:     req.LongURL,
		CustomAlias: req.CustomAlias,
		Topic:       req.Topic,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidURL):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_url",
				Message: "longUrl must be an absolute http(s) URL",
			})
		case errors.Is(err, service.ErrInvalidAlias):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_alias",
				Message: "customAlias must be 4-32 characters: letters, digits, '-' or '_'",
			})
		case errors.Is(err, service.ErrAliasTaken):
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "alias_taken",
				Message: "Custom alias already in use",
			})
		default:
			h.logger.Error("Failed to create short url", zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to create short url",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, ShortenResponse{
		ShortURL:  h.shortURL(url.Alias()),
		Alias:     url.Alias(),
		CreatedAt: url.CreatedAt,
	})
}

// ListURLs godoc
// @Summary List short URLs
// @Description List every short URL owned by the caller
// @Tags urls
// @Produce json
// @Security BearerAuth
// @Success 200 {array} URLResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/shorten [get]
func (h *URLHandler) ListURLs(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		unauthorized(c)
		return
	}

	urls, err := h.service.ListURLs(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list urls", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list urls",
		})
		return
	}

	c.JSON(http.StatusOK, lo.Map(urls, func(u models.ShortURL, _ int) URLResponse {
		return URLResponse{
			ID:          u.ID,
			LongURL:     u.TargetURL,
			ShortCode:   u.ShortCode,
			CustomAlias: u.CustomAlias,
			Topic:       u.Topic,
			ShortURL:    h.shortURL(u.Alias()),
			Clicks:      u.ClickCount,
			CreatedAt:   u.CreatedAt,
		}
	}))
}

// Redirect godoc
// @Summary Redirect to the long URL
// @Description Resolve a short code or custom alias and record the click asynchronously
// @Tags urls
// @Param alias path string true "Short code or custom alias"
// @Success 307 {object} nil
// @Failure 404 {object} ErrorResponse
// @Router /{alias} [get]
func (h *URLHandler) Redirect(c *gin.Context) {
	alias := c.Param("alias")

	url, err := h.service.Resolve(c.Request.Context(), alias)
	if err != nil {
		if errors.Is(err, repository.ErrURLNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Short URL not found",
			})
			return
		}
		h.logger.Error("Failed to resolve alias", zap.String("alias", alias), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to resolve short url",
		})
		return
	}

	// Асинхронная запись клика
	req := &models.ClickRequest{
		URLID:     url.ID,
		ShortCode: alias,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		ClickedAt: time.Now().UTC(),
	}
	if err := h.clickProcessor.RecordClick(c.Request.Context(), req); err != nil {
		h.logger.Debug("Failed to record click (non-blocking)", zap.Error(err))
	}

	c.Redirect(http.StatusTemporaryRedirect, url.TargetURL)
}

func (h *URLHandler) shortURL(alias string) string {
	return h.baseURL + "/" + alias
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Error:   "unauthorized",
		Message: "Authentication required",
	})
}
