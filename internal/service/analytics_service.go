package service

import (
	"context"
	"time"

	"github.com/SergeiKhy/url-analytics/internal/analytics"
	"github.com/SergeiKhy/url-analytics/internal/models"
	"github.com/SergeiKhy/url-analytics/internal/repository"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// AnalyticsService строит отчёты по кликам для владельца ссылок
type AnalyticsService interface {
	URLAnalytics(ctx context.Context, userID, alias string) (*analytics.URLSummary, error)
	TopicAnalytics(ctx context.Context, userID, topic string) (*analytics.TopicSummary, error)
	OverallAnalytics(ctx context.Context, userID string) (*analytics.OverallSummary, error)
}

// AnalyticsConfig параметры отчётов.
// Now подменяется в тестах; по умолчанию time.Now.
type AnalyticsConfig struct {
	WindowDays int
	Now        func() time.Time
}

type analyticsService struct {
	urlRepo    repository.URLRepository
	clickRepo  repository.ClickRepository
	windowDays int
	now        func() time.Time
	logger     *zap.Logger
}

// NewAnalyticsService создаёт сервис аналитики
func NewAnalyticsService(
	urlRepo repository.URLRepository,
	clickRepo repository.ClickRepository,
	cfg AnalyticsConfig,
	logger *zap.Logger,
) AnalyticsService {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = analytics.DefaultWindowDays
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &analyticsService{
		urlRepo:    urlRepo,
		clickRepo:  clickRepo,
		windowDays: cfg.WindowDays,
		now:        cfg.Now,
		logger:     logger,
	}
}

// URLAnalytics отчёт по одной ссылке пользователя; чужая ссылка считается несуществующей
func (s *analyticsService) URLAnalytics(ctx context.Context, userID, alias string) (*analytics.URLSummary, error) {
	shortURL, err := s.urlRepo.GetByAliasForUser(ctx, userID, alias)
	if err != nil {
		return nil, err
	}

	urls := []models.ShortURL{*shortURL}
	if err := s.loadEvents(ctx, urls); err != nil {
		return nil, err
	}

	summary := analytics.URL(urls[0], s.now().UTC(), s.windowDays)
	return &summary, nil
}

// TopicAnalytics отчёт по всем ссылкам пользователя с заданной темой
func (s *analyticsService) TopicAnalytics(ctx context.Context, userID, topic string) (*analytics.TopicSummary, error) {
	urls, err := s.urlRepo.ListByTopic(ctx, userID, topic)
	if err != nil {
		return nil, err
	}

	if err := s.loadEvents(ctx, urls); err != nil {
		return nil, err
	}

	summary := analytics.Topic(urls)
	return &summary, nil
}

// OverallAnalytics отчёт по всем ссылкам пользователя
func (s *analyticsService) OverallAnalytics(ctx context.Context, userID string) (*analytics.OverallSummary, error) {
	urls, err := s.urlRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.loadEvents(ctx, urls); err != nil {
		return nil, err
	}

	summary := analytics.Overall(urls)
	return &summary, nil
}

// loadEvents подгружает события кликов одним запросом для всех ссылок
func (s *analyticsService) loadEvents(ctx context.Context, urls []models.ShortURL) error {
	if len(urls) == 0 {
		return nil
	}

	ids := lo.Map(urls, func(u models.ShortURL, _ int) int64 {
		return u.ID
	})

	events, err := s.clickRepo.ListByURLs(ctx, ids)
	if err != nil {
		return err
	}

	for i := range urls {
		urls[i].ClickEvents = events[urls[i].ID]
	}

	s.logger.Debug("Click events loaded",
		zap.Int("urls", len(urls)),
		zap.Int("with_events", len(events)),
	)

	return nil
}
