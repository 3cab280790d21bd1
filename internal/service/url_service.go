package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/SergeiKhy/url-analytics/internal/models"
	"github.com/SergeiKhy/url-analytics/internal/repository"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

// Ошибки сервиса
var (
	ErrInvalidURL   = errors.New("невалидный URL")
	ErrInvalidAlias = errors.New("невалидный кастомный алиас")
	ErrAliasTaken   = errors.New("алиас уже занят")
)

// Константы сервиса
const (
	defaultCacheTTL     = 24 * time.Hour
	codeLength          = 8
	charset             = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxGenerateAttempts = 5
)

var aliasPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{4,32}$`)

// URLService интерфейс сервиса ссылок
type URLService interface {
	Shorten(ctx context.Context, input *models.CreateURLInput) (*models.ShortURL, error)
	ListURLs(ctx context.Context, userID string) ([]models.ShortURL, error)
	Resolve(ctx context.Context, alias string) (*models.ShortURL, error)
}

// urlService реализация сервиса ссылок
type urlService struct {
	urlRepo   repository.URLRepository
	cacheRepo repository.CacheRepository
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewURLService создаёт новый экземпляр сервиса
func NewURLService(
	urlRepo repository.URLRepository,
	cacheRepo repository.CacheRepository,
	cacheTTL time.Duration,
	logger *zap.Logger,
) URLService {
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &urlService{
		urlRepo:   urlRepo,
		cacheRepo: cacheRepo,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Shorten создаёт новую короткую ссылку
func (s *urlService) Shorten(ctx context.Context, input *models.CreateURLInput) (*models.ShortURL, error) {
	longURL := strings.TrimSpace(input.LongURL)
	if err := validateURL(longURL); err != nil {
		return nil, err
	}

	shortURL := &models.ShortURL{
		UserID:    input.UserID,
		TargetURL: longURL,
		CreatedAt: time.Now().UTC(),
	}

	if topic := strings.TrimSpace(input.Topic); topic != "" {
		shortURL.Topic = &topic
	}

	// Кастомный алиас проверяется на уникальность среди всех кодов и алиасов
	if alias := strings.TrimSpace(input.CustomAlias); alias != "" {
		if !aliasPattern.MatchString(alias) {
			return nil, ErrInvalidAlias
		}
		taken, err := s.urlRepo.AliasExists(ctx, alias)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrAliasTaken
		}
		shortURL.CustomAlias = &alias
	}

	for attempt := 1; attempt <= maxGenerateAttempts; attempt++ {
		code, err := s.generateShortCode(ctx)
		if err != nil {
			return nil, err
		}
		shortURL.ShortCode = code

		err = s.urlRepo.Create(ctx, shortURL)
		if err == nil {
			s.logger.Info("Short URL created",
				zap.String("user_id", shortURL.UserID),
				zap.String("alias", shortURL.Alias()),
			)
			return shortURL, nil
		}
		if !errors.Is(err, repository.ErrAliasExists) {
			return nil, err
		}
		// Конфликт из-за кастомного алиаса не исправить новым кодом
		if shortURL.CustomAlias != nil {
			return nil, ErrAliasTaken
		}
	}

	return nil, fmt.Errorf("failed to generate unique short code after %d attempts", maxGenerateAttempts)
}

// ListURLs возвращает все ссылки пользователя
func (s *urlService) ListURLs(ctx context.Context, userID string) ([]models.ShortURL, error) {
	return s.urlRepo.ListByUser(ctx, userID)
}

// Resolve получает ссылку по коду или алиасу (сначала из кэша, затем из БД)
func (s *urlService) Resolve(ctx context.Context, alias string) (*models.ShortURL, error) {
	// Проверка кэша
	shortURL, err := s.cacheRepo.Get(ctx, alias)
	if err == nil {
		return shortURL, nil
	}
	if !errors.Is(err, repository.ErrCacheMiss) {
		s.logger.Warn("Cache read failed", zap.String("alias", alias), zap.Error(err))
	}

	// Запрос из БД
	shortURL, err = s.urlRepo.GetByAlias(ctx, alias)
	if err != nil {
		return nil, err
	}

	// Кэширование результата
	if err := s.cacheRepo.Set(ctx, alias, shortURL, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to cache url", zap.String("alias", alias), zap.Error(err))
	}

	return shortURL, nil
}

// generateShortCode генерирует код, не совпадающий ни с одним существующим кодом или алиасом
func (s *urlService) generateShortCode(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= maxGenerateAttempts; attempt++ {
		code, err := gonanoid.Generate(charset, codeLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}
		taken, err := s.urlRepo.AliasExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique short code after %d attempts", maxGenerateAttempts)
}

// validateURL принимает только абсолютные http(s) URL
func validateURL(raw string) error {
	if raw == "" {
		return ErrInvalidURL
	}
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return ErrInvalidURL
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return ErrInvalidURL
	}
	return nil
}
