package service_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/SergeiKhy/url-analytics/internal/models"
	"github.com/SergeiKhy/url-analytics/internal/repository"
	"github.com/SergeiKhy/url-analytics/internal/service"
	"github.com/SergeiKhy/url-analytics/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupURLService создаёт тестовое окружение с моковыми репозиториями
func setupURLService() (service.URLService, *mocks.MockURLRepository, *mocks.MockCacheRepository) {
	urlRepo := mocks.NewMockURLRepository()
	cacheRepo := mocks.NewMockCacheRepository()
	logger, _ := zap.NewDevelopment()
	urlService := service.NewURLService(urlRepo, cacheRepo, time.Hour, logger)
	return urlService, urlRepo, cacheRepo
}

// TestURLService_Shorten_Success проверяет успешное создание ссылки
func TestURLService_Shorten_Success(t *testing.T) {
	urlService, _, _ := setupURLService()

	input := &models.CreateURLInput{
		UserID:  "user-1",
		LongURL: "https://example.com/test",
	}

	url, err := urlService.Shorten(context.Background(), input)

	require.NoError(t, err)
	assert.NotZero(t, url.ID)
	assert.Len(t, url.ShortCode, 8)
	assert.Equal(t, url.ShortCode, url.Alias())
	assert.Equal(t, input.LongURL, url.TargetURL)
	assert.Equal(t, "user-1", url.UserID)
	assert.Nil(t, url.CustomAlias)
	assert.Nil(t, url.Topic)
	assert.False(t, url.CreatedAt.IsZero())
}

// TestURLService_Shorten_WithAliasAndTopic проверяет кастомный алиас и тему
func TestURLService_Shorten_WithAliasAndTopic(t *testing.T) {
	urlService, _, _ := setupURLService()

	input := &models.CreateURLInput{
		UserID:      "user-1",
		LongURL:     "https://example.com/launch",
		CustomAlias: "  spring-launch ",
		Topic:       " marketing ",
	}

	url, err := urlService.Shorten(context.Background(), input)

	require.NoError(t, err)
	require.NotNil(t, url.CustomAlias)
	assert.Equal(t, "spring-launch", *url.CustomAlias)
	assert.Equal(t, "spring-launch", url.Alias())
	require.NotNil(t, url.Topic)
	assert.Equal(t, "marketing", *url.Topic)
	assert.NotEmpty(t, url.ShortCode)
}

// TestURLService_Shorten_BlankTopic проверяет, что пустая тема не сохраняется
func TestURLService_Shorten_BlankTopic(t *testing.T) {
	urlService, _, _ := setupURLService()

	url, err := urlService.Shorten(context.Background(), &models.CreateURLInput{
		UserID:  "user-1",
		LongURL: "https://example.com",
		Topic:   "   ",
	})

	require.NoError(t, err)
	assert.Nil(t, url.Topic)
}

// TestURLService_Shorten_InvalidURL проверяет отклонение невалидного URL
func TestURLService_Shorten_InvalidURL(t *testing.T) {
	urlService, _, _ := setupURLService()

	cases := []string{
		"",
		"not-a-valid-url",
		"ftp://example.com/file",
		"javascript:alert(1)",
		"http://",
	}

	for _, raw := range cases {
		t.Run(raw, func(t *testing.T) {
			_, err := urlService.Shorten(context.Background(), &models.CreateURLInput{
				UserID:  "user-1",
				LongURL: raw,
			})
			assert.ErrorIs(t, err, service.ErrInvalidURL)
		})
	}
}

// TestURLService_Shorten_InvalidAlias проверяет формат кастомного алиаса
func TestURLService_Shorten_InvalidAlias(t *testing.T) {
	urlService, _, _ := setupURLService()

	cases := []string{
		"abc",
		"has space",
		"slash/alias",
		"this-alias-is-definitely-way-too-long-to-use",
	}

	for _, alias := range cases {
		t.Run(alias, func(t *testing.T) {
			_, err := urlService.Shorten(context.Background(), &models.CreateURLInput{
				UserID:      "user-1",
				LongURL:     "https://example.com",
				CustomAlias: alias,
			})
			assert.ErrorIs(t, err, service.ErrInvalidAlias)
		})
	}
}

// TestURLService_Shorten_AliasTaken проверяет глобальную уникальность алиаса
func TestURLService_Shorten_AliasTaken(t *testing.T) {
	urlService, _, _ := setupURLService()
	ctx := context.Background()

	_, err := urlService.Shorten(ctx, &models.CreateURLInput{
		UserID:      "user-1",
		LongURL:     "https://example.com/1",
		CustomAlias: "promo",
	})
	require.NoError(t, err)

	// Другой пользователь тоже не может занять алиас
	_, err = urlService.Shorten(ctx, &models.CreateURLInput{
		UserID:      "user-2",
		LongURL:     "https://example.com/2",
		CustomAlias: "promo",
	})
	assert.ErrorIs(t, err, service.ErrAliasTaken)
}

// TestURLService_Shorten_AliasCollidesWithCode проверяет, что алиас не может совпасть со сгенерированным кодом
func TestURLService_Shorten_AliasCollidesWithCode(t *testing.T) {
	urlService, _, _ := setupURLService()
	ctx := context.Background()

	first, err := urlService.Shorten(ctx, &models.CreateURLInput{
		UserID:  "user-1",
		LongURL: "https://example.com/1",
	})
	require.NoError(t, err)

	_, err = urlService.Shorten(ctx, &models.CreateURLInput{
		UserID:      "user-1",
		LongURL:     "https://example.com/2",
		CustomAlias: first.ShortCode,
	})
	assert.ErrorIs(t, err, service.ErrAliasTaken)
}

// TestURLService_Shorten_UniqueCodes проверяет уникальность сгенерированных кодов
func TestURLService_Shorten_UniqueCodes(t *testing.T) {
	urlService, _, _ := setupURLService()
	ctx := context.Background()

	codes := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		url, err := urlService.Shorten(ctx, &models.CreateURLInput{
			UserID:  "user-1",
			LongURL: "https://example.com",
		})
		require.NoError(t, err)

		_, exists := codes[url.ShortCode]
		assert.False(t, exists, "duplicate code %s", url.ShortCode)
		codes[url.ShortCode] = struct{}{}
	}
}

// TestURLService_ListURLs проверяет, что пользователь видит только свои ссылки
func TestURLService_ListURLs(t *testing.T) {
	urlService, _, _ := setupURLService()
	ctx := context.Background()

	for _, user := range []string{"user-1", "user-1", "user-2"} {
		_, err := urlService.Shorten(ctx, &models.CreateURLInput{UserID: user, LongURL: "https://example.com"})
		require.NoError(t, err)
	}

	urls, err := urlService.ListURLs(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, urls, 2)

	urls, err = urlService.ListURLs(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, urls)
}

// TestURLService_Resolve_CachesResult проверяет cache-aside при переходе
func TestURLService_Resolve_CachesResult(t *testing.T) {
	urlService, _, cacheRepo := setupURLService()
	ctx := context.Background()

	created, err := urlService.Shorten(ctx, &models.CreateURLInput{
		UserID:      "user-1",
		LongURL:     "https://example.com/cached",
		CustomAlias: "cached",
	})
	require.NoError(t, err)
	assert.False(t, cacheRepo.Has("cached"))

	url, err := urlService.Resolve(ctx, "cached")
	require.NoError(t, err)
	assert.Equal(t, created.ID, url.ID)
	assert.Equal(t, "https://example.com/cached", url.TargetURL)
	assert.True(t, cacheRepo.Has("cached"))

	// Сгенерированный код тоже ведёт на ссылку
	url, err = urlService.Resolve(ctx, created.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, created.ID, url.ID)
}

// TestURLService_Resolve_FromCache проверяет, что попадание в кэш не обращается к БД
func TestURLService_Resolve_FromCache(t *testing.T) {
	urlService, _, cacheRepo := setupURLService()
	ctx := context.Background()

	cached := &models.ShortURL{ID: 42, ShortCode: "only-in-cache", TargetURL: "https://cache.example.com"}
	require.NoError(t, cacheRepo.Set(ctx, "only-in-cache", cached, time.Hour))

	url, err := urlService.Resolve(ctx, "only-in-cache")
	require.NoError(t, err)
	assert.Equal(t, int64(42), url.ID)
}

// TestURLService_Resolve_NotFound проверяет обработку несуществующей ссылки
func TestURLService_Resolve_NotFound(t *testing.T) {
	urlService, _, cacheRepo := setupURLService()

	_, err := urlService.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrURLNotFound)
	assert.False(t, cacheRepo.Has("missing"))
}
