package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/SergeiKhy/url-analytics/internal/analytics"
	"github.com/SergeiKhy/url-analytics/internal/models"
	"github.com/SergeiKhy/url-analytics/internal/repository"
	"github.com/SergeiKhy/url-analytics/internal/service"
	"github.com/SergeiKhy/url-analytics/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string {
	return &s
}

func event(ip, os, device string, at time.Time) models.ClickEvent {
	return models.ClickEvent{Timestamp: at, IPAddress: ip, OSName: os, DeviceType: device}
}

// setupAnalytics создаёт двух пользователей: у user-1 три ссылки, у user-2 одна
func setupAnalytics() (service.AnalyticsService, *mocks.MockURLRepository) {
	urlRepo := mocks.NewMockURLRepository()
	clickRepo := mocks.NewMockClickRepository(urlRepo)

	promo := urlRepo.Add(models.ShortURL{
		UserID: "user-1", ShortCode: "aaaa1111", CustomAlias: strPtr("promo"),
		Topic: strPtr("marketing"), ClickCount: 3,
	})
	clickRepo.Add(promo.ID,
		event("10.0.0.1", "iOS", "mobile", fixedNow.Add(-time.Hour)),
		event("10.0.0.1", "iOS", "mobile", fixedNow.Add(-2*time.Hour)),
		event("10.0.0.2", "Windows", "desktop", fixedNow.AddDate(0, 0, -10)),
	)

	blog := urlRepo.Add(models.ShortURL{
		UserID: "user-1", ShortCode: "bbbb2222", Topic: strPtr("marketing"), ClickCount: 2,
	})
	clickRepo.Add(blog.ID,
		event("10.0.0.2", "Windows", "desktop", fixedNow.AddDate(0, 0, -1)),
		event("10.0.0.3", "Android", "mobile", fixedNow.AddDate(0, 0, -1)),
	)

	// Ссылка без кликов
	urlRepo.Add(models.ShortURL{UserID: "user-1", ShortCode: "cccc3333", Topic: strPtr("docs")})

	other := urlRepo.Add(models.ShortURL{UserID: "user-2", ShortCode: "dddd4444", ClickCount: 1})
	clickRepo.Add(other.ID, event("10.0.0.9", "Linux", "desktop", fixedNow))

	svc := service.NewAnalyticsService(urlRepo, clickRepo, service.AnalyticsConfig{
		WindowDays: 7,
		Now:        func() time.Time { return fixedNow },
	}, nil)

	return svc, urlRepo
}

// TestAnalyticsService_URL проверяет отчёт по одной ссылке с окном по датам
func TestAnalyticsService_URL(t *testing.T) {
	svc, _ := setupAnalytics()

	summary, err := svc.URLAnalytics(context.Background(), "user-1", "promo")
	require.NoError(t, err)

	assert.Equal(t, int64(3), summary.TotalClicks)
	assert.Equal(t, int64(2), summary.UniqueUsers)
	// Клик десятидневной давности вне окна
	assert.Equal(t, map[string]int64{"2024-03-15": 2}, summary.ClicksByDate)

	ios, ok := analytics.Lookup(summary.OSType, "iOS")
	require.True(t, ok)
	assert.Equal(t, int64(2), ios.Clicks)
	assert.Equal(t, int64(1), ios.UniqueVisitors)

	assert.Len(t, summary.DeviceType, 2)
}

// TestAnalyticsService_URL_ByShortCode проверяет поиск по сгенерированному коду
func TestAnalyticsService_URL_ByShortCode(t *testing.T) {
	svc, _ := setupAnalytics()

	summary, err := svc.URLAnalytics(context.Background(), "user-1", "aaaa1111")
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.TotalClicks)
}

// TestAnalyticsService_URL_NotFound проверяет несуществующую и чужую ссылку
func TestAnalyticsService_URL_NotFound(t *testing.T) {
	svc, _ := setupAnalytics()
	ctx := context.Background()

	_, err := svc.URLAnalytics(ctx, "user-1", "missing")
	assert.ErrorIs(t, err, repository.ErrURLNotFound)

	_, err = svc.URLAnalytics(ctx, "user-1", "dddd4444")
	assert.ErrorIs(t, err, repository.ErrURLNotFound)
}

// TestAnalyticsService_URL_NoClicks проверяет ссылку без кликов
func TestAnalyticsService_URL_NoClicks(t *testing.T) {
	svc, _ := setupAnalytics()

	summary, err := svc.URLAnalytics(context.Background(), "user-1", "cccc3333")
	require.NoError(t, err)
	assert.Zero(t, summary.TotalClicks)
	assert.Zero(t, summary.UniqueUsers)
	assert.Empty(t, summary.ClicksByDate)
	assert.Empty(t, summary.OSType)
	assert.Empty(t, summary.DeviceType)
}

// TestAnalyticsService_Topic проверяет отчёт по теме
func TestAnalyticsService_Topic(t *testing.T) {
	svc, _ := setupAnalytics()

	summary, err := svc.TopicAnalytics(context.Background(), "user-1", "marketing")
	require.NoError(t, err)

	assert.Equal(t, int64(5), summary.TotalClicks)
	assert.Equal(t, int64(3), summary.UniqueUsers)
	assert.Equal(t, []analytics.DateCount{
		{Date: "2024-03-05", Clicks: 1},
		{Date: "2024-03-14", Clicks: 2},
		{Date: "2024-03-15", Clicks: 2},
	}, summary.ClicksByDate)

	require.Len(t, summary.URLs, 2)
	assert.Equal(t, analytics.URLStats{ShortURL: "promo", TotalClicks: 3, UniqueUsers: 2}, summary.URLs[0])
	assert.Equal(t, analytics.URLStats{ShortURL: "bbbb2222", TotalClicks: 2, UniqueUsers: 2}, summary.URLs[1])
}

// TestAnalyticsService_Topic_Unknown проверяет пустую тему
func TestAnalyticsService_Topic_Unknown(t *testing.T) {
	svc, _ := setupAnalytics()

	summary, err := svc.TopicAnalytics(context.Background(), "user-1", "unknown")
	require.NoError(t, err)
	assert.Zero(t, summary.TotalClicks)
	assert.Zero(t, summary.UniqueUsers)
	assert.Empty(t, summary.ClicksByDate)
	assert.Empty(t, summary.URLs)
}

// TestAnalyticsService_Overall проверяет сводку по всем ссылкам пользователя
func TestAnalyticsService_Overall(t *testing.T) {
	svc, _ := setupAnalytics()

	summary, err := svc.OverallAnalytics(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalURLs)
	assert.Equal(t, int64(5), summary.TotalClicks)
	assert.Equal(t, int64(3), summary.UniqueUsers)
	assert.Len(t, summary.ClicksByDate, 3)

	windows, ok := analytics.Lookup(summary.OSType, "Windows")
	require.True(t, ok)
	assert.Equal(t, int64(2), windows.Clicks)
	assert.Equal(t, int64(1), windows.UniqueVisitors)

	mobile, ok := analytics.Lookup(summary.DeviceType, "mobile")
	require.True(t, ok)
	assert.Equal(t, int64(3), mobile.Clicks)
	assert.Equal(t, int64(2), mobile.UniqueVisitors)
}

// TestAnalyticsService_Overall_NoURLs проверяет пользователя без ссылок
func TestAnalyticsService_Overall_NoURLs(t *testing.T) {
	svc, _ := setupAnalytics()

	summary, err := svc.OverallAnalytics(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, summary.TotalURLs)
	assert.Zero(t, summary.TotalClicks)
	assert.Zero(t, summary.UniqueUsers)
	assert.Empty(t, summary.OSType)
}

// TestAnalyticsService_CountsAfterProcessing проверяет связку процессора и отчёта
func TestAnalyticsService_CountsAfterProcessing(t *testing.T) {
	urlRepo := mocks.NewMockURLRepository()
	clickRepo := mocks.NewMockClickRepository(urlRepo)
	url := urlRepo.Add(models.ShortURL{UserID: "user-1", ShortCode: "abcd1234"})

	processor := service.NewClickProcessor(clickRepo, nil, nil, service.ClickProcessorConfig{}, nil)
	processor.Start()
	for _, ip := range []string{"10.0.0.1", "10.0.0.1", "10.0.0.2"} {
		require.NoError(t, processor.RecordClick(context.Background(), &models.ClickRequest{
			URLID:     url.ID,
			IPAddress: ip,
			ClickedAt: fixedNow,
		}))
	}
	processor.Stop()

	svc := service.NewAnalyticsService(urlRepo, clickRepo, service.AnalyticsConfig{
		Now: func() time.Time { return fixedNow },
	}, nil)

	summary, err := svc.URLAnalytics(context.Background(), "user-1", "abcd1234")
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.TotalClicks)
	assert.Equal(t, int64(2), summary.UniqueUsers)
	assert.Equal(t, map[string]int64{"2024-03-15": 3}, summary.ClicksByDate)

	desktop, ok := analytics.Lookup(summary.DeviceType, models.DefaultDeviceType)
	require.True(t, ok)
	assert.Equal(t, int64(3), desktop.Clicks)
}
