package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/SergeiKhy/url-analytics/internal/models"
	"github.com/SergeiKhy/url-analytics/internal/repository"
)

// MockURLRepository implements repository.URLRepository for testing
type MockURLRepository struct {
	mu     sync.RWMutex
	urls   []*models.ShortURL
	nextID int64
}

func NewMockURLRepository() *MockURLRepository {
	return &MockURLRepository{nextID: 1}
}

func (m *MockURLRepository) Create(ctx context.Context, url *models.ShortURL) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.existsLocked(url.ShortCode) || (url.CustomAlias != nil && m.existsLocked(*url.CustomAlias)) {
		return repository.ErrAliasExists
	}

	url.ID = m.nextID
	m.nextID++
	if url.CreatedAt.IsZero() {
		url.CreatedAt = time.Now().UTC()
	}
	stored := *url
	m.urls = append(m.urls, &stored)
	return nil
}

func (m *MockURLRepository) GetByAlias(ctx context.Context, alias string) (*models.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.urls {
		if matches(u, alias) {
			found := *u
			return &found, nil
		}
	}
	return nil, repository.ErrURLNotFound
}

func (m *MockURLRepository) GetByAliasForUser(ctx context.Context, userID, alias string) (*models.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.urls {
		if u.UserID == userID && matches(u, alias) {
			found := *u
			return &found, nil
		}
	}
	return nil, repository.ErrURLNotFound
}

func (m *MockURLRepository) ListByUser(ctx context.Context, userID string) ([]models.ShortURL, error) {
	return m.list(func(u *models.ShortURL) bool {
		return u.UserID == userID
	}), nil
}

func (m *MockURLRepository) ListByTopic(ctx context.Context, userID, topic string) ([]models.ShortURL, error) {
	return m.list(func(u *models.ShortURL) bool {
		return u.UserID == userID && u.Topic != nil && *u.Topic == topic
	}), nil
}

func (m *MockURLRepository) AliasExists(ctx context.Context, alias string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.existsLocked(alias), nil
}

// Add stores a url as is, keeping its click counter
func (m *MockURLRepository) Add(url models.ShortURL) *models.ShortURL {
	m.mu.Lock()
	defer m.mu.Unlock()

	url.ID = m.nextID
	m.nextID++
	m.urls = append(m.urls, &url)
	return &url
}

func (m *MockURLRepository) incrementClicks(urlID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.urls {
		if u.ID == urlID {
			u.ClickCount++
			return nil
		}
	}
	return repository.ErrURLNotFound
}

func (m *MockURLRepository) list(keep func(*models.ShortURL) bool) []models.ShortURL {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []models.ShortURL{}
	for _, u := range m.urls {
		if keep(u) {
			result = append(result, *u)
		}
	}
	return result
}

func (m *MockURLRepository) existsLocked(alias string) bool {
	for _, u := range m.urls {
		if matches(u, alias) {
			return true
		}
	}
	return false
}

func (m *MockURLRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urls = nil
	m.nextID = 1
}

func matches(u *models.ShortURL, alias string) bool {
	return u.ShortCode == alias || (u.CustomAlias != nil && *u.CustomAlias == alias)
}

// MockCacheRepository implements repository.CacheRepository for testing
type MockCacheRepository struct {
	mu    sync.RWMutex
	cache map[string]*models.ShortURL
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		cache: make(map[string]*models.ShortURL),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, alias string) (*models.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	url, exists := m.cache[alias]
	if !exists {
		return nil, repository.ErrCacheMiss
	}
	return url, nil
}

func (m *MockCacheRepository) Set(ctx context.Context, alias string, url *models.ShortURL, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[alias] = url
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, alias string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, alias)
	return nil
}

// Has reports whether the alias is cached
func (m *MockCacheRepository) Has(alias string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.cache[alias]
	return ok
}

func (m *MockCacheRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[string]*models.ShortURL)
}

var ErrTemporary = errors.New("temporary failure")

// MockClickRepository implements repository.ClickRepository for testing.
// When linked to a MockURLRepository it keeps click_count in sync, like the
// transactional Postgres implementation does.
type MockClickRepository struct {
	mu       sync.RWMutex
	urls     *MockURLRepository
	clicks   map[int64][]models.ClickEvent
	failures int
	attempts int
}

func NewMockClickRepository(urls *MockURLRepository) *MockClickRepository {
	return &MockClickRepository{
		urls:   urls,
		clicks: make(map[int64][]models.ClickEvent),
	}
}

// FailNext makes the next n RecordClick calls return ErrTemporary
func (m *MockClickRepository) FailNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = n
}

func (m *MockClickRepository) RecordClick(ctx context.Context, urlID int64, click *models.ClickEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts++
	if m.failures > 0 {
		m.failures--
		return ErrTemporary
	}

	if m.urls != nil {
		if err := m.urls.incrementClicks(urlID); err != nil {
			return err
		}
	}

	m.clicks[urlID] = append(m.clicks[urlID], *click)
	return nil
}

func (m *MockClickRepository) ListByURLs(ctx context.Context, urlIDs []int64) (map[int64][]models.ClickEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[int64][]models.ClickEvent, len(urlIDs))
	for _, id := range urlIDs {
		if events, ok := m.clicks[id]; ok {
			result[id] = append([]models.ClickEvent(nil), events...)
		}
	}
	return result, nil
}

// Add stores events directly, without touching counters
func (m *MockClickRepository) Add(urlID int64, events ...models.ClickEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clicks[urlID] = append(m.clicks[urlID], events...)
}

// Recorded returns a copy of the events stored for the url
func (m *MockClickRepository) Recorded(urlID int64) []models.ClickEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.ClickEvent(nil), m.clicks[urlID]...)
}

// Attempts returns the number of RecordClick calls
func (m *MockClickRepository) Attempts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.attempts
}

func (m *MockClickRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clicks = make(map[int64][]models.ClickEvent)
	m.failures = 0
	m.attempts = 0
}
