package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/SergeiKhy/url-analytics/internal/enrichment"
	"github.com/SergeiKhy/url-analytics/internal/models"
	"github.com/SergeiKhy/url-analytics/internal/repository"
	"go.uber.org/zap"
)

// Константы worker pool
const (
	defaultWorkerCount   = 3    // Количество воркеров
	defaultChannelBuffer = 1000 // Размер буфера канала
	maxRetries           = 3    // Максимальное количество попыток записи
	retryDelay           = 100 * time.Millisecond
	processTimeout       = 5 * time.Second
)

var ErrProcessorStopped = errors.New("процессор кликов остановлен")

// UserAgentParser определяет ОС и класс устройства по user agent
type UserAgentParser interface {
	Parse(userAgent string) (osName, deviceType string)
}

// Locator определяет страну и город по IP
type Locator interface {
	Locate(ip string) enrichment.Location
}

// ClickProcessor интерфейс для асинхронной записи кликов
type ClickProcessor interface {
	Start()
	Stop()
	RecordClick(ctx context.Context, req *models.ClickRequest) error
	Stats() ChannelStats
}

// ClickProcessorConfig параметры worker pool
type ClickProcessorConfig struct {
	Workers    int
	BufferSize int
}

// clickProcessor реализация процессора кликов с использованием Worker Pool
type clickProcessor struct {
	clickRepo    repository.ClickRepository
	uaParser     UserAgentParser
	locator      Locator // nil, если база GeoIP не подключена
	logger       *zap.Logger
	clickChannel chan *models.ClickRequest
	workerCount  int
	wg           sync.WaitGroup

	mu      sync.RWMutex
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewClickProcessor создаёт новый экземпляр процессора кликов
func NewClickProcessor(
	clickRepo repository.ClickRepository,
	uaParser UserAgentParser,
	locator Locator,
	cfg ClickProcessorConfig,
	logger *zap.Logger,
) ClickProcessor {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkerCount
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultChannelBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &clickProcessor{
		clickRepo:    clickRepo,
		uaParser:     uaParser,
		locator:      locator,
		logger:       logger,
		clickChannel: make(chan *models.ClickRequest, cfg.BufferSize),
		workerCount:  cfg.Workers,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start запускает worker pool
func (p *clickProcessor) Start() {
	p.logger.Info("Запуск воркеров процессора кликов", zap.Int("count", p.workerCount))

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop закрывает канал и ждёт, пока воркеры запишут оставшиеся события
func (p *clickProcessor) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.clickChannel)
	p.mu.Unlock()

	p.logger.Info("Остановка процессора кликов...", zap.Int("pending", len(p.clickChannel)))
	p.wg.Wait()
	p.cancel()
	p.logger.Info("Процессор кликов остановлен")
}

// worker обрабатывает события кликов из канала до его закрытия
func (p *clickProcessor) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("Воркер кликов запущен", zap.Int("id", id))

	for req := range p.clickChannel {
		p.processClick(req)
	}

	p.logger.Debug("Воркер кликов остановлен", zap.Int("id", id))
}

// processClick обогащает клик и записывает его с retry логикой
func (p *clickProcessor) processClick(req *models.ClickRequest) {
	ctx, cancel := context.WithTimeout(p.ctx, processTimeout)
	defer cancel()

	click := p.enrich(req)

	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = p.clickRepo.RecordClick(ctx, req.URLID, click); err == nil {
			return
		}
		// Ссылка удалена, повторять бессмысленно
		if errors.Is(err, repository.ErrURLNotFound) {
			break
		}
		if attempt < maxRetries {
			p.logger.Debug("Повторная попытка записи клика",
				zap.String("short_code", req.ShortCode),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			time.Sleep(time.Duration(attempt) * retryDelay)
		}
	}

	p.logger.Error("Не удалось записать клик",
		zap.String("short_code", req.ShortCode),
		zap.Int64("url_id", req.URLID),
		zap.Error(err),
	)
}

func (p *clickProcessor) enrich(req *models.ClickRequest) *models.ClickEvent {
	clickedAt := req.ClickedAt
	if clickedAt.IsZero() {
		clickedAt = time.Now()
	}

	click := &models.ClickEvent{
		Timestamp:  clickedAt.UTC(),
		IPAddress:  req.IPAddress,
		UserAgent:  req.UserAgent,
		DeviceType: models.DefaultDeviceType,
	}

	if p.uaParser != nil {
		click.OSName, click.DeviceType = p.uaParser.Parse(req.UserAgent)
	}

	if p.locator != nil {
		loc := p.locator.Locate(req.IPAddress)
		click.Country = loc.Country
		click.City = loc.City
	}

	return click
}

// RecordClick отправляет клик в worker pool (неблокирующая операция)
func (p *clickProcessor) RecordClick(ctx context.Context, req *models.ClickRequest) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrProcessorStopped
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.clickChannel <- req:
		return nil
	default:
		// Канал заполнен, редирект не блокируем, клик теряется
		p.logger.Warn("Буфер канала кликов заполнен, событие потеряно",
			zap.String("short_code", req.ShortCode),
		)
		return nil
	}
}

// Stats возвращает состояние канала для мониторинга
func (p *clickProcessor) Stats() ChannelStats {
	return ChannelStats{
		BufferSize:  cap(p.clickChannel),
		BufferUsed:  len(p.clickChannel),
		WorkerCount: p.workerCount,
	}
}

// ChannelStats статистика канала worker pool
type ChannelStats struct {
	BufferSize  int `json:"buffer_size"`  // Общая ёмкость канала
	BufferUsed  int `json:"buffer_used"`  // Текущее использование
	WorkerCount int `json:"worker_count"` // Количество воркеров
}
