package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/SergeiKhy/url-analytics/internal/models"
	"github.com/jackc/pgx/v5"
)

type ClickRepository interface {
	RecordClick(ctx context.Context, urlID int64, click *models.ClickEvent) error
	ListByURLs(ctx context.Context, urlIDs []int64) (map[int64][]models.ClickEvent, error)
}

type clickRepository struct {
	db *PostgresDB
}

func NewClickRepository(db *PostgresDB) ClickRepository {
	return &clickRepository{db: db}
}

// RecordClick добавляет событие и увеличивает счётчик ссылки в одной транзакции,
// поэтому click_count всегда совпадает с числом записанных событий
func (r *clickRepository) RecordClick(ctx context.Context, urlID int64, click *models.ClickEvent) error {
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE short_urls SET click_count = click_count + 1 WHERE id = $1`, urlID)
		if err != nil {
			return fmt.Errorf("failed to increment click count: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrURLNotFound
		}

		query := `
			INSERT INTO clicks (url_id, ip_address, user_agent, os_name, device_type, country, city, clicked_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		_, err = tx.Exec(ctx, query,
			urlID,
			click.IPAddress,
			click.UserAgent,
			click.OSName,
			click.DeviceType,
			click.Country,
			click.City,
			click.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("failed to record click: %w", err)
		}

		return nil
	})
}

// ListByURLs загружает события кликов для набора ссылок в хронологическом порядке.
// Ссылки без событий в результат не попадают.
func (r *clickRepository) ListByURLs(ctx context.Context, urlIDs []int64) (map[int64][]models.ClickEvent, error) {
	result := make(map[int64][]models.ClickEvent, len(urlIDs))
	if len(urlIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT url_id, ip_address, user_agent, os_name, device_type, country, city, clicked_at
		FROM clicks
		WHERE url_id = ANY($1)
		ORDER BY clicked_at, id
	`

	rows, err := r.db.Pool.Query(ctx, query, urlIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list clicks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			urlID     int64
			click     models.ClickEvent
			clickedAt time.Time
		)
		if err := rows.Scan(
			&urlID,
			&click.IPAddress,
			&click.UserAgent,
			&click.OSName,
			&click.DeviceType,
			&click.Country,
			&click.City,
			&clickedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan click: %w", err)
		}
		click.Timestamp = clickedAt.UTC()
		result[urlID] = append(result[urlID], click)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clicks: %w", err)
	}

	return result, nil
}
