package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeiKhy/url-analytics/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrURLNotFound = errors.New("url not found")
	ErrAliasExists = errors.New("alias already exists")
)

// Код ошибки PostgreSQL unique_violation
const uniqueViolation = "23505"

type URLRepository interface {
	Create(ctx context.Context, url *models.ShortURL) error
	GetByAlias(ctx context.Context, alias string) (*models.ShortURL, error)
	GetByAliasForUser(ctx context.Context, userID, alias string) (*models.ShortURL, error)
	ListByUser(ctx context.Context, userID string) ([]models.ShortURL, error)
	ListByTopic(ctx context.Context, userID, topic string) ([]models.ShortURL, error)
	AliasExists(ctx context.Context, alias string) (bool, error)
}

type urlRepository struct {
	db *PostgresDB
}

func NewURLRepository(db *PostgresDB) URLRepository {
	return &urlRepository{db: db}
}

const urlColumns = `id, user_id, target_url, short_code, custom_alias, topic, click_count, created_at`

func (r *urlRepository) Create(ctx context.Context, url *models.ShortURL) error {
	query := `
		INSERT INTO short_urls (user_id, target_url, short_code, custom_alias, topic, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, click_count, created_at
	`

	err := r.db.Pool.QueryRow(
		ctx,
		query,
		url.UserID,
		url.TargetURL,
		url.ShortCode,
		url.CustomAlias,
		url.Topic,
		url.CreatedAt,
	).Scan(&url.ID, &url.ClickCount, &url.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrAliasExists
		}
		return fmt.Errorf("failed to create url: %w", err)
	}

	return nil
}

// GetByAlias ищет ссылку по короткому коду или кастомному алиасу
func (r *urlRepository) GetByAlias(ctx context.Context, alias string) (*models.ShortURL, error) {
	query := `SELECT ` + urlColumns + ` FROM short_urls WHERE short_code = $1 OR custom_alias = $1 LIMIT 1`

	url, err := scanURL(r.db.Pool.QueryRow(ctx, query, alias))
	if err != nil {
		return nil, err
	}
	return url, nil
}

func (r *urlRepository) GetByAliasForUser(ctx context.Context, userID, alias string) (*models.ShortURL, error) {
	query := `SELECT ` + urlColumns + ` FROM short_urls
		WHERE user_id = $1 AND (short_code = $2 OR custom_alias = $2) LIMIT 1`

	url, err := scanURL(r.db.Pool.QueryRow(ctx, query, userID, alias))
	if err != nil {
		return nil, err
	}
	return url, nil
}

func (r *urlRepository) ListByUser(ctx context.Context, userID string) ([]models.ShortURL, error) {
	query := `SELECT ` + urlColumns + ` FROM short_urls WHERE user_id = $1 ORDER BY created_at, id`
	return r.list(ctx, query, userID)
}

func (r *urlRepository) ListByTopic(ctx context.Context, userID, topic string) ([]models.ShortURL, error) {
	query := `SELECT ` + urlColumns + ` FROM short_urls WHERE user_id = $1 AND topic = $2 ORDER BY created_at, id`
	return r.list(ctx, query, userID, topic)
}

func (r *urlRepository) AliasExists(ctx context.Context, alias string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM short_urls WHERE short_code = $1 OR custom_alias = $1)`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, alias).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check alias: %w", err)
	}
	return exists, nil
}

func (r *urlRepository) list(ctx context.Context, query string, args ...any) ([]models.ShortURL, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list urls: %w", err)
	}
	defer rows.Close()

	urls := []models.ShortURL{}
	for rows.Next() {
		url, err := scanURL(rows)
		if err != nil {
			return nil, err
		}
		urls = append(urls, *url)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating urls: %w", err)
	}

	return urls, nil
}

func scanURL(row pgx.Row) (*models.ShortURL, error) {
	url := &models.ShortURL{}
	err := row.Scan(
		&url.ID,
		&url.UserID,
		&url.TargetURL,
		&url.ShortCode,
		&url.CustomAlias,
		&url.Topic,
		&url.ClickCount,
		&url.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrURLNotFound
		}
		return nil, fmt.Errorf("failed to scan url: %w", err)
	}
	return url, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
