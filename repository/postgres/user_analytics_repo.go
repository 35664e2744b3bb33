package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bazarly/analytics/domain"
	"github.com/bazarly/analytics/repository"
)

type userAnalyticsRepository struct {
	pool *pgxpool.Pool
}

// NewUserAnalyticsRepository instantiates a Postgres-backed user analytics repository.
func NewUserAnalyticsRepository(pool *pgxpool.Pool) repository.UserAnalyticsRepository {
	return &userAnalyticsRepository{pool: pool}
}

func (r *userAnalyticsRepository) Get(ctx context.Context, userID string) (*domain.UserAnalyticsRecord, error) {
	const query = `
		SELECT user_id, last_visited, actions, country, city, device, created_at, updated_at
		FROM user_analytics
		WHERE user_id = $1
	`
	row := r.pool.QueryRow(ctx, query, userID)

	var record domain.UserAnalyticsRecord
	var actions []byte

	if err := row.Scan(
		&record.UserID,
		&record.LastVisited,
		&actions,
		&record.Country,
		&record.City,
		&record.Device,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserAnalyticsNotFound
		}
		return nil, err
	}

	if len(actions) > 0 {
		_ = json.Unmarshal(actions, &record.Actions)
	}

	return &record, nil
}

func (r *userAnalyticsRepository) Upsert(ctx context.Context, record *domain.UserAnalyticsRecord) error {
	if record == nil || record.UserID == "" {
		return domain.ErrInvalidEvent
	}

	const query = `
	INSERT INTO user_analytics (user_id, last_visited, actions, country, city, device, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	ON CONFLICT (user_id) DO UPDATE
	SET last_visited = EXCLUDED.last_visited,
		actions = EXCLUDED.actions,
		country = COALESCE(NULLIF(EXCLUDED.country, ''), user_analytics.country),
		city = COALESCE(NULLIF(EXCLUDED.city, ''), user_analytics.city),
		device = COALESCE(NULLIF(EXCLUDED.device, ''), user_analytics.device),
		updated_at = NOW()
	RETURNING created_at, updated_at;
	`

	actions := marshalActions(record.Actions)
	var createdAt, updatedAt time.Time

	if err := r.pool.QueryRow(ctx, query,
		record.UserID,
		record.LastVisited,
		actions,
		record.Country,
		record.City,
		record.Device,
	).Scan(&createdAt, &updatedAt); err != nil {
		return err
	}

	record.CreatedAt = createdAt
	record.UpdatedAt = updatedAt
	return nil
}
