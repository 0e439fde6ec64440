package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/models"
)

type RequestLogRepository struct {
	DB *pgxpool.Pool
}

func NewRequestLogRepository(db *pgxpool.Pool) *RequestLogRepository {
	return &RequestLogRepository{DB: db}
}

func (r *RequestLogRepository) Insert(ctx context.Context, entry *models.APIRequestLog) error {
	query := `
		INSERT INTO request_logs (time, method, path, status_code, duration_ms, request_size, response_size, user_id, username, ip_address, user_agent, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.DB.Exec(ctx, query,
		entry.Time,
		entry.Method,
		entry.Path,
		entry.StatusCode,
		entry.DurationMs,
		entry.RequestSize,
		entry.ResponseSize,
		entry.UserID,
		entry.Username,
		entry.IPAddress,
		entry.UserAgent,
		entry.ErrorMessage,
	)
	return err
}

// Recent returns the newest request logs, capped by limit.
func (r *RequestLogRepository) Recent(ctx context.Context, limit int) ([]*models.APIRequestLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.DB.Query(ctx, `
		SELECT time, method, path, status_code, duration_ms, request_size, response_size, user_id, username, ip_address, user_agent, error_message
		FROM request_logs
		ORDER BY time DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.APIRequestLog
	for rows.Next() {
		entry := &models.APIRequestLog{}
		err := rows.Scan(
			&entry.Time,
			&entry.Method,
			&entry.Path,
			&entry.StatusCode,
			&entry.DurationMs,
			&entry.RequestSize,
			&entry.ResponseSize,
			&entry.UserID,
			&entry.Username,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.ErrorMessage,
		)
		if err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}

	return logs, nil
}
