package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/models"
)

type SettingRepository struct {
	DB *pgxpool.Pool
}

func NewSettingRepository(db *pgxpool.Pool) *SettingRepository {
	return &SettingRepository{DB: db}
}

func (r *SettingRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	query := `
		SELECT key, value, description, updated_at, COALESCE(updated_by_user_id, 0)
		FROM settings
		WHERE key = $1
	`

	setting := &models.Setting{}
	err := r.DB.QueryRow(ctx, query, key).Scan(
		&setting.Key,
		&setting.Value,
		&setting.Description,
		&setting.UpdatedAt,
		&setting.UpdatedByUserID,
	)

	if err != nil {
		return nil, err
	}

	return setting, nil
}

func (r *SettingRepository) List(ctx context.Context) ([]*models.Setting, error) {
	query := `
		SELECT key, value, description, updated_at, COALESCE(updated_by_user_id, 0)
		FROM settings
		ORDER BY key
	`

	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []*models.Setting
	for rows.Next() {
		setting := &models.Setting{}
		err := rows.Scan(
			&setting.Key,
			&setting.Value,
			&setting.Description,
			&setting.UpdatedAt,
			&setting.UpdatedByUserID,
		)
		if err != nil {
			return nil, err
		}
		settings = append(settings, setting)
	}

	return settings, nil
}

func (r *SettingRepository) Update(ctx context.Context, key string, value string, userID int) error {
	query := `
		UPDATE settings
		SET value = $1, updated_at = CURRENT_TIMESTAMP, updated_by_user_id = $2
		WHERE key = $3
	`

	_, err := r.DB.Exec(ctx, query, value, userID, key)
	return err
}

// Upsert creates a new setting or updates an existing one
func (r *SettingRepository) Upsert(ctx context.Context, key string, value string, description string, userID int) error {
	query := `
		INSERT INTO settings (key, value, description, updated_at, updated_by_user_id)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, $4)
		ON CONFLICT (key)
		DO UPDATE SET value = $2, description = $3, updated_at = CURRENT_TIMESTAMP, updated_by_user_id = $4
	`

	_, err := r.DB.Exec(ctx, query, key, value, description, userID)
	return err
}
