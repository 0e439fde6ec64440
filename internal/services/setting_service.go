package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/models"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/repositories"
)

type SettingService struct {
	Repo   *repositories.SettingRepository
	Orders OrderStore
}

func NewSettingService(repo *repositories.SettingRepository, orders OrderStore) *SettingService {
	return &SettingService{Repo: repo, Orders: orders}
}

func (s *SettingService) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	return s.Repo.Get(ctx, key)
}

func (s *SettingService) ListSettings(ctx context.Context) ([]*models.Setting, error) {
	return s.Repo.List(ctx)
}

func (s *SettingService) UpdateSetting(ctx context.Context, key string, value string, userID int) error {
	return s.Repo.Update(ctx, key, value, userID)
}

// UpsertSetting creates or updates a setting
func (s *SettingService) UpsertSetting(ctx context.Context, key string, value string, description string, userID int) error {
	return s.Repo.Upsert(ctx, key, value, description, userID)
}

// WIPLimit returns the work-in-progress limit for a station, 0 meaning
// unlimited.
func (s *SettingService) WIPLimit(ctx context.Context, station models.Station) int {
	setting, err := s.Repo.Get(ctx, fmt.Sprintf("wip_limit_%s", station))
	if err != nil {
		return 0
	}
	limit, err := strconv.Atoi(setting.Value)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

// AtLimit reports whether a station already has its limit of orders
// queued or in progress. Advisory only: the frontend warns, it does not
// hard-block.
func (s *SettingService) AtLimit(ctx context.Context, station models.Station) (bool, int, error) {
	limit := s.WIPLimit(ctx, station)
	if limit == 0 {
		return false, 0, nil
	}

	orders, err := s.Orders.List(ctx, false)
	if err != nil {
		return false, limit, err
	}

	wip := 0
	for _, o := range orders {
		state := o.Stages[station]
		if state == models.StageQueued || state == models.StageInProgress {
			wip++
		}
	}
	return wip >= limit, limit, nil
}
