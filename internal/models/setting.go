package models

import "time"

type Setting struct {
	Key             string    `json:"key"`
	Value           string    `json:"value"`
	Description     string    `json:"description"`
	UpdatedAt       time.Time `json:"updated_at"`
	UpdatedByUserID int       `json:"updated_by_user_id"`
}

type UpdateSettingRequest struct {
	Value string `json:"value"`
}
