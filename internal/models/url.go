package models

import (
	"time"
)

// ShortURL сокращённая ссылка пользователя вместе с историей кликов.
// ClickEvents заполняется только при построении аналитики.
type ShortURL struct {
	ID          int64        `json:"id"`
	UserID      string       `json:"user_id"`
	TargetURL   string       `json:"target_url"`
	ShortCode   string       `json:"short_code"`
	CustomAlias *string      `json:"custom_alias,omitempty"`
	Topic       *string      `json:"topic,omitempty"`
	ClickCount  int64        `json:"click_count"`
	ClickEvents []ClickEvent `json:"-"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Alias возвращает публичный идентификатор ссылки: кастомный алиас, если он задан.
func (u *ShortURL) Alias() string {
	if u.CustomAlias != nil && *u.CustomAlias != "" {
		return *u.CustomAlias
	}
	return u.ShortCode
}

type CreateURLInput struct {
	UserID      string
	LongURL     string
	CustomAlias string
	Topic       string
}
