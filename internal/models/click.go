package models

import (
	"time"
)

// DefaultDeviceType подставляется, когда user agent не указывает класс устройства.
const DefaultDeviceType = "desktop"

// ClickEvent один переход по короткой ссылке. После записи не изменяется.
type ClickEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	IPAddress  string    `json:"ip_address"`
	UserAgent  string    `json:"user_agent,omitempty"`
	OSName     string    `json:"os_name"`
	DeviceType string    `json:"device_type"`
	Country    string    `json:"country,omitempty"`
	City       string    `json:"city,omitempty"`
}

// ClickRequest сырые данные редиректа, которые обрабатывает воркер
type ClickRequest struct {
	URLID     int64
	ShortCode string
	IPAddress string
	UserAgent string
	ClickedAt time.Time
}
