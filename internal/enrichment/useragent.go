package enrichment

import (
	"github.com/SergeiKhy/url-analytics/internal/models"
	ua "github.com/mileusna/useragent"
)

// UserAgentParser определяет ОС и класс устройства по заголовку User-Agent.
type UserAgentParser struct{}

func NewUserAgentParser() *UserAgentParser {
	return &UserAgentParser{}
}

// Parse возвращает название ОС и тип устройства. Нераспознанная ОС остаётся пустой
// строкой; если класс устройства не определён, используется "desktop".
func (p *UserAgentParser) Parse(userAgent string) (osName, deviceType string) {
	if userAgent == "" {
		return "", models.DefaultDeviceType
	}

	parsed := ua.Parse(userAgent)

	switch {
	case parsed.Tablet:
		deviceType = "tablet"
	case parsed.Mobile:
		deviceType = "mobile"
	default:
		deviceType = models.DefaultDeviceType
	}

	return parsed.OS, deviceType
}
