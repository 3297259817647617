package conf

import (
	"reflect"
	"time"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
	"github.com/txix-open/isp-kit/rc/schema"
	"github.com/txix-open/jsonschema"
	"pet-gate-service/domain"
)

const (
	defaultStoreTimeout = 200 * time.Millisecond
)

func init() {
	schema.CustomGenerators.Register("logLevel", func(field reflect.StructField, t *jsonschema.Schema) {
		t.Type = "string"
		t.Enum = []interface{}{"debug", "info", "error", "fatal"}
	})
}

type Remote struct {
	Redis     Redis     `schema:"Настройки Redis,в Redis хранятся счётчики ограничений"`
	Http      Http      `schema:"Настройки HTTP"`
	Logging   Logging   `schema:"Настройки логирования"`
	Auth      Auth      `schema:"Настройки проверки сессий"`
	GeoIp     GeoIp     `schema:"Настройки определения страны по IP"`
	RateLimit RateLimit `schema:"Настройки ограничений запросов"`
}

type Http struct {
	MaxRequestBodySizeInMb int64 `valid:"required" schema:"Максимальная длинна тела запроса,в мегабайтах"`
	ProxyTimeoutInSec      int   `valid:"required" schema:"Таймаут на проксирование,в секундах"`
}

type Logging struct {
	LogLevel         log.Level `schemaGen:"logLevel" schema:"Уровень логирования,логирование запросов осуществляется на уровне debug"`
	RequestLogEnable bool      `schema:"Включить логирование запросов"`
	BodyLogEnable    bool      `schema:"Включить логирование тел запросов и ответов,должно быть включено логирование запросов"`
}

type Auth struct {
	Url        string `valid:"required" schema:"Адрес проверки токена сессии"`
	CacheInSec int    `valid:"required" schema:"Время кеширования данных сессии,в секундах"`
}

type GeoIp struct {
	Url        string `valid:"required" schema:"Адрес сервиса геолокации"`
	CacheInSec int    `valid:"required" schema:"Время кеширования кода страны,в секундах"`
}

type RateLimit struct {
	StoreTimeoutInMs int                `schema:"Таймаут операций со счётчиками,в миллисекундах, по умолчанию: 200"`
	Burst            []BurstLimit       `valid:"required" schema:"Пиковые ограничения,окно 60 секунд, не зависят от эндпоинта"`
	Rules            []QuotaRule        `valid:"required" schema:"Квоты по подписке и категории эндпоинта"`
	Endpoints        []EndpointCategory `schema:"Классификация эндпоинтов,неуказанные относятся к категории api_calls"`
	Geo              Geo                `schema:"Географическая поправка квот"`
}

type BurstLimit struct {
	Tier              string `valid:"required" schema:"Уровень подписки"`
	RequestsPerMinute int64  `valid:"required" schema:"Запросов в минуту"`
}

type QuotaRule struct {
	Tier     string `valid:"required" schema:"Уровень подписки"`
	Category string `valid:"required" schema:"Категория эндпоинта"`
	MaxCount int64  `valid:"required" schema:"Количество запросов в окне"`
	Window   string `valid:"required" schema:"Длительность окна,строка вида '24h', '1h30m'"`
}

type EndpointCategory struct {
	Method   string `valid:"required" schema:"HTTP метод"`
	Path     string `valid:"required" schema:"Путь эндпоинта"`
	Category string `valid:"required" schema:"Категория"`
}

type Geo struct {
	PrimaryCountries  []string `schema:"Основные страны,коды стран с полной квотой"`
	DefaultMultiplier float64  `schema:"Множитель квоты для остальных стран,в диапазоне (0, 1], по умолчанию: 0.5"`
}

type Redis struct {
	Address  string         `schema:"Адрес,обязателено, если sentinel не указан"`
	Username string         `schema:"Имя пользовтаеля"`
	Password string         `schema:"Пароль"`
	Sentinel *RedisSentinel `schema:"Настройки sentinel,обязательно, если address не указан"`
}

type RedisSentinel struct {
	Addresses  []string `valid:"required" schema:"Адреса нод в кластере"`
	MasterName string   `valid:"required" schema:"Имя мастера"`
	Username   string   `schema:"Имя пользовтаеля в sentinel"`
	Password   string   `schema:"Пароль в sentinel"`
}

func (r RateLimit) GetStoreTimeout() time.Duration {
	if r.StoreTimeoutInMs <= 0 {
		return defaultStoreTimeout
	}
	return time.Duration(r.StoreTimeoutInMs) * time.Millisecond
}

func (g Geo) GetDefaultMultiplier() float64 {
	if g.DefaultMultiplier <= 0 || g.DefaultMultiplier > 1 {
		return 0.5 //nolint:mnd
	}
	return g.DefaultMultiplier
}

func (r Remote) Validate() error {
	if r.Redis.Sentinel == nil && r.Redis.Address == "" {
		return errors.New("invalid redis config. sentinel or address are required")
	}

	anonymousBurst := false
	for _, burst := range r.RateLimit.Burst {
		if burst.RequestsPerMinute < 1 {
			return errors.Errorf("invalid burst limit for tier '%s'", burst.Tier)
		}
		if burst.Tier == domain.TierAnonymous {
			anonymousBurst = true
		}
	}
	if !anonymousBurst {
		return errors.New("burst limit for the anonymous tier is required")
	}

	fallbackRule := false
	for _, rule := range r.RateLimit.Rules {
		window, err := time.ParseDuration(rule.Window)
		if err != nil {
			return errors.WithMessagef(err, "invalid window for tier '%s' category '%s'", rule.Tier, rule.Category)
		}
		if window <= 0 {
			return errors.Errorf("window must be positive for tier '%s' category '%s'", rule.Tier, rule.Category)
		}
		if rule.MaxCount < 1 {
			return errors.Errorf("max count must be at least 1 for tier '%s' category '%s'", rule.Tier, rule.Category)
		}
		if rule.Tier == domain.TierAnonymous && rule.Category == domain.CategoryApiCalls {
			fallbackRule = true
		}
	}
	if !fallbackRule {
		return errors.New("quota rule for the anonymous tier and the api_calls category is required")
	}

	if r.RateLimit.Geo.DefaultMultiplier < 0 || r.RateLimit.Geo.DefaultMultiplier > 1 {
		return errors.New("geo default multiplier must be in (0, 1]")
	}

	return nil
}
