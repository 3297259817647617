package service

import (
	"context"
	"math"
	"strings"

	"github.com/txix-open/isp-kit/log"
	"pet-gate-service/conf"
	"pet-gate-service/domain"
)

type CountryResolver interface {
	Lookup(ctx context.Context, ip string) (string, error)
}

type Geo struct {
	resolver          CountryResolver
	primaryCountries  map[string]bool
	defaultMultiplier float64
	logger            log.Logger
}

func NewGeo(resolver CountryResolver, cfg conf.Geo, logger log.Logger) Geo {
	primaryCountries := make(map[string]bool)
	for _, code := range cfg.PrimaryCountries {
		primaryCountries[strings.ToUpper(code)] = true
	}
	return Geo{
		resolver:          resolver,
		primaryCountries:  primaryCountries,
		defaultMultiplier: cfg.GetDefaultMultiplier(),
		logger:            logger,
	}
}

// Multiplier never fails: unknown countries and lookup errors share the
// default multiplier.
func (s Geo) Multiplier(ctx context.Context, ip string) float64 {
	if ip == "" {
		return s.defaultMultiplier
	}

	countryCode, err := s.resolver.Lookup(ctx, ip)
	if err != nil {
		s.logger.Debug(ctx, "geo: country lookup failed", log.String("ip", ip), log.String("error", err.Error()))
		return s.defaultMultiplier
	}

	if s.primaryCountries[strings.ToUpper(countryCode)] {
		return 1
	}
	return s.defaultMultiplier
}

// Adjust scales the limit, window unchanged. The floored limit is clamped
// to 1 so a low multiplier can not lock a tier out entirely.
func Adjust(rule domain.Rule, multiplier float64) domain.Rule {
	limit := int64(math.Floor(float64(rule.Limit) * multiplier))
	if limit < 1 {
		limit = 1
	}
	return domain.Rule{
		Limit:  limit,
		Window: rule.Window,
	}
}
