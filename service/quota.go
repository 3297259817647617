package service

import (
	"context"
	"time"

	"github.com/txix-open/isp-kit/log"
	"pet-gate-service/domain"
)

type QuotaRepo interface {
	Increment(ctx context.Context, identity domain.Identity, category string, window time.Duration) (int64, error)
	TimeToLive(ctx context.Context, identity domain.Identity, category string) (time.Duration, error)
}

// Quota enforces the per-category window, scaled by the caller's current
// geography. The multiplier applies to the limit on every check, the
// counter key stays geography-free.
type Quota struct {
	policies Policies
	geo      Geo
	repo     QuotaRepo
	logger   log.Logger
}

func NewQuota(policies Policies, geo Geo, repo QuotaRepo, logger log.Logger) Quota {
	return Quota{
		policies: policies,
		geo:      geo,
		repo:     repo,
		logger:   logger,
	}
}

func (s Quota) Evaluate(ctx context.Context, req domain.AdmissionRequest) domain.AdmissionResult {
	category := s.policies.Classify(req.Method, req.Path)
	rule := s.policies.RuleFor(req.Tier, category)
	rule = Adjust(rule, s.geo.Multiplier(ctx, req.Ip))

	value, err := s.repo.Increment(ctx, req.Identity, category, rule.Window)
	if err != nil {
		s.logger.Error(ctx, "quota: counter store unavailable, failing open", log.String("error", err.Error()))
		return domain.AdmissionResult{
			Allowed:   true,
			Limit:     rule.Limit,
			Remaining: rule.Limit,
			Reason:    domain.ReasonStoreUnavailable,
		}
	}

	result := domain.AdmissionResult{
		Allowed: value <= rule.Limit,
		Limit:   rule.Limit,
	}
	if remaining := rule.Limit - value; remaining > 0 {
		result.Remaining = remaining
	}
	if !result.Allowed {
		result.Reason = domain.ReasonRateExceeded
	}

	// the decision is already made, a failed TTL read only loses the reset time
	ttl, err := s.repo.TimeToLive(ctx, req.Identity, category)
	if err == nil && ttl > 0 {
		result.ResetAt = time.Now().Add(ttl)
	}

	return result
}
