package service

import (
	"context"

	"github.com/txix-open/isp-kit/log"
	"pet-gate-service/conf"
	"pet-gate-service/domain"
)

type BurstRepo interface {
	Increment(ctx context.Context, identity domain.Identity) (int64, error)
}

// Burst stops request floods on a short fixed window, independent of the
// endpoint being hit. It always runs before the quota check.
type Burst struct {
	repo          BurstRepo
	ceilingByTier map[string]int64
	logger        log.Logger
}

func NewBurst(repo BurstRepo, limits []conf.BurstLimit, logger log.Logger) Burst {
	ceilingByTier := make(map[string]int64)
	for _, limit := range limits {
		ceilingByTier[limit.Tier] = limit.RequestsPerMinute
	}
	return Burst{
		repo:          repo,
		ceilingByTier: ceilingByTier,
		logger:        logger,
	}
}

func (s Burst) Evaluate(ctx context.Context, req domain.AdmissionRequest) domain.AdmissionResult {
	ceiling := s.ceiling(req.Tier)

	value, err := s.repo.Increment(ctx, req.Identity)
	if err != nil {
		s.logger.Error(ctx, "burst: counter store unavailable, failing open", log.String("error", err.Error()))
		return domain.AdmissionResult{
			Allowed:   true,
			Limit:     ceiling,
			Remaining: ceiling,
			Reason:    domain.ReasonStoreUnavailable,
		}
	}

	if value > ceiling {
		return domain.AdmissionResult{
			Allowed: false,
			Limit:   ceiling,
			Reason:  domain.ReasonBurstExceeded,
		}
	}

	return domain.AdmissionResult{
		Allowed:   true,
		Limit:     ceiling,
		Remaining: ceiling - value,
	}
}

func (s Burst) ceiling(tier string) int64 {
	ceiling, ok := s.ceilingByTier[tier]
	if !ok {
		return s.ceilingByTier[domain.TierAnonymous]
	}
	return ceiling
}
