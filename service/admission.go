package service

import (
	"context"

	"pet-gate-service/domain"
)

type AdmissionPolicy interface {
	Evaluate(ctx context.Context, req domain.AdmissionRequest) domain.AdmissionResult
}

// Admission runs the policies in order and short-circuits on the first
// denial, so a caller tripping the burst guard never consumes quota.
type Admission struct {
	policies []AdmissionPolicy
}

func NewAdmission(policies ...AdmissionPolicy) Admission {
	return Admission{
		policies: policies,
	}
}

func (s Admission) Admit(ctx context.Context, req domain.AdmissionRequest) domain.AdmissionResult {
	degraded := false
	result := domain.AdmissionResult{Allowed: true}
	for _, policy := range s.policies {
		result = policy.Evaluate(ctx, req)
		if !result.Allowed {
			return result
		}
		if result.Reason == domain.ReasonStoreUnavailable {
			degraded = true
		}
	}
	if degraded {
		result.Reason = domain.ReasonStoreUnavailable
	}
	return result
}
