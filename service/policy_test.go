package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pet-gate-service/conf"
	"pet-gate-service/domain"
	"pet-gate-service/service"
)

func rateLimitConfig() conf.RateLimit {
	return conf.RateLimit{
		Burst: []conf.BurstLimit{
			{Tier: domain.TierAnonymous, RequestsPerMinute: 3},
			{Tier: domain.TierFree, RequestsPerMinute: 100},
			{Tier: domain.TierPremium, RequestsPerMinute: 200},
			{Tier: domain.TierFamily, RequestsPerMinute: 300},
		},
		Rules: []conf.QuotaRule{
			{Tier: domain.TierAnonymous, Category: domain.CategoryApiCalls, MaxCount: 20, Window: "1h"},
			{Tier: domain.TierFree, Category: domain.CategoryApiCalls, MaxCount: 100, Window: "1h"},
			{Tier: domain.TierFree, Category: domain.CategoryLostPetReports, MaxCount: 5, Window: "24h"},
			{Tier: domain.TierPremium, Category: domain.CategoryApiCalls, MaxCount: 1000, Window: "1h"},
			{Tier: domain.TierPremium, Category: domain.CategoryUploads, MaxCount: 50, Window: "24h"},
		},
		Endpoints: []conf.EndpointCategory{
			{Method: "POST", Path: "/pets/lost-reports", Category: domain.CategoryLostPetReports},
			{Method: "POST", Path: "/pets/photos", Category: domain.CategoryUploads},
			{Method: "GET", Path: "/pets/search", Category: domain.CategorySearch},
		},
		Geo: conf.Geo{
			PrimaryCountries:  []string{"US", "CA"},
			DefaultMultiplier: 0.5,
		},
	}
}

func TestClassifyIsTotal(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	policies, err := service.NewPolicies(rateLimitConfig())
	require.NoError(err)

	require.EqualValues(domain.CategoryLostPetReports, policies.Classify("POST", "/pets/lost-reports"))
	require.EqualValues(domain.CategoryLostPetReports, policies.Classify("post", "/pets/lost-reports"))
	require.EqualValues(domain.CategoryUploads, policies.Classify("POST", "/pets/photos"))

	// unmapped combinations resolve to api_calls
	require.EqualValues(domain.CategoryApiCalls, policies.Classify("GET", "/pets/lost-reports"))
	require.EqualValues(domain.CategoryApiCalls, policies.Classify("DELETE", "/unknown"))
	require.EqualValues(domain.CategoryApiCalls, policies.Classify("", ""))
}

func TestRuleForFallbacks(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	policies, err := service.NewPolicies(rateLimitConfig())
	require.NoError(err)

	rule := policies.RuleFor(domain.TierFree, domain.CategoryLostPetReports)
	require.EqualValues(5, rule.Limit)

	// unknown category falls back to the tier's api_calls rule
	rule = policies.RuleFor(domain.TierFree, domain.CategoryNotifications)
	require.EqualValues(100, rule.Limit)

	// unknown tier falls back to anonymous
	rule = policies.RuleFor("enterprise", domain.CategoryApiCalls)
	require.EqualValues(20, rule.Limit)

	// both unknown resolves to the anonymous api_calls rule
	rule = policies.RuleFor("enterprise", "unknown")
	require.EqualValues(20, rule.Limit)

	tiers := []string{domain.TierFree, domain.TierPremium, domain.TierFamily, domain.TierAnonymous, "unknown"}
	categories := []string{
		domain.CategoryApiCalls, domain.CategoryUploads, domain.CategoryLostPetReports,
		domain.CategoryNotifications, domain.CategorySearch, domain.CategoryLostPetSearch,
		domain.CategoryRegistration, "unknown",
	}
	for _, tier := range tiers {
		for _, category := range categories {
			rule := policies.RuleFor(tier, category)
			require.GreaterOrEqual(rule.Limit, int64(1))
			require.Greater(rule.Window, time.Duration(0))
		}
	}
}

func TestNewPoliciesRequiresFallbackRule(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cfg := rateLimitConfig()
	cfg.Rules = []conf.QuotaRule{
		{Tier: domain.TierFree, Category: domain.CategoryApiCalls, MaxCount: 100, Window: "1h"},
	}
	_, err := service.NewPolicies(cfg)
	require.Error(err)
}

func TestNewPoliciesRejectsBadWindow(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cfg := rateLimitConfig()
	cfg.Rules = append(cfg.Rules, conf.QuotaRule{
		Tier: domain.TierFamily, Category: domain.CategoryApiCalls, MaxCount: 10, Window: "tomorrow",
	})
	_, err := service.NewPolicies(cfg)
	require.Error(err)
}
