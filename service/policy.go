package service

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"pet-gate-service/conf"
	"pet-gate-service/domain"
)

// Policies holds the static admission tables. Built once per config
// upgrade, read-only afterwards.
type Policies struct {
	categoryByEndpoint    map[string]string
	ruleByTierAndCategory map[string]map[string]domain.Rule
}

func NewPolicies(cfg conf.RateLimit) (Policies, error) {
	categoryByEndpoint := make(map[string]string)
	for _, endpoint := range cfg.Endpoints {
		categoryByEndpoint[endpointKey(endpoint.Method, endpoint.Path)] = endpoint.Category
	}

	ruleByTierAndCategory := make(map[string]map[string]domain.Rule)
	for _, rule := range cfg.Rules {
		window, err := time.ParseDuration(rule.Window)
		if err != nil {
			return Policies{}, errors.WithMessagef(err, "parse window for tier '%s' category '%s'", rule.Tier, rule.Category)
		}
		rules, ok := ruleByTierAndCategory[rule.Tier]
		if !ok {
			rules = make(map[string]domain.Rule)
			ruleByTierAndCategory[rule.Tier] = rules
		}
		rules[rule.Category] = domain.Rule{
			Limit:  rule.MaxCount,
			Window: window,
		}
	}

	_, ok := ruleByTierAndCategory[domain.TierAnonymous][domain.CategoryApiCalls]
	if !ok {
		return Policies{}, errors.New("a rule for the anonymous tier and the api_calls category is required")
	}

	return Policies{
		categoryByEndpoint:    categoryByEndpoint,
		ruleByTierAndCategory: ruleByTierAndCategory,
	}, nil
}

// Classify is total: endpoints missing from the table belong to api_calls.
func (p Policies) Classify(method string, path string) string {
	category, ok := p.categoryByEndpoint[endpointKey(method, path)]
	if !ok {
		return domain.CategoryApiCalls
	}
	return category
}

// RuleFor never fails: unknown tiers fall back to anonymous, unknown
// categories to api_calls. The anonymous/api_calls rule always exists.
func (p Policies) RuleFor(tier string, category string) domain.Rule {
	rules, ok := p.ruleByTierAndCategory[tier]
	if !ok {
		rules = p.ruleByTierAndCategory[domain.TierAnonymous]
	}

	rule, ok := rules[category]
	if ok {
		return rule
	}
	rule, ok = rules[domain.CategoryApiCalls]
	if ok {
		return rule
	}
	return p.ruleByTierAndCategory[domain.TierAnonymous][domain.CategoryApiCalls]
}

func endpointKey(method string, path string) string {
	return strings.ToUpper(method) + " " + path
}
