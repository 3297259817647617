package domain

import (
	"time"
)

const (
	TierFree      = "free"
	TierPremium   = "premium"
	TierFamily    = "family"
	TierAnonymous = "anonymous"
)

const (
	CategoryApiCalls       = "api_calls"
	CategoryUploads        = "uploads"
	CategoryLostPetReports = "lost_pet_reports"
	CategoryNotifications  = "notifications"
	CategorySearch         = "search"
	CategoryLostPetSearch  = "lost_pet_search"
	CategoryRegistration   = "registration"
)

const (
	ReasonBurstExceeded    = "burst_exceeded"
	ReasonRateExceeded     = "rate_exceeded"
	ReasonStoreUnavailable = "store_unavailable"
)

const (
	IdentityKindUser = "user"
	IdentityKindIp   = "ip"
)

// Identity is the sole basis for counter keys. Exactly one kind per request.
type Identity struct {
	Kind  string
	Value string
}

type Rule struct {
	Limit  int64
	Window time.Duration
}

type AdmissionRequest struct {
	Identity Identity
	Tier     string
	Method   string
	Path     string
	Ip       string
}

// AdmissionResult is produced fresh per request and never persisted.
// ResetAt is zero when the store reported no expiry for the counter.
type AdmissionResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   time.Time
	Reason    string
}
