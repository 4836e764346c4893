package entities

import "time"

// Plan is the API-key billing tier; it determines the monthly quota (§4.3).
type Plan string

const (
	PlanFree         Plan = "free"
	PlanProfessional Plan = "professional"
	PlanEnterprise   Plan = "enterprise"
)

// APIKey is the store row behind C4's admission protocol. Only the hash and
// a display prefix are persisted; the plaintext key is returned exactly
// once, at creation time.
type APIKey struct {
	Base
	KeyHash           string     `json:"-" gorm:"column:key_hash;type:varchar(64);uniqueIndex"`
	KeyPrefix         string     `json:"key_prefix" gorm:"type:varchar(20)"`
	ClientName        string     `json:"client_name" gorm:"type:varchar(255)"`
	ClientEmail       string     `json:"client_email" gorm:"type:varchar(255);uniqueIndex"`
	Plan              Plan       `json:"plan" gorm:"type:varchar(32);default:'free'"`
	MonthlyQuota      *int       `json:"monthly_quota"`
	TotalRequests     int64      `json:"total_requests" gorm:"default:0"`
	RequestsThisMonth int64      `json:"requests_this_month" gorm:"default:0"`
	LastResetAt       *time.Time `json:"last_reset_at"`
	IsActive          bool       `json:"is_active" gorm:"default:true"`
	IsRevoked         bool       `json:"is_revoked" gorm:"default:false"`
	RevokedAt         *time.Time `json:"revoked_at,omitempty"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	LastUsedAt        *time.Time `json:"last_used_at,omitempty"`
}

func (APIKey) TableName() string { return "api_keys" }

// QuotaExhausted reports whether the key has used its full monthly
// allowance. A nil MonthlyQuota means unlimited (enterprise, §8 boundary
// case: monthly_quota=null never hits 429).
func (k *APIKey) QuotaExhausted() bool {
	return k.MonthlyQuota != nil && k.RequestsThisMonth >= int64(*k.MonthlyQuota)
}

// NeedsReset reports whether the usage window should roll over: never reset
// before, or the last reset is 30+ days old.
func (k *APIKey) NeedsReset(now time.Time) bool {
	return k.LastResetAt == nil || now.Sub(*k.LastResetAt) >= 30*24*time.Hour
}
