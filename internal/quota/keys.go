// Package quota implements C4: API-key generation, lookup, and the atomic
// monthly-quota admission protocol.
package quota

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/greengate/screening/internal/entities"
	"github.com/greengate/screening/internal/interfaces"
	"gorm.io/gorm"
)

const (
	keyPrefixLiteral = "gg_live_"
	keyRandomBytes   = 16 // 32 hex chars
	createRetries    = 3
)

// Store wires the quota guard and the admin key-lifecycle endpoints to a
// gorm connection.
type Store struct {
	db    *gorm.DB
	log   interfaces.Logger
	plans PlanQuotas
}

// PlanQuotas is the plan -> monthly quota table (§4.3). A nil value means
// unlimited.
type PlanQuotas struct {
	Free         *int
	Professional *int
	Enterprise   *int
}

func (p PlanQuotas) forPlan(plan entities.Plan) *int {
	switch plan {
	case entities.PlanProfessional:
		return p.Professional
	case entities.PlanEnterprise:
		return p.Enterprise
	default:
		return p.Free
	}
}

func NewStore(db *gorm.DB, log interfaces.Logger, plans PlanQuotas) *Store {
	return &Store{db: db, log: log, plans: plans}
}

// HashKey returns the SHA-256 hex digest of a plaintext API key.
func HashKey(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// Prefix returns the first 12 characters plus an ellipsis, for display.
func Prefix(plaintext string) string {
	if len(plaintext) <= 12 {
		return plaintext + "..."
	}
	return plaintext[:12] + "..."
}

func generatePlaintext() (string, error) {
	buf := make([]byte, keyRandomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return keyPrefixLiteral + hex.EncodeToString(buf), nil
}

// CreateKey mints a fresh API key, retrying on a key_hash collision (~0
// probability) up to createRetries times (§4.3). The plaintext is returned
// exactly once; only its hash and display prefix are persisted.
func (s *Store) CreateKey(ctx context.Context, clientName, clientEmail string, plan entities.Plan) (plaintext string, key *entities.APIKey, err error) {
	quota := s.plans.forPlan(plan)

	for attempt := 0; attempt < createRetries; attempt++ {
		plaintext, err = generatePlaintext()
		if err != nil {
			return "", nil, err
		}

		now := time.Now().UTC()
		rec := &entities.APIKey{
			KeyHash:      HashKey(plaintext),
			KeyPrefix:    Prefix(plaintext),
			ClientName:   clientName,
			ClientEmail:  clientEmail,
			Plan:         plan,
			MonthlyQuota: quota,
			IsActive:     true,
			LastResetAt:  &now,
		}

		err = s.db.WithContext(ctx).Create(rec).Error
		if err == nil {
			return plaintext, rec, nil
		}
		if !isUniqueViolation(err) {
			return "", nil, err
		}
		s.log.Warn("api key hash collision, regenerating", zapErr(err)...)
	}

	return "", nil, fmt.Errorf("could not generate a unique api key after %d attempts", createRetries)
}

// RevokeKey soft-deletes a key (§3: lifecycle is is_revoked + revoked_at).
func (s *Store) RevokeKey(ctx context.Context, id string) error {
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Model(&entities.APIKey{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_revoked": true, "revoked_at": now}).Error
}

// UpgradePlan changes a key's plan and resets its usage window (§4.3).
func (s *Store) UpgradePlan(ctx context.Context, id string, plan entities.Plan) error {
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Model(&entities.APIKey{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"plan":                plan,
			"monthly_quota":       s.plans.forPlan(plan),
			"requests_this_month": 0,
			"last_reset_at":       now,
		}).Error
}

// ListKeys returns keys, newest first, optionally filtered by plan.
func (s *Store) ListKeys(ctx context.Context, plan *entities.Plan, limit, offset int) ([]entities.APIKey, error) {
	q := s.db.WithContext(ctx).Order("created_at desc").Limit(limit).Offset(offset)
	if plan != nil {
		q = q.Where("plan = ?", *plan)
	}
	var out []entities.APIKey
	err := q.Find(&out).Error
	return out, err
}

// UsageStats aggregates counts by plan, mirroring the original service's
// get_usage_stats (SPEC_FULL.md §3).
type UsageStats struct {
	TotalKeys         int64            `json:"total_keys"`
	ActiveKeys        int64            `json:"active_keys"`
	TotalRequests     int64            `json:"total_requests"`
	RequestsThisMonth int64            `json:"requests_this_month"`
	ByPlan            map[string]int64 `json:"by_plan"`
}

func (s *Store) UsageStats(ctx context.Context) (*UsageStats, error) {
	stats := &UsageStats{ByPlan: map[string]int64{}}
	db := s.db.WithContext(ctx).Model(&entities.APIKey{})

	if err := db.Count(&stats.TotalKeys).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&entities.APIKey{}).
		Where("is_active = ? AND is_revoked = ?", true, false).
		Count(&stats.ActiveKeys).Error; err != nil {
		return nil, err
	}

	var sums struct {
		TotalRequests     int64
		RequestsThisMonth int64
	}
	if err := s.db.WithContext(ctx).Model(&entities.APIKey{}).
		Select("COALESCE(SUM(total_requests),0) as total_requests, COALESCE(SUM(requests_this_month),0) as requests_this_month").
		Scan(&sums).Error; err != nil {
		return nil, err
	}
	stats.TotalRequests = sums.TotalRequests
	stats.RequestsThisMonth = sums.RequestsThisMonth

	for _, plan := range []entities.Plan{entities.PlanFree, entities.PlanProfessional, entities.PlanEnterprise} {
		var count int64
		if err := s.db.WithContext(ctx).Model(&entities.APIKey{}).Where("plan = ?", plan).Count(&count).Error; err == nil {
			stats.ByPlan[string(plan)] = count
		}
	}

	return stats, nil
}
