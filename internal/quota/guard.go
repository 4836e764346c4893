package quota

import (
	"context"
	"time"

	"github.com/greengate/screening/internal/entities"
	"github.com/greengate/screening/pkg/apperr"
	"gorm.io/gorm/clause"
)

// AdmissionResult carries the post-increment state needed for the
// X-RateLimit-* response headers (§4.3).
type AdmissionResult struct {
	Key       *entities.APIKey
	Remaining *int // nil when unlimited
	ResetAt   time.Time
}

// Admit runs the full admission protocol (§4.3) in a single transaction:
// row-level exclusive lock, expiry check, monthly reset, quota check,
// increment, commit. The lock is held only for the duration of this call —
// no application sleep, no external I/O, no call into C3 happens while it
// is held (§5).
func (s *Store) Admit(ctx context.Context, rawKey string) (*AdmissionResult, error) {
	hash := HashKey(rawKey)
	now := time.Now().UTC()

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, apperr.Internal(tx.Error)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	var key entities.APIKey
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("key_hash = ? AND is_active = ? AND is_revoked = ?", hash, true, false).
		First(&key).Error
	if err != nil {
		return nil, apperr.AuthInvalid()
	}

	if key.ExpiresAt != nil && now.After(*key.ExpiresAt) {
		return nil, apperr.AuthExpired()
	}

	updates := map[string]any{}
	if key.NeedsReset(now) {
		key.RequestsThisMonth = 0
		key.LastResetAt = &now
		updates["requests_this_month"] = 0
		updates["last_reset_at"] = now
	}

	if key.QuotaExhausted() {
		resetAt := nextResetAt(key.LastResetAt, now)
		detail := map[string]any{
			"plan":     key.Plan,
			"limit":    key.MonthlyQuota,
			"reset_at": resetAt.Format(time.RFC3339),
		}
		return nil, apperr.QuotaExceeded(detail)
	}

	key.RequestsThisMonth++
	key.TotalRequests++
	key.LastUsedAt = &now
	updates["requests_this_month"] = key.RequestsThisMonth
	updates["total_requests"] = key.TotalRequests
	updates["last_used_at"] = now

	if err := tx.Model(&entities.APIKey{}).Where("id = ?", key.ID).Updates(updates).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperr.Internal(err)
	}
	committed = true

	result := &AdmissionResult{Key: &key, ResetAt: nextResetAt(key.LastResetAt, now)}
	if key.MonthlyQuota != nil {
		remaining := *key.MonthlyQuota - int(key.RequestsThisMonth)
		if remaining < 0 {
			remaining = 0
		}
		result.Remaining = &remaining
	}
	return result, nil
}

func nextResetAt(lastReset *time.Time, now time.Time) time.Time {
	if lastReset == nil {
		return now.Add(30 * 24 * time.Hour)
	}
	return lastReset.Add(30 * 24 * time.Hour)
}
