// Package datasetregistry implements C2: the current-version descriptor per
// reference layer, cached in process and invalidated on write.
package datasetregistry

import (
	"context"
	"sync"
	"time"

	"github.com/greengate/screening/internal/entities"
	"github.com/greengate/screening/internal/interfaces"
	"gorm.io/gorm"
)

const cacheTTL = 300 * time.Second

// Registry is C2's contract: the verdict and the audit record both read
// this, never the layer store directly.
type Registry interface {
	Versions(ctx context.Context) (map[entities.LayerType]entities.Descriptor, error)
	Invalidate()
}

// GormRegistry reads dataset_versions, caching the result for cacheTTL and
// falling back to a degenerate descriptor computed from reference_layers
// when the table is missing or the query fails.
type GormRegistry struct {
	db  *gorm.DB
	log interfaces.Logger

	mu       sync.Mutex
	cached   map[entities.LayerType]entities.Descriptor
	cachedAt time.Time
}

func NewGormRegistry(db *gorm.DB, log interfaces.Logger) *GormRegistry {
	return &GormRegistry{db: db, log: log}
}

// Versions returns the active descriptor per layer type, serving from cache
// when fresh.
func (r *GormRegistry) Versions(ctx context.Context) (map[entities.LayerType]entities.Descriptor, error) {
	r.mu.Lock()
	if r.cached != nil && time.Since(r.cachedAt) < cacheTTL {
		cached := r.cached
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	versions, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cached = versions
	r.cachedAt = time.Now()
	r.mu.Unlock()

	return versions, nil
}

// Invalidate drops the cache; any write to the registry must call this.
func (r *GormRegistry) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cached = nil
}

func (r *GormRegistry) load(ctx context.Context) (map[entities.LayerType]entities.Descriptor, error) {
	var rows []entities.DatasetVersion
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Find(&rows).Error
	if err != nil {
		r.log.Warn("dataset_versions unavailable, falling back to legacy descriptor", zapErr(err)...)
		return r.legacyFallback(ctx)
	}

	out := make(map[entities.LayerType]entities.Descriptor, len(entities.AllLayerTypes))
	seen := make(map[entities.LayerType]bool, len(rows))
	for _, row := range rows {
		out[row.LayerType] = entities.Descriptor{
			Version:     row.Version,
			SourceDate:  row.SourceDate,
			RecordCount: row.RecordCount,
			IngestedAt:  row.IngestedAt,
			Checksum:    row.Checksum,
		}
		seen[row.LayerType] = true
	}

	for _, lt := range entities.AllLayerTypes {
		if seen[lt] {
			continue
		}
		desc, err := r.legacyDescriptor(ctx, lt)
		if err == nil {
			out[lt] = desc
		}
	}

	return out, nil
}

// legacyFallback computes a degenerate descriptor for every layer type by
// counting rows in the layer store directly (§4.9).
func (r *GormRegistry) legacyFallback(ctx context.Context) (map[entities.LayerType]entities.Descriptor, error) {
	out := make(map[entities.LayerType]entities.Descriptor, len(entities.AllLayerTypes))
	for _, lt := range entities.AllLayerTypes {
		desc, err := r.legacyDescriptor(ctx, lt)
		if err != nil {
			continue
		}
		out[lt] = desc
	}
	return out, nil
}

func (r *GormRegistry) legacyDescriptor(ctx context.Context, lt entities.LayerType) (entities.Descriptor, error) {
	var count int64
	var maxIngested time.Time

	row := r.db.WithContext(ctx).Model(&entities.ReferenceLayer{}).
		Where("layer_type = ? AND is_active = ?", lt, true)

	if err := row.Count(&count).Error; err != nil {
		return entities.Descriptor{}, err
	}

	_ = r.db.WithContext(ctx).Model(&entities.ReferenceLayer{}).
		Where("layer_type = ? AND is_active = ?", lt, true).
		Select("COALESCE(MAX(ingested_at), now())").Scan(&maxIngested).Error

	return entities.Descriptor{
		Version:     entities.LegacyVersion,
		RecordCount: count,
		IngestedAt:  maxIngested,
	}, nil
}
