package datasetregistry

import (
	"context"
	"testing"
	"time"

	"github.com/greengate/screening/internal/entities"
	"github.com/greengate/screening/internal/utils"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestRegistry(t *testing.T) (*GormRegistry, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.DatasetVersion{}, &entities.ReferenceLayer{}))

	l, _ := zap.NewDevelopment()
	logger := utils.NewLoggerAdapter(l)
	return NewGormRegistry(db, logger), db
}

func TestVersions_ReturnsActiveDescriptorPerLayer(t *testing.T) {
	registry, db := newTestRegistry(t)

	now := time.Now().UTC()
	require.NoError(t, db.Create(&entities.DatasetVersion{
		LayerType:   entities.LayerProdes,
		Version:     "2026.1",
		RecordCount: 42,
		IngestedAt:  now,
		IsActive:    true,
	}).Error)

	versions, err := registry.Versions(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2026.1", versions[entities.LayerProdes].Version)
	require.EqualValues(t, 42, versions[entities.LayerProdes].RecordCount)
}

func TestVersions_ServesFromCacheUntilInvalidated(t *testing.T) {
	registry, db := newTestRegistry(t)

	require.NoError(t, db.Create(&entities.DatasetVersion{
		LayerType: entities.LayerMapBiomas, Version: "v1", IsActive: true, IngestedAt: time.Now(),
	}).Error)

	first, err := registry.Versions(context.Background())
	require.NoError(t, err)
	require.Equal(t, "v1", first[entities.LayerMapBiomas].Version)

	require.NoError(t, db.Model(&entities.DatasetVersion{}).
		Where("layer_type = ?", entities.LayerMapBiomas).
		Update("version", "v2").Error)

	cached, err := registry.Versions(context.Background())
	require.NoError(t, err)
	require.Equal(t, "v1", cached[entities.LayerMapBiomas].Version, "cache should still serve the stale value")

	registry.Invalidate()

	fresh, err := registry.Versions(context.Background())
	require.NoError(t, err)
	require.Equal(t, "v2", fresh[entities.LayerMapBiomas].Version)
}
