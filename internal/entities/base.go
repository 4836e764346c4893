// Package entities holds the gorm models backing the reference-layer
// catalog, dataset-version registry, API-key store, and audit records.
package entities

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base mirrors the teacher's models.Base: a string primary key minted in
// BeforeCreate, plus created/updated timestamps.
type Base struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

// BeforeCreate generates a UUID primary key when the caller hasn't set one.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// JSONMap is a generic JSONB-backed key/value bag, used for the catalog's
// extra_data, the verdict's reference_data_version snapshot, and the audit
// record's checks_summary — the same Scan/Value pattern as the teacher's
// farm.Metadata.
type JSONMap map[string]any

func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = make(JSONMap)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			*m = make(JSONMap)
			return nil
		}
	}
	result := make(JSONMap)
	if len(bytes) == 0 {
		*m = result
		return nil
	}
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}
	*m = result
	return nil
}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Float64Slice is a JSON-backed array of floats, used for geometry_bbox.
type Float64Slice []float64

func (s *Float64Slice) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if str, ok := value.(string); ok {
			bytes = []byte(str)
		} else {
			return nil
		}
	}
	if len(bytes) == 0 {
		*s = nil
		return nil
	}
	return json.Unmarshal(bytes, s)
}

func (s Float64Slice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}
