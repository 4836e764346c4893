package entities

import "time"

// DatasetVersion records the currently-active version descriptor for one
// reference layer (§4.9). The engine snapshots these into every verdict.
type DatasetVersion struct {
	Base
	LayerType   LayerType  `json:"layer_type" gorm:"type:varchar(32);uniqueIndex:idx_dataset_layer_active,where:is_active"`
	Version     string     `json:"version" gorm:"type:varchar(64)"`
	SourceDate  *time.Time `json:"source_date"`
	RecordCount int64      `json:"record_count"`
	IngestedAt  time.Time  `json:"ingested_at"`
	Checksum    string     `json:"checksum,omitempty" gorm:"type:varchar(128)"`
	IsActive    bool       `json:"is_active" gorm:"default:true"`
}

func (DatasetVersion) TableName() string { return "dataset_versions" }

// Descriptor is the value embedded into a Verdict's reference_data_version
// map and, byte-identically, into the paired Audit Record (§4.1).
type Descriptor struct {
	Version     string     `json:"version"`
	SourceDate  *time.Time `json:"source_date,omitempty"`
	RecordCount int64      `json:"record_count"`
	IngestedAt  time.Time  `json:"ingested_at"`
	Checksum    string     `json:"checksum,omitempty"`
}

// LegacyVersion is the marker used when the dataset_versions table is
// missing or incompatible and the registry falls back to the layer store.
const LegacyVersion = "legacy"
