package entities

import "time"

// LayerType is the closed set of reference-layer kinds the validation
// engine screens against (§3). app_water is deliberately absent (§9 open
// question 1).
type LayerType string

const (
	LayerProdes        LayerType = "prodes"
	LayerMapBiomas     LayerType = "mapbiomas"
	LayerTerraIndigena LayerType = "terra_indigena"
	LayerUC            LayerType = "uc"
	LayerQuilombola    LayerType = "quilombola"
	LayerEmbargoIBAMA  LayerType = "embargo_ibama"
)

// AllLayerTypes is the fixed iteration order the engine runs checks in.
var AllLayerTypes = []LayerType{
	LayerProdes, LayerMapBiomas, LayerTerraIndigena,
	LayerEmbargoIBAMA, LayerQuilombola, LayerUC,
}

// StrictProtectionCategories are UC categories whose overlap is a critical
// blocker rather than a sustainable-use warning (§4.1).
var StrictProtectionCategories = map[string]bool{
	"PARNA": true, "ESEC": true, "REBIO": true, "EE": true, "MN": true,
}

// ReferenceLayer is a catalog row: one authoritative-dataset feature. The
// core treats this table as read-only; ingestion is an external
// collaborator (§1).
type ReferenceLayer struct {
	Base
	LayerType     LayerType  `json:"layer_type" gorm:"type:varchar(32);not null;index:idx_layer_active"`
	SourceName    string     `json:"source_name" gorm:"type:varchar(255)"`
	GeomWKT       string     `json:"-" gorm:"column:geom;type:geometry(MULTIPOLYGON,4326)"`
	Name          string     `json:"name" gorm:"type:varchar(255)"`
	ReferenceDate *time.Time `json:"reference_date"`
	ExtraData     JSONMap    `json:"extra_data" gorm:"type:jsonb;default:'{}';serializer:json"`
	IsActive      bool       `json:"is_active" gorm:"default:true;index:idx_layer_active"`
	IngestedAt    time.Time  `json:"ingested_at"`
}

func (ReferenceLayer) TableName() string { return "reference_layers" }

// Category returns the UC protection category from extra_data, used by the
// validation engine's strict-protection check.
func (r *ReferenceLayer) Category() string {
	if r.ExtraData == nil {
		return ""
	}
	if v, ok := r.ExtraData["category"].(string); ok {
		return v
	}
	return ""
}
