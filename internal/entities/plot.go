package entities

// Plot is a stored parcel a client can reference by id instead of resending
// its geometry on every call (`POST /validations/plot/{id}`, §6).
type Plot struct {
	Base
	Name            string `json:"name" gorm:"type:varchar(255)"`
	GeometryGeoJSON string `json:"geometry_geojson" gorm:"type:jsonb"`
	PropertyName    string `json:"property_name,omitempty" gorm:"type:varchar(255)"`
	Municipality    string `json:"municipality,omitempty" gorm:"type:varchar(255)"`
	State           string `json:"state,omitempty" gorm:"type:varchar(8)"`
	APIKeyID        string `json:"-" gorm:"type:varchar(36);index"`

	// CachedVerdict is the last computed verdict's JSON, served by
	// GET /validations/{id}; each POST /validations/plot/{id} recomputes
	// the verdict and overwrites it.
	CachedVerdict JSONMap `json:"cached_verdict,omitempty" gorm:"type:jsonb;serializer:json"`
}

func (Plot) TableName() string { return "plots" }
