package entities

import "time"

// Status is the verdict's terminal classification (§3). A second "warning"
// variant is deliberately not introduced (§9 open question 3).
type Status string

const (
	StatusApproved Status = "approved"
	StatusWarning  Status = "warning"
	StatusRejected Status = "rejected"
)

// CheckStatus is a single check result's outcome, independent of its score.
type CheckStatus string

const (
	CheckPass    CheckStatus = "pass"
	CheckFail    CheckStatus = "fail"
	CheckWarning CheckStatus = "warning"
	CheckSkip    CheckStatus = "skip"
)

// ValidationReport is the Audit Record (§3): an immutable snapshot of a
// verdict plus the polygon, its hash, and the dataset versions active when
// it was produced. Retained until ExpiresAt.
type ValidationReport struct {
	Base
	ReportCode       string       `json:"report_code" gorm:"column:report_code;type:varchar(32);uniqueIndex"`
	Status           Status       `json:"status" gorm:"type:varchar(16)"`
	RiskScore        float64      `json:"risk_score"`
	GeometryGeoJSON  string       `json:"geometry_geojson" gorm:"type:jsonb"`
	GeometryHash     string       `json:"geometry_hash" gorm:"type:varchar(64);index"`
	GeometryBBox     Float64Slice `json:"geometry_bbox" gorm:"type:jsonb;serializer:json"`
	GeometryCentroid string       `json:"geometry_centroid" gorm:"type:varchar(64)"`
	GeometryAreaHa   float64      `json:"geometry_area_ha"`
	PDFHash          string       `json:"pdf_hash" gorm:"type:varchar(64)"`
	PDFSizeBytes     int64        `json:"pdf_size_bytes"`
	DatasetsVersion  JSONMap      `json:"datasets_version" gorm:"type:jsonb;serializer:json"`
	RulesetVersion   string       `json:"ruleset_version" gorm:"type:varchar(16)"`
	APIVersion       string       `json:"api_version" gorm:"type:varchar(16)"`
	ChecksSummary    JSONMap      `json:"checks_summary" gorm:"type:jsonb;serializer:json"`
	RequestIP        string       `json:"request_ip,omitempty" gorm:"type:varchar(64)"`
	APIKeyHash       string       `json:"api_key_hash,omitempty" gorm:"type:varchar(64);index"`
	UserAgent        string       `json:"user_agent,omitempty" gorm:"type:varchar(512)"`
	PlotName         string       `json:"plot_name,omitempty" gorm:"type:varchar(255)"`
	PropertyName     string       `json:"property_name,omitempty" gorm:"type:varchar(255)"`
	State            string       `json:"state,omitempty" gorm:"type:varchar(8)"`
	ExpiresAt        time.Time    `json:"expires_at"`
}

func (ValidationReport) TableName() string { return "validation_reports" }

// IsExpired reports whether the record has passed its retention window.
func (v *ValidationReport) IsExpired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// TruncatedHash returns the first n hex characters of a hash for the public
// verification surface (§4.8), which never exposes the full value.
func TruncatedHash(hash string, n int) string {
	if len(hash) <= n {
		return hash
	}
	return hash[:n]
}
