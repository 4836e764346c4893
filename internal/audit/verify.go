package audit

import (
	"context"
	"time"

	"github.com/greengate/screening/internal/entities"
	"github.com/greengate/screening/internal/geometry"
)

// VerifyResult is C8's JSON shape (§4.8).
type VerifyResult struct {
	Valid        bool    `json:"valid"`
	Error        string  `json:"error,omitempty"`
	ReportCode   string  `json:"report_code,omitempty"`
	Status       string  `json:"status,omitempty"`
	RiskScore    float64 `json:"risk_score,omitempty"`
	CreatedAt    string  `json:"created_at,omitempty"`
	ExpiresAt    string  `json:"expires_at,omitempty"`
	IsExpired    bool    `json:"is_expired,omitempty"`
	PlotName     string  `json:"plot_name,omitempty"`
	PropertyName string  `json:"property_name,omitempty"`
	State        string  `json:"state,omitempty"`
	GeometryHash string  `json:"geometry_hash,omitempty"`
	PDFHash      string  `json:"pdf_hash,omitempty"`
}

// errNotFound and errMismatch use the exact Portuguese strings the source
// system surfaces, preserved verbatim since the public-facing authenticity
// page is user content, not an internal message.
const (
	errNotFound = "Laudo não encontrado"
	errMismatch = "Geometria não corresponde ao laudo"
)

// Verify returns the truncated, public-facing summary for a report code
// (§4.8). Unknown codes are not an error from the caller's perspective —
// they render as valid=false so the HTTP layer can choose a 404 body.
func (r *Recorder) Verify(ctx context.Context, code string) (*VerifyResult, error) {
	rec, err := r.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return &VerifyResult{Valid: false, Error: errNotFound}, nil
	}

	now := time.Now().UTC()
	return &VerifyResult{
		Valid:        true,
		ReportCode:   rec.ReportCode,
		Status:       string(rec.Status),
		RiskScore:    rec.RiskScore,
		CreatedAt:    rec.CreatedAt.Format(time.RFC3339),
		ExpiresAt:    rec.ExpiresAt.Format(time.RFC3339),
		IsExpired:    rec.IsExpired(now),
		PlotName:     rec.PlotName,
		PropertyName: rec.PropertyName,
		State:        rec.State,
		GeometryHash: entities.TruncatedHash(rec.GeometryHash, 12),
		PDFHash:      entities.TruncatedHash(rec.PDFHash, 12),
	}, nil
}

// VerifyGeometry re-hashes a submitted geometry and rejects a mismatch
// against the stored record (§8 invariant 7): mutating any coordinate to
// fewer than six decimals breaks the match.
func (r *Recorder) VerifyGeometry(ctx context.Context, code string, geometryRaw []byte) (*VerifyResult, error) {
	rec, err := r.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return &VerifyResult{Valid: false, Error: errNotFound}, nil
	}

	hash, err := geometry.HashGeoJSON(geometryRaw)
	if err != nil {
		return &VerifyResult{Valid: false, Error: errMismatch}, nil
	}

	if hash != rec.GeometryHash {
		return &VerifyResult{Valid: false, Error: errMismatch}, nil
	}

	return r.Verify(ctx, code)
}

// Reproduce returns the full stored snapshot for admin/debug review,
// distinct from the truncated public Verify output (SPEC_FULL.md §3).
func (r *Recorder) Reproduce(ctx context.Context, code string) (*entities.ValidationReport, error) {
	return r.GetByCode(ctx, code)
}
