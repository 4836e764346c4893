// Package verify is C8's public-facing surface: it renders the audit
// recorder's JSON and HTML verification payloads. The data logic itself —
// lookup, geometry re-hash, truncation — lives in internal/audit, which
// this package never duplicates.
package verify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/greengate/screening/internal/audit"
)

// Service renders audit.Recorder results for the /reports/verify surface.
type Service struct {
	recorder *audit.Recorder
}

func NewService(recorder *audit.Recorder) *Service {
	return &Service{recorder: recorder}
}

// JSON returns the recorder's result unchanged; the HTTP layer marshals it.
func (s *Service) JSON(ctx context.Context, code string) (*audit.VerifyResult, error) {
	return s.recorder.Verify(ctx, code)
}

// HTML renders the public verification page for a report code. Unknown or
// expired codes still render 200 with a human-readable not-found page; the
// HTTP layer decides the status code from result.Valid.
func (s *Service) HTML(ctx context.Context, code string) (string, *audit.VerifyResult, error) {
	result, err := s.recorder.Verify(ctx, code)
	if err != nil {
		return "", nil, err
	}
	if !result.Valid {
		return notFoundPage(code, result.Error), result, nil
	}
	return verifiedPage(result), result, nil
}

func verifiedPage(r *audit.VerifyResult) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html lang=\"pt-BR\"><head><meta charset=\"utf-8\">")
	b.WriteString(fmt.Sprintf("<title>Laudo %s</title></head><body>", html.EscapeString(r.ReportCode)))
	b.WriteString(fmt.Sprintf("<h1>Laudo %s</h1>", html.EscapeString(r.ReportCode)))
	b.WriteString(fmt.Sprintf("<p>Status: <strong>%s</strong></p>", html.EscapeString(statusLabelPT(r.Status))))
	b.WriteString(fmt.Sprintf("<p>Pontuação de risco: %.1f</p>", r.RiskScore))
	b.WriteString(fmt.Sprintf("<p>Emitido em: %s</p>", html.EscapeString(r.CreatedAt)))
	b.WriteString(fmt.Sprintf("<p>Válido até: %s</p>", html.EscapeString(r.ExpiresAt)))
	if r.IsExpired {
		b.WriteString("<p><strong>Este laudo expirou.</strong></p>")
	}
	if r.PropertyName != "" {
		b.WriteString(fmt.Sprintf("<p>Propriedade: %s</p>", html.EscapeString(r.PropertyName)))
	}
	b.WriteString(fmt.Sprintf("<p>Hash da geometria: %s&hellip;</p>", html.EscapeString(r.GeometryHash)))
	b.WriteString(fmt.Sprintf("<p>Hash do PDF: %s&hellip;</p>", html.EscapeString(r.PDFHash)))
	b.WriteString("</body></html>")
	return b.String()
}

func notFoundPage(code, reason string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html lang=\"pt-BR\"><head><meta charset=\"utf-8\">")
	b.WriteString("<title>Laudo não encontrado</title></head><body>")
	b.WriteString(fmt.Sprintf("<h1>%s</h1>", html.EscapeString(reason)))
	b.WriteString(fmt.Sprintf("<p>Código consultado: %s</p>", html.EscapeString(code)))
	b.WriteString("</body></html>")
	return b.String()
}

func statusLabelPT(status string) string {
	switch status {
	case "approved":
		return "Apto"
	case "warning":
		return "Apto com ressalvas"
	case "rejected":
		return "Não apto"
	default:
		return status
	}
}
