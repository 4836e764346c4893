package report

import (
	"fmt"
	"time"

	"github.com/greengate/screening/internal/entities"
	"github.com/greengate/screening/internal/validation"
)

func title(lang string) string {
	if lang == "en" {
		return "Environmental Compliance Screening Report"
	}
	return "Laudo de Triagem de Conformidade Ambiental"
}

func statusLabel(status entities.Status, lang string) string {
	switch status {
	case entities.StatusApproved:
		if lang == "en" {
			return "SUITABLE"
		}
		return "APTO"
	case entities.StatusWarning:
		if lang == "en" {
			return "SUITABLE WITH RESERVATIONS"
		}
		return "APTO COM RESSALVAS"
	default:
		if lang == "en" {
			return "NOT SUITABLE"
		}
		return "NÃO APTO"
	}
}

func statusColor(status entities.Status) (r, g, b int) {
	switch status {
	case entities.StatusApproved:
		return 34, 139, 34
	case entities.StatusWarning:
		return 230, 159, 0
	default:
		return 178, 34, 34
	}
}

func decisionSynthesisLabel(lang string) string {
	if lang == "en" {
		return "Decision synthesis"
	}
	return "Síntese da decisão"
}

func riskScoreLine(lang string) string {
	if lang == "en" {
		return "Aggregate risk score: %.1f / 100"
	}
	return "Pontuação de risco agregada: %.1f / 100"
}

func executiveSummary(v *validation.Verdict, lang string) string {
	blockers := blockingLayers(v)
	if len(blockers) > 0 {
		if lang == "en" {
			return fmt.Sprintf("This area was rejected due to an overlap with a critical restriction: %s.", joinNames(blockers, lang))
		}
		return fmt.Sprintf("Esta área foi reprovada por sobreposição com uma restrição crítica: %s.", joinNames(blockers, lang))
	}
	if lang == "en" {
		return "This screening evaluated the submitted polygon against the reference deforestation, land-tenure, and embargo datasets in force at the time of analysis."
	}
	return "Esta triagem avaliou o polígono submetido frente às bases de referência de desmatamento, fundiárias e de embargo vigentes no momento da análise."
}

func interpretationParagraph(v *validation.Verdict, lang string) string {
	switch v.Status {
	case entities.StatusApproved:
		if lang == "en" {
			return "No critical restriction was found to overlap the submitted area, and the aggregate risk score places it within the approved range."
		}
		return "Não foi identificada sobreposição com restrição crítica, e a pontuação de risco agregada situa a área na faixa de aprovação."
	case entities.StatusWarning:
		if lang == "en" {
			return "The submitted area presents at least one condition that warrants manual review before a final compliance decision is made."
		}
		return "A área submetida apresenta ao menos uma condição que recomenda revisão manual antes de uma decisão final de conformidade."
	default:
		if lang == "en" {
			return "The submitted area is not suitable for due-diligence purposes as currently delineated."
		}
		return "A área submetida não é apta para fins de diligência da forma como está atualmente delimitada."
	}
}

func metadataBlock(ctx PropertyContext, now time.Time, lang string) string {
	label := "Propriedade"
	plotLabel := "Talhão"
	munLabel := "Município"
	stateLabel := "UF"
	if lang == "en" {
		label, plotLabel, munLabel, stateLabel = "Property", "Plot", "Municipality", "State"
	}
	return fmt.Sprintf("%s: %s  |  %s: %s  |  %s: %s  |  %s: %s",
		label, orDash(ctx.PropertyName), plotLabel, orDash(ctx.PlotName), munLabel, orDash(ctx.Municipality), stateLabel, orDash(ctx.State))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func criteriaTitle(lang string) string {
	if lang == "en" {
		return "Criteria Evaluated"
	}
	return "Critérios Avaliados"
}

func criteriaHeaders(lang string) []string {
	if lang == "en" {
		return []string{"Criterion", "Result", "Score", "Overlap", "Notes"}
	}
	return []string{"Critério", "Resultado", "Pontuação", "Sobreposição", "Observações"}
}

func checkDisplayName(kind entities.LayerType, lang string) string {
	names := map[entities.LayerType][2]string{
		entities.LayerProdes:        {"Desmatamento (PRODES)", "Deforestation (PRODES)"},
		entities.LayerMapBiomas:     {"Uso do Solo (MapBiomas)", "Land Use (MapBiomas)"},
		entities.LayerTerraIndigena: {"Terra Indígena", "Indigenous Territory"},
		entities.LayerQuilombola:    {"Território Quilombola", "Quilombola Territory"},
		entities.LayerEmbargoIBAMA:  {"Embargo IBAMA", "IBAMA Embargo"},
		entities.LayerUC:            {"Unidade de Conservação", "Conservation Unit"},
	}
	n, ok := names[kind]
	if !ok {
		return string(kind)
	}
	if lang == "en" {
		return n[1]
	}
	return n[0]
}

func checkIcon(status entities.CheckStatus) string {
	switch status {
	case entities.CheckPass:
		return "OK"
	case entities.CheckFail:
		return "X"
	case entities.CheckWarning:
		return "!"
	default:
		return "-"
	}
}

func formatOverlapArea(ha float64) string {
	if ha <= 0 {
		return "-"
	}
	if ha < 1 {
		return fmt.Sprintf("%.0f m²", ha*10000)
	}
	return fmt.Sprintf("%.4f ha", ha)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func landUseHistoryTitle(lang string) string {
	if lang == "en" {
		return "Land Use History"
	}
	return "Histórico de Uso do Solo"
}

func dataSourcesTitle(lang string) string {
	if lang == "en" {
		return "Reference Data Sources"
	}
	return "Fontes de Dados de Referência"
}

func scopeLimitationsTitle(lang string) string {
	if lang == "en" {
		return "Scope and Limitations"
	}
	return "Escopo e Limitações"
}

func scopeLimitationsText(lang string) string {
	if lang == "en" {
		return "This report reflects an automated geospatial screening against the reference datasets listed above, as of their stated freshness dates. It does not constitute a legal opinion, a land-title certification, or a substitute for on-site verification. Reference datasets carry their own update cadence and may not reflect events more recent than their freshness date."
	}
	return "Este laudo reflete uma triagem geoespacial automatizada frente às bases de referência listadas acima, nas datas de atualização indicadas. Não constitui parecer jurídico, certificação de titularidade fundiária, nem substitui a verificação em campo. As bases de referência têm cadência própria de atualização e podem não refletir eventos posteriores à sua data de atualização."
}

func authenticityTitle(lang string) string {
	if lang == "en" {
		return "Authenticity Verification"
	}
	return "Verificação de Autenticidade"
}

func technicalMetadataBlock(reportCode, geometryHash string, now time.Time, lang string) string {
	label := "Código do laudo"
	hashLabel := "Hash da geometria"
	engineLabel := "Versão do motor"
	tsLabel := "Emitido em"
	if lang == "en" {
		label, hashLabel, engineLabel, tsLabel = "Report code", "Geometry hash", "Engine version", "Issued at"
	}
	return fmt.Sprintf("%s: %s  |  %s: %s  |  %s: %s  |  %s: %s (America/Sao_Paulo)",
		label, reportCode, hashLabel, truncate(geometryHash, 16), engineLabel, engineVersion, tsLabel, now.Format("2006-01-02 15:04:05"))
}

func blockingLayers(v *validation.Verdict) []entities.LayerType {
	var out []entities.LayerType
	for _, c := range v.Checks {
		switch c.Kind {
		case entities.LayerProdes, entities.LayerTerraIndigena, entities.LayerQuilombola, entities.LayerEmbargoIBAMA:
			if c.Status == entities.CheckFail {
				out = append(out, c.Kind)
			}
		case entities.LayerUC:
			if c.Score == 0 {
				out = append(out, c.Kind)
			}
		}
	}
	return out
}

func joinNames(kinds []entities.LayerType, lang string) string {
	out := ""
	for i, k := range kinds {
		if i > 0 {
			out += ", "
		}
		out += checkDisplayName(k, lang)
	}
	return out
}
