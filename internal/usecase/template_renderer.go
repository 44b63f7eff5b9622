package usecase

import (
	"strings"

	"insight-orchestrator/internal/domain"
)

// RenderTemplate assembles the deterministic fallback reply directly from
// the FinalDecision. Same decision in, byte-identical text out.
func RenderTemplate(decision *domain.FinalDecision) string {
	var sb strings.Builder

	for i, fact := range decision.Facts {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("- ")
		sb.WriteString(fact)
	}

	if len(decision.Limitations) > 0 {
		sb.WriteString("\n\nWhat holds this answer back:")
		for _, limitation := range decision.Limitations {
			sb.WriteString("\n- ")
			sb.WriteString(limitation)
		}
	}

	if decision.NextStep != "" {
		sb.WriteString("\n\nNext step: ")
		sb.WriteString(decision.NextStep)
	}

	return sb.String()
}
