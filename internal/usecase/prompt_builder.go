package usecase

import (
	"fmt"
	"sort"
	"strings"

	"insight-orchestrator/internal/domain"
)

// PromptInput contains the pieces that feed into the narrative prompt.
type PromptInput struct {
	Question      string
	PromptVersion string
	Decision      *domain.FinalDecision
	History       []domain.Message
}

// PromptBuilder builds the chat messages sent to the language model.
type PromptBuilder interface {
	Build(input PromptInput) ([]domain.Message, error)
}

// XMLPromptBuilder creates structured prompts that separate the locked
// decision, conversation history, instructions, and question.
type XMLPromptBuilder struct {
	additionalInstructions []string
}

// NewXMLPromptBuilder creates a prompt builder with optional extra
// instructions appended.
func NewXMLPromptBuilder(additionalInstructions ...string) PromptBuilder {
	return &XMLPromptBuilder{additionalInstructions: additionalInstructions}
}

const maxHistoryTurns = 6

// Build renders the messages for the chat API. The decision block is the
// only permitted fact source; the instructions say so explicitly.
func (b *XMLPromptBuilder) Build(input PromptInput) ([]domain.Message, error) {
	if input.Decision == nil {
		return nil, fmt.Errorf("decision is required")
	}
	if input.PromptVersion == "" {
		return nil, fmt.Errorf("prompt version is required")
	}

	var sysSb strings.Builder
	sysSb.WriteString("<instructions>\n")
	instructions := []string{
		"You are a social media analytics assistant.",
		"Answer the <question> using ONLY the numbers and statements inside <decision>.",
		"Never invent a metric, percentage, or ranking that is not in <decision>.",
		"Never use vague qualifiers such as \"typically\", \"usually\", or \"generally\".",
		"Reference at least one concrete number from <decision> in your answer.",
		"End with the next step from <decision>, phrased as a direct instruction.",
		"If <decision> lists limitations, state them plainly instead of guessing around them.",
		"Write plain conversational text, 3 to 6 sentences, no markdown headings.",
	}
	for _, inst := range append(instructions, b.additionalInstructions...) {
		sysSb.WriteString("  <line>")
		sysSb.WriteString(escape(inst))
		sysSb.WriteString("</line>\n")
	}
	sysSb.WriteString("</instructions>\n")

	var userSb strings.Builder
	userSb.WriteString(fmt.Sprintf("<decision version=%q intent=%q mode=%q>\n",
		input.PromptVersion, input.Decision.Intent, input.Decision.Mode))
	userSb.WriteString("  <verdict>")
	userSb.WriteString(escape(input.Decision.Verdict))
	userSb.WriteString("</verdict>\n")
	for _, fact := range input.Decision.Facts {
		userSb.WriteString("  <fact>")
		userSb.WriteString(escape(fact))
		userSb.WriteString("</fact>\n")
	}
	for _, limitation := range input.Decision.Limitations {
		userSb.WriteString("  <limitation>")
		userSb.WriteString(escape(limitation))
		userSb.WriteString("</limitation>\n")
	}
	for _, key := range sortedMetricKeys(input.Decision.Metrics) {
		userSb.WriteString(fmt.Sprintf("  <metric name=%q>%s</metric>\n", key, formatNumber(input.Decision.Metrics[key])))
	}
	userSb.WriteString("  <next_step>")
	userSb.WriteString(escape(input.Decision.NextStep))
	userSb.WriteString("</next_step>\n")
	userSb.WriteString("</decision>\n\n")

	history := input.History
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	if len(history) > 0 {
		userSb.WriteString("<history>\n")
		for _, turn := range history {
			userSb.WriteString(fmt.Sprintf("  <turn role=%q>%s</turn>\n", turn.Role, escape(turn.Content)))
		}
		userSb.WriteString("</history>\n\n")
	}

	userSb.WriteString("<question>\n")
	userSb.WriteString(escape(input.Question))
	userSb.WriteString("\n</question>\n")

	return []domain.Message{
		{Role: "system", Content: sysSb.String()},
		{Role: "user", Content: userSb.String()},
	}, nil
}

func sortedMetricKeys(metrics map[string]float64) []string {
	keys := make([]string, 0, len(metrics))
	for key := range metrics {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func escape(value string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(strings.TrimSpace(value))
}
