package usecase

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"insight-orchestrator/internal/domain"
)

// ResponseValidator checks the language model's free text before it may be
// shown to a user. The model is never trusted as the sole source of truth:
// any failure here discards the text in favor of the deterministic template.
type ResponseValidator struct {
	banned          []string
	numericPattern  *regexp.Regexp
	dataPattern     *regexp.Regexp
	nextStepPattern *regexp.Regexp
}

// Vague qualifiers and unsupported diagnostic claims the narrative must not
// contain. Matched case-insensitively against the whole reply.
var defaultBannedPhrases = []string{
	"typically",
	"usually",
	"generally speaking",
	"in general",
	"most accounts",
	"studies show",
	"research shows",
	"it is well known",
	"probably around",
	"as an ai",
	"i cannot access",
	"shadowban",
}

func NewResponseValidator() ResponseValidator {
	return ResponseValidator{
		banned:          defaultBannedPhrases,
		numericPattern:  regexp.MustCompile(`\d`),
		dataPattern:     regexp.MustCompile(`(?i)post|engagement|follower|like|comment|hashtag|caption|metric`),
		nextStepPattern: regexp.MustCompile(`(?i)\b(post|add|try|schedule|focus|keep|run|study|compare|write|ask|increase|hold|lean|tighten|vary|pick|benchmark)\b`),
	}
}

// Validate returns an error when the text must be rejected. The caller then
// substitutes the deterministic template built from the same decision.
func (v ResponseValidator) Validate(text string, decision *domain.FinalDecision) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return errors.New("narrative is empty")
	}

	lowered := strings.ToLower(trimmed)
	for _, phrase := range v.banned {
		if strings.Contains(lowered, phrase) {
			return fmt.Errorf("narrative contains banned phrase %q", phrase)
		}
	}

	if !v.dataPattern.MatchString(trimmed) {
		return errors.New("narrative never references the analyzed data")
	}
	if !v.numericPattern.MatchString(trimmed) {
		return errors.New("narrative contains no numeric token")
	}
	if !v.nextStepPattern.MatchString(trimmed) {
		return errors.New("narrative contains no actionable next step")
	}

	if decision != nil && len(decision.Facts) > 0 && len(trimmed) < 40 {
		return errors.New("narrative is too short to cover the decision facts")
	}

	return nil
}
