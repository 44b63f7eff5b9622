package usecase

import (
	"regexp"
	"strings"

	"insight-orchestrator/internal/domain"
)

type intentRule struct {
	intent domain.Intent
	match  func(text string) bool
}

// IntentClassifier maps free question text to exactly one Intent via an
// ordered first-match rule list. Rule order is load-bearing: hashtag
// detection shadows generic "why", which shadows generic growth advice.
type IntentClassifier struct {
	rules []intentRule
}

var (
	whyPattern       = regexp.MustCompile(`\bwhy\b`)
	notWorkingWords  = regexp.MustCompile(`not working|underperform|low reach|no reach|fewer likes|less likes|dropping|stopped growing`)
	diagnosisPattern = regexp.MustCompile(`diagnos|what'?s wrong|audit|review my account|health check`)
)

// NewIntentClassifier builds the fixed rule list. Do not reorder.
func NewIntentClassifier() *IntentClassifier {
	return &IntentClassifier{rules: []intentRule{
		{domain.IntentHashtags, containsAny("hashtag", "hash tag", "tags i use")},
		{domain.IntentPostingTime, containsAny(
			"best time", "when should i post", "when to post", "what time",
			"posting time", "time to post", "time of day", "which day should",
		)},
		{domain.IntentBestPost, containsAny(
			"best post", "top post", "best performing", "top performing",
			"most liked", "most engagement", "best reel", "top reel",
		)},
		{domain.IntentCaptionsOrPaidPost, containsAny(
			"caption", "sponsored", "paid partnership", "paid post", "branded content", "brand deal",
		)},
		{domain.IntentAccountMetrics, containsAny(
			"engagement rate", "average likes", "avg likes", "my stats",
			"my metrics", "my analytics", "how is my account doing",
		)},
		{domain.IntentPostingFrequency, containsAny(
			"how often", "frequency", "how many times", "posts per week", "posts per day", "how frequently",
		)},
		{domain.IntentWhyAboutPosts, func(text string) bool {
			return whyPattern.MatchString(text) || notWorkingWords.MatchString(text)
		}},
		{domain.IntentFollowersGrowth, containsAny(
			"follower", "grow my account", "gain follower", "growth", "get more people",
		)},
		{domain.IntentDiagnosis, diagnosisPattern.MatchString},
	}}
}

// Classify is total and deterministic; unmatched input yields Generation.
func (c *IntentClassifier) Classify(text string) domain.Intent {
	lowered := strings.ToLower(strings.TrimSpace(text))
	for _, rule := range c.rules {
		if rule.match(lowered) {
			return rule.intent
		}
	}
	return domain.IntentGeneration
}

func containsAny(needles ...string) func(string) bool {
	return func(text string) bool {
		for _, needle := range needles {
			if strings.Contains(text, needle) {
				return true
			}
		}
		return false
	}
}
