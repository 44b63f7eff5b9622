package usecase_test

import (
	"testing"

	"insight-orchestrator/internal/domain"
	"insight-orchestrator/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	classifier := usecase.NewIntentClassifier()

	tests := []struct {
		name     string
		question string
		expected domain.Intent
	}{
		{"hashtag question", "Which hashtags should I use?", domain.IntentHashtags},
		{"hashtag shadows why", "Why are my hashtags not working?", domain.IntentHashtags},
		{"posting time", "When should I post for more reach?", domain.IntentPostingTime},
		{"best time phrasing", "What's the best time to share content?", domain.IntentPostingTime},
		{"best post", "Show me my best performing post", domain.IntentBestPost},
		{"most liked phrasing", "Which was my most liked photo?", domain.IntentBestPost},
		{"captions", "Do longer captions help?", domain.IntentCaptionsOrPaidPost},
		{"paid partnership", "Should I do more paid partnership posts?", domain.IntentCaptionsOrPaidPost},
		{"account metrics", "What is my engagement rate?", domain.IntentAccountMetrics},
		{"frequency", "How often should I be posting?", domain.IntentPostingFrequency},
		{"why underperforming", "why am i getting fewer likes lately", domain.IntentWhyAboutPosts},
		{"not working without why", "my reels are not working anymore", domain.IntentWhyAboutPosts},
		{"followers growth", "How do I get more followers?", domain.IntentFollowersGrowth},
		{"diagnosis", "Can you do a health check on my account?", domain.IntentDiagnosis},
		{"unmatched defaults to generation", "Give me some content ideas for next month", domain.IntentGeneration},
		{"empty input", "", domain.IntentGeneration},
		{"case insensitive", "BEST TIME TO POST???", domain.IntentPostingTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifier.Classify(tt.question))
		})
	}
}
