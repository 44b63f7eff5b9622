package usecase

import "insight-orchestrator/internal/domain"

// Thresholds holds the per-intent minimum post counts required before an
// analytics answer is permitted. The values are hand-tuned; they are kept
// configurable rather than re-derived.
type Thresholds struct {
	PostingTime int
	BestPost    int
	Why         int
	Hashtags    int
	Frequency   int
	Captions    int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		PostingTime: 10,
		BestPost:    5,
		Why:         3,
		Hashtags:    3,
		Frequency:   5,
		Captions:    3,
	}
}

// SufficiencyGate decides the ResponseMode for (intent, snapshot). It is
// the single place that prevents both over-answering on thin data and
// refusing when enough data exists.
type SufficiencyGate struct {
	thresholds Thresholds
}

func NewSufficiencyGate(thresholds Thresholds) SufficiencyGate {
	return SufficiencyGate{thresholds: thresholds}
}

// DecideMode is a pure function of its inputs. Strategy-only intents always
// yield Strategy regardless of data.
func (g SufficiencyGate) DecideMode(intent domain.Intent, snapshot *domain.DataSnapshot) domain.ResponseMode {
	switch intent {
	case domain.IntentGeneration, domain.IntentDiagnosis:
		return domain.ModeStrategy
	case domain.IntentAccountMetrics, domain.IntentFollowersGrowth:
		if snapshot == nil || !snapshot.HasAccountMetrics {
			return domain.ModeLimitation
		}
		return domain.ModeAnalytics
	}

	if snapshot == nil || snapshot.PostCount < g.Threshold(intent) {
		return domain.ModeLimitation
	}
	return domain.ModeAnalytics
}

// Threshold returns the minimum post count for a data-dependent intent.
func (g SufficiencyGate) Threshold(intent domain.Intent) int {
	switch intent {
	case domain.IntentPostingTime:
		return g.thresholds.PostingTime
	case domain.IntentBestPost:
		return g.thresholds.BestPost
	case domain.IntentWhyAboutPosts:
		return g.thresholds.Why
	case domain.IntentHashtags:
		return g.thresholds.Hashtags
	case domain.IntentPostingFrequency:
		return g.thresholds.Frequency
	case domain.IntentCaptionsOrPaidPost:
		return g.thresholds.Captions
	default:
		return 0
	}
}
