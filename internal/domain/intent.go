package domain

// Intent is the lexical category of the user's question. Classification is
// total: every input maps to exactly one Intent, defaulting to Generation.
type Intent string

const (
	IntentHashtags           Intent = "hashtags"
	IntentPostingTime        Intent = "posting_time"
	IntentBestPost           Intent = "best_post"
	IntentWhyAboutPosts      Intent = "why_about_posts"
	IntentPostingFrequency   Intent = "posting_frequency"
	IntentFollowersGrowth    Intent = "followers_growth"
	IntentAccountMetrics     Intent = "account_metrics"
	IntentCaptionsOrPaidPost Intent = "captions_or_paid_posts"
	IntentDiagnosis          Intent = "diagnosis"
	IntentGeneration         Intent = "generation"
)

// ResponseMode is the sufficiency gate's verdict for one question.
type ResponseMode string

const (
	ModeAnalytics  ResponseMode = "analytics"
	ModeStrategy   ResponseMode = "strategy"
	ModeLimitation ResponseMode = "limitation"
)
