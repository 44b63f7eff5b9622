package domain

// FinalDecision is the locked fact set for one request. It is created once
// by the fact builder and never mutated; nothing downstream may assert a
// number that is not traceable to one of its fields.
type FinalDecision struct {
	ID          string
	Intent      Intent
	Mode        ResponseMode
	Metrics     map[string]float64
	Verdict     string
	Facts       []string
	Limitations []string
	NextStep    string
}
