package symptom

import "strings"

// CrisisTerms triggers escalation. It is kept apart from the CrisisSuicidal
// category terms and currently lacks "zindagi khatam", so that phrase is
// classified as Crisis/Suicidal without escalating.
var CrisisTerms = []string{"suicide", "marna", "die", "kill"}

// Severity scores, highest first.
const (
	ScoreCrisis  = 10
	ScoreSymptom = 7
	ScoreNormal  = 3
)

// CrisisPolicy decides whether text warrants an emergency escalation.
type CrisisPolicy struct {
	terms []string
}

// NewCrisisPolicy builds a policy over terms. A nil list falls back to CrisisTerms.
func NewCrisisPolicy(terms []string) *CrisisPolicy {
	if terms == nil {
		terms = CrisisTerms
	}
	return &CrisisPolicy{terms: append([]string(nil), terms...)}
}

// IsCrisis reports whether text contains any crisis term, ignoring case.
func (p *CrisisPolicy) IsCrisis(text string) bool {
	normalized := strings.ToLower(text)
	if normalized == "" {
		return false
	}
	return containsAny(normalized, p.terms)
}

// Score maps a crisis flag and classifier output to a severity.
func Score(isCrisis bool, symptoms string) int {
	switch {
	case isCrisis:
		return ScoreCrisis
	case symptoms != Normal:
		return ScoreSymptom
	default:
		return ScoreNormal
	}
}

// Assessment is the full clinical reading of one patient message.
type Assessment struct {
	Symptoms string
	Mood     string
	Crisis   bool
	Score    int
}

// Assessor combines a classifier and a crisis policy.
type Assessor struct {
	classifier *Classifier
	policy     *CrisisPolicy
}

// NewAssessor wires a classifier and policy; nil arguments use the defaults.
func NewAssessor(classifier *Classifier, policy *CrisisPolicy) *Assessor {
	if classifier == nil {
		classifier = NewClassifier(nil)
	}
	if policy == nil {
		policy = NewCrisisPolicy(nil)
	}
	return &Assessor{classifier: classifier, policy: policy}
}

// Assess classifies text, evaluates the crisis policy and scores the result.
func (a *Assessor) Assess(text string) Assessment {
	symptoms := a.classifier.Classify(text)
	crisis := a.policy.IsCrisis(text)
	return Assessment{
		Symptoms: symptoms,
		Mood:     Mood(symptoms),
		Crisis:   crisis,
		Score:    Score(crisis, symptoms),
	}
}
