package symptom

import "strings"

// Label names a symptom category assigned by keyword match.
type Label string

const (
	AnxietyPanic   Label = "Anxiety/Panic"
	DepressiveMood Label = "Depressive Mood"
	SleepDisorder  Label = "Sleep Disorder"
	CrisisSuicidal Label = "Crisis/Suicidal"
)

// Normal is returned when no category matched.
const Normal = "Normal"

// Stable is the mood recorded for text without any category.
const Stable = "Stable"

// Category binds a label to its trigger terms.
type Category struct {
	Label Label
	Terms []string
}

// Categories is the declaration-ordered trigger table. Romanized Hindi terms
// sit alongside English ones on purpose.
var Categories = []Category{
	{Label: AnxietyPanic, Terms: []string{"panic", "anxious", "ghabrahat", "fear", "nervous"}},
	{Label: DepressiveMood, Terms: []string{"sad", "hopeless", "udasi", "worthless", "low"}},
	{Label: SleepDisorder, Terms: []string{"insomnia", "neend", "sleepless", "nightmare"}},
	{Label: CrisisSuicidal, Terms: []string{"suicide", "marna", "die", "kill", "zindagi khatam"}},
}

// Classifier maps free text to the comma-joined list of matching categories.
type Classifier struct {
	categories []Category
}

// NewClassifier builds a classifier over the supplied table. A nil table
// falls back to Categories.
func NewClassifier(categories []Category) *Classifier {
	if categories == nil {
		categories = Categories
	}
	return &Classifier{categories: append([]Category(nil), categories...)}
}

// Classify returns every matching category in table order joined by ", ",
// or Normal when nothing matches.
func (c *Classifier) Classify(text string) string {
	labels := c.Labels(text)
	if len(labels) == 0 {
		return Normal
	}

	parts := make([]string, len(labels))
	for i, label := range labels {
		parts[i] = string(label)
	}
	return strings.Join(parts, ", ")
}

// Labels returns the matched categories in table order.
func (c *Classifier) Labels(text string) []Label {
	normalized := strings.ToLower(text)
	if normalized == "" {
		return nil
	}

	var found []Label
	for _, category := range c.categories {
		if containsAny(normalized, category.Terms) {
			found = append(found, category.Label)
		}
	}
	return found
}

// Mood derives the mood column from a classifier result: the first category,
// or Stable for Normal.
func Mood(symptoms string) string {
	if symptoms == Normal || symptoms == "" {
		return Stable
	}
	first, _, _ := strings.Cut(symptoms, ",")
	return strings.TrimSpace(first)
}

func containsAny(normalized string, terms []string) bool {
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(normalized, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
