package symptom

import (
	"strings"
	"testing"
)

func TestClassifyMatchesCategoriesInDeclarationOrder(t *testing.T) {
	classifier := NewClassifier(nil)

	cases := []struct {
		name string
		text string
		want string
	}{
		{name: "empty", text: "", want: Normal},
		{name: "no match", text: "Had a good walk today", want: Normal},
		{name: "anxiety and sadness", text: "I feel so anxious and sad", want: "Anxiety/Panic, Depressive Mood"},
		{name: "reverse mention keeps table order", text: "sad, then a panic attack", want: "Anxiety/Panic, Depressive Mood"},
		{name: "case insensitive", text: "INSOMNIA again", want: "Sleep Disorder"},
		{name: "romanized term", text: "bahut ghabrahat ho rahi hai", want: "Anxiety/Panic"},
		{name: "crisis", text: "I want to die", want: "Crisis/Suicidal"},
		{name: "all four", text: "nervous, hopeless, sleepless, suicide", want: "Anxiety/Panic, Depressive Mood, Sleep Disorder, Crisis/Suicidal"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifier.Classify(tc.text); got != tc.want {
				t.Fatalf("Classify(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestClassifyEveryTermHitsItsCategory(t *testing.T) {
	classifier := NewClassifier(nil)
	for _, category := range Categories {
		for _, term := range category.Terms {
			got := classifier.Classify("xx " + strings.ToUpper(term) + " xx")
			if !strings.Contains(got, string(category.Label)) {
				t.Fatalf("term %q: expected %q in %q", term, category.Label, got)
			}
		}
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	classifier := NewClassifier(nil)
	text := "neend nahi aati, feeling low"
	first := classifier.Classify(text)
	second := classifier.Classify(text)
	if first != second {
		t.Fatalf("expected identical output, got %q and %q", first, second)
	}
}

func TestClassifierCustomTable(t *testing.T) {
	classifier := NewClassifier([]Category{{Label: "Anger", Terms: []string{"furious"}}})
	if got := classifier.Classify("I am furious and sad"); got != "Anger" {
		t.Fatalf("expected custom table only, got %q", got)
	}
}

func TestMood(t *testing.T) {
	cases := map[string]string{
		Normal:                           Stable,
		"":                               Stable,
		"Sleep Disorder":                 "Sleep Disorder",
		"Anxiety/Panic, Depressive Mood": "Anxiety/Panic",
	}
	for symptoms, want := range cases {
		if got := Mood(symptoms); got != want {
			t.Fatalf("Mood(%q) = %q, want %q", symptoms, got, want)
		}
	}
}
