package clinical

import "time"

// RecordTimeLayout formats the Time column.
const RecordTimeLayout = "15:04:05"

// Record is one scored snapshot of a patient message.
type Record struct {
	ID        string    `json:"id"`
	Time      string    `json:"time"`
	Score     int       `json:"score"`
	Symptoms  string    `json:"symptoms"`
	Snippet   string    `json:"snippet"`
	Mood      string    `json:"mood"`
	CreatedAt time.Time `json:"createdAt"`
}

// EscalationStatus mirrors the outcome of an escalation attempt.
type EscalationStatus string

const (
	EscalationPlaced   EscalationStatus = "placed"
	EscalationDisabled EscalationStatus = "disabled"
	EscalationFailed   EscalationStatus = "failed"
	EscalationUnknown  EscalationStatus = "unknown"
)

// EscalationEvent surfaces an escalation attempt on the clinician dashboard.
type EscalationEvent struct {
	ID        string           `json:"id"`
	Status    EscalationStatus `json:"status"`
	Message   string           `json:"message"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// TimelinePoint is one point of the distress timeline.
type TimelinePoint struct {
	Time  string `json:"time"`
	Score int    `json:"score"`
}

// MoodCount is one bar of the mood frequency chart.
type MoodCount struct {
	Mood  string `json:"mood"`
	Count int    `json:"count"`
}
