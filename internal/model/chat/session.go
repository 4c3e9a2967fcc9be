package chat

import "time"

// SummaryTimeLayout formats archived session timestamps.
const SummaryTimeLayout = "2006-01-02 15:04"

// SessionSummary archives a finished conversation by its opening line.
type SessionSummary struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Time renders the archive timestamp.
func (s SessionSummary) Time() string {
	return s.CreatedAt.Format(SummaryTimeLayout)
}
