package chat

import "time"

// Role identifies who authored a message.
type Role string

const (
	RolePatient   Role = "patient"
	RoleAssistant Role = "assistant"
)

// Label is the speaker name shown on the clinician feed.
func (r Role) Label() string {
	if r == RolePatient {
		return "Patient"
	}
	return "AI"
}

// Message is one turn of the active conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
