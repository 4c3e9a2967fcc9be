package companion

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/psychai/companion/internal/analysis/symptom"
	"github.com/psychai/companion/internal/model/chat"
	"github.com/psychai/companion/internal/model/clinical"
	"github.com/psychai/companion/internal/service/ai"
	chatservice "github.com/psychai/companion/internal/service/chat"
	clinicalservice "github.com/psychai/companion/internal/service/clinical"
	"github.com/psychai/companion/internal/service/escalation"
)

const recentSummaryLimit = 5

var ErrEmptyMessage = errors.New("message is empty")

// Completer produces the assistant reply for a patient message.
type Completer interface {
	Complete(ctx context.Context, userMessage string) ai.Reply
}

// Escalator dispatches the emergency call for a crisis message.
type Escalator interface {
	Notify(ctx context.Context, text string) escalation.Result
}

// Turn is everything one patient message produced.
type Turn struct {
	Patient    chat.Message
	Assistant  chat.Message
	Record     clinical.Record
	Assessment symptom.Assessment
	Escalation escalation.Result
	Reply      ai.Reply
}

// Snapshot is a read-only copy of the shared state used by both views.
type Snapshot struct {
	Messages        []chat.Message             `json:"messages"`
	Records         []clinical.Record          `json:"records"`
	Summaries       []chat.SessionSummary      `json:"summaries"`
	RecentSummaries []chat.SessionSummary      `json:"recentSummaries"`
	Escalations     []clinical.EscalationEvent `json:"escalations"`
	Timeline        []clinical.TimelinePoint   `json:"timeline"`
	MoodFrequency   []clinical.MoodCount       `json:"moodFrequency"`
	GeneratedAt     time.Time                  `json:"generatedAt"`
}

// SymptomRecords returns records with at least one category, newest first.
func (s Snapshot) SymptomRecords() []clinical.Record {
	var flagged []clinical.Record
	for i := len(s.Records) - 1; i >= 0; i-- {
		if s.Records[i].Symptoms != symptom.Normal {
			flagged = append(flagged, s.Records[i])
		}
	}
	return flagged
}

// Service runs patient turns against the shared conversation and record store.
// Turns and session resets are serialized so a patient message and its reply
// are always adjacent in the same session.
type Service struct {
	turnMu    sync.Mutex
	assessor  *symptom.Assessor
	escalator Escalator
	completer Completer
	chat      *chatservice.Service
	records   *clinicalservice.Store
}

// NewService wires the collaborators. A nil assessor uses the default tables.
func NewService(assessor *symptom.Assessor, escalator Escalator, completer Completer, chatSvc *chatservice.Service, records *clinicalservice.Store) *Service {
	if assessor == nil {
		assessor = symptom.NewAssessor(nil, nil)
	}
	return &Service{
		assessor:  assessor,
		escalator: escalator,
		completer: completer,
		chat:      chatSvc,
		records:   records,
	}
}

// HandlePatientMessage runs one turn: assess, maybe escalate, record, then
// ask for the reply. The clinical record always exists before the completion
// is requested, and no collaborator failure aborts the turn.
func (s *Service) HandlePatientMessage(ctx context.Context, text string) (Turn, error) {
	if strings.TrimSpace(text) == "" {
		return Turn{}, ErrEmptyMessage
	}

	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	turn := Turn{Assessment: s.assessor.Assess(text)}

	turn.Escalation = escalation.Result{Status: escalation.StatusNotRequired}
	if turn.Assessment.Crisis {
		turn.Escalation = s.escalate(ctx, text)
	}

	turn.Record = s.records.Record(ctx, text, turn.Assessment)

	patient, err := s.chat.Post(ctx, chat.RolePatient, text)
	if err != nil {
		return Turn{}, err
	}
	turn.Patient = patient

	turn.Reply = s.complete(ctx, text)
	assistant, err := s.chat.Post(ctx, chat.RoleAssistant, turn.Reply.Content)
	if err != nil {
		return Turn{}, err
	}
	turn.Assistant = assistant

	log.Printf("[companion] turn recorded score=%d symptoms=%q escalation=%s reply=%s",
		turn.Record.Score, turn.Record.Symptoms, turn.Escalation.Status, turn.Reply.Outcome)
	return turn, nil
}

// StartNewSession archives the current conversation if it has any messages.
// It waits for a turn in flight to finish.
func (s *Service) StartNewSession(ctx context.Context) (chat.SessionSummary, bool) {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()
	return s.chat.StartNew(ctx)
}

// Snapshot copies the shared state for rendering.
func (s *Service) Snapshot(ctx context.Context) Snapshot {
	return Snapshot{
		Messages:        s.chat.Transcript(ctx),
		Records:         s.records.All(ctx),
		Summaries:       s.chat.RecentSummaries(ctx, 0),
		RecentSummaries: s.chat.RecentSummaries(ctx, recentSummaryLimit),
		Escalations:     s.records.Escalations(ctx),
		Timeline:        s.records.Timeline(ctx),
		MoodFrequency:   s.records.MoodFrequency(ctx),
		GeneratedAt:     time.Now(),
	}
}

// ExportReport renders the clinical records as CSV.
func (s *Service) ExportReport(ctx context.Context) ([]byte, error) {
	return s.records.ExportCSV(ctx)
}

func (s *Service) escalate(ctx context.Context, text string) escalation.Result {
	result := escalation.Result{Status: escalation.StatusDisabled, Message: escalation.Sanitize(text), Err: escalation.ErrDisabled}
	if s.escalator != nil {
		result = s.escalator.Notify(ctx, text)
	}

	event := clinical.EscalationEvent{Message: result.Message}
	switch result.Status {
	case escalation.StatusPlaced:
		event.Status = clinical.EscalationPlaced
	case escalation.StatusFailed:
		event.Status = clinical.EscalationFailed
	case escalation.StatusUnknown:
		event.Status = clinical.EscalationUnknown
	default:
		event.Status = clinical.EscalationDisabled
	}
	if result.Err != nil {
		event.Error = result.Err.Error()
	}
	s.records.AppendEscalation(ctx, event)
	return result
}

func (s *Service) complete(ctx context.Context, text string) ai.Reply {
	if s.completer == nil {
		return ai.Reply{Content: ai.FallbackReply, Outcome: ai.OutcomeFallback, Err: ai.ErrUnavailable}
	}
	return s.completer.Complete(ctx, text)
}
