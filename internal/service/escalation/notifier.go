package escalation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/psychai/companion/internal/config"
)

const messageLimit = 50

var ErrDisabled = errors.New("escalation credentials not configured")

// Status is the outcome of one escalation attempt.
type Status string

const (
	StatusNotRequired Status = "not_required"
	StatusDisabled    Status = "disabled"
	StatusPlaced      Status = "placed"
	StatusFailed      Status = "failed"
	StatusUnknown     Status = "unknown"
)

// Result reports what happened to an escalation. Message is the sanitized
// text that was (or would have been) spoken.
type Result struct {
	Status  Status
	Message string
	Err     error
}

// Attempted reports whether a call was actually dispatched.
func (r Result) Attempted() bool {
	return r.Status == StatusPlaced || r.Status == StatusFailed || r.Status == StatusUnknown
}

// Call is a single outbound voice call.
type Call struct {
	From    string
	To      string
	Message string
}

// CallPlacer places outbound voice calls.
type CallPlacer interface {
	PlaceCall(ctx context.Context, call Call) error
}

// Notifier escalates a crisis to the guardian number, best effort.
type Notifier struct {
	placer  CallPlacer
	from    string
	to      string
	timeout time.Duration
}

// NewNotifier returns a notifier. When the configuration is incomplete the
// notifier stays silent and every Notify reports StatusDisabled.
func NewNotifier(cfg config.EscalationConfig, placer CallPlacer) *Notifier {
	n := &Notifier{
		from:    cfg.FromNumber,
		to:      cfg.ToNumber,
		timeout: cfg.Timeout,
	}
	if cfg.Enabled() {
		n.placer = placer
	}
	if n.timeout <= 0 {
		n.timeout = 15 * time.Second
	}
	return n
}

// Enabled reports whether calls can be placed.
func (n *Notifier) Enabled() bool {
	return n != nil && n.placer != nil
}

// Notify places one call carrying the sanitized patient text. It never
// retries and never returns an error to the caller; the Result says what
// happened.
func (n *Notifier) Notify(ctx context.Context, text string) Result {
	message := Sanitize(text)
	if !n.Enabled() {
		return Result{Status: StatusDisabled, Message: message, Err: ErrDisabled}
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	call := Call{From: n.from, To: n.to, Message: message}
	if err := n.placer.PlaceCall(ctx, call); err != nil {
		if errors.Is(err, ErrOutcomeUnknown) {
			log.Printf("[escalation] call placement timed out, outcome unknown: %v", err)
			return Result{Status: StatusUnknown, Message: message, Err: err}
		}
		log.Printf("[escalation] call placement failed: %v", err)
		return Result{Status: StatusFailed, Message: message, Err: fmt.Errorf("failed to place call: %w", err)}
	}

	log.Printf("[escalation] emergency call placed to guardian")
	return Result{Status: StatusPlaced, Message: message}
}

// Sanitize strips quote characters and keeps the first 50 characters.
func Sanitize(text string) string {
	cleaned := strings.NewReplacer(`"`, "", "'", "").Replace(text)
	if utf8.RuneCountInString(cleaned) <= messageLimit {
		return cleaned
	}
	return string([]rune(cleaned)[:messageLimit])
}
