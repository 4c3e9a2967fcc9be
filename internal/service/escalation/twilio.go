package escalation

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/twilio/twilio-go"
	"github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

const spokenVoice = "alice"

// ErrOutcomeUnknown means the call request was abandoned before Twilio
// answered; the call may or may not have been placed.
var ErrOutcomeUnknown = errors.New("call request timed out, outcome unknown")

// TwilioPlacer places calls through the Twilio REST API with inline TwiML.
type TwilioPlacer struct {
	client     *twilio.RestClient
	accountSID string
}

var _ CallPlacer = (*TwilioPlacer)(nil)

// NewTwilioPlacer authenticates with an account SID and auth token. timeout
// bounds each HTTP request to Twilio and should match the notifier timeout.
func NewTwilioPlacer(accountSID, authToken string, timeout time.Duration) *TwilioPlacer {
	return newTwilioPlacer(accountSID, authToken, &http.Client{Timeout: timeout})
}

func newTwilioPlacer(accountSID, authToken string, httpClient *http.Client) *TwilioPlacer {
	base := &client.Client{
		Credentials: client.NewCredentials(accountSID, authToken),
		HTTPClient:  httpClient,
	}
	base.SetAccountSid(accountSID)

	return &TwilioPlacer{
		client:     twilio.NewRestClientWithParams(twilio.ClientParams{Client: base}),
		accountSID: accountSID,
	}
}

// PlaceCall dials call.To and reads the emergency message aloud. The Twilio
// SDK has no context support; the HTTP client timeout cancels the request
// itself, and ctx only bounds how long we wait. Giving up on ctx reports
// ErrOutcomeUnknown rather than a definite failure.
func (p *TwilioPlacer) PlaceCall(ctx context.Context, call Call) error {
	params := &twilioApi.CreateCallParams{}
	params.SetPathAccountSid(p.accountSID)
	params.SetTo(call.To)
	params.SetFrom(call.From)
	params.SetTwiml(BuildTwiML(call.Message))

	done := make(chan error, 1)
	go func() {
		_, err := p.client.Api.CreateCall(params)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("twilio create call: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("twilio create call: %w: %v", ErrOutcomeUnknown, ctx.Err())
	}
}

// BuildTwiML wraps message in a <Say> instruction.
func BuildTwiML(message string) string {
	var escaped bytes.Buffer
	// EscapeText only fails on writer errors, which bytes.Buffer never returns.
	_ = xml.EscapeText(&escaped, []byte(message))

	return `<Response><Say voice="` + spokenVoice + `">Emergency! Patient in distress. Message: ` +
		escaped.String() + `</Say></Response>`
}
