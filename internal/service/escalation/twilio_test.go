package escalation

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestTwilioPlacerSendsTwiML(t *testing.T) {
	var form url.Values
	var path string
	transport := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		path = req.URL.Path
		body, _ := io.ReadAll(req.Body)
		form, _ = url.ParseQuery(string(body))
		return &http.Response{
			StatusCode: http.StatusCreated,
			Header:     http.Header{"Content-Type": {"application/json"}},
			Body:       io.NopCloser(strings.NewReader(`{"sid":"CA123","status":"queued"}`)),
			Request:    req,
		}, nil
	})
	placer := newTwilioPlacer("AC123", "token", &http.Client{Transport: transport, Timeout: time.Second})

	err := placer.PlaceCall(context.Background(), Call{From: "+15550001111", To: "+15550002222", Message: "I want to die"})
	if err != nil {
		t.Fatalf("PlaceCall err: %v", err)
	}
	if !strings.HasSuffix(path, "/Accounts/AC123/Calls.json") {
		t.Fatalf("unexpected path %q", path)
	}
	if form.Get("To") != "+15550002222" || form.Get("From") != "+15550001111" {
		t.Fatalf("unexpected numbers %v", form)
	}
	if form.Get("Twiml") != BuildTwiML("I want to die") {
		t.Fatalf("unexpected twiml %q", form.Get("Twiml"))
	}
}

func TestTwilioPlacerTimeoutReportsUnknownOutcome(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	transport := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		select {
		case <-release:
		case <-req.Context().Done():
		}
		return nil, errors.New("aborted")
	})
	placer := newTwilioPlacer("AC123", "token", &http.Client{Transport: transport, Timeout: time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := placer.PlaceCall(ctx, Call{From: "+15550001111", To: "+15550002222", Message: "help"})
	if !errors.Is(err, ErrOutcomeUnknown) {
		t.Fatalf("expected ErrOutcomeUnknown, got %v", err)
	}
}

func TestNotifyTimeoutIsNotReportedAsFailure(t *testing.T) {
	placer := &recordingPlacer{err: ErrOutcomeUnknown}
	notifier := NewNotifier(enabledConfig(), placer)

	result := notifier.Notify(context.Background(), "kill")
	if result.Status != StatusUnknown || !result.Attempted() {
		t.Fatalf("expected unknown outcome, got %+v", result)
	}
}
