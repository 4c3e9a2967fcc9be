package clinical

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/psychai/companion/internal/analysis/symptom"
	"github.com/psychai/companion/internal/model/clinical"
)

const snippetLength = 50

// ReportHeader is the column order of the CSV export.
var ReportHeader = []string{"Time", "Score", "Symptoms", "Snippet", "Mood"}

// Store is the append-only log of clinical records and escalation attempts
// shared by the patient and clinician views.
type Store struct {
	mu          sync.RWMutex
	records     []clinical.Record
	escalations []clinical.EscalationEvent
	now         func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Record scores one patient message and appends the result.
func (s *Store) Record(ctx context.Context, text string, assessment symptom.Assessment) clinical.Record {
	now := s.now()
	record := clinical.Record{
		ID:        uuid.NewString(),
		Time:      now.Format(clinical.RecordTimeLayout),
		Score:     assessment.Score,
		Symptoms:  assessment.Symptoms,
		Snippet:   Snippet(text),
		Mood:      assessment.Mood,
		CreatedAt: now,
	}
	s.Append(ctx, record)
	return record
}

// Append adds a record. It never fails and does not deduplicate.
func (s *Store) Append(_ context.Context, record clinical.Record) {
	s.mu.Lock()
	s.records = append(s.records, record)
	s.mu.Unlock()
}

// All returns a copy of every record in insertion order.
func (s *Store) All(_ context.Context) []clinical.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]clinical.Record, len(s.records))
	copy(copied, s.records)
	return copied
}

// Len reports the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// AppendEscalation logs an escalation attempt for the clinician.
func (s *Store) AppendEscalation(_ context.Context, event clinical.EscalationEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}

	s.mu.Lock()
	s.escalations = append(s.escalations, event)
	s.mu.Unlock()
}

// Escalations returns a copy of the escalation log in insertion order.
func (s *Store) Escalations(_ context.Context) []clinical.EscalationEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]clinical.EscalationEvent, len(s.escalations))
	copy(copied, s.escalations)
	return copied
}

// Timeline returns the (Time, Score) series for the distress chart.
func (s *Store) Timeline(ctx context.Context) []clinical.TimelinePoint {
	records := s.All(ctx)
	points := make([]clinical.TimelinePoint, len(records))
	for i, record := range records {
		points[i] = clinical.TimelinePoint{Time: record.Time, Score: record.Score}
	}
	return points
}

// MoodFrequency counts records per mood in first-seen order.
func (s *Store) MoodFrequency(ctx context.Context) []clinical.MoodCount {
	var counts []clinical.MoodCount
	index := make(map[string]int)
	for _, record := range s.All(ctx) {
		i, ok := index[record.Mood]
		if !ok {
			index[record.Mood] = len(counts)
			counts = append(counts, clinical.MoodCount{Mood: record.Mood, Count: 1})
			continue
		}
		counts[i].Count++
	}
	return counts
}

// ExportCSV serializes every record as UTF-8 CSV with a header row.
func (s *Store) ExportCSV(ctx context.Context) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(ReportHeader); err != nil {
		return nil, fmt.Errorf("failed to write report header: %w", err)
	}
	for _, record := range s.All(ctx) {
		row := []string{
			record.Time,
			strconv.Itoa(record.Score),
			record.Symptoms,
			record.Snippet,
			record.Mood,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write report row %s: %w", record.ID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush report: %w", err)
	}
	return buf.Bytes(), nil
}

// ReportFilename names a CSV export taken at t.
func ReportFilename(t time.Time) string {
	return "psych_report_" + t.Format("20060102_1504") + ".csv"
}

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Snippet keeps the first 50 characters of text, with CRLF and CR folded to LF.
func Snippet(text string) string {
	text = lineEndings.Replace(text)
	if utf8.RuneCountInString(text) <= snippetLength {
		return text
	}
	return string([]rune(text)[:snippetLength])
}
