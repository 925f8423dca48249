package store

import (
	"sync"
	"time"

	"ai-scribe-be/internal/constant"
	"ai-scribe-be/internal/entity"
	"ai-scribe-be/pkg/scribe/suggest"
)

// ScribeSession is the in-memory state of one clinician's scribe workspace:
// the active (or last) generation session plus the session-scoped suggested
// questions. Suggestions are never persisted.
//
// The session is touched by the streaming goroutine, the suggestion consumer
// and HTTP reads, so every access goes through the mutex-guarded methods.
type ScribeSession struct {
	mu sync.RWMutex

	ID     string
	UserID string

	state       string
	accumulated string // raw stream, sentinels included
	displayed   string // what the clinician currently sees
	transcript  string // latest transcript, feeds the suggestion flow
	questions   []suggest.Question
	startedAt   time.Time
}

// SessionSnapshot is an immutable copy handed to readers.
type SessionSnapshot struct {
	ID          string             `json:"id"`
	State       string             `json:"state"`
	Displayed   string             `json:"displayed"`
	Accumulated string             `json:"-"`
	Questions   []suggest.Question `json:"questions"`
	StartedAt   time.Time          `json:"started_at"`
}

func NewScribeSession(id, userID string) *ScribeSession {
	return &ScribeSession{
		ID:     id,
		UserID: userID,
		state:  constant.SessionStateIdle,
	}
}

func (s *ScribeSession) State() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// InFlight reports whether a generation session currently holds the
// single-flight slot.
func (s *ScribeSession) InFlight() bool {
	st := s.State()
	return st == constant.SessionStateStreaming || st == constant.SessionStateFinalizing
}

// BeginStreaming claims the single-flight slot. Returns false without
// touching state when a session is already Streaming or Finalizing: a
// concurrent request is rejected, never queued.
func (s *ScribeSession) BeginStreaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == constant.SessionStateStreaming || s.state == constant.SessionStateFinalizing {
		return false
	}
	s.state = constant.SessionStateStreaming
	s.accumulated = ""
	s.displayed = ""
	s.startedAt = time.Now()
	return true
}

func (s *ScribeSession) SetState(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// AppendChunk applies one stream chunk in arrival order: both the raw
// accumulator and the live display buffer grow by the same text.
func (s *ScribeSession) AppendChunk(chunk string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accumulated += chunk
	s.displayed += chunk
}

// ReplaceDisplayed swaps the live buffer for the extracted visible text at
// finalization.
func (s *ScribeSession) ReplaceDisplayed(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.displayed = text
}

// AppendDisplayed adds an error fragment without discarding partial output.
func (s *ScribeSession) AppendDisplayed(fragment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.displayed += fragment
}

func (s *ScribeSession) Accumulated() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accumulated
}

func (s *ScribeSession) SetTranscript(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = text
}

func (s *ScribeSession) Transcript() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transcript
}

// MergeQuestions appends freshly deduplicated questions. Callers dedupe
// against Questions() under DedupeAndMerge; the raw merge is additive.
func (s *ScribeSession) MergeQuestions(accepted []suggest.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = append(s.questions, accepted...)
}

// DedupeAndMerge runs the deduplicator against the current set and merges
// the survivors atomically, so overlapping suggestion calls cannot slip the
// same question in twice. Returns the number of accepted questions.
func (s *ScribeSession) DedupeAndMerge(lines []string, validCategories []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	accepted := suggest.Dedupe(s.questions, lines, validCategories)
	s.questions = append(s.questions, accepted...)
	return len(accepted)
}

func (s *ScribeSession) Questions() []suggest.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]suggest.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// MarkAsked flips the asked flag on the question with the given text.
func (s *ScribeSession) MarkAsked(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.questions {
		if s.questions[i].Text == text {
			s.questions[i].Asked = true
			return true
		}
	}
	return false
}

// Dismiss removes the question with the given text.
func (s *ScribeSession) Dismiss(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.questions {
		if s.questions[i].Text == text {
			s.questions = append(s.questions[:i], s.questions[i+1:]...)
			return true
		}
	}
	return false
}

func (s *ScribeSession) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	questions := make([]suggest.Question, len(s.questions))
	copy(questions, s.questions)
	return SessionSnapshot{
		ID:          s.ID,
		State:       s.state,
		Displayed:   s.displayed,
		Accumulated: s.accumulated,
		Questions:   questions,
		StartedAt:   s.startedAt,
	}
}

// CompletedNote pairs the finalized visible text with its alerts for the
// completion event.
type CompletedNote struct {
	Visible string                 `json:"visible"`
	Alerts  []entity.ClinicalAlert `json:"alerts"`
}
