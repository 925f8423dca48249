package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-scribe-be/internal/config"
	"ai-scribe-be/internal/constant"
	"ai-scribe-be/internal/dto"
	"ai-scribe-be/internal/entity"
	"ai-scribe-be/internal/pkg/serverutils"
	"ai-scribe-be/internal/repository/memory"
	"ai-scribe-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Test doubles ---

type stubLLM struct {
	mu           sync.Mutex
	chatCalls    int
	chatResponse string
	chatErr      error
	stream       chan llm.StreamChunk
	streamErr    error
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatCalls++
	return s.chatResponse, s.chatErr
}

func (s *stubLLM) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (<-chan llm.StreamChunk, error) {
	if s.streamErr != nil {
		return nil, s.streamErr
	}
	return s.stream, nil
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func (s *stubLLM) ChatCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatCalls
}

type sinkEvent struct {
	UserID uuid.UUID
	Type   string
	Data   interface{}
}

type recordingSink struct {
	mu     sync.Mutex
	events []sinkEvent
}

func (r *recordingSink) Send(userID uuid.UUID, eventType string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sinkEvent{UserID: userID, Type: eventType, Data: data})
}

func (r *recordingSink) byType(eventType string) []sinkEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sinkEvent
	for _, e := range r.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type stubHistoryRepo struct {
	mu        sync.Mutex
	entries   []*entity.HistoryEntry
	createErr error
}

func (r *stubHistoryRepo) Create(ctx context.Context, entry *entity.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *stubHistoryRepo) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.UserId == userId && e.Id == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *stubHistoryRepo) DeleteAllByUserId(ctx context.Context, userId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.entries[:0]
	for _, e := range r.entries {
		if e.UserId != userId {
			kept = append(kept, e)
		}
	}
	r.entries = kept
	return nil
}

func (r *stubHistoryRepo) FindAllByUserId(ctx context.Context, userId uuid.UUID) ([]*entity.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.HistoryEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].UserId == userId {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

func (r *stubHistoryRepo) CountByUserId(ctx context.Context, userId uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.entries {
		if e.UserId == userId {
			n++
		}
	}
	return n, nil
}

func (r *stubHistoryRepo) Entries() []*entity.HistoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.HistoryEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// --- Fixtures ---

func testScribeConfig() config.ScribeConfig {
	return config.ScribeConfig{
		Locale:                     "es",
		SuggestionDebounceMs:       50,
		SuggestionMinTranscript:    10,
		SuggestionMaxVisible:       6,
		StreamTimeoutSeconds:       0,
		TranscriptChangedTopicName: "TRANSCRIPT_CHANGED_TEST",
	}
}

func validRequest() *dto.GenerateNoteRequest {
	return &dto.GenerateNoteRequest{
		Context: dto.ConsultationContextDTO{
			Age:      "34",
			Sex:      "F",
			Modality: "presencial",
		},
		Profile:    dto.ProfileDTO{FullName: "Dra. García", Specialty: "Medicina interna"},
		Transcript: "Paciente refiere fiebre y tos desde hace tres días.",
	}
}

func newScribeFixture(t *testing.T, provider *stubLLM) (IScribeService, *recordingSink, *stubHistoryRepo, *memory.SessionRepository) {
	t.Helper()
	sink := &recordingSink{}
	repo := &stubHistoryRepo{}
	sessions := memory.NewSessionRepository()
	svc := NewScribeService(repo, sessions, provider, sink, nil, newTestLogger(t), testScribeConfig())
	return svc, sink, repo, sessions
}

func waitForState(t *testing.T, sessions *memory.SessionRepository, userId uuid.UUID, state string) {
	t.Helper()
	require.Eventually(t, func() bool {
		session, found := sessions.Get(userId.String())
		return found && session.State() == state
	}, 2*time.Second, 5*time.Millisecond, "session never reached state %s", state)
}

// --- Tests ---

func TestGenerateRejectsConcurrentSession(t *testing.T) {
	provider := &stubLLM{stream: make(chan llm.StreamChunk)}
	svc, _, _, sessions := newScribeFixture(t, provider)
	userId := uuid.New()

	res, err := svc.Generate(context.Background(), userId, validRequest())
	require.NoError(t, err)
	assert.Equal(t, constant.SessionStateStreaming, res.State)

	_, err = svc.Generate(context.Background(), userId, validRequest())
	require.Error(t, err)
	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, fiber.StatusConflict, appErr.Status)

	close(provider.stream)
	waitForState(t, sessions, userId, constant.SessionStateCompleted)

	// The slot is free again after completion.
	provider.stream = make(chan llm.StreamChunk)
	close(provider.stream)
	_, err = svc.Generate(context.Background(), userId, validRequest())
	require.NoError(t, err)
}

func TestGenerateFinalizesNoteWithAlerts(t *testing.T) {
	stream := make(chan llm.StreamChunk, 8)
	stream <- llm.StreamChunk{Content: "Borrador generado por IA.\n\n"}
	stream <- llm.StreamChunk{Content: "## Motivo de consulta\nFiebre y tos.\n\n"}
	stream <- llm.StreamChunk{Content: "## Diagnóstico\n1. **Gripe** - probable\n\n"}
	stream <- llm.StreamChunk{Content: constant.AlertsPayloadStartMarker + "\n"}
	stream <- llm.StreamChunk{Content: `[{"type": "interaction", "severity": "high", "title": "Interacción medicamentosa", "details": "Ibuprofeno y warfarina", "recommendation": "Evitar combinación"}]` + "\n"}
	stream <- llm.StreamChunk{Content: constant.AlertsPayloadEndMarker}
	close(stream)

	provider := &stubLLM{stream: stream}
	svc, sink, repo, sessions := newScribeFixture(t, provider)
	userId := uuid.New()

	_, err := svc.Generate(context.Background(), userId, validRequest())
	require.NoError(t, err)
	waitForState(t, sessions, userId, constant.SessionStateCompleted)

	// Every chunk was pushed live, sentinel text included.
	assert.Len(t, sink.byType(constant.EventNoteChunk), 6)

	completed := sink.byType(constant.EventNoteCompleted)
	require.Len(t, completed, 1)
	note, ok := completed[0].Data.(*dto.CompletedNoteDTO)
	require.True(t, ok)
	assert.NotContains(t, note.Visible, constant.AlertsPayloadStartMarker)
	assert.NotContains(t, note.Visible, constant.AlertsPayloadEndMarker)
	assert.Equal(t, "Borrador generado por IA.", note.Disclaimer)
	require.Len(t, note.Sections, 2)
	assert.Equal(t, "Motivo de consulta", note.Sections[0].Title)
	require.Len(t, note.Sections[1].Hypotheses, 1)
	assert.Equal(t, "Gripe", note.Sections[1].Hypotheses[0].Label)
	require.Len(t, note.Alerts, 1)
	assert.Equal(t, entity.SeverityHigh, note.Alerts[0].Severity)

	// History got the same extraction.
	entries := repo.Entries()
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].NoteText, "ALERTS_JSON")
	assert.Equal(t, "34", entries[0].Context.Age)
	require.Len(t, entries[0].Alerts, 1)

	// The live view was replaced by the clean note.
	state, err := svc.SessionState(context.Background(), userId)
	require.NoError(t, err)
	assert.NotContains(t, state.Displayed, constant.AlertsPayloadStartMarker)
	assert.True(t, strings.HasPrefix(state.Displayed, "Borrador generado por IA."))
}

func TestGenerateWithoutAlertsPayload(t *testing.T) {
	stream := make(chan llm.StreamChunk, 2)
	stream <- llm.StreamChunk{Content: "## Evolución\nSin cambios."}
	close(stream)

	provider := &stubLLM{stream: stream}
	svc, sink, repo, sessions := newScribeFixture(t, provider)
	userId := uuid.New()

	_, err := svc.Generate(context.Background(), userId, validRequest())
	require.NoError(t, err)
	waitForState(t, sessions, userId, constant.SessionStateCompleted)

	completed := sink.byType(constant.EventNoteCompleted)
	require.Len(t, completed, 1)
	note := completed[0].Data.(*dto.CompletedNoteDTO)
	assert.Empty(t, note.Alerts)

	entries := repo.Entries()
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Alerts)
}

func TestGenerateStreamErrorKeepsPartialOutput(t *testing.T) {
	stream := make(chan llm.StreamChunk, 2)
	stream <- llm.StreamChunk{Content: "## Motivo de consulta\nFieb"}
	stream <- llm.StreamChunk{Err: errors.New("connection reset")}
	close(stream)

	provider := &stubLLM{stream: stream}
	svc, sink, repo, sessions := newScribeFixture(t, provider)
	userId := uuid.New()

	_, err := svc.Generate(context.Background(), userId, validRequest())
	require.NoError(t, err)
	waitForState(t, sessions, userId, constant.SessionStateFailed)

	state, err := svc.SessionState(context.Background(), userId)
	require.NoError(t, err)
	assert.Contains(t, state.Displayed, "## Motivo de consulta")
	assert.Contains(t, state.Displayed, "Error de generación")
	// The raw upstream error never reaches the clinician.
	assert.NotContains(t, state.Displayed, "connection reset")

	require.Len(t, sink.byType(constant.EventNoteError), 1)
	assert.Empty(t, sink.byType(constant.EventNoteCompleted))
	assert.Empty(t, repo.Entries())
}

func TestGeneratePersistFailureStillDeliversNote(t *testing.T) {
	stream := make(chan llm.StreamChunk, 1)
	stream <- llm.StreamChunk{Content: "## Plan\nReposo."}
	close(stream)

	provider := &stubLLM{stream: stream}
	sink := &recordingSink{}
	repo := &stubHistoryRepo{createErr: errors.New("db down")}
	sessions := memory.NewSessionRepository()
	svc := NewScribeService(repo, sessions, provider, sink, nil, newTestLogger(t), testScribeConfig())
	userId := uuid.New()

	_, err := svc.Generate(context.Background(), userId, validRequest())
	require.NoError(t, err)
	waitForState(t, sessions, userId, constant.SessionStateCompleted)

	require.Len(t, sink.byType(constant.EventNoteCompleted), 1)
}

func TestStopWithoutRunningSession(t *testing.T) {
	provider := &stubLLM{stream: make(chan llm.StreamChunk)}
	svc, _, _, _ := newScribeFixture(t, provider)

	_, err := svc.Stop(context.Background(), uuid.New())
	require.Error(t, err)
	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, fiber.StatusConflict, appErr.Status)
}

func TestStopFinalizesWithPartialNote(t *testing.T) {
	stream := make(chan llm.StreamChunk, 1)
	provider := &stubLLM{stream: stream}
	svc, sink, _, sessions := newScribeFixture(t, provider)
	userId := uuid.New()

	_, err := svc.Generate(context.Background(), userId, validRequest())
	require.NoError(t, err)

	stream <- llm.StreamChunk{Content: "## Motivo de consulta\nFiebre."}

	res, err := svc.Stop(context.Background(), userId)
	require.NoError(t, err)
	assert.NotEmpty(t, res.State)

	// The provider closes the channel once its context is cancelled.
	close(stream)
	waitForState(t, sessions, userId, constant.SessionStateCompleted)

	state, err := svc.SessionState(context.Background(), userId)
	require.NoError(t, err)
	assert.Contains(t, state.Displayed, "detenida por el usuario")
	require.Len(t, sink.byType(constant.EventNoteCompleted), 1)
}

func TestSessionStateUnknownUser(t *testing.T) {
	provider := &stubLLM{}
	svc, _, _, _ := newScribeFixture(t, provider)

	_, err := svc.SessionState(context.Background(), uuid.New())
	require.Error(t, err)
	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, fiber.StatusNotFound, appErr.Status)
}
