package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ai-scribe-be/internal/config"
	"ai-scribe-be/internal/constant"
	"ai-scribe-be/internal/dto"
	"ai-scribe-be/internal/entity"
	"ai-scribe-be/internal/pkg/logger"
	"ai-scribe-be/internal/pkg/serverutils"
	"ai-scribe-be/internal/repository/contract"
	"ai-scribe-be/internal/repository/memory"
	"ai-scribe-be/pkg/events"
	"ai-scribe-be/pkg/llm"
	"ai-scribe-be/pkg/scribe/alerts"
	"ai-scribe-be/pkg/scribe/sections"
	"ai-scribe-be/pkg/scribe/sentinel"
	"ai-scribe-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// NoteEventSink delivers live events to the clinician's devices. Implemented
// by the websocket hub.
type NoteEventSink interface {
	Send(userID uuid.UUID, eventType string, data interface{})
}

// ReportPublisher publishes de-identified completion reports. Implemented by
// the NATS publisher; nil when NATS is unavailable.
type ReportPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IScribeService interface {
	Generate(ctx context.Context, userId uuid.UUID, request *dto.GenerateNoteRequest) (*dto.GenerateNoteResponse, error)
	Stop(ctx context.Context, userId uuid.UUID) (*dto.StopGenerationResponse, error)
	SessionState(ctx context.Context, userId uuid.UUID) (*dto.SessionStateResponse, error)
}

// scribeService runs generation sessions: one per user at a time, chunks
// applied in arrival order, finalization through the sentinel extractor.
type scribeService struct {
	historyRepo contract.HistoryRepository
	sessionRepo *memory.SessionRepository
	llmProvider llm.LLMProvider
	sink        NoteEventSink
	reports     ReportPublisher
	logger      logger.ILogger
	cfg         config.ScribeConfig
	locale      constant.LocaleBundle

	// mu guards cancels. Session state transitions are guarded inside the
	// session itself.
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewScribeService(
	historyRepo contract.HistoryRepository,
	sessionRepo *memory.SessionRepository,
	llmProvider llm.LLMProvider,
	sink NoteEventSink,
	reports ReportPublisher,
	sysLogger logger.ILogger,
	cfg config.ScribeConfig,
) IScribeService {
	return &scribeService{
		historyRepo: historyRepo,
		sessionRepo: sessionRepo,
		llmProvider: llmProvider,
		sink:        sink,
		reports:     reports,
		logger:      sysLogger,
		cfg:         cfg,
		locale:      constant.LocaleFor(cfg.Locale),
		cancels:     make(map[string]context.CancelFunc),
	}
}

// Generate starts a streaming session. Required-context validation happened
// at the controller; here only the single-flight rule can reject.
func (s *scribeService) Generate(ctx context.Context, userId uuid.UUID, request *dto.GenerateNoteRequest) (*dto.GenerateNoteResponse, error) {
	session := s.sessionRepo.GetOrCreate(userId.String())

	if !session.BeginStreaming() {
		return nil, serverutils.NewAppError(fiber.StatusConflict, "a generation session is already running")
	}

	session.SetTranscript(request.Transcript)

	// The stream outlives the HTTP request, so it gets its own context.
	streamCtx := context.Background()
	var cancel context.CancelFunc
	if s.cfg.StreamTimeoutSeconds > 0 {
		streamCtx, cancel = context.WithTimeout(streamCtx, time.Duration(s.cfg.StreamTimeoutSeconds)*time.Second)
	} else {
		streamCtx, cancel = context.WithCancel(streamCtx)
	}

	chunks, err := s.llmProvider.ChatStream(streamCtx, buildNotePrompt(request))
	if err != nil {
		cancel()
		s.failSession(session, userId, err)
		return &dto.GenerateNoteResponse{SessionId: session.ID, State: session.State()}, nil
	}

	s.mu.Lock()
	s.cancels[userId.String()] = cancel
	s.mu.Unlock()

	snapshot := historySnapshot{
		context: entity.ConsultationContext{
			Age:               request.Context.Age,
			Sex:               request.Context.Sex,
			Modality:          request.Context.Modality,
			AdditionalContext: request.Context.AdditionalContext,
		},
		profile: entity.ProfileSnapshot{
			FullName:  request.Profile.FullName,
			Specialty: request.Profile.Specialty,
		},
	}

	go s.consumeStream(streamCtx, session, userId, chunks, snapshot)

	return &dto.GenerateNoteResponse{SessionId: session.ID, State: session.State()}, nil
}

// Stop halts chunk application and cancels the upstream call. The consumer
// goroutine finalizes with whatever already arrived.
func (s *scribeService) Stop(ctx context.Context, userId uuid.UUID) (*dto.StopGenerationResponse, error) {
	session, found := s.sessionRepo.Get(userId.String())
	if !found || !session.InFlight() {
		return nil, serverutils.NewAppError(fiber.StatusConflict, "no generation session is running")
	}

	s.mu.Lock()
	cancel, ok := s.cancels[userId.String()]
	s.mu.Unlock()
	if ok {
		cancel()
	}

	return &dto.StopGenerationResponse{State: session.State()}, nil
}

func (s *scribeService) SessionState(ctx context.Context, userId uuid.UUID) (*dto.SessionStateResponse, error) {
	session, found := s.sessionRepo.Get(userId.String())
	if !found {
		return nil, serverutils.NewAppError(fiber.StatusNotFound, "no scribe session")
	}

	snap := session.Snapshot()
	return &dto.SessionStateResponse{
		SessionId: snap.ID,
		State:     snap.State,
		Displayed: snap.Displayed,
		StartedAt: snap.StartedAt,
	}, nil
}

type historySnapshot struct {
	context entity.ConsultationContext
	profile entity.ProfileSnapshot
}

// consumeStream is the single consumer of one generation stream: chunk
// ordering follows channel order, which follows arrival order.
func (s *scribeService) consumeStream(
	streamCtx context.Context,
	session *store.ScribeSession,
	userId uuid.UUID,
	chunks <-chan llm.StreamChunk,
	snapshot historySnapshot,
) {
	startedAt := time.Now()
	defer s.clearCancel(userId)

	for chunk := range chunks {
		if chunk.Err != nil {
			s.failSession(session, userId, chunk.Err)
			return
		}
		// The raw chunk may contain sentinel/payload text; it stays
		// visible until finalization replaces the buffer.
		session.AppendChunk(chunk.Content)
		s.sink.Send(userId, constant.EventNoteChunk, fiber.Map{
			"session_id": session.ID,
			"content":    chunk.Content,
		})
	}

	if err := streamCtx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		// Deadline hit: a stalled stream is an upstream failure.
		s.failSession(session, userId, err)
		return
	}

	stopped := errors.Is(streamCtx.Err(), context.Canceled)
	s.finalize(session, userId, snapshot, startedAt, stopped)
}

// finalize runs the extraction pipeline exactly once per session: excise the
// payload, normalize alerts, parse sections, persist, report, notify.
func (s *scribeService) finalize(
	session *store.ScribeSession,
	userId uuid.UUID,
	snapshot historySnapshot,
	startedAt time.Time,
	stopped bool,
) {
	session.SetState(constant.SessionStateFinalizing)

	extraction := sentinel.Extract(session.Accumulated())

	var noteAlerts []entity.ClinicalAlert
	if extraction.Found {
		noteAlerts = alerts.Normalize(extraction.Payload)
		if noteAlerts == nil && extraction.Payload != "" {
			// Malformed payload: the note still ships, just without
			// alerts.
			s.logger.Warn("Scribe", "Alerts payload was not valid JSON", map[string]interface{}{
				"session_id":  session.ID,
				"payload_len": len(extraction.Payload),
			})
		}
	}

	parsed := sections.Parse(extraction.Visible)

	displayed := extraction.Visible
	if stopped {
		displayed += s.locale.StoppedByUserMessage
	}
	session.ReplaceDisplayed(displayed)

	// One extraction feeds both the display and the history snapshot, so
	// the two can never diverge on payloads containing stray marker text.
	entry := &entity.HistoryEntry{
		Id:        uuid.New(),
		UserId:    userId,
		Context:   snapshot.context,
		Profile:   snapshot.profile,
		NoteText:  extraction.Visible,
		Alerts:    noteAlerts,
		CreatedAt: time.Now(),
	}
	persistCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.historyRepo.Create(persistCtx, entry); err != nil {
		// Persistence loss must not block note delivery.
		s.logger.Error("Scribe", "Failed to append history entry", map[string]interface{}{
			"session_id": session.ID,
			"error":      err.Error(),
		})
	}

	s.publishReport(persistCtx, session.ID, parsed, noteAlerts, startedAt)

	s.sink.Send(userId, constant.EventNoteCompleted, &dto.CompletedNoteDTO{
		SessionId:  session.ID,
		Disclaimer: parsed.Disclaimer,
		Visible:    displayed,
		Sections:   dto.FromSections(parsed),
		Alerts:     ensureAlerts(noteAlerts),
	})

	session.SetState(constant.SessionStateCompleted)
}

// failSession appends the localized error fragment to whatever partial
// output exists and marks the session terminal. Partial notes are never
// discarded.
func (s *scribeService) failSession(session *store.ScribeSession, userId uuid.UUID, cause error) {
	classified := classifyStreamError(cause)

	s.logger.Error("Scribe", "Generation stream failed", map[string]interface{}{
		"session_id": session.ID,
		"error":      cause.Error(),
	})

	fragment := s.locale.FormatGenerationError(classified)
	session.AppendDisplayed(fragment)
	session.SetState(constant.SessionStateFailed)

	s.sink.Send(userId, constant.EventNoteError, fiber.Map{
		"session_id": session.ID,
		"message":    classified,
		"fragment":   fragment,
	})
}

func (s *scribeService) publishReport(ctx context.Context, sessionId string, parsed sections.Parsed, noteAlerts []entity.ClinicalAlert, startedAt time.Time) {
	if s.reports == nil {
		return
	}

	highSeverity := 0
	for _, a := range noteAlerts {
		if a.Severity == entity.SeverityHigh {
			highSeverity++
		}
	}

	event := events.NewNoteCompletedEvent(
		sessionId,
		len(parsed.Sections),
		len(noteAlerts),
		highSeverity,
		time.Since(startedAt).Milliseconds(),
	)
	if err := s.reports.Publish(ctx, event); err != nil {
		s.logger.Warn("Scribe", "Failed to publish completion report", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}

func (s *scribeService) clearCancel(userId uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[userId.String()]; ok {
		cancel()
		delete(s.cancels, userId.String())
	}
}

// classifyStreamError turns transport errors into short user-presentable
// phrases. The full error goes to the log, never to the clinician.
func classifyStreamError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "tiempo de espera agotado"
	case errors.Is(err, context.Canceled):
		return "solicitud cancelada"
	default:
		return "servicio de generación no disponible"
	}
}

// buildNotePrompt assembles the chat history for the generation stream.
func buildNotePrompt(request *dto.GenerateNoteRequest) []llm.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Contexto de la consulta:\n- Edad: %s\n- Sexo: %s\n- Modalidad: %s\n",
		request.Context.Age, request.Context.Sex, request.Context.Modality)
	if request.Context.AdditionalContext != "" {
		fmt.Fprintf(&b, "- Información adicional: %s\n", request.Context.AdditionalContext)
	}
	if request.Profile.Specialty != "" {
		fmt.Fprintf(&b, "- Especialidad: %s\n", request.Profile.Specialty)
	}
	for _, att := range request.Attachments {
		fmt.Fprintf(&b, "\nDocumento adjunto (%s):\n%s\n", att.Name, att.Text)
	}
	fmt.Fprintf(&b, "\nTranscripción:\n%s", request.Transcript)

	return []llm.Message{
		{Role: "system", Content: constant.NoteGenerationSystemPromptV2},
		{Role: "user", Content: b.String()},
	}
}

func ensureAlerts(noteAlerts []entity.ClinicalAlert) []entity.ClinicalAlert {
	if noteAlerts == nil {
		return []entity.ClinicalAlert{}
	}
	return noteAlerts
}
