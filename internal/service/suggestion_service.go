package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"ai-scribe-be/internal/config"
	"ai-scribe-be/internal/constant"
	"ai-scribe-be/internal/dto"
	"ai-scribe-be/internal/pkg/logger"
	"ai-scribe-be/internal/pkg/serverutils"
	"ai-scribe-be/internal/repository/memory"
	"ai-scribe-be/pkg/llm"
	"ai-scribe-be/pkg/scribe/suggest"

	wsmessage "github.com/ThreeDotsLabs/watermill/message"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISuggestionService interface {
	NotifyTranscriptChanged(ctx context.Context, userId uuid.UUID, request *dto.TranscriptChangedRequest) error
	GetSuggestions(ctx context.Context, userId uuid.UUID) (*dto.SuggestionsResponse, error)
	MarkAsked(ctx context.Context, userId uuid.UUID, text string) error
	Dismiss(ctx context.Context, userId uuid.UUID, text string) error
	StartConsumer(ctx context.Context) error
}

// transcriptChangedMessage travels over the in-process bus. The transcript is
// the only free text; profile and additional context never ride along.
type transcriptChangedMessage struct {
	UserId     string `json:"user_id"`
	Transcript string `json:"transcript"`
	Age        string `json:"age"`
	Sex        string `json:"sex"`
	Modality   string `json:"modality"`
}

// suggestionService debounces transcript updates per user, asks the model for
// follow-up questions and merges them through the deduplicator. Everything
// here is best-effort: a failure degrades to a banner, never to a blocked
// note.
type suggestionService struct {
	sessionRepo *memory.SessionRepository
	llmProvider llm.LLMProvider
	publisher   IPublisherService
	subscriber  wsmessage.Subscriber
	sink        NoteEventSink
	logger      logger.ILogger
	cfg         config.ScribeConfig
	locale      constant.LocaleBundle

	mu      sync.Mutex
	pending map[string]*pendingUpdate
}

type pendingUpdate struct {
	timer   *time.Timer
	payload transcriptChangedMessage
}

func NewSuggestionService(
	sessionRepo *memory.SessionRepository,
	llmProvider llm.LLMProvider,
	publisher IPublisherService,
	subscriber wsmessage.Subscriber,
	sink NoteEventSink,
	sysLogger logger.ILogger,
	cfg config.ScribeConfig,
) ISuggestionService {
	return &suggestionService{
		sessionRepo: sessionRepo,
		llmProvider: llmProvider,
		publisher:   publisher,
		subscriber:  subscriber,
		sink:        sink,
		logger:      sysLogger,
		cfg:         cfg,
		locale:      constant.LocaleFor(cfg.Locale),
		pending:     make(map[string]*pendingUpdate),
	}
}

// NotifyTranscriptChanged accepts a transcript update and hands it to the
// bus. The HTTP call returns immediately; the suggestion work happens on the
// consumer side after the debounce window.
func (s *suggestionService) NotifyTranscriptChanged(ctx context.Context, userId uuid.UUID, request *dto.TranscriptChangedRequest) error {
	session := s.sessionRepo.GetOrCreate(userId.String())
	session.SetTranscript(request.Transcript)

	msg := transcriptChangedMessage{
		UserId:     userId.String(),
		Transcript: request.Transcript,
		Age:        request.Context.Age,
		Sex:        request.Context.Sex,
		Modality:   request.Context.Modality,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.publisher.Publish(ctx, payload)
}

func (s *suggestionService) GetSuggestions(ctx context.Context, userId uuid.UUID) (*dto.SuggestionsResponse, error) {
	session, found := s.sessionRepo.Get(userId.String())
	if !found {
		return &dto.SuggestionsResponse{Questions: []suggest.Question{}}, nil
	}
	grouped := suggest.Group(session.Questions(), s.locale.SuggestionCategories, s.cfg.SuggestionMaxVisible)
	return &dto.SuggestionsResponse{Questions: grouped}, nil
}

func (s *suggestionService) MarkAsked(ctx context.Context, userId uuid.UUID, text string) error {
	session, found := s.sessionRepo.Get(userId.String())
	if !found || !session.MarkAsked(text) {
		return serverutils.NewAppError(fiber.StatusNotFound, "question not found")
	}
	s.pushQuestions(userId, session.Questions())
	return nil
}

func (s *suggestionService) Dismiss(ctx context.Context, userId uuid.UUID, text string) error {
	session, found := s.sessionRepo.Get(userId.String())
	if !found || !session.Dismiss(text) {
		return serverutils.NewAppError(fiber.StatusNotFound, "question not found")
	}
	s.pushQuestions(userId, session.Questions())
	return nil
}

// StartConsumer subscribes to the transcript topic and processes updates
// until ctx is cancelled. Call once from bootstrap.
func (s *suggestionService) StartConsumer(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, s.cfg.TranscriptChangedTopicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.handleMessage(msg)
			msg.Ack()
		}
	}()
	return nil
}

// handleMessage coalesces updates: each user keeps at most one pending
// suggestion call, and a new update resets the debounce clock with the
// latest payload.
func (s *suggestionService) handleMessage(msg *wsmessage.Message) {
	var payload transcriptChangedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Warn("Suggestions", "Dropping malformed transcript update", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	debounce := time.Duration(s.cfg.SuggestionDebounceMs) * time.Millisecond
	if p, ok := s.pending[payload.UserId]; ok {
		p.payload = payload
		p.timer.Reset(debounce)
		return
	}

	p := &pendingUpdate{payload: payload}
	p.timer = time.AfterFunc(debounce, func() {
		s.firePending(payload.UserId)
	})
	s.pending[payload.UserId] = p
}

func (s *suggestionService) firePending(userId string) {
	s.mu.Lock()
	p, ok := s.pending[userId]
	if ok {
		delete(s.pending, userId)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	s.refreshSuggestions(p.payload)
}

// refreshSuggestions runs one suggestion call end to end: gate, model call,
// dedupe-and-merge, push.
func (s *suggestionService) refreshSuggestions(payload transcriptChangedMessage) {
	if len(payload.Transcript) < s.cfg.SuggestionMinTranscript {
		return
	}

	userId, err := uuid.Parse(payload.UserId)
	if err != nil {
		return
	}
	session := s.sessionRepo.GetOrCreate(payload.UserId)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	response, err := s.llmProvider.Chat(ctx, buildSuggestionPrompt(payload, s.locale), llm.WithTemperature(0.4))
	if err != nil {
		s.logger.Warn("Suggestions", "Suggestion call failed", map[string]interface{}{
			"error": err.Error(),
		})
		s.sink.Send(userId, constant.EventSuggestionsUnavailable, fiber.Map{
			"message": s.locale.SuggestionsUnavailableMessage,
		})
		return
	}

	accepted := session.DedupeAndMerge(strings.Split(response, "\n"), s.locale.SuggestionCategories)
	if accepted == 0 {
		return
	}
	s.pushQuestions(userId, session.Questions())
}

func (s *suggestionService) pushQuestions(userId uuid.UUID, questions []suggest.Question) {
	grouped := suggest.Group(questions, s.locale.SuggestionCategories, s.cfg.SuggestionMaxVisible)
	s.sink.Send(userId, constant.EventSuggestionsUpdated, &dto.SuggestionsResponse{Questions: grouped})
}

func buildSuggestionPrompt(payload transcriptChangedMessage, locale constant.LocaleBundle) []llm.Message {
	system := fmt.Sprintf(constant.SuggestionSystemPromptV1, strings.Join(locale.SuggestionCategories, ", "))

	var b strings.Builder
	fmt.Fprintf(&b, "Contexto: edad %s, sexo %s, modalidad %s.\n\nTranscripción parcial:\n%s",
		payload.Age, payload.Sex, payload.Modality, payload.Transcript)

	return []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: b.String()},
	}
}
