package assistant

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Rareminds-eym/skillpassport-sub002/internal/ai"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/logger"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/store"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/store/rabbitmq"
	"github.com/google/uuid"
)

var (
	ErrEmptyMessage        = errors.New("message is empty")
	ErrConversationMissing = errors.New("conversation not found")
)

const (
	EventToken = "token"
	EventDone  = "done"
	EventError = "error"
)

// Event is one item on the response stream handed to the transport
// layer. Exactly one terminal event (done or error) closes the stream.
type Event struct {
	Type    string    `json:"type"`
	Content string    `json:"content,omitempty"`
	Done    *DoneInfo `json:"done,omitempty"`
	Err     string    `json:"error,omitempty"`
}

// DoneInfo is the metadata payload of the terminal done event.
type DoneInfo struct {
	ConversationID   string `json:"conversationId"`
	MessageID        string `json:"messageId"`
	Intent           string `json:"intent"`
	IntentConfidence string `json:"intentConfidence"`
	Phase            string `json:"phase"`
	HasAssessment    bool   `json:"hasAssessment"`
	ExecutionTimeMs  int64  `json:"executionTimeMs"`
}

// ChatInput is one inbound message. ConversationID is empty for the
// first message of a new conversation.
type ChatInput struct {
	ConversationID string
	Message        string
	SelectedChips  []string
}

// BlockedResult is returned instead of a stream when guardrails reject
// the message; the transport renders it as a normal assistant reply.
type BlockedResult struct {
	Message string
	Flag    string
}

// Store is the persistence surface the service needs; *store.Repo
// satisfies it.
type Store interface {
	GetProfile(ctx context.Context, studentID string) (*store.Student, error)
	GetAssessment(ctx context.Context, studentID string) (*store.AssessmentResult, error)
	GetProgress(ctx context.Context, studentID string) (*store.CareerProgress, error)
	ListOpportunities(ctx context.Context, limit int) ([]store.Opportunity, error)
	GetConversation(ctx context.Context, id, studentID string) (*store.Conversation, error)
	UpsertConversation(ctx context.Context, c *store.Conversation) error
}

// TelemetryPublisher receives per-exchange analytics events.
type TelemetryPublisher interface {
	PublishExchange(ctx context.Context, ev rabbitmq.ExchangeEvent) error
}

type Service struct {
	store        Store
	registry     *ai.Registry
	providerName string
	model        string
	telemetry    TelemetryPublisher
	log          *logger.Logger
	fetchTimeout time.Duration
}

type ServiceOptions struct {
	Store        Store
	Registry     *ai.Registry
	Provider     string
	Model        string
	Telemetry    TelemetryPublisher // optional
	Log          *logger.Logger
	FetchTimeout time.Duration
}

func NewService(opts ServiceOptions) *Service {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 5 * time.Second
	}
	if opts.Log == nil {
		opts.Log = logger.NewNop()
	}
	return &Service{
		store:        opts.Store,
		registry:     opts.Registry,
		providerName: opts.Provider,
		model:        opts.Model,
		telemetry:    opts.Telemetry,
		log:          opts.Log,
		fetchTimeout: opts.FetchTimeout,
	}
}

// HandleMessage runs one exchange end to end. It returns either a
// blocked result (guardrail rejection, no stream), or an event channel
// that yields token events followed by exactly one done or error
// event and is then closed. A non-nil error means the request could
// not start at all.
func (s *Service) HandleMessage(ctx context.Context, studentID string, in ChatInput) (*BlockedResult, <-chan Event, error) {
	start := time.Now()

	guard := RunGuardrails(in.Message)
	if guard.Sanitized == "" {
		return nil, nil, ErrEmptyMessage
	}
	if !guard.Passed {
		s.log.Info("message blocked",
			"student_id", studentID, "flag", guard.Flag, "flags", guard.Flags)
		s.publishTelemetry(rabbitmq.ExchangeEvent{
			ConversationID: in.ConversationID,
			StudentID:      studentID,
			Blocked:        true,
			ExecutionMs:    time.Since(start).Milliseconds(),
		})
		return &BlockedResult{Message: BlockedResponse(guard.Flag), Flag: guard.Flag}, nil, nil
	}

	var existing []store.Turn
	if in.ConversationID != "" {
		conv, err := s.store.GetConversation(ctx, in.ConversationID, studentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, nil, ErrConversationMissing
			}
			return nil, nil, err
		}
		existing = conv.Turns
	}

	phase := PhaseForTurnCount(len(existing))
	intentRes := ClassifyIntent(guard.Sanitized, in.SelectedChips, existing)
	params := ParamsFor(phase, intentRes.Intent)

	agg, err := s.aggregateContext(ctx, studentID, intentRes.Intent)
	if err != nil {
		return nil, nil, err
	}

	mem := Compress(existing)
	systemPrompt := BuildSystemPrompt(agg, phase, intentRes, mem)
	messages := BuildMessages(systemPrompt, mem.Recent, guard.Sanitized)

	provider, err := s.registry.Get(ctx, s.providerName, s.model)
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("exchange started",
		"student_id", studentID,
		"conversation_id", in.ConversationID,
		"intent", intentRes.Intent,
		"confidence", intentRes.Confidence,
		"phase", phase,
		"max_tokens", params.MaxTokens)

	events := make(chan Event, 16)
	go s.stream(ctx, provider, streamState{
		studentID:      studentID,
		conversationID: in.ConversationID,
		userMessage:    guard.Sanitized,
		existing:       existing,
		intent:         intentRes,
		phase:          phase,
		params:         params,
		hasAssessment:  agg.HasAssessment,
		messages:       messages,
		start:          start,
	}, events)

	return nil, events, nil
}

type streamState struct {
	studentID      string
	conversationID string
	userMessage    string
	existing       []store.Turn
	intent         IntentResult
	phase          Phase
	params         GenerationParams
	hasAssessment  bool
	messages       []ai.Message
	start          time.Time
}

// stream relays the upstream token stream, then persists the turn pair
// and emits the terminal event. A caller disconnect abandons the
// in-flight exchange without persisting anything.
func (s *Service) stream(ctx context.Context, provider ai.Provider, st streamState, events chan<- Event) {
	defer close(events)

	emit := func(ev Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	chunks, errs := provider.StreamChat(ctx, ai.ChatRequest{
		Messages:    st.messages,
		MaxTokens:   st.params.MaxTokens,
		Temperature: st.params.Temperature,
	})

	var acc strings.Builder
	for chunks != nil || errs != nil {
		select {
		case <-ctx.Done():
			s.log.Warn("caller disconnected, abandoning exchange",
				"student_id", st.studentID, "conversation_id", st.conversationID)
			return
		case chunk, ok := <-chunks:
			if !ok {
				chunks = nil
				continue
			}
			acc.WriteString(chunk)
			select {
			case events <- Event{Type: EventToken, Content: chunk}:
			case <-ctx.Done():
				return
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				s.log.Error("upstream stream failed",
					"student_id", st.studentID, "err", err)
				emit(Event{Type: EventError, Err: "generation failed"})
				return
			}
		}
	}

	text := acc.String()
	if strings.TrimSpace(text) == "" {
		s.log.Error("upstream returned empty response", "student_id", st.studentID)
		emit(Event{Type: EventError, Err: "empty response from provider"})
		return
	}

	if flags := ValidateResponse(text); len(flags) > 0 {
		s.log.Warn("response validation flags",
			"student_id", st.studentID, "flags", flags)
	}

	if ctx.Err() != nil {
		return
	}

	// The user turn and assistant turn share an id and are written in
	// one upsert so the pair lands atomically.
	turnID := uuid.New().String()
	now := time.Now().UTC()
	conv := &store.Conversation{
		ID:        st.conversationID,
		StudentID: st.studentID,
		Turns: append(append([]store.Turn{}, st.existing...),
			store.Turn{ID: turnID, Role: store.RoleUser, Content: st.userMessage, Timestamp: now},
			store.Turn{ID: turnID, Role: store.RoleAssistant, Content: text, Timestamp: now},
		),
	}
	if conv.ID == "" {
		conv.Title = deriveTitle(st.userMessage)
	}
	if err := s.store.UpsertConversation(ctx, conv); err != nil {
		s.log.Error("persist failed",
			"student_id", st.studentID, "conversation_id", conv.ID, "err", err)
		emit(Event{Type: EventError, Err: "failed to save conversation"})
		return
	}

	elapsed := time.Since(st.start).Milliseconds()
	emit(Event{Type: EventDone, Done: &DoneInfo{
		ConversationID:   conv.ID,
		MessageID:        turnID,
		Intent:           string(st.intent.Intent),
		IntentConfidence: string(st.intent.Confidence),
		Phase:            string(st.phase),
		HasAssessment:    st.hasAssessment,
		ExecutionTimeMs:  elapsed,
	}})

	s.publishTelemetry(rabbitmq.ExchangeEvent{
		ConversationID: conv.ID,
		StudentID:      st.studentID,
		Intent:         string(st.intent.Intent),
		Confidence:     string(st.intent.Confidence),
		Phase:          string(st.phase),
		ExecutionMs:    elapsed,
	})

	s.log.Info("exchange persisted",
		"student_id", st.studentID,
		"conversation_id", conv.ID,
		"execution_ms", elapsed)
}

// publishTelemetry is best effort; analytics never affect the exchange.
func (s *Service) publishTelemetry(ev rabbitmq.ExchangeEvent) {
	if s.telemetry == nil {
		return
	}
	if err := s.telemetry.PublishExchange(context.Background(), ev); err != nil {
		s.log.Warn("telemetry publish failed", "err", err)
	}
}

// deriveTitle names a new conversation after its first message.
func deriveTitle(message string) string {
	const maxTitleLen = 60
	title := strings.TrimSpace(message)
	if utf8.RuneCountInString(title) > maxTitleLen {
		runes := []rune(title)
		title = strings.TrimSpace(string(runes[:maxTitleLen])) + "..."
	}
	return title
}
