package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	nodex "github.com/tanpawarit/Chative-Airline-Assistant/agent/nodes"
	statex "github.com/tanpawarit/Chative-Airline-Assistant/agent/state"
	"github.com/tanpawarit/Chative-Airline-Assistant/agent/tool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	ErrInvalidMessage     = nodex.ErrInvalidMessage
	ErrInvalidSession     = nodex.ErrInvalidSession
	ErrPlannerUnavailable = nodex.ErrPlannerUnavailable
)

var tracer = otel.Tracer("github.com/tanpawarit/Chative-Airline-Assistant/agent/agents/assistant")

type Option func(*Assistant)

func WithClock(now func() time.Time) Option {
	return func(a *Assistant) {
		if now != nil {
			a.now = now
		}
	}
}

// Reply is what one turn hands back to the channel.
type Reply struct {
	Envelopes []contractx.Envelope       `json:"envelopes"`
	Context   statex.ConversationContext `json:"context"`
}

// Assistant runs turns for many sessions at once. Turns of the same session
// are serialized so the context read at the start of a turn is the one the
// turn overwrites.
type Assistant struct {
	store      statex.Store
	dispatcher *tool.Dispatcher
	planner    contractx.Planner
	locks      *statex.Locker

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	policy      nodex.Policy
	lockTimeout time.Duration
	locale      string
	now         func() time.Time
}

// New wires the turn graph. planner may be nil; HandleMessage then fails with
// ErrPlannerUnavailable while direct tool calls keep working.
func New(
	store statex.Store,
	dispatcher *tool.Dispatcher,
	planner contractx.Planner,
	cfg Config,
	opts ...Option,
) (*Assistant, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if dispatcher == nil {
		return nil, errors.New("tool dispatcher is required")
	}

	locale := strings.TrimSpace(cfg.Locale)
	if locale == "" {
		locale = statex.DefaultLocale
	}

	a := &Assistant{
		store:      store,
		dispatcher: dispatcher,
		planner:    planner,
		locks:      statex.NewLocker(),
		policy: nodex.Policy{
			MaxToolCalls:    cfg.MaxToolCalls,
			DispatchTimeout: cfg.DispatchTimeout,
		},
		lockTimeout: cfg.LockTimeout,
		locale:      locale,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	graphRunner, err := a.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	a.graphRunner = graphRunner

	return a, nil
}

func (a *Assistant) Registry() *tool.Registry {
	return a.dispatcher.Registry()
}

func (a *Assistant) HasPlanner() bool {
	return a.planner != nil
}

// HandleToolCall dispatches one named tool against the session's context.
func (a *Assistant) HandleToolCall(ctx context.Context, sessionID, name string, args json.RawMessage) (Reply, error) {
	return a.run(ctx, "tool_call", nodex.GraphInput{
		SessionID: sessionID,
		Calls:     []contractx.ToolCall{{Name: name, Arguments: args}},
	})
}

// HandleMessage lets the planner turn text into tool calls and runs them.
func (a *Assistant) HandleMessage(ctx context.Context, sessionID, text string) (Reply, error) {
	return a.run(ctx, "message", nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
}

func (a *Assistant) run(ctx context.Context, kind string, in nodex.GraphInput) (Reply, error) {
	started := time.Now()
	ctx, span := tracer.Start(ctx, "assistant.turn")
	defer span.End()
	span.SetAttributes(
		attribute.String("assistant.session_id", in.SessionID),
		attribute.String("assistant.turn_kind", kind),
	)

	unlock, err := a.lock(ctx, in.SessionID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Reply{}, err
	}
	defer unlock()

	out, err := a.graphRunner.Invoke(ctx, in)
	logger := log.Ctx(ctx).With().
		Str("session_id", in.SessionID).
		Str("turn", kind).
		Dur("duration", time.Since(started)).
		Logger()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		logger.Warn().Err(err).Msg("turn failed")
		return Reply{}, err
	}

	logger.Info().Int("envelopes", len(out.Envelopes)).Msg("turn completed")
	return Reply{Envelopes: out.Envelopes, Context: out.Context}, nil
}

// Context returns the stored context, or a fresh one for unknown sessions.
func (a *Assistant) Context(ctx context.Context, sessionID string) (statex.ConversationContext, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return statex.ConversationContext{}, ErrInvalidSession
	}
	s, err := a.store.Load(ctx, sessionID)
	if errors.Is(err, statex.ErrStateNotFound) {
		return statex.NewConversationContext(a.locale), nil
	}
	if err != nil {
		return statex.ConversationContext{}, err
	}
	return s.Context, nil
}

// UpdateIdentity seeds what the channel knows about the user into the
// session context, creating the session when needed.
func (a *Assistant) UpdateIdentity(ctx context.Context, sessionID string, id statex.Identity) (statex.ConversationContext, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return statex.ConversationContext{}, ErrInvalidSession
	}
	unlock, err := a.lock(ctx, sessionID)
	if err != nil {
		return statex.ConversationContext{}, err
	}
	defer unlock()

	s, err := a.store.Load(ctx, sessionID)
	if errors.Is(err, statex.ErrStateNotFound) {
		s, err = statex.NewSession(sessionID, a.locale, a.now()), nil
	}
	if err != nil {
		return statex.ConversationContext{}, err
	}
	s.Context = s.Context.WithIdentity(id)
	s.Touch(a.now())
	if err := a.store.Save(ctx, s); err != nil {
		return statex.ConversationContext{}, err
	}
	return s.Context, nil
}

// Reset forgets the session. The next turn starts from an empty context.
func (a *Assistant) Reset(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ErrInvalidSession
	}
	unlock, err := a.lock(ctx, sessionID)
	if err != nil {
		return err
	}
	defer unlock()
	return a.store.Delete(ctx, sessionID)
}

func (a *Assistant) lock(ctx context.Context, sessionID string) (func(), error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}
	if a.lockTimeout > 0 {
		lockCtx, cancel := context.WithTimeout(ctx, a.lockTimeout)
		unlock, err := a.locks.Lock(lockCtx, sessionID)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("session %s is busy: %w", sessionID, err)
		}
		return unlock, nil
	}
	return a.locks.Lock(ctx, sessionID)
}
