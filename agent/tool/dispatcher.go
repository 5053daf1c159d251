package tool

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	msgSearchExpired = "Your flight search has expired. Please search for flights again."
	msgTimeout       = "The request took too long to complete. Please try again."
	msgInternal      = "Something went wrong while processing your request. Please try again."
	msgDownstream    = "That service is not available right now. Please try again in a moment."
)

type DispatcherOption func(*Dispatcher)

// WithClock overrides the time source used for date resolution.
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// WithLocation sets the operating timezone relative dates are resolved in.
func WithLocation(loc *time.Location) DispatcherOption {
	return func(d *Dispatcher) {
		if loc != nil {
			d.loc = loc
		}
	}
}

// Dispatcher is the single error boundary between the planner and the
// downstream services. It is safe for concurrent use; all state it holds is
// read-only after construction.
type Dispatcher struct {
	registry *Registry
	now      func() time.Time
	loc      *time.Location
}

var _ contractx.ToolDispatcher = (*Dispatcher)(nil)

func NewDispatcher(registry *Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		now:      time.Now,
		loc:      time.UTC,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Now returns the current time in the dispatcher's operating timezone.
func (d *Dispatcher) Now() time.Time {
	return d.now().In(d.loc)
}

// Dispatch runs one tool call. It never panics and never returns a Go error:
// every failure is folded into a ToolResult with IsError set. It performs no
// retries.
func (d *Dispatcher) Dispatch(ctx context.Context, call contractx.ToolCall) (res contractx.ToolResult) {
	started := time.Now()
	def, known := d.registry.Lookup(call.Name)
	label := call.Name
	if !known {
		label = "unknown"
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "tool.Dispatcher.Dispatch",
		trace.WithAttributes(
			attribute.String("tool", label),
			attribute.Bool("has_search", call.Context.HasSearch()),
			attribute.Bool("logged_in", call.Context.LoggedIn()),
		),
	)
	defer span.End()

	outcome := outcomeOK
	defer func() {
		if r := recover(); r != nil {
			log.Ctx(ctx).Error().
				Str("tool", call.Name).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("tool handler panicked")
			outcome = outcomePanic
			res = errorResult(call.Name, map[string]any{"error": msgInternal})
			span.SetStatus(codes.Error, fmt.Sprint(r))
		}
		recordDispatch(label, outcome, time.Since(started))
		span.SetAttributes(attribute.String("outcome", outcome))
		log.Ctx(ctx).Debug().
			Str("tool", call.Name).
			Str("outcome", outcome).
			Dur("duration", time.Since(started)).
			Msg("tool dispatched")
	}()

	if !known {
		outcome = outcomeUnknownTool
		return errorResult(call.Name, map[string]any{"error": fmt.Sprintf("Unknown tool: %s", call.Name)})
	}

	out, err := d.invoke(ctx, def, call)
	if err != nil {
		payload, kind := classify(ctx, err)
		outcome = kind
		if kind != outcomePrecondition && kind != outcomeArgument {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		ev := log.Ctx(ctx).Info()
		if kind == outcomeDownstream || kind == outcomeTimeout {
			ev = log.Ctx(ctx).Warn()
		}
		ev.Err(err).Str("tool", call.Name).Str("outcome", kind).Msg("tool call failed")
		return errorResult(call.Name, payload)
	}

	payload := out.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	return contractx.ToolResult{
		Tool:          call.Name,
		Payload:       payload,
		UIHint:        def.UIHint,
		ContextUpdate: out.Context,
	}
}

func (d *Dispatcher) invoke(ctx context.Context, def Definition, call contractx.ToolCall) (Outcome, error) {
	if def.Guard != nil {
		if err := def.Guard(call.Context); err != nil {
			return Outcome{}, err
		}
	}

	now := d.Now()
	args, err := Extract(def.Spec, ParseArguments(call.Arguments), Env{Now: now, Context: call.Context})
	if err != nil {
		return Outcome{}, err
	}

	return def.Handler(ctx, Invocation{
		Tool:    def.Name,
		Args:    args,
		Context: call.Context,
		Now:     now,
	})
}

func errorResult(tool string, payload map[string]any) contractx.ToolResult {
	return contractx.ToolResult{Tool: tool, Payload: payload, IsError: true}
}

// classify maps an error onto the user-facing payload and a metrics label.
func classify(ctx context.Context, err error) (map[string]any, string) {
	var (
		pre    *contractx.PreconditionError
		field  *contractx.FieldError
		facade *contractx.FacadeError
	)
	switch {
	case errors.As(err, &pre):
		payload := map[string]any{"error": pre.Code, "message": pre.Message}
		if pre.Prompt != "" {
			payload["prompt"] = pre.Prompt
		}
		return payload, outcomePrecondition
	case errors.As(err, &field):
		return map[string]any{
			"error":   field.Code(),
			"field":   field.Field,
			"message": field.Message(),
		}, outcomeArgument
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return map[string]any{"error": msgTimeout}, outcomeTimeout
	case errors.Is(err, context.Canceled):
		return map[string]any{"error": msgTimeout}, outcomeTimeout
	case errors.As(err, &facade):
		if facade.Message == "" && errors.Is(err, contractx.ErrSearchExpired) {
			return map[string]any{"error": msgSearchExpired}, outcomeDownstream
		}
		return map[string]any{"error": facade.Message}, outcomeDownstream
	case errors.Is(err, contractx.ErrSearchExpired):
		return map[string]any{"error": msgSearchExpired}, outcomeDownstream
	default:
		return map[string]any{"error": msgDownstream}, outcomeDownstream
	}
}
