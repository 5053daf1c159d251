package assistantnode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
)

// DispatchTools runs the turn's calls in order against a working copy of the
// context, so a call sees the pointers set by the calls before it. The
// session itself is not touched here.
func DispatchTools(
	ctx context.Context,
	in *GraphState,
	dispatcher contractx.ToolDispatcher,
	policy Policy,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	policy = policy.withDefaults()

	calls := in.Calls
	if len(calls) > policy.MaxToolCalls {
		log.Ctx(ctx).Warn().
			Str("session_id", in.SessionID).
			Int("planned", len(calls)).
			Int("max", policy.MaxToolCalls).
			Msg("dropping tool calls over the per-turn limit")
		in.Skipped += len(calls) - policy.MaxToolCalls
		calls = calls[:policy.MaxToolCalls]
	}

	working := in.Session.Context
	results := make([]contractx.ToolResult, 0, len(calls))
	for i, call := range calls {
		if !shouldContinue(results) {
			in.Skipped += len(calls) - i
			break
		}
		call.Context = working
		res := dispatchOne(ctx, dispatcher, call, policy)
		working = working.Apply(res.ContextUpdate)
		results = append(results, res)
	}

	in.Results = results
	return in, nil
}

func dispatchOne(ctx context.Context, dispatcher contractx.ToolDispatcher, call contractx.ToolCall, policy Policy) contractx.ToolResult {
	callCtx, cancel := context.WithTimeout(ctx, policy.DispatchTimeout)
	defer cancel()
	return dispatcher.Dispatch(callCtx, call)
}
