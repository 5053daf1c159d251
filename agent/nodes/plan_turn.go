package assistantnode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
)

// PlanTurn asks the planner for tool calls. Turns that arrive with explicit
// calls pass through untouched.
func PlanTurn(ctx context.Context, in *GraphState, planner contractx.Planner) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	if len(in.Calls) > 0 {
		return in, nil
	}
	if planner == nil {
		return nil, ErrPlannerUnavailable
	}

	resp, err := planner.Plan(ctx, contractx.PlannerRequest{
		UserMessage: in.Text,
		Context:     in.Session.Context,
		Now:         in.Now,
	})
	if err != nil {
		return nil, err
	}

	in.Message = resp.Message
	in.Calls = resp.ToolCalls
	log.Ctx(ctx).Debug().
		Str("session_id", in.SessionID).
		Int("tool_calls", len(in.Calls)).
		Bool("has_message", in.Message != "").
		Msg("turn planned")
	return in, nil
}
