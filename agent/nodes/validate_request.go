package assistantnode

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	statex "github.com/tanpawarit/Chative-Airline-Assistant/agent/state"
)

var (
	ErrInvalidMessage     = errors.New("message is empty")
	ErrInvalidSession     = errors.New("session id is empty")
	ErrPlannerUnavailable = errors.New("no planner is configured")
)

// GraphInput is one turn. Calls, when set, are dispatched as-is and the
// planner is skipped; otherwise Text goes to the planner.
type GraphInput struct {
	SessionID string
	Text      string
	Calls     []contractx.ToolCall
}

type GraphOutput struct {
	Envelopes []contractx.Envelope
	Context   statex.ConversationContext
}

type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Session *statex.Session
	Calls   []contractx.ToolCall
	Message string

	Results []contractx.ToolResult
	// Skipped counts planned calls that were not run this turn.
	Skipped int
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	st := &GraphState{
		SessionID: sessionID,
		Now:       nowFn().UTC(),
	}

	if len(in.Calls) > 0 {
		for i, call := range in.Calls {
			name := strings.TrimSpace(call.Name)
			if name == "" {
				return nil, fmt.Errorf("%w: tool call %d has no name", contractx.ErrValidation, i)
			}
			args := call.Arguments
			if len(args) == 0 {
				args = json.RawMessage(`{}`)
			}
			st.Calls = append(st.Calls, contractx.ToolCall{Name: name, Arguments: args})
		}
		return st, nil
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}
	st.Text = text
	return st, nil
}
