// Package planner adapts LLM backends to contract.Planner. Every backend sees
// the same tool catalog and the same JSON user payload, and returns raw tool
// calls for the dispatcher to validate.
package planner

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	statex "github.com/tanpawarit/Chative-Airline-Assistant/agent/state"
)

type plannerInput struct {
	UserMessage string                     `json:"user_message"`
	Now         string                     `json:"now"`
	Context     statex.ConversationContext `json:"context"`
}

func buildInput(req contractx.PlannerRequest) (string, error) {
	if strings.TrimSpace(req.UserMessage) == "" {
		return "", fmt.Errorf("%w: user message is required", contractx.ErrValidation)
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	raw, err := json.Marshal(plannerInput{
		UserMessage: strings.TrimSpace(req.UserMessage),
		Now:         now.Format("Monday 2006-01-02 15:04 MST"),
		Context:     req.Context,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal planner payload: %v", contractx.ErrValidation, err)
	}
	return string(raw), nil
}

// toolCall keeps arguments raw. Anything that is not a JSON object becomes
// an empty bag, which the dispatcher reports field by field.
func toolCall(name, arguments string, c statex.ConversationContext) contractx.ToolCall {
	args := json.RawMessage(strings.TrimSpace(arguments))
	if len(args) == 0 || !json.Valid(args) {
		args = json.RawMessage(`{}`)
	}
	return contractx.ToolCall{
		Name:      strings.TrimSpace(name),
		Arguments: args,
		Context:   c,
	}
}

func finish(resp contractx.PlannerResponse) (contractx.PlannerResponse, error) {
	resp.Message = strings.TrimSpace(resp.Message)
	calls := resp.ToolCalls[:0]
	for _, call := range resp.ToolCalls {
		if call.Name != "" {
			calls = append(calls, call)
		}
	}
	resp.ToolCalls = calls
	if resp.Message == "" && len(resp.ToolCalls) == 0 {
		return contractx.PlannerResponse{}, fmt.Errorf("%w: planner returned neither a message nor tool calls", contractx.ErrSchemaViolation)
	}
	return resp, nil
}
