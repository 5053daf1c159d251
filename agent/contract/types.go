package contract

import (
	"encoding/json"
	"time"

	statex "github.com/tanpawarit/Chative-Airline-Assistant/agent/state"
)

// UIHint tags a successful result with the display surface that renders it.
type UIHint string

const (
	UIFlightList            UIHint = "flight_list"
	UIFareOptions           UIHint = "fare_options"
	UISavedTravelers        UIHint = "saved_travelers"
	UIBookingConfirmation   UIHint = "booking_confirmation"
	UIBookingDetails        UIHint = "booking_details"
	UICancellationSummary   UIHint = "cancellation_summary"
	UIChangeFeeQuote        UIHint = "change_fee_quote"
	UISeatMap               UIHint = "seat_map"
	UISeatConfirmation      UIHint = "seat_confirmation"
	UIMealOptions           UIHint = "meal_options"
	UIAncillaryConfirmation UIHint = "ancillary_confirmation"
	UIBoardingPass          UIHint = "boarding_pass"
	UIDestinationSuggestion UIHint = "destination_suggestions"
	UICheapestFlights       UIHint = "cheapest_flights"
)

// ToolCall is one planner request. Arguments is kept raw: the dispatcher owns
// parsing, and a malformed payload is treated as an empty bag.
type ToolCall struct {
	Name      string                     `json:"name"`
	Arguments json.RawMessage            `json:"arguments,omitempty"`
	Context   statex.ConversationContext `json:"context"`
}

// ToolResult carries either a success payload or an error payload.
// UIHint is only set on success.
type ToolResult struct {
	Tool          string                `json:"tool"`
	Payload       map[string]any        `json:"payload"`
	UIHint        UIHint                `json:"uiHint,omitempty"`
	IsError       bool                  `json:"isError"`
	ContextUpdate *statex.ContextUpdate `json:"contextUpdate,omitempty"`
}

// Message returns the human-readable error text of an error result.
func (r ToolResult) Message() string {
	if !r.IsError {
		return ""
	}
	if msg, ok := r.Payload["message"].(string); ok && msg != "" {
		return msg
	}
	if msg, ok := r.Payload["error"].(string); ok {
		return msg
	}
	return ""
}

// ErrorCode returns payload["error"] for error results.
func (r ToolResult) ErrorCode() string {
	if !r.IsError {
		return ""
	}
	code, _ := r.Payload["error"].(string)
	return code
}

// Envelope is what the channel layer renders. Text and Suggestions are filled
// by the channel for successful results; errors carry their message in Text.
type Envelope struct {
	Tool             string                `json:"tool,omitempty"`
	Text             string                `json:"text,omitempty"`
	UIType           UIHint                `json:"uiType,omitempty"`
	UIData           map[string]any        `json:"uiData,omitempty"`
	Suggestions      []string              `json:"suggestions"`
	DetectedLanguage string                `json:"detectedLanguage"`
	PendingContext   *statex.ContextUpdate `json:"pendingContext,omitempty"`
	IsError          bool                  `json:"isError,omitempty"`
}

type PlannerRequest struct {
	UserMessage string                     `json:"user_message"`
	Context     statex.ConversationContext `json:"context"`
	Now         time.Time                  `json:"now"`
}

// PlannerResponse is either a direct reply, a list of tool calls, or both.
type PlannerResponse struct {
	Message   string     `json:"message,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}
