package tool

import (
	"testing"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	statex "github.com/tanpawarit/Chative-Airline-Assistant/agent/state"
)

func TestProjectSuccess(t *testing.T) {
	t.Parallel()

	res := contractx.ToolResult{
		Tool:    string(GetSeatMap),
		Payload: map[string]any{"seatMap": contractx.SeatMap{PNR: "ABC123", FlightNumber: "SV1020"}},
		UIHint:  contractx.UISeatMap,
		ContextUpdate: &statex.ContextUpdate{
			CurrentPNR: statex.Str("ABC123"),
		},
	}
	env := Project(res, statex.ConversationContext{Locale: "ar"})

	if env.UIType != contractx.UISeatMap || env.IsError {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.DetectedLanguage != "ar" {
		t.Fatalf("unexpected language: %s", env.DetectedLanguage)
	}
	if env.Suggestions == nil {
		t.Fatal("suggestions must be an empty list, not nil")
	}
	seatMap, ok := env.UIData["seatMap"].(map[string]any)
	if !ok || seatMap["pnr"] != "ABC123" {
		t.Fatalf("ui data not normalized: %#v", env.UIData)
	}
	if env.PendingContext == nil || *env.PendingContext.CurrentPNR != "ABC123" {
		t.Fatalf("pending context missing: %+v", env.PendingContext)
	}
}

func TestProjectError(t *testing.T) {
	t.Parallel()

	res := contractx.ToolResult{
		Tool: string(SearchFlights),
		Payload: map[string]any{
			"error":   "origin_required",
			"message": "I need to know where you are flying from.",
			"prompt":  "Which city or airport will you be departing from?",
		},
		IsError: true,
		UIHint:  contractx.UIFlightList,
	}
	env := Project(res, statex.ConversationContext{})

	if env.UIType != "" {
		t.Fatalf("errors never carry a ui type, got %s", env.UIType)
	}
	if env.Text != "I need to know where you are flying from." {
		t.Fatalf("unexpected text: %q", env.Text)
	}
	if env.DetectedLanguage != statex.DefaultLocale {
		t.Fatalf("unexpected language: %s", env.DetectedLanguage)
	}
	if len(env.Suggestions) != 1 || env.Suggestions[0] != "Which city or airport will you be departing from?" {
		t.Fatalf("prompt should be offered as a suggestion: %v", env.Suggestions)
	}
	if env.PendingContext != nil {
		t.Fatal("errors never carry a context update")
	}
}

func TestProjectUnknownToolText(t *testing.T) {
	t.Parallel()

	res := contractx.ToolResult{
		Tool:    "unknown_tool_xyz",
		Payload: map[string]any{"error": "Unknown tool: unknown_tool_xyz"},
		IsError: true,
	}
	env := Project(res, statex.ConversationContext{Locale: "en"})
	if env.Text != "Unknown tool: unknown_tool_xyz" {
		t.Fatalf("unexpected text: %q", env.Text)
	}
}
