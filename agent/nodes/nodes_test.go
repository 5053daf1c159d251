package assistantnode

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	statex "github.com/tanpawarit/Chative-Airline-Assistant/agent/state"
)

var testNow = time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)

// fakeDispatcher records what it was called with and answers from a table.
type fakeDispatcher struct {
	mu        sync.Mutex
	calls     []contractx.ToolCall
	deadlines []bool
	results   map[string]contractx.ToolResult
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, call contractx.ToolCall) contractx.ToolResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := ctx.Deadline()
	f.calls = append(f.calls, call)
	f.deadlines = append(f.deadlines, ok)
	if res, ok := f.results[call.Name]; ok {
		return res
	}
	return contractx.ToolResult{Tool: call.Name, IsError: true, Payload: map[string]any{"error": "unknown_tool"}}
}

type fakePlanner struct {
	resp  contractx.PlannerResponse
	err   error
	calls int
	req   contractx.PlannerRequest
}

func (f *fakePlanner) Plan(_ context.Context, req contractx.PlannerRequest) (contractx.PlannerResponse, error) {
	f.calls++
	f.req = req
	return f.resp, f.err
}

func newState() *GraphState {
	s := statex.NewSession("s-1", "en", testNow)
	s.Context = s.Context.WithIdentity(statex.Identity{UserID: "u-1", UserOriginAirport: "RUH"})
	return &GraphState{SessionID: "s-1", Now: testNow, Session: s}
}

func okResult(name string, u *statex.ContextUpdate) contractx.ToolResult {
	return contractx.ToolResult{Tool: name, Payload: map[string]any{"ok": true}, UIHint: contractx.UIFlightList, ContextUpdate: u}
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	clock := func() time.Time { return testNow }

	if _, err := ValidateRequest(GraphInput{SessionID: " ", Text: "hi"}, clock); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	if _, err := ValidateRequest(GraphInput{SessionID: "s", Text: "  "}, clock); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
	if _, err := ValidateRequest(GraphInput{SessionID: "s", Calls: []contractx.ToolCall{{Name: " "}}}, clock); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	st, err := ValidateRequest(GraphInput{SessionID: " s ", Calls: []contractx.ToolCall{{Name: " get_booking "}}}, clock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.SessionID != "s" || st.Calls[0].Name != "get_booking" || string(st.Calls[0].Arguments) != "{}" {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestLoadOrCreateSession(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	st, err := LoadOrCreateSession(context.Background(), &GraphState{SessionID: "new", Now: testNow}, store, "ar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Session.Context.Locale != "ar" || st.Session.Version != 0 {
		t.Fatalf("unexpected session: %+v", st.Session)
	}

	if err := store.Save(context.Background(), st.Session); err != nil {
		t.Fatalf("save: %v", err)
	}
	st, err = LoadOrCreateSession(context.Background(), &GraphState{SessionID: "new", Now: testNow}, store, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Session.Version != 1 || st.Session.Context.Locale != "ar" {
		t.Fatalf("expected stored session, got %+v", st.Session)
	}
}

func TestPlanTurn(t *testing.T) {
	t.Parallel()

	p := &fakePlanner{resp: contractx.PlannerResponse{
		Message:   "Searching now.",
		ToolCalls: []contractx.ToolCall{{Name: "search_flights", Arguments: json.RawMessage(`{"destination":"JED"}`)}},
	}}
	st := newState()
	st.Text = "to jeddah"
	st, err := PlanTurn(context.Background(), st, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.req.UserMessage != "to jeddah" || p.req.Context.UserOriginAirport != "RUH" || !p.req.Now.Equal(testNow) {
		t.Fatalf("unexpected planner request: %+v", p.req)
	}
	if st.Message != "Searching now." || len(st.Calls) != 1 {
		t.Fatalf("unexpected plan: %+v", st)
	}

	// explicit calls skip the planner
	st, err = PlanTurn(context.Background(), st, p)
	if err != nil || p.calls != 1 {
		t.Fatalf("planner should be skipped, calls=%d err=%v", p.calls, err)
	}

	bare := newState()
	bare.Text = "hi"
	if _, err := PlanTurn(context.Background(), bare, nil); !errors.Is(err, ErrPlannerUnavailable) {
		t.Fatalf("expected ErrPlannerUnavailable, got %v", err)
	}
}

func TestDispatchToolsThreadsContext(t *testing.T) {
	t.Parallel()

	d := &fakeDispatcher{results: map[string]contractx.ToolResult{
		"search_flights": okResult("search_flights", &statex.ContextUpdate{LastSearchID: statex.Str("srch-1")}),
		"select_flight":  okResult("select_flight", &statex.ContextUpdate{LastFlightNumber: statex.Str("SV100")}),
	}}
	st := newState()
	st.Calls = []contractx.ToolCall{{Name: "search_flights"}, {Name: "select_flight"}}

	st, err := DispatchTools(context.Background(), st, d, Policy{DispatchTimeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(st.Results))
	}
	if d.calls[1].Context.LastSearchID != "srch-1" {
		t.Fatalf("second call should see the first call's update, got %+v", d.calls[1].Context)
	}
	if !d.deadlines[0] || !d.deadlines[1] {
		t.Fatal("every dispatch should run under a deadline")
	}
	if st.Session.Context.LastSearchID != "" {
		t.Fatal("dispatch must not touch the session")
	}

	st, err = ApplyContextUpdates(st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Session.Context.LastSearchID != "srch-1" || st.Session.Context.LastFlightNumber != "SV100" {
		t.Fatalf("updates not applied: %+v", st.Session.Context)
	}
}

func TestDispatchToolsStopsAfterError(t *testing.T) {
	t.Parallel()

	d := &fakeDispatcher{results: map[string]contractx.ToolResult{
		"get_booking": okResult("get_booking", nil),
	}}
	st := newState()
	st.Calls = []contractx.ToolCall{{Name: "unknown_tool_xyz"}, {Name: "get_booking"}}

	st, err := DispatchTools(context.Background(), st, d, Policy{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.calls) != 1 || len(st.Results) != 1 || !st.Results[0].IsError {
		t.Fatalf("expected a single failed call, got %d calls", len(d.calls))
	}
	if st.Skipped != 1 {
		t.Fatalf("expected one skipped call, got %d", st.Skipped)
	}
}

func TestDispatchToolsCapsCalls(t *testing.T) {
	t.Parallel()

	d := &fakeDispatcher{results: map[string]contractx.ToolResult{
		"get_booking": okResult("get_booking", nil),
	}}
	st := newState()
	for i := 0; i < 5; i++ {
		st.Calls = append(st.Calls, contractx.ToolCall{Name: "get_booking"})
	}

	st, err := DispatchTools(context.Background(), st, d, Policy{MaxToolCalls: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.calls) != 2 || st.Skipped != 3 {
		t.Fatalf("expected 2 calls and 3 skipped, got %d and %d", len(d.calls), st.Skipped)
	}
}

func TestFinalizeReply(t *testing.T) {
	t.Parallel()

	st := newState()
	st.Message = " Here you go. "
	st.Results = []contractx.ToolResult{
		okResult("search_flights", nil),
		{Tool: "create_booking", IsError: true, Payload: map[string]any{"error": "search_required", "message": "No search found."}},
	}

	out, err := FinalizeReply(st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Envelopes) != 3 {
		t.Fatalf("expected 3 envelopes, got %d", len(out.Envelopes))
	}
	if out.Envelopes[0].Text != "Here you go." || out.Envelopes[0].UIType != "" {
		t.Fatalf("unexpected text envelope: %+v", out.Envelopes[0])
	}
	if out.Envelopes[1].UIType != contractx.UIFlightList {
		t.Fatalf("unexpected ui type: %q", out.Envelopes[1].UIType)
	}
	if !out.Envelopes[2].IsError || out.Envelopes[2].Text != "No search found." || out.Envelopes[2].UIType != "" {
		t.Fatalf("unexpected error envelope: %+v", out.Envelopes[2])
	}

	if _, err := FinalizeReply(newState()); !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}

func TestValidateAndSaveSession(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	st := newState()
	st.Session.Context.Locale = ""
	st, err := ValidateAndSaveSession(context.Background(), st, store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := store.Load(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Context.Locale != statex.DefaultLocale || loaded.Context.UserID != "u-1" {
		t.Fatalf("unexpected stored context: %+v", loaded.Context)
	}
}
