package planner

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	"github.com/tanpawarit/Chative-Airline-Assistant/agent/facade/sandbox"
	statex "github.com/tanpawarit/Chative-Airline-Assistant/agent/state"
	"github.com/tanpawarit/Chative-Airline-Assistant/agent/tool"
)

const testPrompt = "You plan airline tool calls."

type fakeChatModel struct {
	mu     sync.Mutex
	reply  *schema.Message
	err    error
	tools  []*schema.ToolInfo
	inputs [][]*schema.Message
}

func (m *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, input)
	if m.err != nil {
		return nil, m.err
	}
	return m.reply, nil
}

func (m *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *fakeChatModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tools = tools
	return m, nil
}

func newRegistry(t *testing.T) *tool.Registry {
	t.Helper()
	sb, err := sandbox.New()
	require.NoError(t, err)
	reg, err := tool.NewCatalog(sb.Facades())
	require.NoError(t, err)
	return reg
}

func request() contractx.PlannerRequest {
	return contractx.PlannerRequest{
		UserMessage: "  fly me to Jeddah next friday ",
		Context:     statex.NewConversationContext("en").WithIdentity(statex.Identity{UserID: "user-1001", UserOriginAirport: "RUH"}),
		Now:         time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC),
	}
}

func TestEinoPlannerReturnsToolCalls(t *testing.T) {
	t.Parallel()

	m := &fakeChatModel{reply: &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{ID: "1", Function: schema.FunctionCall{Name: "search_flights", Arguments: `{"destination":"JED","date":"next friday"}`}},
			{ID: "2", Function: schema.FunctionCall{Name: "get_saved_travelers", Arguments: "not json"}},
		},
	}}
	p, err := NewEinoPlanner(context.Background(), m, newRegistry(t), testPrompt)
	require.NoError(t, err)
	assert.Len(t, m.tools, len(tool.AllNames))

	req := request()
	resp, err := p.Plan(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 2)
	assert.Equal(t, "search_flights", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"destination":"JED","date":"next friday"}`, string(resp.ToolCalls[0].Arguments))
	assert.Equal(t, req.Context, resp.ToolCalls[0].Context)
	assert.JSONEq(t, `{}`, string(resp.ToolCalls[1].Arguments))

	require.Len(t, m.inputs, 1)
	msgs := m.inputs[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, testPrompt, msgs[0].Content)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(msgs[1].Content), &payload))
	assert.Equal(t, "fly me to Jeddah next friday", payload["user_message"])
	assert.Contains(t, payload["now"], "2025-06-10")
	assert.Equal(t, "RUH", payload["context"].(map[string]any)["userOriginAirport"])
}

func TestEinoPlannerDirectReply(t *testing.T) {
	t.Parallel()

	m := &fakeChatModel{reply: schema.AssistantMessage(" Where would you like to fly from? ", nil)}
	p, err := NewEinoPlanner(context.Background(), m, newRegistry(t), testPrompt)
	require.NoError(t, err)

	resp, err := p.Plan(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, "Where would you like to fly from?", resp.Message)
	assert.Empty(t, resp.ToolCalls)
}

func TestEinoPlannerErrors(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)

	_, err := NewEinoPlanner(context.Background(), &fakeChatModel{}, reg, "")
	assert.ErrorIs(t, err, contractx.ErrPromptMissing)

	empty := &fakeChatModel{reply: schema.AssistantMessage("", nil)}
	p, err := NewEinoPlanner(context.Background(), empty, reg, testPrompt)
	require.NoError(t, err)
	_, err = p.Plan(context.Background(), request())
	assert.ErrorIs(t, err, contractx.ErrSchemaViolation)

	_, err = p.Plan(context.Background(), contractx.PlannerRequest{UserMessage: "  "})
	assert.ErrorIs(t, err, contractx.ErrValidation)

	failing := &fakeChatModel{err: errors.New("rate limited")}
	p, err = NewEinoPlanner(context.Background(), failing, reg, testPrompt)
	require.NoError(t, err)
	_, err = p.Plan(context.Background(), request())
	assert.ErrorIs(t, err, contractx.ErrModelInvoke)
}

func TestFunctionTools(t *testing.T) {
	t.Parallel()

	tools := FunctionTools(newRegistry(t))
	require.Len(t, tools, len(tool.AllNames))
	assert.Equal(t, string(tool.AllNames[0]), tools[0].Function.Name)
	assert.Equal(t, "object", tools[0].Function.Parameters["type"])
}

func TestOpenAIPlanner(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		body map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		_ = json.Unmarshal(raw, &body)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1718000000,
			"model": "planner-model",
			"choices": [{
				"index": 0,
				"finish_reason": "tool_calls",
				"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{
						"id": "call_1",
						"type": "function",
						"function": {"name": "check_in", "arguments": "{\"passenger_name\":\"Sara\"}"}
					}]
				}
			}]
		}`)
	}))
	t.Cleanup(srv.Close)

	client := openai.NewClient(
		option.WithBaseURL(srv.URL+"/"),
		option.WithAPIKey("test-key"),
		option.WithMaxRetries(0),
	)
	p, err := NewOpenAIPlanner(&client, "planner-model", newRegistry(t), testPrompt, WithTemperature(0), WithMaxTokens(256))
	require.NoError(t, err)

	req := request()
	resp, err := p.Plan(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "check_in", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"passenger_name":"Sara"}`, string(resp.ToolCalls[0].Arguments))
	assert.Equal(t, req.Context, resp.ToolCalls[0].Context)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "planner-model", body["model"])
	assert.Len(t, body["tools"], len(tool.AllNames))
	assert.Len(t, body["messages"], 2)
	assert.EqualValues(t, 0, body["temperature"])
}

func TestOpenAIPlannerValidation(t *testing.T) {
	t.Parallel()

	client := openai.NewClient(option.WithAPIKey("k"))
	_, err := NewOpenAIPlanner(nil, "m", newRegistry(t), testPrompt)
	assert.ErrorIs(t, err, contractx.ErrValidation)
	_, err = NewOpenAIPlanner(&client, " ", newRegistry(t), testPrompt)
	assert.ErrorIs(t, err, contractx.ErrValidation)
}
