package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	"github.com/tanpawarit/Chative-Airline-Assistant/agent/tool"
)

type OpenAIOption func(*OpenAIPlanner)

func WithTemperature(t float32) OpenAIOption {
	return func(p *OpenAIPlanner) {
		p.temperature = &t
	}
}

func WithMaxTokens(n int) OpenAIOption {
	return func(p *OpenAIPlanner) {
		if n > 0 {
			p.maxTokens = n
		}
	}
}

// OpenAIPlanner calls the chat completions API directly with function tools
// built from the registry's JSON schemas.
type OpenAIPlanner struct {
	client      *openai.Client
	model       string
	system      string
	tools       []openai.ChatCompletionToolParam
	temperature *float32
	maxTokens   int
}

var _ contractx.Planner = (*OpenAIPlanner)(nil)

func NewOpenAIPlanner(client *openai.Client, model string, registry *tool.Registry, systemPrompt string, opts ...OpenAIOption) (*OpenAIPlanner, error) {
	switch {
	case client == nil:
		return nil, fmt.Errorf("%w: openai client is required", contractx.ErrValidation)
	case strings.TrimSpace(model) == "":
		return nil, fmt.Errorf("%w: model is required", contractx.ErrValidation)
	case registry == nil:
		return nil, fmt.Errorf("%w: tool registry is required", contractx.ErrValidation)
	case systemPrompt == "":
		return nil, fmt.Errorf("%w: planner", contractx.ErrPromptMissing)
	}

	p := &OpenAIPlanner{
		client: client,
		model:  strings.TrimSpace(model),
		system: systemPrompt,
		tools:  FunctionTools(registry),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// FunctionTools renders the catalog as chat completion function tools.
func FunctionTools(registry *tool.Registry) []openai.ChatCompletionToolParam {
	defs := registry.Definitions()
	out := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, d := range defs {
		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        string(d.Name),
				Description: openai.String(d.Description),
				Parameters:  openai.FunctionParameters(d.JSONSchema()),
			},
		})
	}
	return out
}

func (p *OpenAIPlanner) Plan(ctx context.Context, req contractx.PlannerRequest) (contractx.PlannerResponse, error) {
	input, err := buildInput(req)
	if err != nil {
		return contractx.PlannerResponse{}, err
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.system),
			openai.UserMessage(input),
		},
		Tools: p.tools,
	}
	if p.temperature != nil {
		params.Temperature = openai.Float(float64(*p.temperature))
	}
	if p.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(p.maxTokens))
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return contractx.PlannerResponse{}, fmt.Errorf("%w: chat completion: %v", contractx.ErrModelInvoke, err)
	}
	if len(completion.Choices) == 0 {
		return contractx.PlannerResponse{}, fmt.Errorf("%w: completion has no choices", contractx.ErrSchemaViolation)
	}

	msg := completion.Choices[0].Message
	resp := contractx.PlannerResponse{Message: msg.Content}
	for _, tc := range msg.ToolCalls {
		resp.ToolCalls = append(resp.ToolCalls, toolCall(tc.Function.Name, tc.Function.Arguments, req.Context))
	}
	return finish(resp)
}
