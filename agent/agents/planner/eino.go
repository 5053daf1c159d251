package planner

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	"github.com/tanpawarit/Chative-Airline-Assistant/agent/tool"
)

// EinoPlanner runs prompt -> tool-bound chat model as an eino graph.
type EinoPlanner struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

var _ contractx.Planner = (*EinoPlanner)(nil)

func NewEinoPlanner(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	registry *tool.Registry,
	systemPrompt string,
) (*EinoPlanner, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	if registry == nil {
		return nil, fmt.Errorf("%w: tool registry is required", contractx.ErrValidation)
	}
	if systemPrompt == "" {
		return nil, fmt.Errorf("%w: planner", contractx.ErrPromptMissing)
	}

	bound, err := chatModel.WithTools(registry.ToolInfos())
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools: %v", contractx.ErrModelInvoke, err)
	}
	runner, err := compileToolPlanningGraph(ctx, bound, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile planner graph: %v", contractx.ErrModelInvoke, err)
	}
	return &EinoPlanner{runner: runner}, nil
}

func (p *EinoPlanner) Plan(ctx context.Context, req contractx.PlannerRequest) (contractx.PlannerResponse, error) {
	input, err := buildInput(req)
	if err != nil {
		return contractx.PlannerResponse{}, err
	}

	msg, err := p.runner.Invoke(ctx, map[string]any{"input": input})
	if err != nil {
		return contractx.PlannerResponse{}, fmt.Errorf("%w: planner invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return contractx.PlannerResponse{}, fmt.Errorf("%w: planner returned no message", contractx.ErrSchemaViolation)
	}

	resp := contractx.PlannerResponse{Message: msg.Content}
	for _, tc := range msg.ToolCalls {
		resp.ToolCalls = append(resp.ToolCalls, toolCall(tc.Function.Name, tc.Function.Arguments, req.Context))
	}
	return finish(resp)
}

func compileToolPlanningGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add planner prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add planner model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add planner edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add planner edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add planner edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("planner.tool_planning_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile planner graph: %w", err)
	}
	return runner, nil
}
