package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/tanpawarit/Chative-Airline-Assistant/agent/agents/assistant"
	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	statex "github.com/tanpawarit/Chative-Airline-Assistant/agent/state"
	"github.com/tanpawarit/Chative-Airline-Assistant/agent/tool"
)

// Service is the assistant surface the API exposes.
type Service interface {
	HandleToolCall(ctx context.Context, sessionID, name string, args json.RawMessage) (assistant.Reply, error)
	HandleMessage(ctx context.Context, sessionID, text string) (assistant.Reply, error)
	Context(ctx context.Context, sessionID string) (statex.ConversationContext, error)
	UpdateIdentity(ctx context.Context, sessionID string, id statex.Identity) (statex.ConversationContext, error)
	Reset(ctx context.Context, sessionID string) error
	Registry() *tool.Registry
}

var _ Service = (*assistant.Assistant)(nil)

type Handlers struct {
	svc Service
}

func NewHandlers(svc Service) *Handlers {
	return &Handlers{svc: svc}
}

type messageRequest struct {
	Text string `json:"text" binding:"required"`
}

type toolResponse struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	UIHint      string         `json:"uiHint"`
	Parameters  map[string]any `json:"parameters"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) ListTools(c *gin.Context) {
	defs := h.svc.Registry().Definitions()
	out := make([]toolResponse, 0, len(defs))
	for _, d := range defs {
		out = append(out, toolResponse{
			Name:        string(d.Name),
			Description: d.Description,
			UIHint:      string(d.UIHint),
			Parameters:  d.JSONSchema(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"tools": out})
}

// CallTool dispatches the tool named in the path. The body is the raw
// argument bag; an empty body means no arguments.
func (h *Handlers) CallTool(c *gin.Context) {
	args, err := c.GetRawData()
	if err != nil {
		abort(c, http.StatusBadRequest, "invalid_body", "The request body could not be read.")
		return
	}
	reply, err := h.svc.HandleToolCall(c.Request.Context(), c.Param("session_id"), c.Param("tool"), args)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (h *Handlers) PostMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid_body", "Send a JSON body with a non-empty text field.")
		return
	}
	reply, err := h.svc.HandleMessage(c.Request.Context(), c.Param("session_id"), req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (h *Handlers) GetContext(c *gin.Context) {
	ctxv, err := h.svc.Context(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"context": ctxv})
}

func (h *Handlers) PutContext(c *gin.Context) {
	var id statex.Identity
	if err := c.ShouldBindJSON(&id); err != nil {
		abort(c, http.StatusBadRequest, "invalid_body", "The identity could not be parsed.")
		return
	}
	ctxv, err := h.svc.UpdateIdentity(c.Request.Context(), c.Param("session_id"), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"context": ctxv})
}

func (h *Handlers) DeleteContext(c *gin.Context) {
	if err := h.svc.Reset(c.Request.Context(), c.Param("session_id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, assistant.ErrInvalidSession), errors.Is(err, assistant.ErrInvalidMessage),
		errors.Is(err, contractx.ErrValidation):
		abort(c, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, assistant.ErrPlannerUnavailable):
		abort(c, http.StatusNotImplemented, "planner_unavailable", "Free-text messages are not enabled. Call a tool directly.")
	case errors.Is(err, statex.ErrVersionConflict):
		abort(c, http.StatusConflict, "session_conflict", "The session was changed by another request. Please retry.")
	case errors.Is(err, context.DeadlineExceeded):
		abort(c, http.StatusGatewayTimeout, "timeout", "The request took too long to complete. Please try again.")
	case errors.Is(err, contractx.ErrModelInvoke), errors.Is(err, contractx.ErrSchemaViolation):
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("planner failed")
		abort(c, http.StatusBadGateway, "planner_failed", "The assistant could not understand that. Please try again.")
	default:
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("request failed")
		abort(c, http.StatusInternalServerError, "internal", "Something went wrong while processing your request. Please try again.")
	}
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: code, Message: msg})
}
