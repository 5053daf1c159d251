package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RegisterRoutes mounts the session API on rg (typically /v1):
//
//	GET    /v1/tools
//	POST   /v1/sessions/:session_id/tools/:tool
//	POST   /v1/sessions/:session_id/messages
//	GET    /v1/sessions/:session_id/context
//	PUT    /v1/sessions/:session_id/context
//	DELETE /v1/sessions/:session_id/context
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.GET("/tools", h.ListTools)

	sessions := rg.Group("/sessions/:session_id")
	sessions.POST("/tools/:tool", h.CallTool)
	sessions.POST("/messages", h.PostMessage)
	sessions.GET("/context", h.GetContext)
	sessions.PUT("/context", h.PutContext)
	sessions.DELETE("/context", h.DeleteContext)
}

// NewRouter builds the engine with recovery, tracing, request ids, health
// and metrics.
func NewRouter(svc Service, serviceName string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(RequestID(), AccessLog())

	h := NewHandlers(svc)
	router.GET("/healthz", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	RegisterRoutes(router.Group("/v1"), h)
	return router
}
