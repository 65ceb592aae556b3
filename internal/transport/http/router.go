package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the REST and websocket surface onto a gin engine.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)

		api.GET("/sessions/:id", h.session)
		api.POST("/sessions/:id/answers", h.submitAnswer)
		api.POST("/sessions/:id/advance", h.advance)

		api.GET("/leaderboard", h.leaderboard)
		api.GET("/manifest", h.manifest)

		api.GET("/chat", h.recentChat)
		api.POST("/chat", h.postChat)
	}

	router.GET("/ws/chat", h.serveChat)

	return router
}
