package httpapi

import (
	"net/http"

	"github.com/Rareminds-eym/skillpassport-sub002/internal/common"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/httpapi/handlers"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/httpapi/middleware"
	"github.com/gin-gonic/gin"
)

func NewRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery(h.Log))
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/ping", h.Ping)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(h.Cfg.JWTSecret))
	authGroup.POST("/assistant/chat", h.Chat)
	authGroup.GET("/assistant/conversations", h.ListConversations)
	authGroup.GET("/assistant/conversations/:id", h.GetConversation)

	return r
}
