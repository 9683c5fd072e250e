package handlers

import (
	"net/http"

	"github.com/Rareminds-eym/skillpassport-sub002/internal/assistant"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/common"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/config"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/httpapi/middleware"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/logger"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/store"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	Cfg     config.Config
	Svc     *assistant.Service
	Repo    *store.Repo
	Limiter assistant.Limiter
	Log     *logger.Logger
}

func NewHandler(cfg config.Config, svc *assistant.Service, repo *store.Repo, limiter assistant.Limiter, log *logger.Logger) *Handler {
	return &Handler{Cfg: cfg, Svc: svc, Repo: repo, Limiter: limiter, Log: log}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"message": "pong"})
}

func studentIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(middleware.StudentIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func unauthorized(c *gin.Context) {
	common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
}
