package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Rareminds-eym/skillpassport-sub002/internal/assistant"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/common"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/store"
	"github.com/gin-gonic/gin"
)

type chatReq struct {
	ConversationID string   `json:"conversationId"`
	Message        string   `json:"message" binding:"required"`
	SelectedChips  []string `json:"selectedChips"`
}

// Chat runs one assistant exchange and streams the reply as SSE.
// Guardrail rejections come back as a plain 200 JSON body so the
// client renders them like any other assistant message.
func (h *Handler) Chat(c *gin.Context) {
	sid, okk := studentIDFromContext(c)
	if !okk {
		unauthorized(c)
		return
	}

	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	ctx := c.Request.Context()

	// Fail open on limiter backend errors; dropping messages because
	// the counter store is down is worse than briefly not limiting.
	allowed, err := h.Limiter.Allow(ctx, sid)
	if err != nil {
		h.Log.Warn("rate limiter unavailable", "student_id", sid, "err", err)
		allowed = true
	}
	if !allowed {
		common.Fail(c, http.StatusTooManyRequests, 42901, "too many messages, slow down")
		return
	}

	blocked, events, err := h.Svc.HandleMessage(ctx, sid, assistant.ChatInput{
		ConversationID: req.ConversationID,
		Message:        req.Message,
		SelectedChips:  req.SelectedChips,
	})
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrEmptyMessage):
			common.Fail(c, http.StatusBadRequest, 10002, "message is empty")
		case errors.Is(err, assistant.ErrConversationMissing):
			common.Fail(c, http.StatusNotFound, 40401, "conversation not found")
		case errors.Is(err, assistant.ErrProfileUnavailable):
			common.Fail(c, http.StatusInternalServerError, 50003, "unable to load student profile")
		default:
			h.Log.Error("chat request failed", "student_id", sid, "err", err)
			common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		}
		return
	}

	if blocked != nil {
		c.JSON(http.StatusOK, gin.H{
			"blocked": true,
			"message": blocked.Message,
		})
		return
	}

	// SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // helpful if behind nginx
	c.Status(http.StatusOK)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		fmt.Fprintf(c.Writer, "event: error\ndata: {\"type\":\"error\",\"message\":\"streaming unsupported\"}\n\n")
		return
	}

	writeJSON := func(event string, payload any) {
		b, err := json.Marshal(payload)
		if err != nil {
			fmt.Fprintf(c.Writer, "event: error\ndata: {\"type\":\"error\",\"message\":\"json marshal failed\"}\n\n")
			flusher.Flush()
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\n", event)
		fmt.Fprintf(c.Writer, "data: %s\n\n", string(b))
		flusher.Flush()
	}

	// heartbeat ticker (keeps connections alive)
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Type {
			case assistant.EventToken:
				writeJSON("token", gin.H{
					"type":    "token",
					"content": ev.Content,
				})
			case assistant.EventDone:
				writeJSON("done", gin.H{
					"type":             "done",
					"conversationId":   ev.Done.ConversationID,
					"messageId":        ev.Done.MessageID,
					"intent":           ev.Done.Intent,
					"intentConfidence": ev.Done.IntentConfidence,
					"phase":            ev.Done.Phase,
					"hasAssessment":    ev.Done.HasAssessment,
					"executionTimeMs":  ev.Done.ExecutionTimeMs,
				})
				return
			case assistant.EventError:
				writeJSON("error", gin.H{
					"type":    "error",
					"message": ev.Err,
				})
				return
			}

		case <-ticker.C:
			writeJSON("ping", gin.H{
				"type": "ping",
				"ts":   time.Now().Unix(),
			})

		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) ListConversations(c *gin.Context) {
	sid, okk := studentIDFromContext(c)
	if !okk {
		unauthorized(c)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	convs, err := h.Repo.ListConversations(c.Request.Context(), sid, limit)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to list conversations")
		return
	}

	common.OK(c, gin.H{"conversations": convs})
}

func (h *Handler) GetConversation(c *gin.Context) {
	sid, okk := studentIDFromContext(c)
	if !okk {
		unauthorized(c)
		return
	}

	id := c.Param("id")
	if id == "" {
		common.Fail(c, http.StatusBadRequest, 10003, "conversation id required")
		return
	}

	conv, err := h.Repo.GetConversation(c.Request.Context(), id, sid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "conversation not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to load conversation")
		return
	}

	common.OK(c, gin.H{"conversation": conv})
}
