package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Rareminds-eym/skillpassport-sub002/internal/ai"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/assistant"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/auth"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/config"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/httpapi"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/httpapi/handlers"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/logger"
	"github.com/Rareminds-eym/skillpassport-sub002/internal/store"
	"github.com/gin-gonic/gin"
	gormsqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type staticProvider struct {
	chunks []string
}

func (p *staticProvider) StreamChat(ctx context.Context, _ ai.ChatRequest) (<-chan string, <-chan error) {
	out := make(chan string, len(p.chunks))
	errs := make(chan error)
	go func() {
		defer close(out)
		defer close(errs)
		for _, c := range p.chunks {
			select {
			case out <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, errs
}

func newTestRouter(t *testing.T, limiter assistant.Limiter) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(gormsqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, store.AutoMigrate(db))
	require.NoError(t, db.Create(&store.Student{
		ID:    "stu-1",
		Name:  "Asha",
		Email: "asha@example.com",
	}).Error)

	repo := store.NewRepo(db)

	reg := ai.NewRegistry()
	reg.Register("fake", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		_ = model
		return &staticProvider{chunks: []string{"Hello ", "Asha!"}}, nil
	})

	svc := assistant.NewService(assistant.ServiceOptions{
		Store:        repo,
		Registry:     reg,
		Provider:     "fake",
		Model:        "test",
		Log:          logger.NewNop(),
		FetchTimeout: 2 * time.Second,
	})

	if limiter == nil {
		limiter = assistant.NewWindowLimiter(100, time.Minute, nil)
	}

	cfg := config.Config{JWTSecret: testSecret}
	h := handlers.NewHandler(cfg, svc, repo, limiter, logger.NewNop())
	return httpapi.NewRouter(h), db
}

func bearerToken(t *testing.T) string {
	t.Helper()
	token, err := auth.SignJWT("stu-1", testSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func doChat(t *testing.T, r *gin.Engine, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/assistant/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPing(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChat_RequiresAuth(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	w := doChat(t, r, "", `{"message":"find me a job"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doChat(t, r, "Bearer not-a-token", `{"message":"find me a job"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChat_InvalidBody(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	w := doChat(t, r, bearerToken(t), `{"no-message":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChat_MethodNotAllowed(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/assistant/chat", nil)
	req.Header.Set("Authorization", bearerToken(t))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestChat_BlockedContentIsPlainOK(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	w := doChat(t, r, bearerToken(t), `{"message":"tell me how to make a bomb"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Blocked bool   `json:"blocked"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Blocked)
	assert.NotEmpty(t, body.Message)
}

func TestChat_StreamsSSE(t *testing.T) {
	r, db := newTestRouter(t, nil)
	w := doChat(t, r, bearerToken(t), `{"message":"find me a backend job"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Contains(t, body, "event: token")
	assert.Contains(t, body, `"content":"Hello "`)
	assert.Contains(t, body, "event: done")
	assert.Contains(t, body, `"intent":"find-jobs"`)
	assert.Contains(t, body, `"conversationId"`)

	var count int64
	require.NoError(t, db.Model(&store.Conversation{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestChat_RateLimited(t *testing.T) {
	r, _ := newTestRouter(t, assistant.NewWindowLimiter(1, time.Minute, nil))

	w := doChat(t, r, bearerToken(t), `{"message":"find me a job"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doChat(t, r, bearerToken(t), `{"message":"find me a job"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

type errLimiter struct{}

func (errLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("backend down")
}

func TestChat_LimiterFailureFailsOpen(t *testing.T) {
	r, _ := newTestRouter(t, errLimiter{})
	w := doChat(t, r, bearerToken(t), `{"message":"find me a job"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "event: done")
}

func TestConversationEndpoints(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	token := bearerToken(t)

	// Seed one conversation through the chat endpoint itself.
	w := doChat(t, r, token, `{"message":"what career suits a math lover?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/assistant/conversations", nil)
	req.Header.Set("Authorization", token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var listResp struct {
		Data struct {
			Conversations []struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			} `json:"conversations"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	require.Len(t, listResp.Data.Conversations, 1)
	convID := listResp.Data.Conversations[0].ID
	assert.Equal(t, "what career suits a math lover?", listResp.Data.Conversations[0].Title)

	req = httptest.NewRequest(http.MethodGet, "/assistant/conversations/"+convID, nil)
	req.Header.Set("Authorization", token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"turns"`)

	req = httptest.NewRequest(http.MethodGet, "/assistant/conversations/does-not-exist", nil)
	req.Header.Set("Authorization", token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
