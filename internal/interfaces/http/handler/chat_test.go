package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appchat "github.com/artqa/backend/internal/application/chat"
	domain "github.com/artqa/backend/internal/domain/chat"
	"github.com/artqa/backend/internal/infrastructure/config"
)

type fakeStore struct {
	sessions map[string][]domain.Message
}

func (s *fakeStore) Append(sessionID string, msg domain.Message) error {
	s.sessions[sessionID] = append(s.sessions[sessionID], msg)
	return nil
}

func (s *fakeStore) Get(sessionID string) (*domain.Session, error) {
	msgs, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &domain.Session{ID: sessionID, Messages: msgs}, nil
}

func (s *fakeStore) Recent(sessionID string, maxRounds int) []domain.Message {
	return domain.RecentSuffix(s.sessions[sessionID], maxRounds)
}

func (s *fakeStore) Delete(sessionID string) error {
	delete(s.sessions, sessionID)
	return nil
}

type fakeSearcher struct{}

func (s *fakeSearcher) Search(context.Context, string, int, float32) ([]domain.RetrievedRecord, error) {
	return nil, nil
}

type fakeGenerator struct {
	raw string
	err error
}

func (g *fakeGenerator) Generate(context.Context, string, domain.SamplingConfig) (string, error) {
	return g.raw, g.err
}

// newTestRouter 搭建带问答路由的测试服务
func newTestRouter(t *testing.T, store *fakeStore, gen *fakeGenerator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.ResetDataDir()
	t.Setenv(config.EnvDataDir, t.TempDir())
	t.Cleanup(config.ResetDataDir)

	manager, err := config.NewManager()
	require.NoError(t, err)

	service := appchat.NewService(store, &fakeSearcher{}, gen, nil, manager)
	chatHandler := NewChatHandler(service, manager)

	router := gin.New()
	router.POST("/api/ask", chatHandler.Ask)
	router.GET("/api/history", chatHandler.History)
	router.DELETE("/api/history", chatHandler.Clear)
	return router
}

func doJSON(router *gin.Engine, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestChatHandler_Ask(t *testing.T) {
	store := &fakeStore{sessions: make(map[string][]domain.Message)}
	gen := &fakeGenerator{raw: "[|im_start|]assistant\n这是回答[|im_end|]"}
	router := newTestRouter(t, store, gen)

	w := doJSON(router, "POST", "/api/ask", `{"question":"什么是公共艺术？"}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "这是回答", resp["answer"])
	assert.NotEmpty(t, resp["session_id"])

	// 会话 ID 写入 Cookie
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Equal(t, resp["session_id"], cookies[0].Value)
}

func TestChatHandler_Ask_EmptyQuestion(t *testing.T) {
	store := &fakeStore{sessions: make(map[string][]domain.Message)}
	router := newTestRouter(t, store, &fakeGenerator{raw: "回答"})

	w := doJSON(router, "POST", "/api/ask", `{"question":"   "}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "问题不能为空", resp["error"])
}

func TestChatHandler_Ask_GenerationFailure(t *testing.T) {
	store := &fakeStore{sessions: make(map[string][]domain.Message)}
	gen := &fakeGenerator{err: errors.New("backend down")}
	router := newTestRouter(t, store, gen)

	w := doJSON(router, "POST", "/api/ask", `{"question":"什么是公共艺术？"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "问答处理失败", resp["error"])
	assert.NotEmpty(t, resp["detail"])
}

func TestChatHandler_Ask_ReusesCookieSession(t *testing.T) {
	store := &fakeStore{sessions: make(map[string][]domain.Message)}
	gen := &fakeGenerator{raw: "回答"}
	router := newTestRouter(t, store, gen)

	cookie := &http.Cookie{Name: SessionCookieName, Value: "cookie-session"}
	w := doJSON(router, "POST", "/api/ask", `{"question":"什么是公共艺术？"}`, cookie)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "cookie-session", resp["session_id"])
	assert.Len(t, store.sessions["cookie-session"], 2)
}

func TestChatHandler_History(t *testing.T) {
	store := &fakeStore{sessions: map[string][]domain.Message{
		"s1": {
			domain.NewMessage(domain.RoleUser, "问题一"),
			domain.NewMessage(domain.RoleAssistant, "回答一"),
		},
	}}
	router := newTestRouter(t, store, &fakeGenerator{})

	cookie := &http.Cookie{Name: SessionCookieName, Value: "s1"}
	w := doJSON(router, "GET", "/api/history", "", cookie)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		History struct {
			UserQueries  []string `json:"user_queries"`
			BotResponses []string `json:"bot_responses"`
		} `json:"history"`
		HistoryInfo struct {
			MessageCount int `json:"message_count"`
			TotalLength  int `json:"total_length"`
			MaxMessages  int `json:"max_messages"`
		} `json:"history_info"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"问题一"}, resp.History.UserQueries)
	assert.Equal(t, []string{"回答一"}, resp.History.BotResponses)
	assert.Equal(t, 2, resp.HistoryInfo.MessageCount)
	assert.Equal(t, 6, resp.HistoryInfo.TotalLength)
	assert.Positive(t, resp.HistoryInfo.MaxMessages)
}

func TestChatHandler_History_NoSession(t *testing.T) {
	store := &fakeStore{sessions: make(map[string][]domain.Message)}
	router := newTestRouter(t, store, &fakeGenerator{})

	w := doJSON(router, "GET", "/api/history", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "无效的会话ID", resp["error"])
}

func TestChatHandler_History_UnknownSession(t *testing.T) {
	store := &fakeStore{sessions: make(map[string][]domain.Message)}
	router := newTestRouter(t, store, &fakeGenerator{})

	cookie := &http.Cookie{Name: SessionCookieName, Value: "never-seen"}
	w := doJSON(router, "GET", "/api/history", "", cookie)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "无效的会话ID", resp["error"])
}

func TestChatHandler_Clear(t *testing.T) {
	store := &fakeStore{sessions: map[string][]domain.Message{
		"s1": {domain.NewMessage(domain.RoleUser, "问题")},
	}}
	router := newTestRouter(t, store, &fakeGenerator{})

	cookie := &http.Cookie{Name: SessionCookieName, Value: "s1"}
	w := doJSON(router, "DELETE", "/api/history", "", cookie)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "对话历史已清除", resp["message"])

	// 历史被删除
	_, exists := store.sessions["s1"]
	assert.False(t, exists)

	// Cookie 被置为过期
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}
