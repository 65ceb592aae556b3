package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"atpl-quiz-service/internal/app"
	"atpl-quiz-service/internal/domain"
	"atpl-quiz-service/internal/infra/memory"
	"atpl-quiz-service/internal/question"
)

type fixedQuestions struct {
	questions []domain.Question
}

func (f fixedQuestions) Questions(context.Context) ([]domain.Question, question.Manifest, error) {
	return f.questions, question.Manifest{
		Files: []question.FileCount{{Subject: "nav", Topic: "Radio Aids", Questions: len(f.questions)}},
		Total: len(f.questions),
	}, nil
}

// answerByText maps question text to the right choice, so tests survive the
// login shuffle.
var answerByText = map[string]string{"Q1": "B", "Q2": "A", "Q3": "C"}

func fixtureQuestions() []domain.Question {
	return []domain.Question{
		{Text: "Q1", Options: []string{"A", "B", "C"}, Answer: "B", Explanation: "Because B."},
		{Text: "Q2", Options: []string{"A", "B", "C"}, Answer: "A"},
		{Text: "Q3", Options: []string{"A", "B", "C"}, Answer: "C"},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := memory.NewUserStore()
	chat := app.NewChatLog(memory.NewChatStore(), users)
	service := app.NewQuizService(app.Config{
		Users:     users,
		Scores:    memory.NewScoreStore(),
		Sessions:  memory.NewSessionStore(),
		Questions: fixedQuestions{questions: fixtureQuestions()},
		Chat:      chat,
	})

	hub := NewChatHub(nil)
	router := NewRouter(NewHandler(service, hub, nil))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestQuizFlow(t *testing.T) {
	server := newTestServer(t)
	base := server.URL + "/api/v1"

	resp, _ := postJSON(t, base+"/auth/register", map[string]string{"user_id": "alice", "password": "secret"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = postJSON(t, base+"/auth/register", map[string]string{"user_id": "alice", "password": "other"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = postJSON(t, base+"/auth/login", map[string]string{"user_id": "alice", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, login := postJSON(t, base+"/auth/login", map[string]string{"user_id": "alice", "password": "secret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sessionID := login["session_id"].(string)
	require.NotEmpty(t, sessionID)
	require.EqualValues(t, 3, login["total_questions"])

	resp, view := getJSON(t, base+"/sessions/"+sessionID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 0, view["index"])
	questionText := view["question"].(string)
	choice, ok := answerByText[questionText]
	require.True(t, ok, "unexpected question %q", questionText)

	resp, answer := postJSON(t, base+"/sessions/"+sessionID+"/answers", map[string]any{"index": 0, "choice": choice})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, answer["correct"])
	require.EqualValues(t, 1, answer["score"])
	require.Equal(t, false, answer["reset"])
	require.Contains(t, answer["feedback"], "Correct!")

	// a repeat with a different choice changes nothing
	resp, answer = postJSON(t, base+"/sessions/"+sessionID+"/answers", map[string]any{"index": 0, "choice": "nonsense"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, answer["already_answered"])
	require.EqualValues(t, 1, answer["score"])

	resp, advance := postJSON(t, base+"/sessions/"+sessionID+"/advance", map[string]string{"direction": "next"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	advView := advance["view"].(map[string]any)
	require.EqualValues(t, 1, advView["index"])

	resp, board := getJSON(t, base+"/leaderboard?session_id="+sessionID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := board["entries"].([]any)
	require.Len(t, entries, 1)
	top := entries[0].(map[string]any)
	require.Equal(t, "1st", top["rank"])
	require.Equal(t, "alice", top["user_id"])
	require.EqualValues(t, 1, top["score"])
	require.Equal(t, true, top["online"])

	resp, manifest := getJSON(t, base+"/manifest")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 3, manifest["total"])
}

func TestChatEndpoints(t *testing.T) {
	server := newTestServer(t)
	base := server.URL + "/api/v1"

	postJSON(t, base+"/auth/register", map[string]string{"user_id": "alice", "password": "secret"})
	_, login := postJSON(t, base+"/auth/login", map[string]string{"user_id": "alice", "password": "secret"})
	sessionID := login["session_id"].(string)

	resp, posted := postJSON(t, base+"/chat", map[string]string{"session_id": sessionID, "message": "  hello  "})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, posted["posted"])

	resp, blank := postJSON(t, base+"/chat", map[string]string{"session_id": sessionID, "message": "   "})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, false, blank["posted"])

	resp, recent := getJSON(t, base+"/chat")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	messages := recent["messages"].([]any)
	require.Len(t, messages, 1)
	first := messages[0].(map[string]any)
	require.Equal(t, "hello", first["message"])
	require.Equal(t, "alice", first["user_id"])
}

func TestSessionErrors(t *testing.T) {
	server := newTestServer(t)
	base := server.URL + "/api/v1"

	resp, _ := getJSON(t, base+"/sessions/nope")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	postJSON(t, base+"/auth/register", map[string]string{"user_id": "alice", "password": "secret"})
	_, login := postJSON(t, base+"/auth/login", map[string]string{"user_id": "alice", "password": "secret"})
	sessionID := login["session_id"].(string)

	resp, _ = postJSON(t, base+"/sessions/"+sessionID+"/answers", map[string]any{"index": 99, "choice": "A"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postJSON(t, base+"/sessions/"+sessionID+"/advance", map[string]string{"direction": "sideways"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatWebSocket(t *testing.T) {
	server := newTestServer(t)
	base := server.URL + "/api/v1"

	postJSON(t, base+"/auth/register", map[string]string{"user_id": "alice", "password": "secret"})
	_, login := postJSON(t, base+"/auth/login", map[string]string{"user_id": "alice", "password": "secret"})
	sessionID := login["session_id"].(string)

	u := "ws" + server.URL[len("http"):] + "/ws/chat?session_id=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	defer conn.Close()

	// the initial frame replays the current (empty) window
	var initial chatEvent
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	require.NoError(t, conn.ReadJSON(&initial))
	require.Equal(t, "chat", initial.Type)
	require.Empty(t, initial.Messages)

	require.NoError(t, conn.WriteJSON(map[string]string{"message": "hello from ws"}))

	var update chatEvent
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	require.NoError(t, conn.ReadJSON(&update))
	require.Equal(t, "chat", update.Type)
	require.Len(t, update.Messages, 1)
	require.Equal(t, "hello from ws", update.Messages[0].Message)
	require.Equal(t, "alice", update.Messages[0].UserID)
}
