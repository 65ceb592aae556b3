package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"atpl-quiz-service/internal/app"
	"atpl-quiz-service/internal/domain"
)

// Handler exposes the quiz use cases over JSON.
type Handler struct {
	service *app.QuizService
	hub     *ChatHub
	log     *zap.Logger
}

func NewHandler(service *app.QuizService, hub *ChatHub, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, hub: hub, log: log}
}

type credentialsRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.service.Register(c.Request.Context(), req.UserID, req.Password); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "registration successful"})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	sess, err := h.service.Login(c.Request.Context(), req.UserID, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	sessionsStarted.Inc()
	c.JSON(http.StatusOK, gin.H{
		"session_id":      sess.ID,
		"user_id":         sess.UserID,
		"total_questions": len(sess.Questions),
	})
}

// sessionView is the current question panel. Missing data is reported
// per-field instead of failing the whole view.
type sessionView struct {
	SessionID string   `json:"session_id"`
	UserID    string   `json:"user_id"`
	Index     int      `json:"index"`
	Total     int      `json:"total"`
	Question  string   `json:"question"`
	Options   []string `json:"options"`
	Notice    string   `json:"notice,omitempty"`
	Answered  bool     `json:"answered"`
	Choice    string   `json:"choice,omitempty"`
	Feedback  string   `json:"feedback,omitempty"`
	Score     int      `json:"score"`
}

func (h *Handler) session(c *gin.Context) {
	sess, err := h.service.Resume(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(sess))
}

func viewOf(sess *app.Session) sessionView {
	view := sessionView{
		SessionID: sess.ID,
		UserID:    sess.UserID,
		Index:     sess.Current,
		Total:     len(sess.Questions),
		Question:  "No question text available.",
		Options:   []string{},
		Score:     sess.Score,
	}
	if len(sess.Questions) == 0 {
		view.Notice = "No questions configured."
		return view
	}

	q := sess.Questions[sess.Current]
	if q.Text != "" {
		view.Question = q.Text
	}
	if len(q.Options) == 0 {
		view.Notice = "Question has no options configured."
	} else {
		view.Options = q.Options
	}
	view.Answered = sess.Answered[sess.Current]
	view.Choice = sess.Choices[sess.Current]
	view.Feedback = sess.Feedback[sess.Current]
	return view
}

type answerRequest struct {
	Index  int    `json:"index"`
	Choice string `json:"choice"`
}

func (h *Handler) submitAnswer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	out, err := h.service.SubmitAnswer(c.Request.Context(), c.Param("id"), req.Index, req.Choice)
	if err != nil {
		h.writeError(c, err)
		return
	}
	switch {
	case out.AlreadyAnswered:
		answersSubmitted.WithLabelValues("duplicate").Inc()
	case out.Correct:
		answersSubmitted.WithLabelValues("correct").Inc()
	default:
		answersSubmitted.WithLabelValues("wrong").Inc()
	}
	c.JSON(http.StatusOK, out)
}

type advanceRequest struct {
	Direction string `json:"direction"`
}

func (h *Handler) advance(c *gin.Context) {
	var req advanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	dir := app.Direction(req.Direction)
	if dir != app.DirectionNext && dir != app.DirectionPrev {
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction must be next or prev"})
		return
	}
	sess, messages, err := h.service.Advance(c.Request.Context(), c.Param("id"), dir)
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := gin.H{"view": viewOf(sess)}
	if messages != nil {
		resp["chat"] = messages
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) leaderboard(c *gin.Context) {
	standings, err := h.service.Leaderboard(c.Request.Context(), c.Query("session_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": standings})
}

func (h *Handler) manifest(c *gin.Context) {
	manifest, err := h.service.Manifest(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, manifest)
}

func (h *Handler) recentChat(c *gin.Context) {
	messages, err := h.service.Chat().Recent(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (h *Handler) postChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	sess, err := h.service.Resume(c.Request.Context(), req.SessionID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	posted, err := h.service.Chat().Post(c.Request.Context(), sess.UserID, req.Message)
	if err != nil {
		h.writeError(c, err)
		return
	}
	messages, err := h.service.Chat().Recent(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if posted {
		chatMessagesPosted.Inc()
		if h.hub != nil {
			h.hub.Broadcast(messages)
		}
	}
	c.JSON(http.StatusOK, gin.H{"posted": posted, "messages": messages})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrMissingCredentials), errors.Is(err, domain.ErrQuestionIndex):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrUserExists):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrSessionExpired):
		status = http.StatusGone
	}
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
