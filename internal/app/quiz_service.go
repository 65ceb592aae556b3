package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"atpl-quiz-service/internal/domain"
	"atpl-quiz-service/internal/question"
)

// DefaultSessionTimeout is the inactivity window after which a quiz session
// is discarded.
const DefaultSessionTimeout = 300 * time.Second

// ResetScope controls whose stored scores are wiped when a session reaches
// the maximum score: "self" resets only the finishing user's record, "all"
// resets every record.
type ResetScope string

const (
	ResetSelf ResetScope = "self"
	ResetAll  ResetScope = "all"
)

// UserStore abstracts the users collection.
type UserStore interface {
	Create(ctx context.Context, u domain.User) error
	Get(ctx context.Context, userID string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	TouchLastActive(ctx context.Context, userID string, at time.Time) error
}

// ScoreStore abstracts the scores collection. Upsert and AppendAnswer must
// be atomic per record.
type ScoreStore interface {
	Upsert(ctx context.Context, rec domain.ScoreRecord) error
	AppendAnswer(ctx context.Context, userID string, ev domain.AnswerEvent) error
	List(ctx context.Context) ([]domain.ScoreRecord, error)
	ResetAll(ctx context.Context, totalQuestions int, at time.Time) error
}

// SessionStore abstracts where ephemeral quiz sessions live (in-memory,
// Redis with TTL).
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// QuestionSource provides the question set and its file manifest.
type QuestionSource interface {
	Questions(ctx context.Context) ([]domain.Question, question.Manifest, error)
}

// Config wires a QuizService. Zero values fall back to sane defaults.
type Config struct {
	Users     UserStore
	Scores    ScoreStore
	Sessions  SessionStore
	Questions QuestionSource
	Chat      *ChatLog

	SessionTimeout time.Duration
	OnlineWindow   time.Duration
	ResetScope     ResetScope

	Logger *zap.Logger
	Clock  func() time.Time
	Rand   *rand.Rand
}

// QuizService contains the quiz use cases: registration, login, answer
// submission with persistence reconciliation, navigation, leaderboard.
type QuizService struct {
	users     UserStore
	scores    ScoreStore
	sessions  SessionStore
	questions QuestionSource
	chat      *ChatLog

	timeout      time.Duration
	onlineWindow time.Duration
	resetScope   ResetScope

	log   *zap.Logger
	clock func() time.Time
	rnd   *rand.Rand
}

func NewQuizService(c Config) *QuizService {
	s := &QuizService{
		users:        c.Users,
		scores:       c.Scores,
		sessions:     c.Sessions,
		questions:    c.Questions,
		chat:         c.Chat,
		timeout:      c.SessionTimeout,
		onlineWindow: c.OnlineWindow,
		resetScope:   c.ResetScope,
		log:          c.Logger,
		clock:        c.Clock,
		rnd:          c.Rand,
	}
	if s.timeout <= 0 {
		s.timeout = DefaultSessionTimeout
	}
	if s.onlineWindow <= 0 {
		s.onlineWindow = DefaultOnlineWindow
	}
	if s.resetScope == "" {
		s.resetScope = ResetSelf
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// HashPassword is the one-way credential digest: SHA-256 over the UTF-8
// bytes, hex encoded.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Register creates a new user. A taken user ID is rejected without state
// change.
func (s *QuizService) Register(ctx context.Context, userID, password string) error {
	if userID == "" || password == "" {
		return domain.ErrMissingCredentials
	}
	return s.users.Create(ctx, domain.User{
		UserID:         userID,
		HashedPassword: HashPassword(password),
		CreatedAt:      s.clock(),
	})
}

// Login verifies credentials and starts a fresh quiz session over a shuffled
// copy of the question set. The stored score is reset to zero on login, the
// single reconciliation point between a dead browser session and the store.
// Unknown user and wrong password are indistinguishable to the caller.
func (s *QuizService) Login(ctx context.Context, userID, password string) (*Session, error) {
	if userID == "" || password == "" {
		return nil, domain.ErrMissingCredentials
	}

	u, err := s.users.Get(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if u.HashedPassword != HashPassword(password) {
		return nil, domain.ErrInvalidCredentials
	}

	questions, _, err := s.questions.Questions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	shuffled := make([]domain.Question, len(questions))
	copy(shuffled, questions)
	s.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	now := s.clock()
	sess := NewSession(userID, shuffled, now)

	if err := s.scores.Upsert(ctx, domain.ScoreRecord{UserID: userID, LastUpdate: now}); err != nil {
		return nil, fmt.Errorf("reset score: %w", err)
	}
	if err := s.users.TouchLastActive(ctx, userID, now); err != nil {
		return nil, fmt.Errorf("touch last active: %w", err)
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.log.Info("user logged in",
		zap.String("user_id", userID),
		zap.String("session_id", sess.ID),
		zap.Int("questions", len(shuffled)),
	)
	return sess, nil
}

// Resume loads a session by ID, discarding it when the inactivity timeout
// has passed.
func (s *QuizService) Resume(ctx context.Context, sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.clock(), s.timeout) {
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionExpired
	}
	return sess, nil
}

// AnswerOutcome is a SubmitResult plus whether a completion reset fired.
type AnswerOutcome struct {
	SubmitResult
	Reset bool `json:"reset"`
}

// SubmitAnswer applies one submission to the session and reconciles the
// store: the ScoreRecord is upserted, the AnswerEvent appended and the
// user's last_active refreshed. A repeated submission for the same index
// changes nothing and reports AlreadyAnswered. Reaching the maximum score
// resets the stored score(s) per the configured scope and reinitializes the
// session.
func (s *QuizService) SubmitAnswer(ctx context.Context, sessionID string, index int, choice string) (AnswerOutcome, error) {
	sess, err := s.Resume(ctx, sessionID)
	if err != nil {
		return AnswerOutcome{}, err
	}

	res, err := sess.Submit(index, choice)
	if err != nil {
		return AnswerOutcome{}, err
	}
	out := AnswerOutcome{SubmitResult: res}

	now := s.clock()
	sess.Touch(now)

	if !res.AlreadyAnswered {
		total := len(sess.Questions)
		if err := s.scores.Upsert(ctx, domain.ScoreRecord{
			UserID:         sess.UserID,
			Score:          sess.Score,
			TotalQuestions: total,
			LastUpdate:     now,
		}); err != nil {
			return out, fmt.Errorf("upsert score: %w", err)
		}
		if err := s.scores.AppendAnswer(ctx, sess.UserID, domain.AnswerEvent{
			QuestionIndex: index,
			QuestionText:  sess.Questions[index].Text,
			Choice:        choice,
			Correct:       res.Correct,
			At:            now,
		}); err != nil {
			return out, fmt.Errorf("append answer: %w", err)
		}
		if err := s.users.TouchLastActive(ctx, sess.UserID, now); err != nil {
			return out, fmt.Errorf("touch last active: %w", err)
		}

		if sess.Completed() {
			if err := s.resetScores(ctx, sess.UserID, total, now); err != nil {
				return out, err
			}
			sess.Reset()
			out.Reset = true
			s.log.Info("maximum score reached, scores reset",
				zap.String("user_id", sess.UserID),
				zap.String("scope", string(s.resetScope)),
			)
		}
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return out, fmt.Errorf("save session: %w", err)
	}
	return out, nil
}

func (s *QuizService) resetScores(ctx context.Context, userID string, total int, now time.Time) error {
	if s.resetScope == ResetAll {
		if err := s.scores.ResetAll(ctx, total, now); err != nil {
			return fmt.Errorf("reset all scores: %w", err)
		}
		return nil
	}
	if err := s.scores.Upsert(ctx, domain.ScoreRecord{
		UserID:         userID,
		TotalQuestions: total,
		LastUpdate:     now,
	}); err != nil {
		return fmt.Errorf("reset score: %w", err)
	}
	return nil
}

// Advance moves the session through the question sequence. Moving forward
// refreshes the user's last_active and returns the refreshed chat window.
func (s *QuizService) Advance(ctx context.Context, sessionID string, dir Direction) (*Session, []domain.ChatMessage, error) {
	sess, err := s.Resume(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	moved := sess.Advance(dir)
	now := s.clock()
	sess.Touch(now)

	var messages []domain.ChatMessage
	if dir == DirectionNext && moved {
		if err := s.users.TouchLastActive(ctx, sess.UserID, now); err != nil {
			return nil, nil, fmt.Errorf("touch last active: %w", err)
		}
		if s.chat != nil {
			messages, err = s.chat.Recent(ctx)
			if err != nil {
				return nil, nil, fmt.Errorf("refresh chat: %w", err)
			}
		}
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, nil, fmt.Errorf("save session: %w", err)
	}
	return sess, messages, nil
}

// Leaderboard builds the ranked standings. When a session ID is supplied,
// that session's in-memory score supersedes the stored record for its user.
func (s *QuizService) Leaderboard(ctx context.Context, sessionID string) ([]domain.Standing, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	records, err := s.scores.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}

	var live *LiveScore
	if sessionID != "" {
		if sess, err := s.Resume(ctx, sessionID); err == nil {
			live = &LiveScore{UserID: sess.UserID, Score: sess.Score}
		}
	}

	return BuildLeaderboard(users, records, live, s.clock(), s.onlineWindow), nil
}

// Manifest exposes the question file manifest for rendering.
func (s *QuizService) Manifest(ctx context.Context) (question.Manifest, error) {
	_, manifest, err := s.questions.Questions(ctx)
	return manifest, err
}

// Chat exposes the shared chat log.
func (s *QuizService) Chat() *ChatLog {
	return s.chat
}
