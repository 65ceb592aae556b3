package domain

import "time"

// Question models an MCQ question loaded from a JSON file. The JSON keys
// match the on-disk question file format.
type Question struct {
	Text        string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

// AnswerEvent records a single submission. Events are append-only and
// ordered by submission time.
type AnswerEvent struct {
	QuestionIndex int       `json:"question_index"`
	QuestionText  string    `json:"question_text"`
	Choice        string    `json:"choice"`
	Correct       bool      `json:"correct"`
	At            time.Time `json:"at"`
}

// ScoreRecord is the persisted score document for one user, upserted on
// every answer submission.
type ScoreRecord struct {
	UserID         string        `json:"user_id"`
	Score          int           `json:"score"`
	TotalQuestions int           `json:"total_questions"`
	LastUpdate     time.Time     `json:"last_update"`
	Answers        []AnswerEvent `json:"answers"`
}

// User is a registered quiz user. The password is stored only as a SHA-256
// hex digest; plaintext is never persisted.
type User struct {
	UserID         string    `json:"user_id"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	LastActive     time.Time `json:"last_active"`
}

// ChatMessage is one entry in the shared chat widget. The collection keeps
// at most the four most recent messages.
type ChatMessage struct {
	UserID  string    `json:"user_id"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Standing is one leaderboard row: ordinal rank, score and online status.
type Standing struct {
	Rank   string `json:"rank"`
	UserID string `json:"user_id"`
	Score  int    `json:"score"`
	Online bool   `json:"online"`
}
