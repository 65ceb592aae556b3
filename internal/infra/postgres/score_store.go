package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"atpl-quiz-service/internal/domain"
)

// ScoreStore is the Postgres-backed scores collection. The answers history
// lives in a JSONB column so appends stay atomic per statement, keeping the
// append-only document shape.
type ScoreStore struct {
	pool *pgxpool.Pool
}

func NewScoreStore(pool *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

func (s *ScoreStore) Upsert(ctx context.Context, rec domain.ScoreRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO scores (user_id, score, total_questions, last_update)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE
		 SET score=EXCLUDED.score,
		     total_questions=EXCLUDED.total_questions,
		     last_update=EXCLUDED.last_update`,
		rec.UserID, rec.Score, rec.TotalQuestions, rec.LastUpdate,
	)
	if err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}

func (s *ScoreStore) AppendAnswer(ctx context.Context, userID string, ev domain.AnswerEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE scores SET answers = answers || $2::jsonb, last_update=$3 WHERE user_id=$1`,
		userID, data, ev.At,
	)
	if err != nil {
		return fmt.Errorf("append answer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		_, err = s.pool.Exec(ctx,
			`INSERT INTO scores (user_id, score, total_questions, last_update, answers)
			 VALUES ($1, 0, 0, $2, jsonb_build_array($3::jsonb))
			 ON CONFLICT (user_id) DO UPDATE
			 SET answers = scores.answers || EXCLUDED.answers,
			     last_update = EXCLUDED.last_update`,
			userID, ev.At, data,
		)
		if err != nil {
			return fmt.Errorf("append answer: %w", err)
		}
	}
	return nil
}

func (s *ScoreStore) List(ctx context.Context) ([]domain.ScoreRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, score, total_questions, last_update, answers FROM scores ORDER BY user_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var records []domain.ScoreRecord
	for rows.Next() {
		var (
			rec domain.ScoreRecord
			raw []byte
		)
		if err := rows.Scan(&rec.UserID, &rec.Score, &rec.TotalQuestions, &rec.LastUpdate, &raw); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &rec.Answers); err != nil {
				return nil, fmt.Errorf("unmarshal answers: %w", err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *ScoreStore) ResetAll(ctx context.Context, totalQuestions int, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE scores SET score=0, total_questions=$1, last_update=$2`,
		totalQuestions, at,
	)
	if err != nil {
		return fmt.Errorf("reset all scores: %w", err)
	}
	return nil
}
