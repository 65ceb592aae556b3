package app

import (
	"fmt"
	"sort"
	"time"

	"atpl-quiz-service/internal/domain"
)

// DefaultOnlineWindow is how recently a user must have been active to be
// shown as online.
const DefaultOnlineWindow = 120 * time.Second

// LiveScore is the current user's in-memory session score. It supersedes
// whatever the store holds for that user, which may be stale between
// submissions.
type LiveScore struct {
	UserID string
	Score  int
}

// BuildLeaderboard derives the ranked standings from stored users and score
// records. Users keep their original encounter order on ties (stable sort by
// score descending). When several records exist for a user the maximum score
// wins. The online predicate is inclusive: exactly onlineWindow ago still
// counts as online.
func BuildLeaderboard(users []domain.User, records []domain.ScoreRecord, live *LiveScore, now time.Time, onlineWindow time.Duration) []domain.Standing {
	if onlineWindow <= 0 {
		onlineWindow = DefaultOnlineWindow
	}

	best := make(map[string]int, len(records))
	for _, rec := range records {
		if cur, ok := best[rec.UserID]; !ok || rec.Score > cur {
			best[rec.UserID] = rec.Score
		}
	}
	if live != nil {
		best[live.UserID] = live.Score
	}

	standings := make([]domain.Standing, 0, len(users))
	for _, u := range users {
		standings = append(standings, domain.Standing{
			UserID: u.UserID,
			Score:  best[u.UserID],
			Online: !u.LastActive.IsZero() && now.Sub(u.LastActive) <= onlineWindow,
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})

	for i := range standings {
		standings[i].Rank = Ordinal(i + 1)
	}
	return standings
}

// Ordinal renders n as an English ordinal: 1st, 2nd, 3rd, 4th, ..., 11th,
// 12th, 13th, 21st.
func Ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
