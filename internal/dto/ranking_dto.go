package dto

import "time"

// RankingFewestEntry is one row of the fewest-attempts leaderboard.
type RankingFewestEntry struct {
	Rank     int    `json:"rank"`
	FullName string `json:"fullName"`
	Attempts int    `json:"attempts"`
}

// RankingEarliestEntry is one row of the earliest-completion leaderboard.
// MarginMs is deadline minus the first successful submission instant and may
// be negative when a deadline was tightened after the fact.
type RankingEarliestEntry struct {
	Rank        int       `json:"rank"`
	FullName    string    `json:"fullName"`
	SubmittedAt time.Time `json:"submittedAt"`
	MarginMs    int64     `json:"marginMs"`
}

// ExerciseRankings carries both leaderboards for one exercise. When the guide
// has no deadline, EarliestCompletion is empty and HasDeadline tells callers
// to suppress that card entirely.
type ExerciseRankings struct {
	HasDeadline        bool                   `json:"hasDeadline"`
	FewestAttempts     []RankingFewestEntry   `json:"fewestAttempts"`
	EarliestCompletion []RankingEarliestEntry `json:"earliestCompletion"`
}
