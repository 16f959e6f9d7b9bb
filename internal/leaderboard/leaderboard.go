package leaderboard

type LeaderboardEntry struct {
	UserID              int64  `json:"userId" db:"user_id"`
	Username            string `json:"userName" db:"username"`
	Points              int    `json:"points" db:"points"`
	CompletedChallenges int    `json:"completedChallenges" db:"completed_challenges"`
	Rank                int    `json:"rank" db:"rank"`
}

type Leaderboard struct {
	Entries    []*LeaderboardEntry `json:"entries"`
	TotalUsers int                 `json:"totalUsers"`
}
