package entities

// LeaderboardEntry is one ranked row of the points leaderboard
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	TotalPoints int64  `json:"total_points"`
}
