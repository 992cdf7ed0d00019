package entity

// TimeFrame leaderboard window
type TimeFrame string

const (
	TimeFrameWeek  TimeFrame = "week"
	TimeFrameMonth TimeFrame = "month"
	TimeFrameAll   TimeFrame = "all"
)

// Valid reports whether tf is a known time frame
func (tf TimeFrame) Valid() bool {
	switch tf {
	case TimeFrameWeek, TimeFrameMonth, TimeFrameAll:
		return true
	}
	return false
}

// LeaderboardEntry one ranked user
type LeaderboardEntry struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Avatar             string `json:"avatar"`
	Streak             int    `json:"streak"`
	ConsistencyPercent int    `json:"consistencyPercent"`
	Rank               int    `json:"rank"`
}
