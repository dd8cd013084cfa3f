package storage

import "time"

type FeedbackEvent struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"sessionId"`
	Round     int       `db:"round" json:"round"`
	Arm       int       `db:"arm" json:"arm"`
	Genre     string    `db:"genre" json:"genre"`
	Reward    int       `db:"reward" json:"reward"`
	Policy    string    `db:"policy" json:"policy"`
	Date      time.Time `db:"date" json:"date"`
}

type SimulationRun struct {
	ID          string    `db:"id" json:"id"`
	Policy      string    `db:"policy" json:"policy"`
	Rounds      int       `db:"rounds" json:"rounds"`
	Epsilon     float64   `db:"epsilon" json:"epsilon"`
	Seed        int64     `db:"seed" json:"seed"`
	BestArm     int       `db:"best_arm" json:"bestArm"`
	TotalReward float64   `db:"total_reward" json:"totalReward"`
	PctOptimal  float64   `db:"pct_optimal" json:"pctOptimal"`
	Date        time.Time `db:"date" json:"date"`
}
