package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusFinished   MatchStatus = "finished"
)

// MatchOutcome фиксирует исход завершённого матча. Ничья по времени —
// отдельный исход, отличный от победы.
type MatchOutcome string

const (
	OutcomeTeamAWin MatchOutcome = "team_a_win"
	OutcomeTeamBWin MatchOutcome = "team_b_win"
	OutcomeDraw     MatchOutcome = "draw"
)

type Match struct {
	ID           int         `json:"id" db:"id"`
	BabaID       int         `json:"baba_id" db:"baba_id"`
	DrawResultID int         `json:"draw_result_id" db:"draw_result_id"`
	MatchDate    time.Time   `json:"match_date" db:"match_date"`
	Status       MatchStatus `json:"status" db:"status"`

	// Команды указываются по имени из жеребьёвки дня.
	TeamA string `json:"team_a" db:"team_a"`
	TeamB string `json:"team_b" db:"team_b"`

	ScoreA  int           `json:"score_a" db:"score_a"`
	ScoreB  int           `json:"score_b" db:"score_b"`
	Outcome *MatchOutcome `json:"outcome,omitempty" db:"outcome"`
}
