package models

import "time"

// Team — одна команда, собранная жеребьёвкой. Starters упорядочены
// в порядке раздачи; Reserves заполняется только при allow_reserves.
type Team struct {
	Name     string   `json:"name"`
	Starters []Player `json:"starters"`
	Reserves []Player `json:"reserves,omitempty"`
}

// DrawResult — результат жеребьёвки. Не более одного на
// (baba_id, draw_date): повторная жеребьёвка замещает прежний.
type DrawResult struct {
	ID             int          `json:"id" db:"id"`
	BabaID         int          `json:"baba_id" db:"baba_id"`
	DrawDate       time.Time    `json:"draw_date" db:"draw_date"`
	PlayersPerTeam int          `json:"players_per_team" db:"players_per_team"`
	Strategy       DrawStrategy `json:"strategy" db:"strategy"`
	TotalConfirmed int          `json:"total_confirmed" db:"total_confirmed"`
	Teams          []Team       `json:"teams" db:"teams"`
	Reserves       []Player     `json:"reserves" db:"reserves"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
}
