package models

import "time"

// GameConfirmation — подтверждение присутствия игрока на игру
// конкретной даты. Уникально по (baba_id, player_id, game_date).
type GameConfirmation struct {
	ID        int       `json:"id" db:"id"`
	BabaID    int       `json:"baba_id" db:"baba_id"`
	PlayerID  int       `json:"player_id" db:"player_id"`
	GameDate  time.Time `json:"game_date" db:"game_date"`
	Confirmed bool      `json:"confirmed" db:"confirmed"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Player *Player `json:"player,omitempty" db:"-"`
}
