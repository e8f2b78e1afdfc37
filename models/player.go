package models

import "time"

// Position соответствует ENUM position в БД.
type Position string

const (
	PositionGoleiro Position = "goleiro"
	PositionLinha   Position = "linha"
)

// Player — участник конкретного баба. UserID == nil означает
// "заглушку": игрока, заведённого президентом без аккаунта.
type Player struct {
	ID        int       `json:"id" db:"id"`
	BabaID    int       `json:"baba_id" db:"baba_id"`
	UserID    *int      `json:"user_id,omitempty" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Position  Position  `json:"position" db:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PlayerRanking — агрегированная статистика игрока по всем матчам.
type PlayerRanking struct {
	PlayerID int      `json:"player_id" db:"player_id"`
	Name     string   `json:"name" db:"name"`
	Position Position `json:"position" db:"position"`
	Goals    int      `json:"goals" db:"goals"`
	Assists  int      `json:"assists" db:"assists"`
}
