package models

import "time"

// Modality соответствует ENUM modality в БД.
type Modality string

const (
	ModalityFutsal  Modality = "futsal"
	ModalitySociety Modality = "society"
)

// DrawStrategy определяет, что происходит с игроками, которые не
// помещаются в полные команды при жеребьёвке.
type DrawStrategy string

const (
	// StrategyReserve: лишние игроки становятся резервом.
	StrategyReserve DrawStrategy = "reserve"
	// StrategySubstitute: формируется дополнительная неполная команда.
	StrategySubstitute DrawStrategy = "substitute"
)

// Baba представляет регулярную любительскую игровую группу.
type Baba struct {
	ID       int      `json:"id" db:"id"`
	Name     string   `json:"name" db:"name"`
	Modality Modality `json:"modality" db:"modality"`

	// GameTime хранится как "HH:MM" локального времени.
	GameTime string `json:"game_time" db:"game_time"`
	// GameDays содержит дни недели 0-6 (воскресенье=0).
	// Пустой список означает "игра каждый день".
	GameDays []int `json:"game_days" db:"game_days"`

	MatchDurationSeconds int          `json:"match_duration_seconds" db:"match_duration_seconds"`
	PlayersPerTeam       int          `json:"players_per_team" db:"players_per_team"`
	MinPlayersToStart    int          `json:"min_players_to_start" db:"min_players_to_start"`
	AllowReserves        bool         `json:"allow_reserves" db:"allow_reserves"`
	DrawStrategy         DrawStrategy `json:"draw_strategy" db:"draw_strategy"`

	InviteCode  string    `json:"invite_code" db:"invite_code"`
	PresidentID int       `json:"president_id" db:"president_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	CrestKey *string `json:"-" db:"crest_key"`
	CrestURL *string `json:"crest_url,omitempty" db:"-"`

	// Опциональные связанные сущности (не мапятся напрямую)
	President *User    `json:"president,omitempty" db:"-"`
	Players   []Player `json:"players,omitempty" db:"-"`
}

// MatchDuration возвращает длительность одной партии.
func (b *Baba) MatchDuration() time.Duration {
	return time.Duration(b.MatchDurationSeconds) * time.Second
}
