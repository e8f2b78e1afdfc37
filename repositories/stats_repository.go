package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zzzzzahd/draft-play-interno/models"
)

// StatField — допустимые счётчики статистики игрока.
type StatField string

const (
	StatGoals   StatField = "goals"
	StatAssists StatField = "assists"
)

type StatsRepository interface {
	// Increment увеличивает счётчик игрока в рамках матча на единицу.
	Increment(ctx context.Context, playerID, matchID int, field StatField) error
	// ListRankingsByBaba агрегирует статистику по всем матчам баба,
	// отсортировано по голам, затем по передачам.
	ListRankingsByBaba(ctx context.Context, babaID int) ([]*models.PlayerRanking, error)
}

type postgresStatsRepository struct {
	db *sql.DB
}

func NewPostgresStatsRepository(db *sql.DB) StatsRepository {
	return &postgresStatsRepository{db: db}
}

func (r *postgresStatsRepository) Increment(ctx context.Context, playerID, matchID int, field StatField) error {
	// Имя колонки интерполируется, поэтому строго по белому списку.
	switch field {
	case StatGoals, StatAssists:
	default:
		return fmt.Errorf("unknown stat field %q", field)
	}

	query := fmt.Sprintf(`
		INSERT INTO player_stats (player_id, match_id, %[1]s)
		VALUES ($1, $2, 1)
		ON CONFLICT (player_id, match_id)
		DO UPDATE SET %[1]s = player_stats.%[1]s + 1`, field)

	_, err := r.db.ExecContext(ctx, query, playerID, matchID)
	return err
}

func (r *postgresStatsRepository) ListRankingsByBaba(ctx context.Context, babaID int) ([]*models.PlayerRanking, error) {
	query := `
		SELECT p.id, p.name, p.position,
			COALESCE(SUM(ps.goals), 0) AS goals,
			COALESCE(SUM(ps.assists), 0) AS assists
		FROM players p
		LEFT JOIN player_stats ps ON ps.player_id = p.id
		WHERE p.baba_id = $1
		GROUP BY p.id, p.name, p.position
		ORDER BY goals DESC, assists DESC, p.name`

	rows, err := r.db.QueryContext(ctx, query, babaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rankings := make([]*models.PlayerRanking, 0)
	for rows.Next() {
		var ranking models.PlayerRanking
		if scanErr := rows.Scan(
			&ranking.PlayerID,
			&ranking.Name,
			&ranking.Position,
			&ranking.Goals,
			&ranking.Assists,
		); scanErr != nil {
			return nil, scanErr
		}
		rankings = append(rankings, &ranking)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return rankings, nil
}
