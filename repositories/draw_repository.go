package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zzzzzahd/draft-play-interno/models"
)

var ErrDrawNotFound = errors.New("draw result not found")

type DrawRepository interface {
	// ReplaceForDate атомарно замещает результат жеребьёвки на дату:
	// прежний результат (если был) удаляется в той же транзакции.
	ReplaceForDate(ctx context.Context, draw *models.DrawResult) error
	GetByBabaDate(ctx context.Context, babaID int, drawDate time.Time) (*models.DrawResult, error)
	ExistsForDate(ctx context.Context, babaID int, drawDate time.Time) (bool, error)
	DeleteForDate(ctx context.Context, babaID int, drawDate time.Time) error
}

type postgresDrawRepository struct {
	db *sql.DB
}

func NewPostgresDrawRepository(db *sql.DB) DrawRepository {
	return &postgresDrawRepository{db: db}
}

func (r *postgresDrawRepository) ReplaceForDate(ctx context.Context, draw *models.DrawResult) error {
	// Составы хранятся как JSONB: схема команд целиком принадлежит
	// движку жеребьёвки, БД их не интерпретирует.
	teamsJSON, err := json.Marshal(draw.Teams)
	if err != nil {
		return fmt.Errorf("failed to marshal draw teams: %w", err)
	}
	reserves := draw.Reserves
	if reserves == nil {
		reserves = []models.Player{}
	}
	reservesJSON, err := json.Marshal(reserves)
	if err != nil {
		return fmt.Errorf("failed to marshal draw reserves: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM draw_results WHERE baba_id = $1 AND draw_date = $2`,
		draw.BabaID, draw.DrawDate,
	); err != nil {
		return err
	}

	query := `
		INSERT INTO draw_results (baba_id, draw_date, players_per_team, strategy,
			total_confirmed, teams, reserves)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	if err = tx.QueryRowContext(ctx, query,
		draw.BabaID,
		draw.DrawDate,
		draw.PlayersPerTeam,
		draw.Strategy,
		draw.TotalConfirmed,
		teamsJSON,
		reservesJSON,
	).Scan(&draw.ID, &draw.CreatedAt); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *postgresDrawRepository) GetByBabaDate(ctx context.Context, babaID int, drawDate time.Time) (*models.DrawResult, error) {
	query := `
		SELECT id, baba_id, draw_date, players_per_team, strategy,
			total_confirmed, teams, reserves, created_at
		FROM draw_results
		WHERE baba_id = $1 AND draw_date = $2`

	draw := &models.DrawResult{}
	var teamsJSON, reservesJSON []byte
	err := r.db.QueryRowContext(ctx, query, babaID, drawDate).Scan(
		&draw.ID,
		&draw.BabaID,
		&draw.DrawDate,
		&draw.PlayersPerTeam,
		&draw.Strategy,
		&draw.TotalConfirmed,
		&teamsJSON,
		&reservesJSON,
		&draw.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDrawNotFound
		}
		return nil, err
	}

	if err = json.Unmarshal(teamsJSON, &draw.Teams); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draw teams: %w", err)
	}
	if err = json.Unmarshal(reservesJSON, &draw.Reserves); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draw reserves: %w", err)
	}
	return draw, nil
}

func (r *postgresDrawRepository) ExistsForDate(ctx context.Context, babaID int, drawDate time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM draw_results WHERE baba_id = $1 AND draw_date = $2)`,
		babaID, drawDate,
	).Scan(&exists)
	return exists, err
}

func (r *postgresDrawRepository) DeleteForDate(ctx context.Context, babaID int, drawDate time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM draw_results WHERE baba_id = $1 AND draw_date = $2`,
		babaID, drawDate,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrDrawNotFound)
}
