package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/zzzzzahd/draft-play-interno/models"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	UpdateScore(ctx context.Context, id, scoreA, scoreB int) error
	// Finish фиксирует финальный счёт и исход и переводит матч в
	// состояние finished.
	Finish(ctx context.Context, id, scoreA, scoreB int, outcome models.MatchOutcome) error
	ListByBabaDate(ctx context.Context, babaID int, date time.Time) ([]*models.Match, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (baba_id, draw_result_id, match_date, status, team_a, team_b, score_a, score_b)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		match.BabaID,
		match.DrawResultID,
		match.MatchDate,
		match.Status,
		match.TeamA,
		match.TeamB,
		match.ScoreA,
		match.ScoreB,
	).Scan(&match.ID)
}

func (r *postgresMatchRepository) UpdateScore(ctx context.Context, id, scoreA, scoreB int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE matches SET score_a = $1, score_b = $2 WHERE id = $3`,
		scoreA, scoreB, id,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Finish(ctx context.Context, id, scoreA, scoreB int, outcome models.MatchOutcome) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE matches SET score_a = $1, score_b = $2, outcome = $3, status = $4 WHERE id = $5`,
		scoreA, scoreB, outcome, models.MatchStatusFinished, id,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) ListByBabaDate(ctx context.Context, babaID int, date time.Time) ([]*models.Match, error) {
	query := `
		SELECT id, baba_id, draw_result_id, match_date, status, team_a, team_b,
			score_a, score_b, outcome
		FROM matches
		WHERE baba_id = $1 AND match_date::date = $2::date
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, babaID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var match models.Match
		if scanErr := rows.Scan(
			&match.ID,
			&match.BabaID,
			&match.DrawResultID,
			&match.MatchDate,
			&match.Status,
			&match.TeamA,
			&match.TeamB,
			&match.ScoreA,
			&match.ScoreB,
			&match.Outcome,
		); scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, &match)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}
