package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/zzzzzahd/draft-play-interno/models"
)

var (
	ErrConfirmationNotFound = errors.New("confirmation not found")
	// ErrConfirmationConflict — уникальность (baba_id, player_id,
	// game_date) нарушена: игрок уже подтвердил эту дату.
	ErrConfirmationConflict      = errors.New("confirmation already exists")
	ErrConfirmationPlayerInvalid = errors.New("confirmation player invalid")
)

type ConfirmationRepository interface {
	Create(ctx context.Context, confirmation *models.GameConfirmation) error
	GetByPlayerDate(ctx context.Context, babaID, playerID int, gameDate time.Time) (*models.GameConfirmation, error)
	DeleteByPlayerDate(ctx context.Context, babaID, playerID int, gameDate time.Time) error
	// ListByBabaDate возвращает подтверждения с игроками, стабильно
	// упорядоченные по времени подтверждения.
	ListByBabaDate(ctx context.Context, babaID int, gameDate time.Time) ([]*models.GameConfirmation, error)
	CountByBabaDate(ctx context.Context, babaID int, gameDate time.Time) (int, error)
}

type postgresConfirmationRepository struct {
	db *sql.DB
}

func NewPostgresConfirmationRepository(db *sql.DB) ConfirmationRepository {
	return &postgresConfirmationRepository{db: db}
}

func (r *postgresConfirmationRepository) Create(ctx context.Context, confirmation *models.GameConfirmation) error {
	query := `
		INSERT INTO game_confirmations (baba_id, player_id, game_date, confirmed)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		confirmation.BabaID,
		confirmation.PlayerID,
		confirmation.GameDate,
		confirmation.Confirmed,
	).Scan(&confirmation.ID, &confirmation.CreatedAt)

	if err != nil {
		if isUniqueViolation(err, "game_confirmations_baba_id_player_id_game_date_key") {
			return ErrConfirmationConflict
		}
		if isForeignKeyViolation(err) {
			return ErrConfirmationPlayerInvalid
		}
		return err
	}
	return nil
}

func (r *postgresConfirmationRepository) GetByPlayerDate(ctx context.Context, babaID, playerID int, gameDate time.Time) (*models.GameConfirmation, error) {
	query := `
		SELECT id, baba_id, player_id, game_date, confirmed, created_at
		FROM game_confirmations
		WHERE baba_id = $1 AND player_id = $2 AND game_date = $3`

	confirmation := &models.GameConfirmation{}
	err := r.db.QueryRowContext(ctx, query, babaID, playerID, gameDate).Scan(
		&confirmation.ID,
		&confirmation.BabaID,
		&confirmation.PlayerID,
		&confirmation.GameDate,
		&confirmation.Confirmed,
		&confirmation.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConfirmationNotFound
		}
		return nil, err
	}
	return confirmation, nil
}

func (r *postgresConfirmationRepository) DeleteByPlayerDate(ctx context.Context, babaID, playerID int, gameDate time.Time) error {
	query := `
		DELETE FROM game_confirmations
		WHERE baba_id = $1 AND player_id = $2 AND game_date = $3`

	result, err := r.db.ExecContext(ctx, query, babaID, playerID, gameDate)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrConfirmationNotFound)
}

func (r *postgresConfirmationRepository) ListByBabaDate(ctx context.Context, babaID int, gameDate time.Time) ([]*models.GameConfirmation, error) {
	query := `
		SELECT gc.id, gc.baba_id, gc.player_id, gc.game_date, gc.confirmed, gc.created_at,
			p.id, p.baba_id, p.user_id, p.name, p.position, p.created_at
		FROM game_confirmations gc
		JOIN players p ON p.id = gc.player_id
		WHERE gc.baba_id = $1 AND gc.game_date = $2
		ORDER BY gc.created_at, gc.id`

	rows, err := r.db.QueryContext(ctx, query, babaID, gameDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	confirmations := make([]*models.GameConfirmation, 0)
	for rows.Next() {
		var confirmation models.GameConfirmation
		var player models.Player
		if scanErr := rows.Scan(
			&confirmation.ID,
			&confirmation.BabaID,
			&confirmation.PlayerID,
			&confirmation.GameDate,
			&confirmation.Confirmed,
			&confirmation.CreatedAt,
			&player.ID,
			&player.BabaID,
			&player.UserID,
			&player.Name,
			&player.Position,
			&player.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		confirmation.Player = &player
		confirmations = append(confirmations, &confirmation)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return confirmations, nil
}

func (r *postgresConfirmationRepository) CountByBabaDate(ctx context.Context, babaID int, gameDate time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM game_confirmations
		WHERE baba_id = $1 AND game_date = $2`

	var count int
	if err := r.db.QueryRowContext(ctx, query, babaID, gameDate).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
