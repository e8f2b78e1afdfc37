package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/zzzzzahd/draft-play-interno/models"
)

var (
	ErrPlayerNotFound    = errors.New("player not found")
	ErrPlayerConflict    = errors.New("player already exists in this baba")
	ErrPlayerBabaInvalid = errors.New("player baba invalid")
)

type PlayerRepository interface {
	// Create сохраняет игрока; нарушение уникальности (baba_id, user_id)
	// возвращается как ErrPlayerConflict.
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	GetByBabaAndUser(ctx context.Context, babaID, userID int) (*models.Player, error)
	ListByBaba(ctx context.Context, babaID int) ([]*models.Player, error)
	Delete(ctx context.Context, id int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (baba_id, user_id, name, position)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		player.BabaID,
		player.UserID,
		player.Name,
		player.Position,
	).Scan(&player.ID, &player.CreatedAt)

	if err != nil {
		if isUniqueViolation(err, "players_baba_id_user_id_key") {
			return ErrPlayerConflict
		}
		if isForeignKeyViolation(err) {
			return ErrPlayerBabaInvalid
		}
		return err
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `
		SELECT id, baba_id, user_id, name, position, created_at
		FROM players
		WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresPlayerRepository) GetByBabaAndUser(ctx context.Context, babaID, userID int) (*models.Player, error) {
	query := `
		SELECT id, baba_id, user_id, name, position, created_at
		FROM players
		WHERE baba_id = $1 AND user_id = $2`
	return r.scanOne(r.db.QueryRowContext(ctx, query, babaID, userID))
}

func (r *postgresPlayerRepository) ListByBaba(ctx context.Context, babaID int) ([]*models.Player, error) {
	query := `
		SELECT id, baba_id, user_id, name, position, created_at
		FROM players
		WHERE baba_id = $1
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, babaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		var player models.Player
		if scanErr := rows.Scan(
			&player.ID,
			&player.BabaID,
			&player.UserID,
			&player.Name,
			&player.Position,
			&player.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		players = append(players, &player)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) scanOne(row *sql.Row) (*models.Player, error) {
	player := &models.Player{}
	err := row.Scan(
		&player.ID,
		&player.BabaID,
		&player.UserID,
		&player.Name,
		&player.Position,
		&player.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}
