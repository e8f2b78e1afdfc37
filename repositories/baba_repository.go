package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/zzzzzahd/draft-play-interno/models"
)

var (
	ErrBabaNotFound           = errors.New("baba not found")
	ErrBabaInviteCodeConflict = errors.New("baba invite code conflict")
)

type BabaRepository interface {
	// Create сохраняет новый баба и заполняет ID и CreatedAt.
	Create(ctx context.Context, baba *models.Baba) error
	GetByID(ctx context.Context, id int) (*models.Baba, error)
	GetByInviteCode(ctx context.Context, code string) (*models.Baba, error)
	// ListByUser возвращает бабы, где пользователь президент или игрок.
	ListByUser(ctx context.Context, userID int) ([]*models.Baba, error)
	// ListAll используется планировщиком авто-жеребьёвки.
	ListAll(ctx context.Context) ([]*models.Baba, error)
	Update(ctx context.Context, baba *models.Baba) error
	UpdateCrestKey(ctx context.Context, id int, crestKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresBabaRepository struct {
	db *sql.DB
}

func NewPostgresBabaRepository(db *sql.DB) BabaRepository {
	return &postgresBabaRepository{db: db}
}

const babaColumns = `id, name, modality, game_time, game_days, match_duration_seconds,
	players_per_team, min_players_to_start, allow_reserves, draw_strategy,
	invite_code, president_id, crest_key, created_at`

func (r *postgresBabaRepository) Create(ctx context.Context, baba *models.Baba) error {
	query := `
		INSERT INTO babas (name, modality, game_time, game_days, match_duration_seconds,
			players_per_team, min_players_to_start, allow_reserves, draw_strategy,
			invite_code, president_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		baba.Name,
		baba.Modality,
		baba.GameTime,
		pq.Int64Array(intsToInt64s(baba.GameDays)),
		baba.MatchDurationSeconds,
		baba.PlayersPerTeam,
		baba.MinPlayersToStart,
		baba.AllowReserves,
		baba.DrawStrategy,
		baba.InviteCode,
		baba.PresidentID,
	).Scan(&baba.ID, &baba.CreatedAt)

	if err != nil {
		if isUniqueViolation(err, "babas_invite_code_key") {
			return ErrBabaInviteCodeConflict
		}
		return err
	}
	return nil
}

func (r *postgresBabaRepository) GetByID(ctx context.Context, id int) (*models.Baba, error) {
	query := `SELECT ` + babaColumns + ` FROM babas WHERE id = $1`
	return scanBaba(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresBabaRepository) GetByInviteCode(ctx context.Context, code string) (*models.Baba, error) {
	query := `SELECT ` + babaColumns + ` FROM babas WHERE invite_code = $1`
	return scanBaba(r.db.QueryRowContext(ctx, query, code))
}

func (r *postgresBabaRepository) ListByUser(ctx context.Context, userID int) ([]*models.Baba, error) {
	query := `
		SELECT DISTINCT b.id, b.name, b.modality, b.game_time, b.game_days,
			b.match_duration_seconds, b.players_per_team, b.min_players_to_start,
			b.allow_reserves, b.draw_strategy, b.invite_code, b.president_id,
			b.crest_key, b.created_at
		FROM babas b
		LEFT JOIN players p ON p.baba_id = b.id
		WHERE b.president_id = $1 OR p.user_id = $1
		ORDER BY b.id`
	return r.queryBabas(ctx, query, userID)
}

func (r *postgresBabaRepository) ListAll(ctx context.Context) ([]*models.Baba, error) {
	query := `SELECT ` + babaColumns + ` FROM babas ORDER BY id`
	return r.queryBabas(ctx, query)
}

func (r *postgresBabaRepository) Update(ctx context.Context, baba *models.Baba) error {
	query := `
		UPDATE babas
		SET name = $1, modality = $2, game_time = $3, game_days = $4,
			match_duration_seconds = $5, players_per_team = $6,
			min_players_to_start = $7, allow_reserves = $8, draw_strategy = $9
		WHERE id = $10`

	result, err := r.db.ExecContext(ctx, query,
		baba.Name,
		baba.Modality,
		baba.GameTime,
		pq.Int64Array(intsToInt64s(baba.GameDays)),
		baba.MatchDurationSeconds,
		baba.PlayersPerTeam,
		baba.MinPlayersToStart,
		baba.AllowReserves,
		baba.DrawStrategy,
		baba.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrBabaNotFound)
}

func (r *postgresBabaRepository) UpdateCrestKey(ctx context.Context, id int, crestKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE babas SET crest_key = $1 WHERE id = $2`, crestKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrBabaNotFound)
}

func (r *postgresBabaRepository) Delete(ctx context.Context, id int) error {
	// Зависимые строки (players, confirmations, draws, matches)
	// удаляются каскадом на уровне схемы.
	result, err := r.db.ExecContext(ctx, `DELETE FROM babas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrBabaNotFound)
}

func (r *postgresBabaRepository) queryBabas(ctx context.Context, query string, args ...interface{}) ([]*models.Baba, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	babas := make([]*models.Baba, 0)
	for rows.Next() {
		baba, scanErr := scanBabaRow(rows.Scan)
		if scanErr != nil {
			return nil, scanErr
		}
		babas = append(babas, baba)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return babas, nil
}

func scanBaba(row *sql.Row) (*models.Baba, error) {
	baba, err := scanBabaRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBabaNotFound
		}
		return nil, err
	}
	return baba, nil
}

func scanBabaRow(scan func(dest ...interface{}) error) (*models.Baba, error) {
	baba := &models.Baba{}
	var gameDays pq.Int64Array
	err := scan(
		&baba.ID,
		&baba.Name,
		&baba.Modality,
		&baba.GameTime,
		&gameDays,
		&baba.MatchDurationSeconds,
		&baba.PlayersPerTeam,
		&baba.MinPlayersToStart,
		&baba.AllowReserves,
		&baba.DrawStrategy,
		&baba.InviteCode,
		&baba.PresidentID,
		&baba.CrestKey,
		&baba.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	baba.GameDays = int64sToInts(gameDays)
	return baba, nil
}
