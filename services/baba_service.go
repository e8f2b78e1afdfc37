package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/zzzzzahd/draft-play-interno/models"
	"github.com/zzzzzahd/draft-play-interno/repositories"
	"github.com/zzzzzahd/draft-play-interno/storage"
)

const (
	inviteCodeLength   = 8
	inviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // без 0/O и 1/I
	maxInviteAttempts  = 3
)

var ErrInviteCodeGeneration = errors.New("failed to generate unique invite code")

type CreateBabaInput struct {
	Name                 string              `json:"name"`
	Modality             models.Modality     `json:"modality"`
	GameTime             string              `json:"game_time"`
	GameDays             []int               `json:"game_days"`
	MatchDurationSeconds int                 `json:"match_duration_seconds"`
	PlayersPerTeam       int                 `json:"players_per_team"`
	MinPlayersToStart    int                 `json:"min_players_to_start"`
	AllowReserves        bool                `json:"allow_reserves"`
	DrawStrategy         models.DrawStrategy `json:"draw_strategy"`

	// Позиция, с которой президент сам входит в состав.
	PresidentPosition models.Position `json:"president_position"`
}

type AddPlayerInput struct {
	Name     string          `json:"name"`
	Position models.Position `json:"position"`
}

type BabaService interface {
	CreateBaba(ctx context.Context, input CreateBabaInput, presidentID int, presidentName string) (*models.Baba, error)
	GetBaba(ctx context.Context, babaID int) (*models.Baba, error)
	ListMyBabas(ctx context.Context, userID int) ([]*models.Baba, error)
	UpdateBaba(ctx context.Context, babaID int, input CreateBabaInput, currentUserID int) (*models.Baba, error)
	DeleteBaba(ctx context.Context, babaID int, currentUserID int) error

	// JoinByInviteCode вставляет пользователя игроком по коду.
	JoinByInviteCode(ctx context.Context, code string, userID int, userName string) (*models.Baba, error)
	// AddPlaceholderPlayer заводит игрока без аккаунта (президент).
	AddPlaceholderPlayer(ctx context.Context, babaID int, input AddPlayerInput, currentUserID int) (*models.Player, error)
	ListPlayers(ctx context.Context, babaID int) ([]*models.Player, error)
	ListRankings(ctx context.Context, babaID int) ([]*models.PlayerRanking, error)

	UploadCrest(ctx context.Context, babaID int, contentType string, file io.Reader, currentUserID int) (*models.Baba, error)
	RemoveCrest(ctx context.Context, babaID int, currentUserID int) error
}

type babaService struct {
	babaRepo   repositories.BabaRepository
	playerRepo repositories.PlayerRepository
	statsRepo  repositories.StatsRepository
	uploader   storage.FileUploader // nil, если хранилище не настроено
}

func NewBabaService(
	babaRepo repositories.BabaRepository,
	playerRepo repositories.PlayerRepository,
	statsRepo repositories.StatsRepository,
	uploader storage.FileUploader,
) BabaService {
	return &babaService{
		babaRepo:   babaRepo,
		playerRepo: playerRepo,
		statsRepo:  statsRepo,
		uploader:   uploader,
	}
}

func generateInviteCode() (string, error) {
	code := make([]byte, inviteCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(inviteCodeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = inviteCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

func validateBabaInput(input *CreateBabaInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return ErrBabaNameRequired
	}
	if input.Modality != models.ModalityFutsal && input.Modality != models.ModalitySociety {
		return ErrValidationFailed
	}
	if _, err := time.Parse("15:04", input.GameTime); err != nil {
		return ErrInvalidGameTime
	}
	for _, d := range input.GameDays {
		if d < 0 || d > 6 {
			return ErrInvalidGameDays
		}
	}
	if input.PlayersPerTeam < 2 || input.PlayersPerTeam > 11 {
		return ErrInvalidPlayersPerTeam
	}
	if input.DrawStrategy != models.StrategyReserve && input.DrawStrategy != models.StrategySubstitute {
		return ErrInvalidDrawStrategy
	}
	if input.MatchDurationSeconds <= 0 {
		return ErrValidationFailed
	}
	if input.MinPlayersToStart < 0 {
		return ErrValidationFailed
	}
	return nil
}

func (s *babaService) CreateBaba(ctx context.Context, input CreateBabaInput, presidentID int, presidentName string) (*models.Baba, error) {
	if err := validateBabaInput(&input); err != nil {
		return nil, err
	}

	position := input.PresidentPosition
	if position != models.PositionGoleiro {
		position = models.PositionLinha
	}

	var baba *models.Baba
	for attempt := 0; attempt < maxInviteAttempts; attempt++ {
		code, err := generateInviteCode()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInviteCodeGeneration, err)
		}

		baba = &models.Baba{
			Name:                 input.Name,
			Modality:             input.Modality,
			GameTime:             input.GameTime,
			GameDays:             input.GameDays,
			MatchDurationSeconds: input.MatchDurationSeconds,
			PlayersPerTeam:       input.PlayersPerTeam,
			MinPlayersToStart:    input.MinPlayersToStart,
			AllowReserves:        input.AllowReserves,
			DrawStrategy:         input.DrawStrategy,
			InviteCode:           code,
			PresidentID:          presidentID,
		}

		err = s.babaRepo.Create(ctx, baba)
		if err == nil {
			break
		}
		if !errors.Is(err, repositories.ErrBabaInviteCodeConflict) {
			return nil, fmt.Errorf("failed to create baba: %w", err)
		}
		baba = nil // конфликт кода, пробуем ещё раз
	}
	if baba == nil {
		return nil, fmt.Errorf("%w after %d attempts", ErrInviteCodeGeneration, maxInviteAttempts)
	}

	// Президент сразу входит в состав как игрок со своим аккаунтом.
	if presidentName == "" {
		presidentName = "Presidente"
	}
	president := &models.Player{
		BabaID:   baba.ID,
		UserID:   &presidentID,
		Name:     presidentName,
		Position: position,
	}
	if err := s.playerRepo.Create(ctx, president); err != nil {
		return nil, fmt.Errorf("failed to add president as player: %w", err)
	}

	return baba, nil
}

func (s *babaService) GetBaba(ctx context.Context, babaID int) (*models.Baba, error) {
	baba, err := s.babaRepo.GetByID(ctx, babaID)
	if err != nil {
		if errors.Is(err, repositories.ErrBabaNotFound) {
			return nil, ErrBabaNotFound
		}
		return nil, fmt.Errorf("failed to get baba %d: %w", babaID, err)
	}

	players, err := s.playerRepo.ListByBaba(ctx, babaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players of baba %d: %w", babaID, err)
	}
	baba.Players = make([]models.Player, len(players))
	for i, p := range players {
		baba.Players[i] = *p
	}

	s.populateCrestURL(baba)
	return baba, nil
}

func (s *babaService) ListMyBabas(ctx context.Context, userID int) ([]*models.Baba, error) {
	babas, err := s.babaRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list babas for user %d: %w", userID, err)
	}
	for _, baba := range babas {
		s.populateCrestURL(baba)
	}
	return babas, nil
}

func (s *babaService) UpdateBaba(ctx context.Context, babaID int, input CreateBabaInput, currentUserID int) (*models.Baba, error) {
	baba, err := s.requirePresident(ctx, babaID, currentUserID)
	if err != nil {
		return nil, err
	}
	if err := validateBabaInput(&input); err != nil {
		return nil, err
	}

	baba.Name = input.Name
	baba.Modality = input.Modality
	baba.GameTime = input.GameTime
	baba.GameDays = input.GameDays
	baba.MatchDurationSeconds = input.MatchDurationSeconds
	baba.PlayersPerTeam = input.PlayersPerTeam
	baba.MinPlayersToStart = input.MinPlayersToStart
	baba.AllowReserves = input.AllowReserves
	baba.DrawStrategy = input.DrawStrategy

	if err := s.babaRepo.Update(ctx, baba); err != nil {
		if errors.Is(err, repositories.ErrBabaNotFound) {
			return nil, ErrBabaNotFound
		}
		return nil, fmt.Errorf("failed to update baba %d: %w", babaID, err)
	}
	s.populateCrestURL(baba)
	return baba, nil
}

func (s *babaService) DeleteBaba(ctx context.Context, babaID int, currentUserID int) error {
	if _, err := s.requirePresident(ctx, babaID, currentUserID); err != nil {
		return err
	}
	if err := s.babaRepo.Delete(ctx, babaID); err != nil {
		if errors.Is(err, repositories.ErrBabaNotFound) {
			return ErrBabaNotFound
		}
		return fmt.Errorf("failed to delete baba %d: %w", babaID, err)
	}
	return nil
}

func (s *babaService) JoinByInviteCode(ctx context.Context, code string, userID int, userName string) (*models.Baba, error) {
	baba, err := s.babaRepo.GetByInviteCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, repositories.ErrBabaNotFound) {
			return nil, ErrInvalidInviteCode
		}
		return nil, fmt.Errorf("failed to look up invite code: %w", err)
	}

	if userName == "" {
		userName = "Jogador"
	}
	player := &models.Player{
		BabaID:   baba.ID,
		UserID:   &userID,
		Name:     userName,
		Position: models.PositionLinha,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerConflict) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to join baba %d: %w", baba.ID, err)
	}

	s.populateCrestURL(baba)
	return baba, nil
}

func (s *babaService) AddPlaceholderPlayer(ctx context.Context, babaID int, input AddPlayerInput, currentUserID int) (*models.Player, error) {
	if _, err := s.requirePresident(ctx, babaID, currentUserID); err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrValidationFailed
	}
	if input.Position != models.PositionGoleiro {
		input.Position = models.PositionLinha
	}

	player := &models.Player{
		BabaID:   babaID,
		Name:     input.Name,
		Position: input.Position,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to add player to baba %d: %w", babaID, err)
	}
	return player, nil
}

func (s *babaService) ListPlayers(ctx context.Context, babaID int) ([]*models.Player, error) {
	players, err := s.playerRepo.ListByBaba(ctx, babaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players of baba %d: %w", babaID, err)
	}
	return players, nil
}

func (s *babaService) ListRankings(ctx context.Context, babaID int) ([]*models.PlayerRanking, error) {
	rankings, err := s.statsRepo.ListRankingsByBaba(ctx, babaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rankings of baba %d: %w", babaID, err)
	}
	return rankings, nil
}

func (s *babaService) UploadCrest(ctx context.Context, babaID int, contentType string, file io.Reader, currentUserID int) (*models.Baba, error) {
	baba, err := s.requirePresident(ctx, babaID, currentUserID)
	if err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, ErrCrestStorageUnavailable
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrValidationFailed
	}

	key := storage.CrestKey(babaID)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload crest for baba %d: %w", babaID, err)
	}
	if err := s.babaRepo.UpdateCrestKey(ctx, babaID, &key); err != nil {
		return nil, fmt.Errorf("failed to store crest key for baba %d: %w", babaID, err)
	}

	baba.CrestKey = &key
	s.populateCrestURL(baba)
	return baba, nil
}

func (s *babaService) RemoveCrest(ctx context.Context, babaID int, currentUserID int) error {
	baba, err := s.requirePresident(ctx, babaID, currentUserID)
	if err != nil {
		return err
	}
	if baba.CrestKey == nil {
		return nil
	}
	if s.uploader == nil {
		return ErrCrestStorageUnavailable
	}

	if err := s.uploader.Delete(ctx, *baba.CrestKey); err != nil {
		return fmt.Errorf("failed to delete crest of baba %d: %w", babaID, err)
	}
	return s.babaRepo.UpdateCrestKey(ctx, babaID, nil)
}

func (s *babaService) requirePresident(ctx context.Context, babaID, currentUserID int) (*models.Baba, error) {
	baba, err := s.babaRepo.GetByID(ctx, babaID)
	if err != nil {
		if errors.Is(err, repositories.ErrBabaNotFound) {
			return nil, ErrBabaNotFound
		}
		return nil, fmt.Errorf("failed to get baba %d: %w", babaID, err)
	}
	if baba.PresidentID != currentUserID {
		return nil, ErrUnauthorizedAction
	}
	return baba, nil
}

func (s *babaService) populateCrestURL(baba *models.Baba) {
	if baba.CrestKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*baba.CrestKey)
		baba.CrestURL = &url
	}
}
