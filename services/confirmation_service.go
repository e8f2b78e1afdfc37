package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/zzzzzahd/draft-play-interno/engine"
	"github.com/zzzzzahd/draft-play-interno/models"
	"github.com/zzzzzahd/draft-play-interno/repositories"
)

// ConfirmationWindow — проекция состояния окна подтверждения для UI.
type ConfirmationWindow struct {
	GameDate         time.Time  `json:"game_date"`
	IsGameDay        bool       `json:"is_game_day"`
	Open             bool       `json:"open"`
	Deadline         *time.Time `json:"deadline,omitempty"`
	RemainingSeconds int        `json:"remaining_seconds"`
	ConfirmedCount   int        `json:"confirmed_count"`
}

// ConfirmationService реализует реестр подтверждений присутствия.
// Confirm и Cancel симметрично закрываются дедлайном: после него
// состав дня зафиксирован для жеребьёвки.
type ConfirmationService interface {
	Confirm(ctx context.Context, babaID, userID int) (*models.GameConfirmation, error)
	Cancel(ctx context.Context, babaID, userID int) error
	ListForToday(ctx context.Context, babaID int) ([]*models.GameConfirmation, error)
	WindowForToday(ctx context.Context, babaID int) (*ConfirmationWindow, error)
}

type confirmationService struct {
	babaRepo         repositories.BabaRepository
	playerRepo       repositories.PlayerRepository
	confirmationRepo repositories.ConfirmationRepository
	clock            clockwork.Clock
	hub              *engine.Hub
}

func NewConfirmationService(
	babaRepo repositories.BabaRepository,
	playerRepo repositories.PlayerRepository,
	confirmationRepo repositories.ConfirmationRepository,
	clock clockwork.Clock,
	hub *engine.Hub,
) ConfirmationService {
	return &confirmationService{
		babaRepo:         babaRepo,
		playerRepo:       playerRepo,
		confirmationRepo: confirmationRepo,
		clock:            clock,
		hub:              hub,
	}
}

func (s *confirmationService) Confirm(ctx context.Context, babaID, userID int) (*models.GameConfirmation, error) {
	baba, player, err := s.resolveMember(ctx, babaID, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if !engine.CanConfirm(baba, now) {
		return nil, ErrConfirmationClosed
	}

	confirmation := &models.GameConfirmation{
		BabaID:    babaID,
		PlayerID:  player.ID,
		GameDate:  engine.GameDate(now),
		Confirmed: true,
	}
	if err := s.confirmationRepo.Create(ctx, confirmation); err != nil {
		// Уникальный индекс — единственная защита от двойного
		// подтверждения; блокировок здесь нет намеренно.
		if errors.Is(err, repositories.ErrConfirmationConflict) {
			return nil, ErrAlreadyConfirmed
		}
		return nil, fmt.Errorf("failed to store confirmation: %w", err)
	}
	confirmation.Player = player

	s.broadcastCount(ctx, babaID, confirmation.GameDate)
	return confirmation, nil
}

func (s *confirmationService) Cancel(ctx context.Context, babaID, userID int) error {
	baba, player, err := s.resolveMember(ctx, babaID, userID)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	if !engine.CanConfirm(baba, now) {
		return ErrConfirmationClosed
	}

	gameDate := engine.GameDate(now)
	if err := s.confirmationRepo.DeleteByPlayerDate(ctx, babaID, player.ID, gameDate); err != nil {
		if errors.Is(err, repositories.ErrConfirmationNotFound) {
			return ErrNoConfirmationToCancel
		}
		return fmt.Errorf("failed to cancel confirmation: %w", err)
	}

	s.broadcastCount(ctx, babaID, gameDate)
	return nil
}

func (s *confirmationService) ListForToday(ctx context.Context, babaID int) ([]*models.GameConfirmation, error) {
	gameDate := engine.GameDate(s.clock.Now())
	confirmations, err := s.confirmationRepo.ListByBabaDate(ctx, babaID, gameDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmations: %w", err)
	}
	return confirmations, nil
}

func (s *confirmationService) WindowForToday(ctx context.Context, babaID int) (*ConfirmationWindow, error) {
	baba, err := s.babaRepo.GetByID(ctx, babaID)
	if err != nil {
		if errors.Is(err, repositories.ErrBabaNotFound) {
			return nil, ErrBabaNotFound
		}
		return nil, fmt.Errorf("failed to get baba %d: %w", babaID, err)
	}

	now := s.clock.Now()
	gameDate := engine.GameDate(now)

	count, err := s.confirmationRepo.CountByBabaDate(ctx, babaID, gameDate)
	if err != nil {
		return nil, fmt.Errorf("failed to count confirmations: %w", err)
	}

	window := &ConfirmationWindow{
		GameDate:       gameDate,
		IsGameDay:      engine.IsGameDay(baba, now),
		Open:           engine.CanConfirm(baba, now),
		ConfirmedCount: count,
	}
	if deadline, ok := engine.ComputeDeadline(baba, now); ok {
		window.Deadline = &deadline
		if remaining, ok := engine.TimeUntilDeadline(baba, now); ok {
			window.RemainingSeconds = int(remaining / time.Second)
		}
	}
	return window, nil
}

func (s *confirmationService) resolveMember(ctx context.Context, babaID, userID int) (*models.Baba, *models.Player, error) {
	baba, err := s.babaRepo.GetByID(ctx, babaID)
	if err != nil {
		if errors.Is(err, repositories.ErrBabaNotFound) {
			return nil, nil, ErrBabaNotFound
		}
		return nil, nil, fmt.Errorf("failed to get baba %d: %w", babaID, err)
	}

	player, err := s.playerRepo.GetByBabaAndUser(ctx, babaID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, nil, ErrNotRegistered
		}
		return nil, nil, fmt.Errorf("failed to resolve player: %w", err)
	}
	return baba, player, nil
}

func (s *confirmationService) broadcastCount(ctx context.Context, babaID int, gameDate time.Time) {
	if s.hub == nil {
		return
	}
	count, err := s.confirmationRepo.CountByBabaDate(ctx, babaID, gameDate)
	if err != nil {
		return
	}
	s.hub.BroadcastToBaba(babaID, engine.EventConfirmationUpdated, map[string]interface{}{
		"game_date":       gameDate,
		"confirmed_count": count,
	})
}
