package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/zzzzzahd/draft-play-interno/engine"
	"github.com/zzzzzahd/draft-play-interno/models"
	"github.com/zzzzzahd/draft-play-interno/repositories"
)

// DrawService выполняет жеребьёвку: снимок состава на момент запуска,
// разбиение движком и атомарная замена результата дня.
type DrawService interface {
	// ExecuteDraw проводит жеребьёвку на дату. Повторный вызов для той
	// же даты замещает прежний результат. Параллельные вызовы для
	// одной (baba, date) сериализуются: второй получает ErrDrawInFlight.
	ExecuteDraw(ctx context.Context, babaID int, drawDate time.Time) (*models.DrawResult, error)
	GetForToday(ctx context.Context, babaID int) (*models.DrawResult, error)
	ExistsForDate(ctx context.Context, babaID int, drawDate time.Time) (bool, error)
}

type drawService struct {
	babaRepo         repositories.BabaRepository
	confirmationRepo repositories.ConfirmationRepository
	drawRepo         repositories.DrawRepository
	clock            clockwork.Clock
	hub              *engine.Hub

	rngMu sync.Mutex
	rng   *rand.Rand

	inFlightMu sync.Mutex
	inFlight   map[string]bool
}

// NewDrawService создаёт сервис жеребьёвки. rng == nil означает
// случайное зерно; тесты передают детерминированный источник.
func NewDrawService(
	babaRepo repositories.BabaRepository,
	confirmationRepo repositories.ConfirmationRepository,
	drawRepo repositories.DrawRepository,
	clock clockwork.Clock,
	hub *engine.Hub,
	rng *rand.Rand,
) DrawService {
	if rng == nil {
		rng = rand.New(rand.NewSource(clock.Now().UnixNano()))
	}
	return &drawService{
		babaRepo:         babaRepo,
		confirmationRepo: confirmationRepo,
		drawRepo:         drawRepo,
		clock:            clock,
		hub:              hub,
		rng:              rng,
		inFlight:         make(map[string]bool),
	}
}

func drawKey(babaID int, drawDate time.Time) string {
	return fmt.Sprintf("%d:%s", babaID, drawDate.Format("2006-01-02"))
}

func (s *drawService) ExecuteDraw(ctx context.Context, babaID int, drawDate time.Time) (*models.DrawResult, error) {
	key := drawKey(babaID, drawDate)
	s.inFlightMu.Lock()
	if s.inFlight[key] {
		s.inFlightMu.Unlock()
		return nil, ErrDrawInFlight
	}
	s.inFlight[key] = true
	s.inFlightMu.Unlock()
	defer func() {
		s.inFlightMu.Lock()
		delete(s.inFlight, key)
		s.inFlightMu.Unlock()
	}()

	baba, err := s.babaRepo.GetByID(ctx, babaID)
	if err != nil {
		if errors.Is(err, repositories.ErrBabaNotFound) {
			return nil, ErrBabaNotFound
		}
		return nil, fmt.Errorf("failed to get baba %d: %w", babaID, err)
	}

	// Снимок состава: подтверждения после этого момента на результат
	// уже не влияют.
	confirmations, err := s.confirmationRepo.ListByBabaDate(ctx, babaID, drawDate)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot confirmed roster: %w", err)
	}
	roster := make([]models.Player, 0, len(confirmations))
	for _, c := range confirmations {
		if c.Player != nil {
			roster = append(roster, *c.Player)
		}
	}

	cfg := engine.DrawConfig{
		PlayersPerTeam: baba.PlayersPerTeam,
		Strategy:       baba.DrawStrategy,
		MinPlayers:     baba.MinPlayersToStart,
		AllowReserves:  baba.AllowReserves,
	}

	s.rngMu.Lock()
	outcome, err := engine.Draw(roster, cfg, s.rng)
	s.rngMu.Unlock()
	if err != nil {
		if errors.Is(err, engine.ErrNotEnoughPlayers) {
			return nil, fmt.Errorf("%w: %v", ErrInsufficientPlayers, err)
		}
		return nil, fmt.Errorf("draw failed for baba %d: %w", babaID, err)
	}

	draw := &models.DrawResult{
		BabaID:         babaID,
		DrawDate:       drawDate,
		PlayersPerTeam: baba.PlayersPerTeam,
		Strategy:       baba.DrawStrategy,
		TotalConfirmed: len(roster),
		Teams:          outcome.Teams,
		Reserves:       outcome.Reserves,
	}
	if err := s.drawRepo.ReplaceForDate(ctx, draw); err != nil {
		return nil, fmt.Errorf("failed to persist draw result: %w", err)
	}

	if s.hub != nil {
		s.hub.BroadcastToBaba(babaID, engine.EventDrawCreated, draw)
	}
	return draw, nil
}

func (s *drawService) GetForToday(ctx context.Context, babaID int) (*models.DrawResult, error) {
	drawDate := engine.GameDate(s.clock.Now())
	draw, err := s.drawRepo.GetByBabaDate(ctx, babaID, drawDate)
	if err != nil {
		if errors.Is(err, repositories.ErrDrawNotFound) {
			return nil, ErrNoDrawToday
		}
		return nil, fmt.Errorf("failed to get draw result: %w", err)
	}
	return draw, nil
}

func (s *drawService) ExistsForDate(ctx context.Context, babaID int, drawDate time.Time) (bool, error) {
	return s.drawRepo.ExistsForDate(ctx, babaID, drawDate)
}
