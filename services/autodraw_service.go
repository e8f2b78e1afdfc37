package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/zzzzzahd/draft-play-interno/engine"
	"github.com/zzzzzahd/draft-play-interno/models"
	"github.com/zzzzzahd/draft-play-interno/repositories"
)

const (
	// Дедлайн — переход по времени, а не по событию, поэтому его
	// приходится опрашивать.
	autoDrawPollInterval = time.Minute
	// Короткая пауза после закрытия окна, чтобы не гоняться с
	// подтверждениями на самой границе дедлайна.
	drawSettleDelay = 3 * time.Second
)

// AutoDrawScheduler запускает жеребьёвку ровно один раз на каждую
// игровую дату после закрытия окна подтверждений. Неудача жеребьёвки
// терминальна для даты: повторов нет, день остаётся без жеребьёвки.
type AutoDrawScheduler struct {
	babaRepo         repositories.BabaRepository
	confirmationRepo repositories.ConfirmationRepository
	drawService      DrawService
	clock            clockwork.Clock
	logger           *slog.Logger

	mu       sync.Mutex
	pending  map[string]bool   // settle-таймер взведён
	done     map[string]bool   // дата закрыта: сработано или отказ
	failures map[string]string // причина отказа по дате
}

func NewAutoDrawScheduler(
	babaRepo repositories.BabaRepository,
	confirmationRepo repositories.ConfirmationRepository,
	drawService DrawService,
	clock clockwork.Clock,
	logger *slog.Logger,
) *AutoDrawScheduler {
	return &AutoDrawScheduler{
		babaRepo:         babaRepo,
		confirmationRepo: confirmationRepo,
		drawService:      drawService,
		clock:            clock,
		logger:           logger,
		pending:          make(map[string]bool),
		done:             make(map[string]bool),
		failures:         make(map[string]string),
	}
}

// Run опрашивает все бабы раз в минуту до отмены контекста.
func (s *AutoDrawScheduler) Run(ctx context.Context) {
	ticker := s.clock.NewTicker(autoDrawPollInterval)
	defer ticker.Stop()

	s.tick(ctx) // первый проход сразу при старте

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.tick(ctx)
		}
	}
}

func (s *AutoDrawScheduler) tick(ctx context.Context) {
	babas, err := s.babaRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error("autodraw: failed to list babas", slog.Any("error", err))
		return
	}

	now := s.clock.Now()
	s.pruneOldDates(now)
	for _, baba := range babas {
		s.evaluate(ctx, baba, now)
	}
}

// evaluate проверяет предусловия §поллинга и взводит settle-таймер.
func (s *AutoDrawScheduler) evaluate(ctx context.Context, baba *models.Baba, now time.Time) {
	if !engine.IsGameDay(baba, now) || engine.CanConfirm(baba, now) {
		return
	}
	date := engine.GameDate(now)
	key := drawKey(baba.ID, date)

	s.mu.Lock()
	if s.done[key] || s.pending[key] {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	exists, err := s.drawService.ExistsForDate(ctx, baba.ID, date)
	if err != nil {
		s.logger.Error("autodraw: failed to check existing draw",
			slog.Int("baba_id", baba.ID), slog.Any("error", err))
		return
	}
	if exists {
		s.markDone(key, "")
		return
	}

	count, err := s.confirmationRepo.CountByBabaDate(ctx, baba.ID, date)
	if err != nil {
		s.logger.Error("autodraw: failed to count confirmations",
			slog.Int("baba_id", baba.ID), slog.Any("error", err))
		return
	}
	if count < baba.MinPlayersToStart {
		return
	}

	s.mu.Lock()
	s.pending[key] = true
	s.mu.Unlock()

	timer := s.clock.NewTimer(drawSettleDelay)
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.pending, key)
			s.mu.Unlock()
		}()

		select {
		case <-ctx.Done():
			if !timer.Stop() {
				select {
				case <-timer.Chan():
				default:
				}
			}
			return
		case <-timer.Chan():
		}
		s.fire(ctx, baba, date, key)
	}()
}

// fire перепроверяет предусловия после задержки и запускает жеребьёвку.
func (s *AutoDrawScheduler) fire(ctx context.Context, baba *models.Baba, date time.Time, key string) {
	exists, err := s.drawService.ExistsForDate(ctx, baba.ID, date)
	if err != nil {
		s.logger.Error("autodraw: recheck failed", slog.Int("baba_id", baba.ID), slog.Any("error", err))
		return
	}
	if exists {
		s.markDone(key, "")
		return
	}

	count, err := s.confirmationRepo.CountByBabaDate(ctx, baba.ID, date)
	if err != nil {
		s.logger.Error("autodraw: recheck failed", slog.Int("baba_id", baba.ID), slog.Any("error", err))
		return
	}
	if count < baba.MinPlayersToStart {
		// Предусловие пропало за время задержки; не терминально,
		// следующий тик оценит заново.
		return
	}

	result, err := s.drawService.ExecuteDraw(ctx, baba.ID, date)
	if err != nil {
		if errors.Is(err, ErrDrawInFlight) {
			// Кто-то уже проводит жеребьёвку; следующий тик увидит её.
			return
		}
		s.markDone(key, err.Error())
		s.logger.Warn("autodraw: draw failed, no draw for this date",
			slog.Int("baba_id", baba.ID),
			slog.Time("date", date),
			slog.Any("error", err))
		return
	}

	s.markDone(key, "")
	s.logger.Info("autodraw: draw executed",
		slog.Int("baba_id", baba.ID),
		slog.Time("date", date),
		slog.Int("teams", len(result.Teams)),
		slog.Int("confirmed", result.TotalConfirmed))
}

// LastFailure возвращает причину, по которой на дату нет жеребьёвки.
func (s *AutoDrawScheduler) LastFailure(babaID int, date time.Time) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reason, ok := s.failures[drawKey(babaID, date)]
	return reason, ok && reason != ""
}

func (s *AutoDrawScheduler) markDone(key, failure string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done[key] = true
	if failure != "" {
		s.failures[key] = failure
	}
}

// pruneOldDates выбрасывает записи предыдущих дат, чтобы карты не
// росли бесконечно.
func (s *AutoDrawScheduler) pruneOldDates(now time.Time) {
	suffix := ":" + engine.GameDate(now).Format("2006-01-02")
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.done {
		if !strings.HasSuffix(key, suffix) {
			delete(s.done, key)
			delete(s.failures, key)
		}
	}
}
