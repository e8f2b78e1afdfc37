package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/zzzzzahd/draft-play-interno/engine"
	"github.com/zzzzzahd/draft-play-interno/models"
	"github.com/zzzzzahd/draft-play-interno/repositories"
)

// Частота проверки таймаута текущего матча.
const matchPollInterval = time.Second

// GoalInput описывает гол в текущем матче.
type GoalInput struct {
	Side     engine.Side
	ScorerID int
	AssistID *int
}

// MatchService ведёт живую сессию winner-stays поверх жеребьёвки дня:
// хронометраж, счёт, ротацию очереди и фиксацию матчей в базе.
type MatchService interface {
	// StartSession создаёт сессию из сегодняшней жеребьёвки и запускает
	// первый матч. Для баба может существовать только одна сессия.
	StartSession(ctx context.Context, babaID, userID int) (engine.SessionState, error)
	GetSession(ctx context.Context, babaID int) (engine.SessionState, error)
	Goal(ctx context.Context, babaID int, input GoalInput) (engine.SessionState, error)
	PauseSession(ctx context.Context, babaID, userID int) (engine.SessionState, error)
	ResumeSession(ctx context.Context, babaID, userID int) (engine.SessionState, error)
	// ForceEndMatch немедленно завершает текущий матч с текущим счётом.
	ForceEndMatch(ctx context.Context, babaID, userID int) (engine.SessionState, error)
	// EndSession завершает сессию целиком; текущий матч фиксируется как
	// есть.
	EndSession(ctx context.Context, babaID, userID int) error
	// ForceRedraw отбрасывает сессию и жеребьёвку дня и проводит новую
	// жеребьёвку по актуальным подтверждениям.
	ForceRedraw(ctx context.Context, babaID, userID int) (*models.DrawResult, error)
	ListMatchesForToday(ctx context.Context, babaID int) ([]*models.Match, error)
	// Run опрашивает активные сессии и завершает матчи по истечении
	// времени. Блокируется до отмены контекста.
	Run(ctx context.Context)
}

// liveSession связывает игровую сессию с матчем, который сейчас идёт.
type liveSession struct {
	mu           sync.Mutex
	session      *engine.Session
	matchID      int
	drawResultID int
}

type matchService struct {
	babaRepo    repositories.BabaRepository
	playerRepo  repositories.PlayerRepository
	matchRepo   repositories.MatchRepository
	statsRepo   repositories.StatsRepository
	drawService DrawService
	hub         *engine.Hub
	clock       clockwork.Clock
	logger      *slog.Logger

	mu       sync.Mutex
	sessions map[int]*liveSession // ключ — baba ID
}

func NewMatchService(
	babaRepo repositories.BabaRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	statsRepo repositories.StatsRepository,
	drawService DrawService,
	hub *engine.Hub,
	clock clockwork.Clock,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		babaRepo:    babaRepo,
		playerRepo:  playerRepo,
		matchRepo:   matchRepo,
		statsRepo:   statsRepo,
		drawService: drawService,
		hub:         hub,
		clock:       clock,
		logger:      logger,
		sessions:    make(map[int]*liveSession),
	}
}

func (s *matchService) StartSession(ctx context.Context, babaID, userID int) (engine.SessionState, error) {
	baba, err := s.requirePresident(ctx, babaID, userID)
	if err != nil {
		return engine.SessionState{}, err
	}

	draw, err := s.drawService.GetForToday(ctx, babaID)
	if err != nil {
		return engine.SessionState{}, err
	}

	s.mu.Lock()
	if _, exists := s.sessions[babaID]; exists {
		s.mu.Unlock()
		return engine.SessionState{}, ErrSessionExists
	}

	session, err := engine.NewSession(babaID, draw.Teams, baba.MatchDuration(), s.clock)
	if err != nil {
		s.mu.Unlock()
		return engine.SessionState{}, err
	}
	entry := &liveSession{session: session, drawResultID: draw.ID}
	s.sessions[babaID] = entry
	s.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := s.openMatch(ctx, entry, babaID); err != nil {
		s.removeSession(babaID)
		return engine.SessionState{}, err
	}
	session.Start()

	state := session.Snapshot()
	s.hub.BroadcastToBaba(babaID, engine.EventMatchUpdated, state)
	return state, nil
}

func (s *matchService) GetSession(ctx context.Context, babaID int) (engine.SessionState, error) {
	entry, err := s.lookup(babaID)
	if err != nil {
		return engine.SessionState{}, err
	}
	return entry.session.Snapshot(), nil
}

func (s *matchService) Goal(ctx context.Context, babaID int, input GoalInput) (engine.SessionState, error) {
	entry, err := s.lookup(babaID)
	if err != nil {
		return engine.SessionState{}, err
	}
	if err := s.validateGoalPlayers(ctx, babaID, input); err != nil {
		return engine.SessionState{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	result, err := entry.session.Goal(input.Side, input.ScorerID, input.AssistID)
	if err != nil {
		return engine.SessionState{}, mapSessionError(err)
	}

	// Гол после истечения времени не засчитан и статистику не меняет.
	if result == nil || !result.Expired {
		s.recordStats(ctx, entry.matchID, input)
	}

	if result == nil {
		state := entry.session.Snapshot()
		if err := s.matchRepo.UpdateScore(ctx, entry.matchID, state.ScoreA, state.ScoreB); err != nil {
			s.logger.Error("failed to persist score", slog.Int("match_id", entry.matchID), slog.Any("error", err))
		}
		s.hub.BroadcastToBaba(babaID, engine.EventMatchUpdated, state)
		return state, nil
	}

	return s.settleMatch(ctx, babaID, entry, result)
}

func (s *matchService) PauseSession(ctx context.Context, babaID, userID int) (engine.SessionState, error) {
	if _, err := s.requirePresident(ctx, babaID, userID); err != nil {
		return engine.SessionState{}, err
	}
	entry, err := s.lookup(babaID)
	if err != nil {
		return engine.SessionState{}, err
	}
	entry.session.Pause()
	state := entry.session.Snapshot()
	s.hub.BroadcastToBaba(babaID, engine.EventMatchUpdated, state)
	return state, nil
}

func (s *matchService) ResumeSession(ctx context.Context, babaID, userID int) (engine.SessionState, error) {
	if _, err := s.requirePresident(ctx, babaID, userID); err != nil {
		return engine.SessionState{}, err
	}
	entry, err := s.lookup(babaID)
	if err != nil {
		return engine.SessionState{}, err
	}
	entry.session.Start()
	state := entry.session.Snapshot()
	s.hub.BroadcastToBaba(babaID, engine.EventMatchUpdated, state)
	return state, nil
}

func (s *matchService) ForceEndMatch(ctx context.Context, babaID, userID int) (engine.SessionState, error) {
	if _, err := s.requirePresident(ctx, babaID, userID); err != nil {
		return engine.SessionState{}, err
	}
	entry, err := s.lookup(babaID)
	if err != nil {
		return engine.SessionState{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	result, err := entry.session.ForceEnd()
	if err != nil {
		return engine.SessionState{}, mapSessionError(err)
	}
	return s.settleMatch(ctx, babaID, entry, result)
}

func (s *matchService) EndSession(ctx context.Context, babaID, userID int) error {
	if _, err := s.requirePresident(ctx, babaID, userID); err != nil {
		return err
	}
	entry, err := s.lookup(babaID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	// Текущий матч закрывается с тем счётом, который есть.
	if result, endErr := entry.session.ForceEnd(); endErr == nil {
		if err := s.matchRepo.Finish(ctx, entry.matchID, result.ScoreA, result.ScoreB, result.Outcome); err != nil {
			s.logger.Error("failed to finish match", slog.Int("match_id", entry.matchID), slog.Any("error", err))
		}
	}
	entry.session.EndSession()
	s.removeSession(babaID)

	s.hub.BroadcastToBaba(babaID, engine.EventSessionEnded, entry.session.Snapshot())
	return nil
}

func (s *matchService) ForceRedraw(ctx context.Context, babaID, userID int) (*models.DrawResult, error) {
	if _, err := s.requirePresident(ctx, babaID, userID); err != nil {
		return nil, err
	}

	// Живая сессия отбрасывается: новая жеребьёвка делает её очередь
	// бессмысленной.
	s.mu.Lock()
	entry, hadSession := s.sessions[babaID]
	delete(s.sessions, babaID)
	s.mu.Unlock()

	if hadSession {
		entry.mu.Lock()
		// Текущий матч закрывается до замены жеребьёвки: иначе в базе
		// останется in_progress-строка со ссылкой на удалённый результат.
		if result, endErr := entry.session.ForceEnd(); endErr == nil {
			if err := s.matchRepo.Finish(ctx, entry.matchID, result.ScoreA, result.ScoreB, result.Outcome); err != nil {
				s.logger.Error("failed to finish match", slog.Int("match_id", entry.matchID), slog.Any("error", err))
			}
		}
		entry.session.EndSession()
		entry.mu.Unlock()

		s.hub.BroadcastToBaba(babaID, engine.EventSessionEnded, entry.session.Snapshot())
	}

	return s.drawService.ExecuteDraw(ctx, babaID, engine.GameDate(s.clock.Now()))
}

func (s *matchService) ListMatchesForToday(ctx context.Context, babaID int) ([]*models.Match, error) {
	if _, err := s.babaRepo.GetByID(ctx, babaID); err != nil {
		if errors.Is(err, repositories.ErrBabaNotFound) {
			return nil, ErrBabaNotFound
		}
		return nil, err
	}
	return s.matchRepo.ListByBabaDate(ctx, babaID, engine.GameDate(s.clock.Now()))
}

func (s *matchService) Run(ctx context.Context) {
	ticker := s.clock.NewTicker(matchPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.pollTimeouts(ctx)
		}
	}
}

// pollTimeouts завершает матчи, у которых истекло время.
func (s *matchService) pollTimeouts(ctx context.Context) {
	s.mu.Lock()
	entries := make(map[int]*liveSession, len(s.sessions))
	for babaID, entry := range s.sessions {
		entries[babaID] = entry
	}
	s.mu.Unlock()

	for babaID, entry := range entries {
		entry.mu.Lock()
		if result := entry.session.CheckTimeout(); result != nil {
			if _, err := s.settleMatch(ctx, babaID, entry, result); err != nil {
				s.logger.Error("failed to settle timed-out match",
					slog.Int("baba_id", babaID), slog.Any("error", err))
			}
		}
		entry.mu.Unlock()
	}
}

// settleMatch фиксирует завершённый матч и открывает следующий по
// очереди. Вызывающий держит entry.mu.
func (s *matchService) settleMatch(ctx context.Context, babaID int, entry *liveSession, result *engine.MatchResult) (engine.SessionState, error) {
	if err := s.matchRepo.Finish(ctx, entry.matchID, result.ScoreA, result.ScoreB, result.Outcome); err != nil {
		s.logger.Error("failed to finish match", slog.Int("match_id", entry.matchID), slog.Any("error", err))
	}

	if result.SessionOver {
		s.removeSession(babaID)
		state := entry.session.Snapshot()
		s.hub.BroadcastToBaba(babaID, engine.EventSessionEnded, state)
		return state, nil
	}

	if err := s.openMatch(ctx, entry, babaID); err != nil {
		return engine.SessionState{}, err
	}

	state := entry.session.Snapshot()
	s.hub.BroadcastToBaba(babaID, engine.EventMatchUpdated, state)
	return state, nil
}

// openMatch создаёт в базе запись для пары, стоящей сейчас на поле.
// Вызывающий держит entry.mu.
func (s *matchService) openMatch(ctx context.Context, entry *liveSession, babaID int) error {
	teamA, teamB := entry.session.CurrentTeams()
	match := &models.Match{
		BabaID:       babaID,
		DrawResultID: entry.drawResultID,
		MatchDate:    s.clock.Now(),
		Status:       models.MatchStatusInProgress,
		TeamA:        teamA.Name,
		TeamB:        teamB.Name,
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		return err
	}
	entry.matchID = match.ID
	return nil
}

// recordStats увеличивает счётчики гола и передачи. Статистика не
// должна ломать матч, поэтому ошибки только логируются.
func (s *matchService) recordStats(ctx context.Context, matchID int, input GoalInput) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.statsRepo.Increment(gctx, input.ScorerID, matchID, repositories.StatGoals)
	})
	if input.AssistID != nil {
		assistID := *input.AssistID
		g.Go(func() error {
			return s.statsRepo.Increment(gctx, assistID, matchID, repositories.StatAssists)
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to record player stats",
			slog.Int("match_id", matchID), slog.Any("error", err))
	}
}

// validateGoalPlayers проверяет, что автор гола и ассистент состоят в
// этом баба.
func (s *matchService) validateGoalPlayers(ctx context.Context, babaID int, input GoalInput) error {
	ids := []int{input.ScorerID}
	if input.AssistID != nil {
		ids = append(ids, *input.AssistID)
	}
	for _, id := range ids {
		player, err := s.playerRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return ErrPlayerNotFound
			}
			return err
		}
		if player.BabaID != babaID {
			return ErrPlayerNotFound
		}
	}
	return nil
}

func (s *matchService) lookup(babaID int) (*liveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[babaID]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return entry, nil
}

func (s *matchService) removeSession(babaID int) {
	s.mu.Lock()
	delete(s.sessions, babaID)
	s.mu.Unlock()
}

func (s *matchService) requirePresident(ctx context.Context, babaID, userID int) (*models.Baba, error) {
	baba, err := s.babaRepo.GetByID(ctx, babaID)
	if err != nil {
		if errors.Is(err, repositories.ErrBabaNotFound) {
			return nil, ErrBabaNotFound
		}
		return nil, err
	}
	if baba.PresidentID != userID {
		return nil, ErrUnauthorizedAction
	}
	return baba, nil
}

// mapSessionError переводит ошибки движка сессии в сервисную таксономию.
func mapSessionError(err error) error {
	switch {
	case errors.Is(err, engine.ErrSessionOver):
		return ErrNoActiveSession
	case errors.Is(err, engine.ErrMatchNotRunning), errors.Is(err, engine.ErrSelfAssist), errors.Is(err, engine.ErrUnknownTeam):
		return errors.Join(ErrValidationFailed, err)
	default:
		return err
	}
}
