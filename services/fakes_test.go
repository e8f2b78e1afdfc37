package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zzzzzahd/draft-play-interno/models"
	"github.com/zzzzzahd/draft-play-interno/repositories"
)

func dateKey(d time.Time) string {
	return d.Format("2006-01-02")
}

type fakeBabaRepo struct {
	mu     sync.Mutex
	nextID int
	babas  map[int]*models.Baba
}

func newFakeBabaRepo() *fakeBabaRepo {
	return &fakeBabaRepo{nextID: 1, babas: make(map[int]*models.Baba)}
}

func (r *fakeBabaRepo) Create(_ context.Context, baba *models.Baba) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.babas {
		if b.InviteCode == baba.InviteCode {
			return repositories.ErrBabaInviteCodeConflict
		}
	}
	baba.ID = r.nextID
	baba.CreatedAt = time.Now()
	r.nextID++
	copied := *baba
	r.babas[baba.ID] = &copied
	return nil
}

func (r *fakeBabaRepo) GetByID(_ context.Context, id int) (*models.Baba, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	baba, ok := r.babas[id]
	if !ok {
		return nil, repositories.ErrBabaNotFound
	}
	copied := *baba
	return &copied, nil
}

func (r *fakeBabaRepo) GetByInviteCode(_ context.Context, code string) (*models.Baba, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, baba := range r.babas {
		if baba.InviteCode == code {
			copied := *baba
			return &copied, nil
		}
	}
	return nil, repositories.ErrBabaNotFound
}

func (r *fakeBabaRepo) ListByUser(_ context.Context, userID int) ([]*models.Baba, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Baba
	for _, baba := range r.babas {
		if baba.PresidentID == userID {
			copied := *baba
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeBabaRepo) ListAll(_ context.Context) ([]*models.Baba, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Baba, 0, len(r.babas))
	for _, baba := range r.babas {
		copied := *baba
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeBabaRepo) Update(_ context.Context, baba *models.Baba) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.babas[baba.ID]; !ok {
		return repositories.ErrBabaNotFound
	}
	copied := *baba
	r.babas[baba.ID] = &copied
	return nil
}

func (r *fakeBabaRepo) UpdateCrestKey(_ context.Context, id int, crestKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	baba, ok := r.babas[id]
	if !ok {
		return repositories.ErrBabaNotFound
	}
	baba.CrestKey = crestKey
	return nil
}

func (r *fakeBabaRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.babas[id]; !ok {
		return repositories.ErrBabaNotFound
	}
	delete(r.babas, id)
	return nil
}

type fakePlayerRepo struct {
	mu      sync.Mutex
	nextID  int
	players map[int]*models.Player
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{nextID: 1, players: make(map[int]*models.Player)}
}

func (r *fakePlayerRepo) Create(_ context.Context, player *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if player.UserID != nil {
		for _, p := range r.players {
			if p.BabaID == player.BabaID && p.UserID != nil && *p.UserID == *player.UserID {
				return repositories.ErrPlayerConflict
			}
		}
	}
	player.ID = r.nextID
	player.CreatedAt = time.Now()
	r.nextID++
	copied := *player
	r.players[player.ID] = &copied
	return nil
}

func (r *fakePlayerRepo) GetByID(_ context.Context, id int) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	player, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	copied := *player
	return &copied, nil
}

func (r *fakePlayerRepo) GetByBabaAndUser(_ context.Context, babaID, userID int) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, player := range r.players {
		if player.BabaID == babaID && player.UserID != nil && *player.UserID == userID {
			copied := *player
			return &copied, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r *fakePlayerRepo) ListByBaba(_ context.Context, babaID int) ([]*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Player
	for _, player := range r.players {
		if player.BabaID == babaID {
			copied := *player
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.Compare(out[i].Name, out[j].Name) < 0 })
	return out, nil
}

func (r *fakePlayerRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[id]; !ok {
		return repositories.ErrPlayerNotFound
	}
	delete(r.players, id)
	return nil
}

type confirmationKey struct {
	babaID   int
	playerID int
	date     string
}

type fakeConfirmationRepo struct {
	mu            sync.Mutex
	nextID        int
	confirmations map[confirmationKey]*models.GameConfirmation
	order         []confirmationKey
	players       *fakePlayerRepo // для JOIN в ListByBabaDate
}

func newFakeConfirmationRepo(players *fakePlayerRepo) *fakeConfirmationRepo {
	return &fakeConfirmationRepo{
		nextID:        1,
		confirmations: make(map[confirmationKey]*models.GameConfirmation),
		players:       players,
	}
}

func (r *fakeConfirmationRepo) Create(_ context.Context, c *models.GameConfirmation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := confirmationKey{c.BabaID, c.PlayerID, dateKey(c.GameDate)}
	if _, exists := r.confirmations[key]; exists {
		return repositories.ErrConfirmationConflict
	}
	c.ID = r.nextID
	c.CreatedAt = time.Now()
	r.nextID++
	copied := *c
	r.confirmations[key] = &copied
	r.order = append(r.order, key)
	return nil
}

func (r *fakeConfirmationRepo) GetByPlayerDate(_ context.Context, babaID, playerID int, gameDate time.Time) (*models.GameConfirmation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.confirmations[confirmationKey{babaID, playerID, dateKey(gameDate)}]
	if !ok {
		return nil, repositories.ErrConfirmationNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeConfirmationRepo) DeleteByPlayerDate(_ context.Context, babaID, playerID int, gameDate time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := confirmationKey{babaID, playerID, dateKey(gameDate)}
	if _, ok := r.confirmations[key]; !ok {
		return repositories.ErrConfirmationNotFound
	}
	delete(r.confirmations, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeConfirmationRepo) ListByBabaDate(_ context.Context, babaID int, gameDate time.Time) ([]*models.GameConfirmation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	date := dateKey(gameDate)
	var out []*models.GameConfirmation
	for _, key := range r.order {
		if key.babaID == babaID && key.date == date {
			copied := *r.confirmations[key]
			if r.players != nil {
				if player, err := r.players.GetByID(context.Background(), copied.PlayerID); err == nil {
					copied.Player = player
				}
			}
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeConfirmationRepo) CountByBabaDate(ctx context.Context, babaID int, gameDate time.Time) (int, error) {
	list, err := r.ListByBabaDate(ctx, babaID, gameDate)
	return len(list), err
}

type statKey struct {
	playerID int
	matchID  int
}

type fakeStatsRepo struct {
	mu      sync.Mutex
	goals   map[statKey]int
	assists map[statKey]int
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{goals: make(map[statKey]int), assists: make(map[statKey]int)}
}

func (r *fakeStatsRepo) Increment(_ context.Context, playerID, matchID int, field repositories.StatField) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := statKey{playerID, matchID}
	switch field {
	case repositories.StatGoals:
		r.goals[key]++
	case repositories.StatAssists:
		r.assists[key]++
	}
	return nil
}

func (r *fakeStatsRepo) ListRankingsByBaba(context.Context, int) ([]*models.PlayerRanking, error) {
	return nil, nil
}

type drawKeyT struct {
	babaID int
	date   string
}

type fakeDrawRepo struct {
	mu     sync.Mutex
	nextID int
	draws  map[drawKeyT]*models.DrawResult
}

func newFakeDrawRepo() *fakeDrawRepo {
	return &fakeDrawRepo{nextID: 1, draws: make(map[drawKeyT]*models.DrawResult)}
}

func (r *fakeDrawRepo) ReplaceForDate(_ context.Context, draw *models.DrawResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	draw.ID = r.nextID
	draw.CreatedAt = time.Now()
	r.nextID++
	copied := *draw
	r.draws[drawKeyT{draw.BabaID, dateKey(draw.DrawDate)}] = &copied
	return nil
}

func (r *fakeDrawRepo) GetByBabaDate(_ context.Context, babaID int, drawDate time.Time) (*models.DrawResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	draw, ok := r.draws[drawKeyT{babaID, dateKey(drawDate)}]
	if !ok {
		return nil, repositories.ErrDrawNotFound
	}
	copied := *draw
	return &copied, nil
}

func (r *fakeDrawRepo) ExistsForDate(_ context.Context, babaID int, drawDate time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.draws[drawKeyT{babaID, dateKey(drawDate)}]
	return ok, nil
}

func (r *fakeDrawRepo) DeleteForDate(_ context.Context, babaID int, drawDate time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.draws, drawKeyT{babaID, dateKey(drawDate)})
	return nil
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	nextID  int
	matches []*models.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{nextID: 1}
}

func (r *fakeMatchRepo) Create(_ context.Context, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	match.ID = r.nextID
	r.nextID++
	copied := *match
	r.matches = append(r.matches, &copied)
	return nil
}

func (r *fakeMatchRepo) UpdateScore(_ context.Context, id, scoreA, scoreB int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.ID == id {
			m.ScoreA, m.ScoreB = scoreA, scoreB
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) Finish(_ context.Context, id, scoreA, scoreB int, outcome models.MatchOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.ID == id {
			m.ScoreA, m.ScoreB = scoreA, scoreB
			m.Outcome = &outcome
			m.Status = models.MatchStatusFinished
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) ListByBabaDate(_ context.Context, babaID int, date time.Time) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Match
	for _, m := range r.matches {
		if m.BabaID == babaID && dateKey(m.MatchDate) == dateKey(date) {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

// get возвращает матч по ID без копии; только для проверок в тестах.
func (r *fakeMatchRepo) get(id int) *models.Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.ID == id {
			return m
		}
	}
	return nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.nextID++
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}
