package services

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/zzzzzahd/draft-play-interno/models"
)

type drawFixture struct {
	service       DrawService
	clock         *clockwork.FakeClock
	baba          *models.Baba
	confirmations *fakeConfirmationRepo
	players       *fakePlayerRepo
	gameDate      time.Time
}

func newDrawFixture(t *testing.T, confirmed int) *drawFixture {
	t.Helper()
	ctx := context.Background()

	babaRepo := newFakeBabaRepo()
	playerRepo := newFakePlayerRepo()
	confirmationRepo := newFakeConfirmationRepo(playerRepo)
	drawRepo := newFakeDrawRepo()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 9, 1, 19, 45, 0, 0, time.UTC))

	baba := &models.Baba{
		Name:              "Baba de Terça",
		GameTime:          "20:00",
		PlayersPerTeam:    5,
		MinPlayersToStart: 10,
		DrawStrategy:      models.StrategyReserve,
		AllowReserves:     true,
		PresidentID:       1,
	}
	if err := babaRepo.Create(ctx, baba); err != nil {
		t.Fatalf("seed baba: %v", err)
	}

	gameDate := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < confirmed; i++ {
		userID := i + 1
		pos := models.PositionLinha
		if i < 2 {
			pos = models.PositionGoleiro
		}
		player := &models.Player{BabaID: baba.ID, UserID: &userID, Name: "Jogador", Position: pos}
		if err := playerRepo.Create(ctx, player); err != nil {
			t.Fatalf("seed player: %v", err)
		}
		c := &models.GameConfirmation{BabaID: baba.ID, PlayerID: player.ID, GameDate: gameDate, Confirmed: true}
		if err := confirmationRepo.Create(ctx, c); err != nil {
			t.Fatalf("seed confirmation: %v", err)
		}
	}

	rng := rand.New(rand.NewSource(42))
	return &drawFixture{
		service:       NewDrawService(babaRepo, confirmationRepo, drawRepo, clock, nil, rng),
		clock:         clock,
		baba:          baba,
		confirmations: confirmationRepo,
		players:       playerRepo,
		gameDate:      gameDate,
	}
}

func TestExecuteDraw(t *testing.T) {
	f := newDrawFixture(t, 12)
	ctx := context.Background()

	draw, err := f.service.ExecuteDraw(ctx, f.baba.ID, f.gameDate)
	if err != nil {
		t.Fatalf("ExecuteDraw() error: %v", err)
	}

	if draw.TotalConfirmed != 12 {
		t.Errorf("total confirmed = %d, want 12", draw.TotalConfirmed)
	}
	if len(draw.Teams) != 2 {
		t.Fatalf("got %d teams, want 2", len(draw.Teams))
	}
	for _, team := range draw.Teams {
		if len(team.Starters) != 5 {
			t.Errorf("team %s has %d starters, want 5", team.Name, len(team.Starters))
		}
	}

	stored, err := f.service.GetForToday(ctx, f.baba.ID)
	if err != nil {
		t.Fatalf("GetForToday() error: %v", err)
	}
	if stored.ID != draw.ID {
		t.Errorf("stored draw ID %d, want %d", stored.ID, draw.ID)
	}
}

func TestExecuteDrawInsufficientPlayers(t *testing.T) {
	f := newDrawFixture(t, 7)

	_, err := f.service.ExecuteDraw(context.Background(), f.baba.ID, f.gameDate)
	if !errors.Is(err, ErrInsufficientPlayers) {
		t.Errorf("ExecuteDraw() error = %v, want ErrInsufficientPlayers", err)
	}
}

func TestExecuteDrawReplacesPrevious(t *testing.T) {
	f := newDrawFixture(t, 12)
	ctx := context.Background()

	first, err := f.service.ExecuteDraw(ctx, f.baba.ID, f.gameDate)
	if err != nil {
		t.Fatalf("first ExecuteDraw() error: %v", err)
	}

	// Late confirmation joins only a re-draw roster.
	userID := 100
	player := &models.Player{BabaID: f.baba.ID, UserID: &userID, Name: "Atrasado", Position: models.PositionLinha}
	if err := f.players.Create(ctx, player); err != nil {
		t.Fatalf("seed player: %v", err)
	}
	c := &models.GameConfirmation{BabaID: f.baba.ID, PlayerID: player.ID, GameDate: f.gameDate, Confirmed: true}
	if err := f.confirmations.Create(ctx, c); err != nil {
		t.Fatalf("seed confirmation: %v", err)
	}

	second, err := f.service.ExecuteDraw(ctx, f.baba.ID, f.gameDate)
	if err != nil {
		t.Fatalf("second ExecuteDraw() error: %v", err)
	}
	if second.TotalConfirmed != 13 {
		t.Errorf("re-draw total confirmed = %d, want 13", second.TotalConfirmed)
	}

	stored, err := f.service.GetForToday(ctx, f.baba.ID)
	if err != nil {
		t.Fatalf("GetForToday() error: %v", err)
	}
	if stored.ID == first.ID {
		t.Error("re-draw did not replace the stored result")
	}
}

func TestGetForTodayWithoutDraw(t *testing.T) {
	f := newDrawFixture(t, 12)

	if _, err := f.service.GetForToday(context.Background(), f.baba.ID); !errors.Is(err, ErrNoDrawToday) {
		t.Errorf("GetForToday() error = %v, want ErrNoDrawToday", err)
	}
}
