package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/zzzzzahd/draft-play-interno/models"
)

// 2026-09-01 is a Tuesday; kickoff 20:00 puts the deadline at 19:30.
func confirmationTestMorning() time.Time {
	return time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
}

type confirmationFixture struct {
	service  ConfirmationService
	clock    *clockwork.FakeClock
	babaRepo *fakeBabaRepo
	players  *fakePlayerRepo
	baba     *models.Baba
	memberID int
}

func newConfirmationFixture(t *testing.T) *confirmationFixture {
	t.Helper()
	ctx := context.Background()

	babaRepo := newFakeBabaRepo()
	playerRepo := newFakePlayerRepo()
	confirmationRepo := newFakeConfirmationRepo(playerRepo)
	clock := clockwork.NewFakeClockAt(confirmationTestMorning())

	baba := &models.Baba{
		Name:              "Baba de Terça",
		Modality:          models.ModalityFutsal,
		GameTime:          "20:00",
		PlayersPerTeam:    5,
		MinPlayersToStart: 10,
		PresidentID:       1,
	}
	if err := babaRepo.Create(ctx, baba); err != nil {
		t.Fatalf("seed baba: %v", err)
	}

	memberID := 1
	player := &models.Player{BabaID: baba.ID, UserID: &memberID, Name: "Presidente", Position: models.PositionLinha}
	if err := playerRepo.Create(ctx, player); err != nil {
		t.Fatalf("seed player: %v", err)
	}

	return &confirmationFixture{
		service:  NewConfirmationService(babaRepo, playerRepo, confirmationRepo, clock, nil),
		clock:    clock,
		babaRepo: babaRepo,
		players:  playerRepo,
		baba:     baba,
		memberID: memberID,
	}
}

func TestConfirmBeforeDeadline(t *testing.T) {
	f := newConfirmationFixture(t)
	ctx := context.Background()

	confirmation, err := f.service.Confirm(ctx, f.baba.ID, f.memberID)
	if err != nil {
		t.Fatalf("Confirm() error: %v", err)
	}
	if !confirmation.Confirmed {
		t.Error("confirmation not marked confirmed")
	}

	list, err := f.service.ListForToday(ctx, f.baba.ID)
	if err != nil {
		t.Fatalf("ListForToday() error: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("got %d confirmations, want 1", len(list))
	}
}

func TestConfirmTwiceConflicts(t *testing.T) {
	f := newConfirmationFixture(t)
	ctx := context.Background()

	if _, err := f.service.Confirm(ctx, f.baba.ID, f.memberID); err != nil {
		t.Fatalf("Confirm() error: %v", err)
	}
	if _, err := f.service.Confirm(ctx, f.baba.ID, f.memberID); !errors.Is(err, ErrAlreadyConfirmed) {
		t.Errorf("second Confirm() error = %v, want ErrAlreadyConfirmed", err)
	}
}

func TestConfirmAfterDeadlineRejected(t *testing.T) {
	f := newConfirmationFixture(t)
	ctx := context.Background()

	// 9:00 plus 10:30 lands exactly on the 19:30 deadline.
	f.clock.Advance(10*time.Hour + 30*time.Minute)
	if _, err := f.service.Confirm(ctx, f.baba.ID, f.memberID); !errors.Is(err, ErrConfirmationClosed) {
		t.Errorf("Confirm() error = %v, want ErrConfirmationClosed", err)
	}
}

func TestConfirmRequiresMembership(t *testing.T) {
	f := newConfirmationFixture(t)

	if _, err := f.service.Confirm(context.Background(), f.baba.ID, 99); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("Confirm() error = %v, want ErrNotRegistered", err)
	}
}

func TestCancelBeforeDeadline(t *testing.T) {
	f := newConfirmationFixture(t)
	ctx := context.Background()

	if _, err := f.service.Confirm(ctx, f.baba.ID, f.memberID); err != nil {
		t.Fatalf("Confirm() error: %v", err)
	}
	if err := f.service.Cancel(ctx, f.baba.ID, f.memberID); err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}

	list, err := f.service.ListForToday(ctx, f.baba.ID)
	if err != nil {
		t.Fatalf("ListForToday() error: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("got %d confirmations after cancel, want 0", len(list))
	}
}

func TestCancelWithoutConfirmation(t *testing.T) {
	f := newConfirmationFixture(t)

	if err := f.service.Cancel(context.Background(), f.baba.ID, f.memberID); !errors.Is(err, ErrNoConfirmationToCancel) {
		t.Errorf("Cancel() error = %v, want ErrNoConfirmationToCancel", err)
	}
}

func TestCancelAfterDeadlineRejected(t *testing.T) {
	f := newConfirmationFixture(t)
	ctx := context.Background()

	if _, err := f.service.Confirm(ctx, f.baba.ID, f.memberID); err != nil {
		t.Fatalf("Confirm() error: %v", err)
	}

	// Roster is frozen after the deadline, withdrawal included.
	f.clock.Advance(11 * time.Hour)
	if err := f.service.Cancel(ctx, f.baba.ID, f.memberID); !errors.Is(err, ErrConfirmationClosed) {
		t.Errorf("Cancel() error = %v, want ErrConfirmationClosed", err)
	}
}

func TestWindowForToday(t *testing.T) {
	f := newConfirmationFixture(t)
	ctx := context.Background()

	t.Run("open in the morning", func(t *testing.T) {
		window, err := f.service.WindowForToday(ctx, f.baba.ID)
		if err != nil {
			t.Fatalf("WindowForToday() error: %v", err)
		}
		if !window.IsGameDay || !window.Open {
			t.Errorf("window = %+v, want game day and open", window)
		}
		if window.Deadline == nil {
			t.Fatal("window deadline is nil")
		}
		wantDeadline := time.Date(2026, 9, 1, 19, 30, 0, 0, time.UTC)
		if !window.Deadline.Equal(wantDeadline) {
			t.Errorf("deadline = %v, want %v", window.Deadline, wantDeadline)
		}
		if window.RemainingSeconds != int((10*time.Hour + 30*time.Minute).Seconds()) {
			t.Errorf("remaining = %d seconds", window.RemainingSeconds)
		}
	})

	t.Run("closed after deadline with count intact", func(t *testing.T) {
		if _, err := f.service.Confirm(ctx, f.baba.ID, f.memberID); err != nil {
			t.Fatalf("Confirm() error: %v", err)
		}
		f.clock.Advance(11 * time.Hour)

		window, err := f.service.WindowForToday(ctx, f.baba.ID)
		if err != nil {
			t.Fatalf("WindowForToday() error: %v", err)
		}
		if window.Open {
			t.Error("window still open after deadline")
		}
		if window.ConfirmedCount != 1 {
			t.Errorf("confirmed count = %d, want 1", window.ConfirmedCount)
		}
		if window.RemainingSeconds != 0 {
			t.Errorf("remaining = %d, want 0", window.RemainingSeconds)
		}
	})
}
