package engine

import (
	"testing"
	"time"

	"github.com/zzzzzahd/draft-play-interno/models"
)

func testBaba(gameTime string, gameDays []int) *models.Baba {
	return &models.Baba{
		ID:       1,
		Name:     "Baba de Terça",
		GameTime: gameTime,
		GameDays: gameDays,
	}
}

// 2026-09-01 is a Tuesday.
func tuesday(hour, minute, second int) time.Time {
	return time.Date(2026, 9, 1, hour, minute, second, 0, time.UTC)
}

func TestComputeDeadline(t *testing.T) {
	baba := testBaba("20:00", nil)

	deadline, ok := ComputeDeadline(baba, tuesday(12, 0, 0))
	if !ok {
		t.Fatal("ComputeDeadline() ok = false, want true")
	}
	want := tuesday(19, 30, 0)
	if !deadline.Equal(want) {
		t.Errorf("deadline = %v, want %v", deadline, want)
	}
}

func TestComputeDeadlineNotGameDay(t *testing.T) {
	baba := testBaba("20:00", []int{1, 3, 5}) // Mon, Wed, Fri

	if _, ok := ComputeDeadline(baba, tuesday(12, 0, 0)); ok {
		t.Error("ComputeDeadline() ok = true on a non-game day")
	}
}

func TestCanConfirm(t *testing.T) {
	tests := []struct {
		name string
		baba *models.Baba
		now  time.Time
		want bool
	}{
		{"morning of game day", testBaba("20:00", nil), tuesday(9, 0, 0), true},
		{"one second before deadline", testBaba("20:00", nil), tuesday(19, 29, 59), true},
		{"exactly at deadline", testBaba("20:00", nil), tuesday(19, 30, 0), false},
		{"after deadline", testBaba("20:00", nil), tuesday(19, 45, 0), false},
		{"after kickoff", testBaba("20:00", nil), tuesday(21, 0, 0), false},
		{"tuesday in schedule", testBaba("20:00", []int{2}), tuesday(9, 0, 0), true},
		{"tuesday not in schedule", testBaba("20:00", []int{1, 3, 5}), tuesday(9, 0, 0), false},
		{"empty schedule plays every day", testBaba("20:00", []int{}), tuesday(9, 0, 0), true},
		{"malformed game time", testBaba("25:99", nil), tuesday(9, 0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanConfirm(tt.baba, tt.now); got != tt.want {
				t.Errorf("CanConfirm() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeUntilDeadline(t *testing.T) {
	baba := testBaba("20:00", nil)

	t.Run("window open", func(t *testing.T) {
		remaining, ok := TimeUntilDeadline(baba, tuesday(19, 0, 0))
		if !ok {
			t.Fatal("ok = false, want true")
		}
		if remaining != 30*time.Minute {
			t.Errorf("remaining = %v, want 30m", remaining)
		}
	})

	t.Run("window closed clamps to zero", func(t *testing.T) {
		remaining, ok := TimeUntilDeadline(baba, tuesday(19, 45, 0))
		if !ok {
			t.Fatal("ok = false, want true")
		}
		if remaining != 0 {
			t.Errorf("remaining = %v, want 0", remaining)
		}
	})

	t.Run("no deadline on rest day", func(t *testing.T) {
		restDay := testBaba("20:00", []int{6})
		if _, ok := TimeUntilDeadline(restDay, tuesday(9, 0, 0)); ok {
			t.Error("ok = true on a non-game day")
		}
	})
}

func TestKickoffAcceptsSeconds(t *testing.T) {
	baba := testBaba("20:00:00", nil)

	kickoff, err := Kickoff(baba, tuesday(0, 0, 0))
	if err != nil {
		t.Fatalf("Kickoff() error: %v", err)
	}
	if !kickoff.Equal(tuesday(20, 0, 0)) {
		t.Errorf("kickoff = %v, want %v", kickoff, tuesday(20, 0, 0))
	}
}

func TestGameDate(t *testing.T) {
	date := GameDate(tuesday(19, 45, 12))
	if !date.Equal(tuesday(0, 0, 0)) {
		t.Errorf("GameDate() = %v, want midnight", date)
	}
}
