package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zzzzzahd/draft-play-interno/models"
)

// ConfirmationLeadTime is how long before kickoff the confirmation
// window closes. Fixed for every baba; not a per-baba setting.
const ConfirmationLeadTime = 30 * time.Minute

// GameDate truncates an instant to the calendar date used as the key
// for confirmations and draws.
func GameDate(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// IsGameDay reports whether the given date is a game day for the baba.
// An empty game_days set means the baba plays every day.
func IsGameDay(baba *models.Baba, date time.Time) bool {
	if len(baba.GameDays) == 0 {
		return true
	}
	weekday := int(date.Weekday())
	for _, d := range baba.GameDays {
		if d == weekday {
			return true
		}
	}
	return false
}

// Kickoff builds the kickoff timestamp for the given date from the
// baba's game_time ("HH:MM" or "HH:MM:SS").
func Kickoff(baba *models.Baba, date time.Time) (time.Time, error) {
	hour, minute, err := parseGameTime(baba.GameTime)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location()), nil
}

// ComputeDeadline returns the confirmation cutoff for the given date.
// ok is false when the date is not a game day or game_time is malformed.
func ComputeDeadline(baba *models.Baba, date time.Time) (deadline time.Time, ok bool) {
	if !IsGameDay(baba, date) {
		return time.Time{}, false
	}
	kickoff, err := Kickoff(baba, date)
	if err != nil {
		return time.Time{}, false
	}
	return kickoff.Add(-ConfirmationLeadTime), true
}

// CanConfirm reports whether presence confirmation is still open at
// the given instant. The deadline itself counts as closed.
func CanConfirm(baba *models.Baba, now time.Time) bool {
	deadline, ok := ComputeDeadline(baba, now)
	return ok && now.Before(deadline)
}

// TimeUntilDeadline returns how long the confirmation window stays
// open. Zero duration with ok=true means the deadline has passed on a
// game day; ok=false means there is no deadline today at all.
func TimeUntilDeadline(baba *models.Baba, now time.Time) (time.Duration, bool) {
	deadline, ok := ComputeDeadline(baba, now)
	if !ok {
		return 0, false
	}
	remaining := deadline.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

func parseGameTime(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, fmt.Errorf("invalid game_time %q: expected HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid game_time %q: bad hour", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid game_time %q: bad minute", s)
	}
	return hour, minute, nil
}
