package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/zzzzzahd/draft-play-interno/models"
)

// testRoster builds n players with the first numKeepers as goalkeepers.
func testRoster(n, numKeepers int) []models.Player {
	players := make([]models.Player, n)
	for i := range players {
		pos := models.PositionLinha
		if i < numKeepers {
			pos = models.PositionGoleiro
		}
		players[i] = models.Player{
			ID:       i + 1,
			Name:     fmt.Sprintf("Jogador %d", i+1),
			Position: pos,
		}
	}
	return players
}

// collectIDs flattens a draw outcome into the sorted set of player IDs.
func collectIDs(out *DrawOutcome) []int {
	var ids []int
	for _, team := range out.Teams {
		for _, p := range team.Starters {
			ids = append(ids, p.ID)
		}
		for _, p := range team.Reserves {
			ids = append(ids, p.ID)
		}
	}
	for _, p := range out.Reserves {
		ids = append(ids, p.ID)
	}
	sort.Ints(ids)
	return ids
}

func TestDrawReserveStrategy(t *testing.T) {
	roster := testRoster(13, 2)
	out, err := Draw(roster, DrawConfig{
		PlayersPerTeam: 5,
		Strategy:       models.StrategyReserve,
		AllowReserves:  true,
	}, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Draw() error: %v", err)
	}

	t.Run("floor of total over players per team", func(t *testing.T) {
		if len(out.Teams) != 2 {
			t.Fatalf("got %d teams, want 2", len(out.Teams))
		}
	})

	t.Run("teams filled to exact size", func(t *testing.T) {
		for _, team := range out.Teams {
			if len(team.Starters) != 5 {
				t.Errorf("team %s has %d starters, want 5", team.Name, len(team.Starters))
			}
		}
	})

	t.Run("leftovers attached as team reserves", func(t *testing.T) {
		totalReserves := 0
		for _, team := range out.Teams {
			totalReserves += len(team.Reserves)
		}
		if totalReserves != 3 {
			t.Errorf("got %d team reserves, want 3", totalReserves)
		}
		if len(out.Reserves) != 0 {
			t.Errorf("flat reserve pool has %d players, want 0", len(out.Reserves))
		}
	})

	t.Run("every confirmed player placed exactly once", func(t *testing.T) {
		ids := collectIDs(out)
		if len(ids) != len(roster) {
			t.Fatalf("placed %d players, want %d", len(ids), len(roster))
		}
		for i, id := range ids {
			if id != i+1 {
				t.Fatalf("id %d missing or duplicated", i+1)
			}
		}
	})
}

func TestDrawReserveStrategyFlatPool(t *testing.T) {
	out, err := Draw(testRoster(13, 2), DrawConfig{
		PlayersPerTeam: 5,
		Strategy:       models.StrategyReserve,
		AllowReserves:  false,
	}, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Draw() error: %v", err)
	}

	if len(out.Reserves) != 3 {
		t.Errorf("flat reserve pool has %d players, want 3", len(out.Reserves))
	}
	for _, team := range out.Teams {
		if len(team.Reserves) != 0 {
			t.Errorf("team %s has reserves with allow_reserves off", team.Name)
		}
	}
}

func TestDrawSubstituteStrategy(t *testing.T) {
	out, err := Draw(testRoster(13, 2), DrawConfig{
		PlayersPerTeam: 5,
		Strategy:       models.StrategySubstitute,
	}, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Draw() error: %v", err)
	}

	t.Run("ceil of total over players per team", func(t *testing.T) {
		if len(out.Teams) != 3 {
			t.Fatalf("got %d teams, want 3", len(out.Teams))
		}
	})

	t.Run("team sizes differ by at most one", func(t *testing.T) {
		min, max := len(out.Teams[0].Starters), len(out.Teams[0].Starters)
		for _, team := range out.Teams {
			if len(team.Starters) < min {
				min = len(team.Starters)
			}
			if len(team.Starters) > max {
				max = len(team.Starters)
			}
		}
		if max-min > 1 {
			t.Errorf("team sizes range from %d to %d", min, max)
		}
	})

	t.Run("no reserves under substitute strategy", func(t *testing.T) {
		if len(out.Reserves) != 0 {
			t.Errorf("got %d reserves, want 0", len(out.Reserves))
		}
	})
}

func TestDrawGoalkeeperDistribution(t *testing.T) {
	out, err := Draw(testRoster(10, 3), DrawConfig{
		PlayersPerTeam: 5,
		Strategy:       models.StrategyReserve,
	}, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("Draw() error: %v", err)
	}

	// Two teams, three keepers: each team gets exactly one keeper slot,
	// the third keeper fills a line slot somewhere.
	for _, team := range out.Teams {
		if team.Starters[0].Position != models.PositionGoleiro {
			t.Errorf("team %s first slot is %s, want goalkeeper", team.Name, team.Starters[0].Position)
		}
	}
}

func TestDrawRejectsShortRoster(t *testing.T) {
	tests := []struct {
		name string
		n    int
		cfg  DrawConfig
	}{
		{"one short of two full teams", 9, DrawConfig{PlayersPerTeam: 5, Strategy: models.StrategyReserve}},
		{"below configured minimum", 10, DrawConfig{PlayersPerTeam: 5, MinPlayers: 12, Strategy: models.StrategyReserve}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Draw(testRoster(tt.n, 1), tt.cfg, rand.New(rand.NewSource(1)))
			if !errors.Is(err, ErrNotEnoughPlayers) {
				t.Errorf("Draw() error = %v, want ErrNotEnoughPlayers", err)
			}
		})
	}
}

func TestDrawRejectsBadTeamSize(t *testing.T) {
	for _, ppt := range []int{1, 12} {
		if _, err := Draw(testRoster(30, 2), DrawConfig{PlayersPerTeam: ppt, Strategy: models.StrategyReserve}, rand.New(rand.NewSource(1))); err == nil {
			t.Errorf("Draw() with players per team %d: expected error", ppt)
		}
	}
}

func TestDrawDeterministicWithSeed(t *testing.T) {
	roster := testRoster(14, 2)
	cfg := DrawConfig{PlayersPerTeam: 5, Strategy: models.StrategyReserve, AllowReserves: true}

	first, err := Draw(roster, cfg, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("Draw() error: %v", err)
	}
	second, err := Draw(roster, cfg, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("Draw() error: %v", err)
	}

	for i := range first.Teams {
		for j := range first.Teams[i].Starters {
			if first.Teams[i].Starters[j].ID != second.Teams[i].Starters[j].ID {
				t.Fatalf("same seed produced different partitions at team %d slot %d", i, j)
			}
		}
	}
}
