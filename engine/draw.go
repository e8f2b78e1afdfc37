package engine

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/zzzzzahd/draft-play-interno/models"
)

// ErrNotEnoughPlayers is returned when the confirmed roster cannot
// form at least two teams (or falls below the configured minimum).
var ErrNotEnoughPlayers = errors.New("not enough confirmed players for a draw")

type DrawConfig struct {
	PlayersPerTeam int
	Strategy       models.DrawStrategy
	// MinPlayers is the baba's min_players_to_start. The effective
	// floor is max(MinPlayers, 2*PlayersPerTeam).
	MinPlayers int
	// AllowReserves attaches leftover players to teams round-robin as
	// per-team reserves; otherwise they return as a flat pool.
	AllowReserves bool
}

type DrawOutcome struct {
	Teams    []models.Team
	Reserves []models.Player
}

// Draw partitions the confirmed roster into balanced teams.
//
// Goalkeepers are dealt one per team first; leftover goalkeepers fill
// line slots. Remaining slots are filled round-robin, so under the
// substitute strategy team sizes differ by at most one. The rng is
// caller-supplied: a fixed seed reproduces the exact partition.
func Draw(confirmed []models.Player, cfg DrawConfig, rng *rand.Rand) (*DrawOutcome, error) {
	if cfg.PlayersPerTeam < 2 || cfg.PlayersPerTeam > 11 {
		return nil, fmt.Errorf("players per team must be between 2 and 11, got %d", cfg.PlayersPerTeam)
	}

	total := len(confirmed)
	floor := 2 * cfg.PlayersPerTeam
	if cfg.MinPlayers > floor {
		floor = cfg.MinPlayers
	}
	if total < floor {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughPlayers, total, floor)
	}

	var keepers, outfield []models.Player
	for _, p := range confirmed {
		if p.Position == models.PositionGoleiro {
			keepers = append(keepers, p)
		} else {
			outfield = append(outfield, p)
		}
	}
	rng.Shuffle(len(keepers), func(i, j int) { keepers[i], keepers[j] = keepers[j], keepers[i] })
	rng.Shuffle(len(outfield), func(i, j int) { outfield[i], outfield[j] = outfield[j], outfield[i] })

	numTeams := total / cfg.PlayersPerTeam
	if cfg.Strategy == models.StrategySubstitute {
		numTeams = (total + cfg.PlayersPerTeam - 1) / cfg.PlayersPerTeam
	}
	if numTeams < 2 {
		return nil, fmt.Errorf("%w: %d confirmed only form %d team(s)", ErrNotEnoughPlayers, total, numTeams)
	}

	teams := make([]models.Team, numTeams)
	for i := range teams {
		teams[i].Name = fmt.Sprintf("Time %d", i+1)
		teams[i].Starters = make([]models.Player, 0, cfg.PlayersPerTeam)
	}

	// One keeper per team while supply lasts; the rest play outfield.
	pool := outfield
	for i, gk := range keepers {
		if i < numTeams {
			teams[i].Starters = append(teams[i].Starters, gk)
		} else {
			pool = append(pool, gk)
		}
	}

	// Fill remaining starter slots round-robin across teams.
	for len(pool) > 0 {
		assigned := false
		for t := range teams {
			if len(pool) == 0 {
				break
			}
			if len(teams[t].Starters) < cfg.PlayersPerTeam {
				teams[t].Starters = append(teams[t].Starters, pool[0])
				pool = pool[1:]
				assigned = true
			}
		}
		if !assigned {
			break // every team full, leftovers become reserves
		}
	}

	reserves := pool
	if cfg.AllowReserves && len(reserves) > 0 {
		for i, p := range reserves {
			t := i % numTeams
			teams[t].Reserves = append(teams[t].Reserves, p)
		}
		reserves = nil
	}

	return &DrawOutcome{Teams: teams, Reserves: reserves}, nil
}
