// debug-sim runs one or more simulations from the command line and prints
// the play-by-play, useful when tuning calibration constants.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fourthdown/gridsim/internal/batch"
	"github.com/fourthdown/gridsim/internal/engine"
	"github.com/fourthdown/gridsim/internal/sim"
	"github.com/fourthdown/gridsim/internal/sim/simtest"
)

func main() {
	serverSeed := flag.String("server-seed", "debug_server_seed", "server seed")
	clientSeed := flag.String("client-seed", "debug_client_seed", "client seed")
	nonce := flag.Uint64("nonce", 1, "game nonce")
	games := flag.Int("games", 1, "number of games (nonces nonce..nonce+n-1)")
	minExcitement := flag.Int("min-excitement", 0, "only print plays at or above this excitement")
	flag.Parse()

	cfg := simtest.Config(*serverSeed, *clientSeed, *nonce)

	if *games > 1 {
		runBatch(cfg, *nonce, *games)
		return
	}

	game, err := sim.Simulate(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simulation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("commitment: %s\n", engine.HashServerSeed(cfg.ServerSeed))
	fmt.Printf("%s vs %s (%s), nonce %d\n\n", cfg.HomeTeam.Name, cfg.AwayTeam.Name, cfg.GameType, cfg.Nonce)

	for _, ev := range game.Events {
		if ev.Commentary.Excitement < *minExcitement {
			continue
		}
		st := ev.State
		fmt.Printf("#%03d [%2s %3ds] (%2d-%2d) [e%3d] %s\n",
			ev.EventNumber, st.Quarter, st.Clock, st.HomeScore, st.AwayScore,
			ev.Commentary.Excitement, ev.Commentary.Text)
		if ev.Narrative != nil {
			if ev.Narrative.Momentum != "" {
				fmt.Printf("      momentum: %s\n", ev.Narrative.Momentum)
			}
			if ev.Narrative.Milestone != "" {
				fmt.Printf("      milestone: %s\n", ev.Narrative.Milestone)
			}
		}
	}

	fmt.Printf("\nFINAL %s %d - %d %s | %d plays | MVP %s\n",
		cfg.HomeTeam.Abbreviation, game.HomeScore, game.AwayScore,
		cfg.AwayTeam.Abbreviation, game.TotalPlays, game.MVPPlayerID)
}

func runBatch(cfg sim.Config, nonce uint64, games int) {
	agg, err := batch.Run(context.Background(), batch.Request{
		Base:       cfg,
		NonceStart: nonce,
		NonceEnd:   nonce + uint64(games) - 1,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "batch failed: %v\n", err)
		os.Exit(1)
	}

	for _, s := range agg.Summaries {
		fmt.Printf("nonce %4d: %2d - %2d in %3d plays, MVP %s\n",
			s.Nonce, s.HomeScore, s.AwayScore, s.TotalPlays, s.MVPPlayerID)
	}
	fmt.Printf("\n%d games, %d pass attempts\n", agg.Games, agg.PassAttempts)
	fmt.Printf("interception rate: %.4f\n", agg.InterceptionRate)
	fmt.Printf("drop rate:         %.4f\n", agg.DropRate)
	fmt.Printf("avg plays/game:    %.1f\n", float64(agg.TotalPlays)/float64(agg.Games))
}
