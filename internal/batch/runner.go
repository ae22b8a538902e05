// Package batch runs many independently seeded simulations concurrently and
// aggregates population-level statistics. Each game is a pure computation
// with zero shared state, so the pool needs no locks beyond the collector.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/fourthdown/gridsim/internal/sim"
)

// Request describes a batch: the base config is resimulated once per nonce
// in [NonceStart, NonceEnd].
type Request struct {
	Base       sim.Config
	NonceStart uint64
	NonceEnd   uint64
	Workers    int
}

// GameSummary is the per-game slice of the aggregate.
type GameSummary struct {
	Nonce       uint64 `json:"nonce"`
	HomeScore   int    `json:"homeScore"`
	AwayScore   int    `json:"awayScore"`
	TotalPlays  int    `json:"totalPlays"`
	MVPPlayerID string `json:"mvpPlayerId"`
}

// Aggregate holds population-level rates across the batch. Rates are the
// calibration quantities: interceptions per pass attempt and drops per
// catchable pass.
type Aggregate struct {
	Games            int           `json:"games"`
	PassAttempts     int           `json:"passAttempts"`
	Completions      int           `json:"completions"`
	Drops            int           `json:"drops"`
	Interceptions    int           `json:"interceptions"`
	TotalPlays       int           `json:"totalPlays"`
	InterceptionRate float64       `json:"interceptionRate"`
	DropRate         float64       `json:"dropRate"`
	Summaries        []GameSummary `json:"summaries"`
}

type result struct {
	nonce uint64
	game  *sim.SimulatedGame
	err   error
}

// Run executes the batch. The first simulation error cancels the pool and
// is returned; partial aggregates are discarded.
func Run(ctx context.Context, req Request) (*Aggregate, error) {
	if req.NonceEnd < req.NonceStart {
		return nil, fmt.Errorf("invalid nonce range [%d, %d]", req.NonceStart, req.NonceEnd)
	}
	workers := req.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	jobs := make(chan uint64, workers)
	results := make(chan result, workers)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for nonce := range jobs {
				cfg := req.Base
				cfg.Nonce = nonce
				game, err := sim.Simulate(cfg)
				select {
				case results <- result{nonce: nonce, game: game, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for nonce := req.NonceStart; nonce <= req.NonceEnd; nonce++ {
			select {
			case jobs <- nonce:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	agg := &Aggregate{}
	for r := range results {
		if r.err != nil {
			cancel()
			return nil, fmt.Errorf("simulation failed at nonce %d: %w", r.nonce, r.err)
		}
		agg.fold(r.nonce, r.game)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Workers finish out of order; summaries sort by nonce for stable output.
	sort.Slice(agg.Summaries, func(i, j int) bool {
		return agg.Summaries[i].Nonce < agg.Summaries[j].Nonce
	})
	agg.finalize()
	return agg, nil
}

func (a *Aggregate) fold(nonce uint64, game *sim.SimulatedGame) {
	a.Games++
	a.TotalPlays += game.TotalPlays
	for _, ts := range []sim.TeamStats{game.BoxScore.Home, game.BoxScore.Away} {
		a.PassAttempts += ts.PassAttempts
		a.Completions += ts.Completions
		a.Drops += ts.Drops
		a.Interceptions += ts.InterceptionsThrown
	}
	a.Summaries = append(a.Summaries, GameSummary{
		Nonce:       nonce,
		HomeScore:   game.HomeScore,
		AwayScore:   game.AwayScore,
		TotalPlays:  game.TotalPlays,
		MVPPlayerID: game.MVPPlayerID,
	})
}

func (a *Aggregate) finalize() {
	if a.PassAttempts > 0 {
		a.InterceptionRate = float64(a.Interceptions) / float64(a.PassAttempts)
	}
	if catchable := a.Completions + a.Drops; catchable > 0 {
		a.DropRate = float64(a.Drops) / float64(catchable)
	}
}
