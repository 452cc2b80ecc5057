package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/nnue"
	"github.com/corvid-chess/corvid/pkg/search"
	"github.com/corvid-chess/corvid/pkg/search/searchctl"
	"github.com/corvid-chess/corvid/pkg/tt"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

// benchDepth is the fixed depth every bench position is searched to.
const benchDepth = 13

// benchPositions is a fixed suite of opening, middlegame and endgame FENs used to produce a
// reproducible node count for engine-to-engine speed comparisons (`-bench`): a fixed suite
// searched to a fixed depth, reporting per-position and aggregate nodes/nps.
var benchPositions = []string{
	board.InitialFEN,
	"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
	"rnbqkb1r/pp1p1ppp/2p2n2/4p3/2P5/2N2N2/PP1PPPPP/R1BQKB1R w KQkq - 0 4",
	"r1bqk2r/pppp1ppp/2n2n2/2b1p3/2B1P3/2N2N2/PPPP1PPP/R1BQK2R w KQkq - 6 5",
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	"2kr3r/p1ppqpb1/bn2Bnp1/3PN3/1p2P3/2N5/PPPBQPPP/R3K2R b KQ - 3 2",
	"8/8/8/8/8/6k1/6p1/6K1 w - - 0 1",
	"8/8/1P6/5pr1/8/4R3/7k/2K5 w - - 0 1",
	"4k3/1P6/8/8/8/8/K7/8 w - - 0 1",
	"rnbqkbnr/pp1ppppp/8/2p5/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2",
	"rq3rk1/ppp2ppp/1bnpb3/3N2B1/3NP3/7P/PPPQ1PP1/2KR3R w - - 7 14",
}

// BenchResult holds the outcome of one bench position.
type BenchResult struct {
	FEN   string
	Best  board.Move
	Score int32
	Nodes uint64
}

// Bench searches every position in benchPositions to benchDepth, clearing the transposition
// table and ordering state between positions so each result is reproducible regardless of
// engine history. It reports aggregate nodes and nodes-per-second, the standard cross-engine
// speed comparison metric (`-bench`).
func Bench(ctx context.Context, net *nnue.Network, hashMiB uint) []BenchResult {
	logw.Infof(ctx, "bench started: %v positions at depth %v", len(benchPositions), benchDepth)

	start := time.Now()
	var results []BenchResult
	var totalNodes uint64

	for i, fen := range benchPositions {
		pos, err := board.NewFromFEN(fen, false)
		if err != nil {
			logw.Exitf(ctx, "invalid bench position %v (%q): %v", i, fen, err)
		}
		game := board.NewGame(pos, pos.PlyClock()/2+1)
		table := tt.New(int(hashMiB))

		launcher := &searchctl.SMP{Threads: 1}
		opt := searchctl.Options{DepthLimit: lang.Some(uint(benchDepth))}
		_, out := launcher.Launch(ctx, game, net, table, opt)

		var last search.PV
		for pv := range out {
			last = pv
		}

		var best board.Move
		if len(last.Moves) > 0 {
			best = last.Moves[0]
		}
		results = append(results, BenchResult{FEN: fen, Best: best, Score: last.Score, Nodes: last.Nodes})
		totalNodes += last.Nodes

		logw.Infof(ctx, "position [%2d] best=%v score=%v nodes=%v", i+1, best, last.Score, last.Nodes)
	}

	elapsed := time.Since(start)
	nps := float64(totalNodes) / elapsed.Seconds()
	logw.Infof(ctx, "===============================================================")
	logw.Infof(ctx, "overall: %v nodes %v nps", totalNodes, int64(nps))

	return results
}

// FormatBenchSummary renders the aggregate nodes/nps line that -bench mode prints to stdout;
// Bench itself only logs its totals.
func FormatBenchSummary(results []BenchResult, elapsed time.Duration) string {
	var total uint64
	for _, r := range results {
		total += r.Nodes
	}
	nps := float64(total) / elapsed.Seconds()
	return fmt.Sprintf("%d nodes %d nps", total, int64(nps))
}
