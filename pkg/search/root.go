package search

import (
	"context"
	"errors"

	"github.com/corvid-chess/corvid/pkg/board"
)

// ErrHalted is returned by SearchRoot when the search is stopped before the requested depth
// completes; the partial result of that depth is discarded.
var ErrHalted = errors.New("search halted")

// aspirationWindow is the initial half-width of the aspiration window and its widening factor
// once depth reaches aspirationMinDepth.
const (
	aspirationWindow    int32 = 16
	aspirationMinDepth        = 7
	aspirationWidenNum        = 5
	aspirationWidenDen        = 3
)

// SearchRoot runs one depth of iterative deepening from the worker's current position, widening
// an aspiration window around the previous iteration's score (depths >= aspirationMinDepth) and
// re-searching with a wider window on fail-low/fail-high. Returns
// ErrHalted if the search was stopped before this depth completed.
func (w *Worker) SearchRoot(ctx context.Context, depth int, prevScore int32) (PV, error) {
	w.SelDepth = 0
	w.ss[0].pv = w.ss[0].pv[:0]

	alpha, beta := -infScore, infScore
	window := aspirationWindow
	if depth >= aspirationMinDepth {
		alpha = max32(prevScore-window, -infScore)
		beta = min32(prevScore+window, infScore)
	}

	for {
		score := w.negamax(ctx, 0, depth, alpha, beta, false, 0)
		if w.ShouldStop() || ctx.Err() != nil {
			return PV{}, ErrHalted
		}

		if score <= alpha {
			beta = (alpha + beta) / 2
			alpha = max32(score-window, -infScore)
			window = window * aspirationWidenNum / aspirationWidenDen
			continue
		}
		if score >= beta {
			beta = min32(score+window, infScore)
			window = window * aspirationWidenNum / aspirationWidenDen
			continue
		}

		return w.currentPV(depth, score), nil
	}
}

// currentPV snapshots the principal variation the last completed (or partially completed)
// negamax call left at the root.
func (w *Worker) currentPV(depth int, score int32) PV {
	moves := make([]board.Move, len(w.ss[0].pv))
	copy(moves, w.ss[0].pv)
	return PV{
		Depth:    depth,
		SelDepth: w.SelDepth,
		Score:    score,
		Nodes:    w.Nodes,
		Moves:    moves,
	}
}
