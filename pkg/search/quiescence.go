package search

import (
	"context"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/tt"
)

// deltaMargin is the slack added to a capture's SEE floor in quiescence delta pruning.
const deltaMargin = 186

// qsearch implements the quiescence search: a capture-only (plus queen
// promotions) search that resolves tactical sequences past the main search's horizon.
func (w *Worker) qsearch(ctx context.Context, ply int, alpha, beta int32) int32 {
	w.Nodes++
	if w.ShouldStop() || ctx.Err() != nil {
		return 0
	}

	pos := w.Game.Position()
	pvNode := beta-alpha > 1

	standPat := w.Stack.Evaluate(pos)
	if standPat >= beta {
		if !pvNode {
			return beta
		}
		standPat = min32((alpha+beta)/2, beta-1)
	}
	if standPat > alpha {
		alpha = standPat
	}

	var ttMove board.Move
	if entry, ok := w.TT.Get(pos.ZKey()); ok {
		ttMove = entry.Move
		score := tt.ScoreFromTT(entry.Score, tt.MaxPly)
		switch entry.Bound {
		case tt.ExactBound:
			return score
		case tt.LowerBound:
			if score >= beta {
				return score
			}
		case tt.UpperBound:
			if score <= alpha {
				return score
			}
		}
	}

	var prevPiece board.PieceType
	var prevTo board.Square
	hasPrev := ply > 0
	if hasPrev {
		prevPiece, prevTo = w.ss[ply-1].move.Piece(), w.ss[ply-1].move.To()
	}

	picker := NewPicker(pos, w.Tables, ttMove, ply, true, prevPiece, prevTo, hasPrev)
	for {
		m, ok := picker.Next()
		if !ok {
			break
		}
		if m.IsCapture() && !pos.SeeGE(m, alpha-standPat-deltaMargin) {
			continue
		}
		if !w.push(m) {
			continue
		}
		w.ss[ply].move = m

		score := -w.qsearch(ctx, ply+1, -beta, -alpha)
		w.pop()

		if score > alpha {
			alpha = score
			if alpha >= beta {
				w.TT.Store(pos.ZKey(), m, tt.LowerBound, alpha, 0, ply)
				return beta
			}
		}
	}
	return alpha
}
