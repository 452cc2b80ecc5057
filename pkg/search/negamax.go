package search

import (
	"context"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/ordering"
	"github.com/corvid-chess/corvid/pkg/tt"
)

// nmpBase is the constant term of the null-move reduction formula: 4 is the conventional value
// for this reduction shape.
const nmpBase = 4

// probCutMargin and probCutImprovingDiscount implement the ProbCut beta margin.
const (
	probCutMargin            = 218
	probCutImprovingDiscount = 100
)

func isQuietMove(m board.Move) bool {
	return m != 0 && m.IsQuiet()
}

// lmpLimit bounds the number of quiet moves tried before Late Move Pruning breaks the loop.
// loose widens the allowance at nodes where forward pruning is
// riskier (improving positions and PV nodes).
func lmpLimit(depth int, loose bool) int {
	limit := 3 + depth*depth
	if !loose {
		limit /= 2
	}
	return limit
}

// negamax implements the principal variation search: a fail-hard negamax with TT
// probing, static-eval-driven forward pruning, late move reductions and PVS re-search.
// excluded, when non-zero, is skipped in the move loop and the node's result is not stored in
// the transposition table, for the singular-extension verification search.
func (w *Worker) negamax(ctx context.Context, ply, depth int, alpha, beta int32, cutNode bool, excluded board.Move) int32 {
	w.Nodes++
	if ply > w.SelDepth {
		w.SelDepth = ply
	}
	if w.ShouldStop() || ctx.Err() != nil {
		return 0
	}

	pos := w.Game.Position()
	pvNode := beta-alpha > 1

	if ply > 0 && (w.Game.IsFiftyMoveDraw() || w.Game.IsRepetitionDraw()) {
		return drawScore(w.Nodes)
	}

	mover := pos.SideToMove()
	inCheck := pos.IsInCheck(mover)

	if depth <= 0 {
		if !inCheck {
			return w.qsearch(ctx, ply, alpha, beta)
		}
		depth = 1
	}

	var hasPrev bool
	var prevPiece board.PieceType
	var prevTo board.Square
	if ply > 0 {
		hasPrev = true
		prevPiece, prevTo = w.ss[ply-1].move.Piece(), w.ss[ply-1].move.To()
	}

	var ttHit bool
	var ttEntry tt.Entry
	var ttMove board.Move
	var ttScore int32
	if e, ok := w.TT.Get(pos.ZKey()); ok {
		ttHit = true
		ttEntry = e
		ttMove = e.Move
		ttScore = tt.ScoreFromTT(e.Score, ply)
		if e.Depth >= depth && !pvNode && excluded == 0 {
			switch {
			case e.Bound == tt.ExactBound:
				return ttScore
			case e.Bound == tt.LowerBound && ttScore >= beta:
				if isQuietMove(ttMove) {
					w.Tables.UpdateKillers(ply, ttMove)
					w.Tables.UpdateHistory(mover, ttMove.From(), ttMove.To(), ordering.CutoffBonus(depth))
				}
				return beta
			case e.Bound == tt.UpperBound && ttScore <= alpha:
				return alpha
			}
		}
	}

	staticEval := w.Stack.Evaluate(pos)
	w.ss[ply].staticEval = staticEval
	improving := ply >= 2 && staticEval > w.ss[ply-2].staticEval

	if !pvNode && !inCheck && excluded == 0 {
		// Reverse futility pruning.
		if depth <= 8 {
			margin := staticEval - 161*int32(depth) + 142*boolToInt32(improving)
			if margin >= beta {
				return beta
			}
		}

		// Null-move pruning.
		if ply > 0 && w.ss[ply-1].move != board.NullMove && w.nonPawnMaterial(mover) {
			slack := int32(118) - 21*int32(depth)
			if slack < 0 {
				slack = 0
			}
			if staticEval >= beta+slack {
				r := nmpBase + depth/4 + minInt(int((staticEval-beta)/128), 5)
				ep := w.pushNull()
				w.ss[ply].move = board.NullMove
				score := -w.negamax(ctx, ply+1, depth-1-r, -beta, -beta+1, !cutNode, 0)
				w.popNull(ep)
				if score >= beta {
					return beta
				}
			}
		}
	}

	// Internal iterative depth reduction.
	if depth >= 5 && !ttHit {
		depth--
	}

	// ProbCut.
	if !pvNode && depth >= 4 && !inCheck && excluded == 0 && abs32(alpha) < tt.WonInX {
		pcBeta := beta + probCutMargin - probCutImprovingDiscount*boolToInt32(improving)
		picker := NewPicker(pos, w.Tables, ttMove, ply, true, prevPiece, prevTo, hasPrev)
		for {
			m, ok := picker.Next()
			if !ok {
				break
			}
			if m == excluded || !w.push(m) {
				continue
			}
			w.ss[ply].move = m

			qscore := -w.qsearch(ctx, ply+1, -pcBeta, -pcBeta+1)
			if qscore >= pcBeta {
				score := -w.negamax(ctx, ply+1, depth-4, -pcBeta, -pcBeta+1, !cutNode, 0)
				w.pop()
				if score >= pcBeta {
					return beta
				}
				continue
			}
			w.pop()
		}
	}

	alphaOrig := alpha
	picker := NewPicker(pos, w.Tables, ttMove, ply, false, prevPiece, prevTo, hasPrev)

	quietCount := 0
	moveCount := 0
	bestScore := -infScore
	var bestMove board.Move
	var triedQuiets, triedCaptures []board.Move

	for {
		m, ok := picker.Next()
		if !ok {
			break
		}
		if m == excluded {
			continue
		}
		quiet := isQuietMove(m)

		if !pvNode && !inCheck && bestScore > -tt.WonInX {
			if quiet {
				histStat := w.Tables.History(mover, m.From(), m.To())
				if quietCount > lmpLimit(depth, improving || pvNode) && histStat <= 0 {
					break
				}
				if depth <= 10 && !pos.SeeGE(m, -68*int32(depth)+48) {
					continue
				}
				if depth <= 3 && hasPrev {
					cmh := w.Tables.CounterMoveHistory(mover, ordering.PrevIndex(prevPiece, prevTo), m.Piece(), m.To())
					if cmh <= -4096*int32(depth)+4096 {
						continue
					}
				}
			} else if m.IsCapture() && depth <= 6 && !pos.SeeGE(m, -150*int32(depth)+100) {
				continue
			}
		}

		extension := 0
		if m == ttMove && ttHit && ttEntry.Bound != tt.UpperBound && ttEntry.Depth >= depth-3 &&
			abs32(ttScore) < tt.WonInX/4 {
			sBeta := ttScore - int32(depth)
			if depth > 5 {
				sDepth := depth / 2
				sScore := w.negamax(ctx, ply, sDepth, sBeta-1, sBeta, cutNode, m)
				switch {
				case sScore < sBeta:
					extension = 1
					if !pvNode && cutNode {
						extension = 2
					}
				case sBeta >= beta:
					extension = -2
				case cutNode:
					extension = -1
				}
			} else if staticEval < sBeta {
				extension = 1
			}
		}
		if extension == 0 && depth <= 8 && pos.Phase() >= 18 {
			switch {
			case quiet && m.Piece() == board.Pawn:
				rank := int(m.To().Rank())
				if (mover == board.White && rank >= 5) || (mover == board.Black && rank <= 2) {
					extension = 1
				}
			case m.IsCapture():
				extension = 1
			}
		}

		if !w.push(m) {
			continue // illegal
		}
		w.ss[ply].move = m
		moveCount++
		if quiet {
			quietCount++
			triedQuiets = append(triedQuiets, m)
		} else {
			triedCaptures = append(triedCaptures, m)
		}

		givesCheck := pos.IsInCheck(pos.SideToMove())
		newDepth := depth - 1 + extension

		var score int32
		switch {
		case moveCount == 1:
			score = -w.negamax(ctx, ply+1, newDepth, -beta, -alpha, false, 0)

		default:
			r := 0
			if depth >= 3 && moveCount > 1 {
				histStat := int32(0)
				cmhStat := int32(0)
				if quiet {
					histStat = w.Tables.History(mover, m.From(), m.To())
					if hasPrev {
						cmhStat = w.Tables.CounterMoveHistory(mover, ordering.PrevIndex(prevPiece, prevTo), m.Piece(), m.To())
					}
				}
				prevHistVeryLow := hasPrev && isQuietMove(w.ss[ply-1].move) &&
					w.Tables.History(mover.Opponent(), w.ss[ply-1].move.From(), w.ss[ply-1].move.To()) < -ordering.MaxBonus/2
				counterOrKiller := m == w.Tables.CounterMove(mover, prevPiece, prevTo)
				k1, k2 := w.Tables.Killers(ply)
				counterOrKiller = counterOrKiller || m == k1 || m == k2

				r = reduction(depth, moveCount, lmrAdjustments{
					quiet:                quiet,
					inCheck:              inCheck,
					quietAfterTTCapture:  quiet && ttMove != 0 && ttMove.IsCapture(),
					cutNode:              cutNode,
					prevHistoryVeryLow:   prevHistVeryLow,
					improving:            improving,
					givesCheck:           givesCheck,
					singularExists:       extension > 0,
					history:              histStat,
					cmh:                  cmhStat,
					queenPromotion:       m.IsPromotion() && m.Promotion() == board.Queen,
					counterOrKillerMatch: counterOrKiller,
				})
			}
			reducedDepth := maxInt(newDepth-r, 1)
			score = -w.negamax(ctx, ply+1, reducedDepth, -(alpha + 1), -alpha, true, 0)
			if score > alpha && r > 0 {
				score = -w.negamax(ctx, ply+1, newDepth, -(alpha + 1), -alpha, !cutNode, 0)
			}
			if pvNode && score > alpha && score < beta {
				score = -w.negamax(ctx, ply+1, newDepth, -beta, -alpha, false, 0)
			}
		}
		w.pop()

		if score > bestScore {
			bestScore = score
			bestMove = m
			if score > alpha {
				alpha = score
				w.ss[ply].pv = append(w.ss[ply].pv[:0], m)
				w.ss[ply].pv = append(w.ss[ply].pv, w.ss[ply+1].pv...)
			}
		}

		if alpha >= beta {
			bonus := ordering.CutoffBonus(depth)
			penalty := ordering.NonCutoffPenalty(depth)
			if quiet {
				w.Tables.UpdateKillers(ply, m)
				w.Tables.UpdateHistory(mover, m.From(), m.To(), bonus)
				if hasPrev {
					cmhBonus := bonus
					if w.Tables.CounterMove(mover, prevPiece, prevTo) == m {
						cmhBonus = ordering.CounterMoveHistoryBonus(bonus)
					}
					w.Tables.UpdateCounterMove(mover, prevPiece, prevTo, m)
					w.Tables.UpdateCounterMoveHistory(mover, ordering.PrevIndex(prevPiece, prevTo), m.Piece(), m.To(), cmhBonus)
				}
				for _, q := range triedQuiets {
					if q == m {
						continue
					}
					w.Tables.UpdateHistory(mover, q.From(), q.To(), penalty)
					if hasPrev {
						w.Tables.UpdateCounterMoveHistory(mover, ordering.PrevIndex(prevPiece, prevTo), q.Piece(), q.To(), penalty)
					}
				}
			} else {
				w.Tables.UpdateCaptureHistory(m.Piece(), m.Captured(), m.To(), bonus)
				for _, c := range triedCaptures {
					if c == m {
						continue
					}
					w.Tables.UpdateCaptureHistory(c.Piece(), c.Captured(), c.To(), penalty)
				}
			}
			if excluded == 0 {
				w.TT.Store(pos.ZKey(), m, tt.LowerBound, alpha, depth, ply)
			}
			return beta
		}
	}

	if moveCount == 0 {
		if excluded != 0 {
			return alphaOrig // only the excluded move was legal: verification search has nothing to say
		}
		if inCheck {
			return matedIn(ply)
		}
		return drawScore(w.Nodes)
	}

	if excluded == 0 {
		bound := tt.UpperBound
		if alpha > alphaOrig {
			bound = tt.ExactBound
		}
		w.TT.Store(pos.ZKey(), bestMove, bound, alpha, depth, ply)
	}
	return alpha
}
