// Package ordering holds the move-ordering heuristics that bias search toward cutoffs before
// static exchange or deep search resolves a move's true value:
// killers, a counter-move table, history, capture-history and counter-move-history. One instance
// lives per search worker, so no synchronization is needed internally.
package ordering

import "github.com/corvid-chess/corvid/pkg/board"

// MaxBonus bounds both the raw bonus/penalty applied to a single update and the asymptote the
// gravity formula converges to.
const MaxBonus = 16384

// MaxPly bounds the killer table and the search stack depth it is indexed by.
const MaxPly = 128

// Tables holds every per-worker ordering heuristic.
type Tables struct {
	killers     [MaxPly][2]board.Move
	counterMove [board.NumColors][board.NumPieceTypes][64]board.Move

	history        [board.NumColors][64][64]int32
	captureHistory [board.NumPieceTypes][board.NumPieceTypes][64]int32
	cmHistory      [board.NumColors][prevIndexSpan][board.NumPieceTypes][64]int32
}

// prevIndexSpan covers prevIndex's range: piece type (0..6) + 6*square (0..63).
const prevIndexSpan = int(board.NumPieceTypes) + 6*64

// New returns an empty set of ordering tables.
func New() *Tables {
	return &Tables{}
}

// Reset clears every table, per the `ucinewgame` lifecycle rule.
func (t *Tables) Reset() {
	*t = Tables{}
}

// ResetKillers clears the killer table, run once per root `go` search.
func (t *Tables) ResetKillers() {
	t.killers = [MaxPly][2]board.Move{}
}

// Killers returns the two killer moves recorded at ply.
func (t *Tables) Killers(ply int) (board.Move, board.Move) {
	k := &t.killers[ply]
	return k[0], k[1]
}

// UpdateKillers records m as the newest killer at ply on a beta cutoff from a quiet move,
// demoting the previous killer-1 to killer-2 unless m already is killer-1.
func (t *Tables) UpdateKillers(ply int, m board.Move) {
	k := &t.killers[ply]
	if k[0] == m {
		return
	}
	k[1] = k[0]
	k[0] = m
}

// CounterMove returns the move recorded to refute (prevPiece, prevTo) for color c.
func (t *Tables) CounterMove(c board.Color, prevPiece board.PieceType, prevTo board.Square) board.Move {
	return t.counterMove[c][prevPiece][prevTo]
}

// UpdateCounterMove records m as the refutation of (prevPiece, prevTo) on a beta cutoff from a
// quiet move.
func (t *Tables) UpdateCounterMove(c board.Color, prevPiece board.PieceType, prevTo board.Square, m board.Move) {
	t.counterMove[c][prevPiece][prevTo] = m
}

// History returns the history counter for a quiet move by color.
func (t *Tables) History(c board.Color, from, to board.Square) int32 {
	return t.history[c][from][to]
}

// UpdateHistory applies the gravitational bonus/penalty formula to the (from,to) history counter.
func (t *Tables) UpdateHistory(c board.Color, from, to board.Square, bonus int32) {
	applyGravity(&t.history[c][from][to], bonus)
}

// CaptureHistory returns the capture-history counter for a (piece, captured, to) triple.
func (t *Tables) CaptureHistory(piece, captured board.PieceType, to board.Square) int32 {
	return t.captureHistory[piece][captured][to]
}

// UpdateCaptureHistory applies the gravity formula to a capture-history counter.
func (t *Tables) UpdateCaptureHistory(piece, captured board.PieceType, to board.Square, bonus int32) {
	applyGravity(&t.captureHistory[piece][captured][to], bonus)
}

// PrevIndex packs the previous move's (piece, to) into counter-move-history's second dimension.
func PrevIndex(prevPiece board.PieceType, prevTo board.Square) int {
	return int(prevPiece) + 6*int(prevTo)
}

// CounterMoveHistory returns the counter-move-history counter for a candidate move, keyed by the
// previous move's (piece, to).
func (t *Tables) CounterMoveHistory(c board.Color, prevIdx int, piece board.PieceType, to board.Square) int32 {
	return t.cmHistory[c][prevIdx][piece][to]
}

// UpdateCounterMoveHistory applies the gravity formula to a counter-move-history counter.
func (t *Tables) UpdateCounterMoveHistory(c board.Color, prevIdx int, piece board.PieceType, to board.Square, bonus int32) {
	applyGravity(&t.cmHistory[c][prevIdx][piece][to], bonus)
}

// applyGravity implements `table[k] += 32*b - table[k]*|b|/512`, clamping the raw bonus to
// ±MaxBonus first so the counter asymptotes rather than overflows.
func applyGravity(cell *int32, bonus int32) {
	if bonus > MaxBonus {
		bonus = MaxBonus
	}
	if bonus < -MaxBonus {
		bonus = -MaxBonus
	}
	abs := bonus
	if abs < 0 {
		abs = -abs
	}
	*cell += 32*bonus - *cell*abs/512
}

// CutoffBonus returns the raw bonus magnitude for a move that caused a beta cutoff at the given
// depth.
func CutoffBonus(depth int) int32 {
	return int32(depth * depth)
}

// NonCutoffPenalty returns the raw (negative) bonus for a searched move that did not raise alpha
// at the given depth.
func NonCutoffPenalty(depth int) int32 {
	return int32(-depth * (depth - 1))
}

// CounterMoveHistoryBonus scales a quiet bonus by 4x for counter-move-history.
func CounterMoveHistoryBonus(quietBonus int32) int32 {
	return 4 * quietBonus
}
