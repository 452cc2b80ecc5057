package search

import (
	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/ordering"
)

// Capture/promotion scoring constants.
const (
	captureBonus = 400000
	badCapture   = -16384
)

type scoredMove struct {
	move  board.Move
	score int32
	bad   bool // capture/promotion failed its SEE test.
}

type pickerStage int

const (
	stageTT pickerStage = iota
	stageGenCaptures
	stageGoodCaptures
	stageKiller1
	stageKiller2
	stageCounter
	stageGenQuiets
	stageQuiets
	stageBadCaptures
	stageDone
)

// Picker is the staged, on-demand move orderer of: one instance per node, generating and
// scoring each group lazily so the common early-cutoff case never pays for quiet generation.
type Picker struct {
	pos    *board.Position
	tables *ordering.Tables

	ttMove board.Move

	killer1, killer2 board.Move
	counter          board.Move
	haveCounter      bool

	prevPiece board.PieceType
	prevTo    board.Square
	hasPrev   bool

	stage pickerStage

	capturesOnly bool // quiescence mode: never advance past good captures.

	captures []scoredMove
	capIdx   int

	badCaps []scoredMove
	badIdx  int

	quiets   []scoredMove
	quietIdx int

	triedTT bool
}

// NewPicker builds a picker for one node. prevPiece/prevTo identify the previous ply's move, used
// for the counter-move and counter-move-history lookups; hasPrev is false at the root. Right
// after a null move the search passes hasPrev true with the null move's own piece and square.
func NewPicker(pos *board.Position, tables *ordering.Tables, ttMove board.Move, ply int, capturesOnly bool, prevPiece board.PieceType, prevTo board.Square, hasPrev bool) *Picker {
	p := &Picker{
		pos:          pos,
		tables:       tables,
		ttMove:       ttMove,
		capturesOnly: capturesOnly,
	}
	if ttMove != 0 && pos.MoveIsPseudoLegal(ttMove) {
		p.stage = stageTT
	} else {
		p.stage = stageGenCaptures
	}
	p.prevPiece, p.prevTo, p.hasPrev = prevPiece, prevTo, hasPrev
	if !capturesOnly {
		k1, k2 := tables.Killers(ply)
		p.killer1, p.killer2 = k1, k2
		if hasPrev {
			p.counter = tables.CounterMove(pos.SideToMove(), prevPiece, prevTo)
			p.haveCounter = p.counter != 0
		}
	}
	return p
}

// Next returns the next move in staged order, or false when exhausted.
func (p *Picker) Next() (board.Move, bool) {
	for {
		switch p.stage {
		case stageTT:
			p.stage = stageGenCaptures
			p.triedTT = true
			return p.ttMove, true

		case stageGenCaptures:
			p.generateCaptures()
			p.stage = stageGoodCaptures

		case stageGoodCaptures:
			if m, ok := p.nextBest(&p.captures, &p.capIdx, true); ok {
				return m, true
			}
			if p.capturesOnly {
				p.stage = stageDone
				continue
			}
			p.stage = stageKiller1

		case stageKiller1:
			p.stage = stageKiller2
			if p.killer1 != 0 && p.killer1 != p.ttMove && p.pos.MoveIsPseudoLegal(p.killer1) {
				return p.killer1, true
			}

		case stageKiller2:
			p.stage = stageCounter
			if p.killer2 != 0 && p.killer2 != p.ttMove && p.killer2 != p.killer1 && p.pos.MoveIsPseudoLegal(p.killer2) {
				return p.killer2, true
			}

		case stageCounter:
			p.stage = stageGenQuiets
			if p.haveCounter && p.counter != p.ttMove && p.counter != p.killer1 && p.counter != p.killer2 &&
				p.pos.MoveIsPseudoLegal(p.counter) {
				return p.counter, true
			}

		case stageGenQuiets:
			p.generateQuiets()
			p.stage = stageQuiets

		case stageQuiets:
			if m, ok := p.nextBest(&p.quiets, &p.quietIdx, false); ok {
				return m, true
			}
			p.stage = stageBadCaptures

		case stageBadCaptures:
			if p.badIdx < len(p.badCaps) {
				m := p.badCaps[p.badIdx]
				p.badIdx++
				return m.move, true
			}
			p.stage = stageDone

		case stageDone:
			return 0, false
		}
	}
}

// nextBest performs the lazy selection sort of: swap the best-scored remaining move into the
// current position and return it. Good-capture mode additionally routes bad-capture-marked moves
// into the deferred badCaps slice instead of returning them here.
func (p *Picker) nextBest(moves *[]scoredMove, idx *int, routeBad bool) (board.Move, bool) {
	m := *moves
	for {
		if *idx >= len(m) {
			return 0, false
		}
		best := *idx
		for i := *idx + 1; i < len(m); i++ {
			if m[i].score > m[best].score {
				best = i
			}
		}
		m[*idx], m[best] = m[best], m[*idx]
		cur := m[*idx]
		*idx++

		if routeBad && cur.bad {
			p.badCaps = append(p.badCaps, cur)
			continue
		}
		return cur.move, true
	}
}

func (p *Picker) generateCaptures() {
	for _, m := range p.pos.GenerateMoves(true) {
		if m == p.ttMove {
			continue
		}
		if !m.IsCapture() && !m.IsPromotion() {
			continue
		}
		score, bad := scoreCapture(p.pos, p.tables, m)
		p.captures = append(p.captures, scoredMove{move: m, score: score, bad: bad})
	}
}

func (p *Picker) generateQuiets() {
	for _, m := range p.pos.GenerateMoves(false) {
		if m == p.ttMove || m == p.killer1 || m == p.killer2 || (p.haveCounter && m == p.counter) {
			continue
		}
		if m.IsCapture() || m.IsPromotion() {
			continue
		}
		p.quiets = append(p.quiets, scoredMove{move: m, score: p.scoreQuiet(m)})
	}
}

// scoreCapture implements stage 2, returning the combined ordering score and whether the
// move failed its SEE test (so nextBest can defer it to the bad-captures stage regardless of how
// the saturated capture-history term happens to move the combined score around zero).
func scoreCapture(pos *board.Position, tables *ordering.Tables, m board.Move) (int32, bool) {
	if m.IsCapture() {
		captured := m.Captured()
		value := captured.Value()
		if m.IsPromotion() {
			value += m.Promotion().Value() - board.Pawn.Value()
		}
		hist := tables.CaptureHistory(m.Piece(), captured, m.To())
		value += hist
		threshold := -hist / 8192 * 100
		if pos.SeeGE(m, threshold) {
			return value + captureBonus, false
		}
		return value + badCapture, true
	}

	// Non-capturing promotion.
	hist := tables.CaptureHistory(board.Pawn, board.NoPieceType, m.To())
	value := m.Promotion().Value() - board.Pawn.Value() + hist
	if m.Promotion() == board.Queen && pos.SeeGE(m, 0) {
		return value + captureBonus, false
	}
	return value + badCapture, true
}

// scoreQuiet implements stage 5.
func (p *Picker) scoreQuiet(m board.Move) int32 {
	c := p.pos.SideToMove()
	score := p.tables.History(c, m.From(), m.To())
	if p.hasPrev {
		idx := ordering.PrevIndex(p.prevPiece, p.prevTo)
		score += p.tables.CounterMoveHistory(c, idx, m.Piece(), m.To())
	}
	return score
}
