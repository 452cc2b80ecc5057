package search

import (
	"sync/atomic"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/nnue"
	"github.com/corvid-chess/corvid/pkg/ordering"
	"github.com/corvid-chess/corvid/pkg/tt"
)

// MaxPly bounds the per-worker search stack, matching tt.MaxPly/ordering.MaxPly.
const MaxPly = tt.MaxPly

// nodeCheckMask controls how often a worker consults the shared stop flag: every 2048 nodes.
const nodeCheckMask = 2047

// stackFrame is the per-ply scratch state negamax threads through recursive calls: the move
// that reached this ply (counter-move/NMP bookkeeping), the static evaluation (the "improving"
// heuristic looks two plies back), and the principal variation rooted at this ply.
type stackFrame struct {
	move       board.Move
	staticEval int32
	pv         []board.Move
}

// Worker is the thread-local state of one lazy-SMP search thread: its own game (position +
// repetition history), accumulator stack and ordering tables, sharing only the transposition
// table and the stop flag with its siblings.
type Worker struct {
	ID int

	Game  *board.Game
	Stack *nnue.Stack
	Net   *nnue.Network

	Tables *ordering.Tables
	TT     *tt.Table

	ss [MaxPly + 8]stackFrame

	Nodes    uint64
	SelDepth int

	stop    *atomic.Bool
	stopped bool // latched once ShouldStop has seen stop set
}

// NewWorker builds a worker for one lazy-SMP search thread over game, sharing net and table with
// every other worker in the launch.
func NewWorker(id int, game *board.Game, net *nnue.Network, table *tt.Table, stop *atomic.Bool) *Worker {
	return &Worker{
		ID:     id,
		Game:   game,
		Stack:  nnue.NewStack(net, game.Position()),
		Net:    net,
		Tables: ordering.New(),
		TT:     table,
		stop:   stop,
	}
}

// ShouldStop reports whether the search must unwind now. The shared flag is loaded every
// nodeCheckMask+1 nodes rather than every node, so the atomic load doesn't dominate the hot path;
// once it has been seen set, ShouldStop keeps returning true.
func (w *Worker) ShouldStop() bool {
	if !w.stopped && w.Nodes&nodeCheckMask == 0 {
		w.stopped = w.stop.Load()
	}
	return w.stopped
}

// nonPawnMaterial reports whether c has any piece other than pawns or king, the zugzwang guard
// null-move pruning requires.
func (w *Worker) nonPawnMaterial(c board.Color) bool {
	pos := w.Game.Position()
	for pt := board.Knight; pt <= board.Queen; pt++ {
		if pos.Piece(c, pt) != 0 {
			return true
		}
	}
	return false
}

func (w *Worker) push(m board.Move) bool {
	if !w.Game.PushMove(m) {
		return false
	}
	w.Stack.Push()
	return true
}

func (w *Worker) pop() {
	w.Game.PopMove()
	w.Stack.Pop()
}

func (w *Worker) pushNull() board.Bitboard {
	ep := w.Game.Position().DoNullMove()
	w.Stack.Push()
	return ep
}

func (w *Worker) popNull(ep board.Bitboard) {
	w.Stack.Pop()
	w.Game.Position().UndoNullMove(ep)
}
