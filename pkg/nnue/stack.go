package nnue

import "github.com/corvid-chess/corvid/pkg/board"

// Stack is the caller-owned accumulator stack: the position only records what
// changed via UpdateDescriptor, and the search grows/shrinks this stack in lockstep with its own
// make/unmake, keeping position and evaluator memory decoupled.
type Stack struct {
	net   *Network
	finny *FinnyCache
	frames []Accumulator
}

// NewStack builds a stack with a single fully-refreshed frame for pos.
func NewStack(net *Network, pos *board.Position) *Stack {
	s := &Stack{net: net, finny: NewFinnyCache()}
	var root Accumulator
	root.FullRefresh(net, pos)
	s.frames = []Accumulator{root}
	return s
}

// Push grows the stack by one frame, copying the current top forward: the index advances by
// one; the copy is lazily brought up to date by the next Evaluate.
func (s *Stack) Push() {
	s.frames = append(s.frames, s.frames[len(s.frames)-1])
}

// Pop shrinks the stack by one frame, reversing the most recent Push.
func (s *Stack) Pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

// Depth returns the number of frames currently on the stack.
func (s *Stack) Depth() int { return len(s.frames) }

func (s *Stack) top() *Accumulator { return &s.frames[len(s.frames)-1] }

// Evaluate materializes pos's pending update descriptor (if any) into the top frame, then
// returns the scalar evaluation from pos's side to move. Callers must evaluate at every
// non-leaf node: an intervening unmaterialized move will be silently skipped, since only the
// latest descriptor survives on the position.
func (s *Stack) Evaluate(pos *board.Position) int32 {
	s.Materialize(pos)
	return s.top().Evaluate(s.net, pos.SideToMove())
}

// Materialize applies pos's pending update descriptor, if any, to the top frame without
// computing an evaluation. Safe to call when there is nothing pending (a no-op).
func (s *Stack) Materialize(pos *board.Position) {
	desc, ok := pos.TakePendingUpdate()
	if !ok {
		return
	}
	acc := s.top()
	for v := board.Color(0); v < board.NumColors; v++ {
		k := pos.KingSquare(v)
		if desc.KingMoved && desc.KingColor == v && acc.NeedsFullRefresh(v, desc.KingTo) {
			s.finny.Refresh(s.net, pos, acc, v, k)
			continue
		}
		acc.ApplyUpdate(s.net, v, k, desc)
	}
}
