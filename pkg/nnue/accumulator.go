package nnue

import "github.com/corvid-chess/corvid/pkg/board"

// Accumulator holds the two per-perspective hidden-layer vectors and the king-bucket/mirror
// state they were last built against, so the caller can tell whether a king move crosses a
// bucket or mirror boundary.
type Accumulator struct {
	Hidden [board.NumColors][H]int16

	bucket [board.NumColors]int
	mirror [board.NumColors]bool
}

// FullRefresh rebuilds both perspectives of acc from scratch against pos and net.
func (acc *Accumulator) FullRefresh(net *Network, pos *board.Position) {
	acc.HalfRefresh(net, pos, board.White)
	acc.HalfRefresh(net, pos, board.Black)
}

// HalfRefresh rebuilds one perspective of acc from scratch against pos and net.
func (acc *Accumulator) HalfRefresh(net *Network, pos *board.Position, v board.Color) {
	copy(acc.Hidden[v][:], net.Biases[:])
	k := pos.KingSquare(v)
	acc.bucket[v] = BucketOf(relativeKing(k, v))
	acc.mirror[v] = relativeKing(k, v).File() > 3

	for c := board.Color(0); c < board.NumColors; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			bb := pos.Piece(c, pt)
			for bb != 0 {
				sq := bb.PopLSB()
				addRow(acc.Hidden[v][:], net.Row(Index(sq, pt, c, v, k)))
			}
		}
	}
}

// relativeKing returns the king square as perspective v sees it, before any horizontal mirror.
func relativeKing(k board.Square, v board.Color) board.Square {
	if v == board.Black {
		return k.Flip()
	}
	return k
}

// NeedsFullRefresh reports whether a king move for perspective v to newKing requires a full
// half-refresh rather than an incremental add/sub: the bucket changed, or
// the king crossed the horizontal-mirror axis.
func (acc *Accumulator) NeedsFullRefresh(v board.Color, newKing board.Square) bool {
	relK := relativeKing(newKing, v)
	return BucketOf(relK) != acc.bucket[v] || (relK.File() > 3) != acc.mirror[v]
}

func addRow(h []int16, row []int16) {
	for i := range h {
		h[i] += row[i]
	}
}

func subRow(h []int16, row []int16) {
	for i := range h {
		h[i] -= row[i]
	}
}

// ApplyUpdate applies desc to acc's perspective v incrementally, using net to look up feature
// rows. Callers must first check NeedsFullRefresh when desc
// includes a king move for v and take the full/finny-refresh path instead.
func (acc *Accumulator) ApplyUpdate(net *Network, v board.Color, k board.Square, desc *board.UpdateDescriptor) {
	h := acc.Hidden[v][:]
	for _, ps := range desc.Adds {
		addRow(h, net.Row(Index(ps.Square, ps.Piece, ps.Color, v, k)))
	}
	for _, ps := range desc.Subs {
		subRow(h, net.Row(Index(ps.Square, ps.Piece, ps.Color, v, k)))
	}
}

// Evaluate computes the scalar evaluation from stm's point of view: bias plus
// the ReLU-activated hidden units dotted with the two output-weight vectors, divided by Scale.
func (acc *Accumulator) Evaluate(net *Network, stm board.Color) int32 {
	opp := stm.Opponent()
	var sum int32
	for i := 0; i < H; i++ {
		sum += relu(acc.Hidden[stm][i]) * int32(net.OutWeightsSTM[i])
		sum += relu(acc.Hidden[opp][i]) * int32(net.OutWeightsOpp[i])
	}
	return (net.OutputBias + sum) / Scale
}

func relu(v int16) int32 {
	if v < 0 {
		return 0
	}
	return int32(v)
}
