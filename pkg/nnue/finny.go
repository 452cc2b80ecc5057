package nnue

import "github.com/corvid-chess/corvid/pkg/board"

// finnyEntry is a per-(perspective, bucket, mirror) cached half-accumulator plus the piece
// bitboards that produced it, used to cheaply rebuild a perspective across a bucket change
// without a full from-scratch refresh.
type finnyEntry struct {
	hidden [H]int16
	pieces [board.NumColors][board.NumPieceTypes]board.Bitboard
	ready  bool
}

// FinnyCache holds one entry per (perspective, bucket, mirror). BucketOf folds file f > 3 to
// 7-f, so a king on the a-d files and its horizontal mirror on the e-h files land in the same
// bucket despite needing opposite feature-index mirroring (Index mirrors every piece square
// when the king's own file is past the center). The mirror bit must be part of the cache key,
// or a king crossing the mirror axis into an already-ready bucket restores a cached
// half-accumulator built under the other mirror convention and then applies symmetric-difference
// rows computed under the new one.
type FinnyCache struct {
	entries [board.NumColors][NumBuckets][2]finnyEntry
}

// NewFinnyCache returns an empty cache; every entry starts not-ready and is populated lazily on
// first use.
func NewFinnyCache() *FinnyCache {
	return &FinnyCache{}
}

// Refresh rebuilds perspective v of acc for king square k against pos, using the finny cache: if
// the (v, bucket, mirror) entry is ready, restore its cached half-accumulator and apply the
// symmetric difference against the current piece bitboards; otherwise perform a full
// half-refresh and populate the entry.
func (fc *FinnyCache) Refresh(net *Network, pos *board.Position, acc *Accumulator, v board.Color, k board.Square) {
	relK := relativeKing(k, v)
	bucket := BucketOf(relK)
	mirror := relK.File() > 3
	mirrorIdx := 0
	if mirror {
		mirrorIdx = 1
	}
	e := &fc.entries[v][bucket][mirrorIdx]

	if !e.ready {
		acc.HalfRefresh(net, pos, v)
		e.hidden = acc.Hidden[v]
		for c := board.Color(0); c < board.NumColors; c++ {
			for pt := board.PieceType(0); pt < board.NumPieceTypes; pt++ {
				e.pieces[c][pt] = pos.Piece(c, pt)
			}
		}
		e.ready = true
		return
	}

	acc.Hidden[v] = e.hidden
	acc.bucket[v] = bucket
	acc.mirror[v] = mirror

	for c := board.Color(0); c < board.NumColors; c++ {
		for pt := board.PieceType(0); pt < board.NumPieceTypes; pt++ {
			if pt == board.NoPieceType {
				continue
			}
			prev := e.pieces[c][pt]
			cur := pos.Piece(c, pt)
			added := cur &^ prev
			removed := prev &^ cur
			for bb := added; bb != 0; {
				sq := bb.PopLSB()
				addRow(acc.Hidden[v][:], net.Row(Index(sq, pt, c, v, k)))
			}
			for bb := removed; bb != 0; {
				sq := bb.PopLSB()
				subRow(acc.Hidden[v][:], net.Row(Index(sq, pt, c, v, k)))
			}
			e.pieces[c][pt] = cur
		}
	}
	e.hidden = acc.Hidden[v]
}
