package nnue

import "github.com/corvid-chess/corvid/pkg/board"

// BucketOf returns the king-bucket (0..NumBuckets-1) for a perspective-relative king square.
// Buckets are mirror-symmetric across files: a king on file f and on its mirror file 7-f share
// a bucket, since Index mirrors the piece squares rather than the king square itself when the
// king sits on the e..h half. Callers that cache state per bucket (FinnyCache) must still key on
// the mirror side separately, since a shared bucket does not mean a shared feature transform.
//
// Files closer to the edge get a bucket per rank (the rook-file king is the most common and most
// positionally distinct), while the center files are coarser, for 8+4+2+1 = 15 buckets total.
func BucketOf(k board.Square) int {
	f := k.File()
	if f > 3 {
		f = 7 - f
	}
	r := int(k.Rank())
	switch f {
	case 0:
		return r
	case 1:
		return 8 + r/2
	case 2:
		return 12 + r/4
	default: // file 3
		return 14
	}
}

// pieceToIndex maps {own,opp} x {P,R,N,B,Q,K} to 0..11.
func pieceToIndex(sameSide bool, pt board.PieceType) int {
	var base int
	if !sameSide {
		base = 6
	}
	switch pt {
	case board.Pawn:
		return base + 0
	case board.Rook:
		return base + 1
	case board.Knight:
		return base + 2
	case board.Bishop:
		return base + 3
	case board.Queen:
		return base + 4
	case board.King:
		return base + 5
	default:
		panic("nnue: invalid piece type")
	}
}

// Index computes the first-layer input index for a piece on sq, for perspective v whose king
// sits on k.
func Index(sq board.Square, pt board.PieceType, pc, v board.Color, k board.Square) int {
	relK, relSq := k, sq
	if v == board.Black {
		relK = k.Flip()
		relSq = sq.Flip()
	}
	bucket := BucketOf(relK)
	if relK.File() > 3 {
		relSq = relSq.MirrorFile()
	}
	return int(relSq) + pieceToIndex(v == pc, pt)*64 + bucket*64*NumPlanes
}
