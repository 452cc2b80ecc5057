package board

// DoNullMove flips the side to move without placing or removing any piece, for null-move
// pruning. It returns the previous en passant target, which
// UndoNullMove needs to restore exactly.
func (p *Position) DoNullMove() Bitboard {
	prevEP := p.enPassantTarget
	if sq, ok := p.EnPassantSquare(); ok {
		p.zKey ^= p.zt.EnPassant(sq)
	}
	p.enPassantTarget = 0
	p.sideToMove = p.sideToMove.Opponent()
	p.zKey ^= p.zt.Turn()
	p.plyClock++
	return prevEP
}

// UndoNullMove reverses DoNullMove; prevEP is the value DoNullMove returned.
func (p *Position) UndoNullMove(prevEP Bitboard) {
	p.plyClock--
	p.zKey ^= p.zt.Turn()
	p.sideToMove = p.sideToMove.Opponent()
	p.enPassantTarget = prevEP
	if sq, ok := p.EnPassantSquare(); ok {
		p.zKey ^= p.zt.EnPassant(sq)
	}
}
