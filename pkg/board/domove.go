package board

// Undo captures what DoMove needs to reverse a single move.
type Undo struct {
	move Move

	prevCastling      CastlingRights
	prevEnPassant     Bitboard
	prevHalfmove      int
	prevZKey          ZobristKey
	prevPawnKey       ZobristKey
	prevPieceCountKey ZobristKey
	prevPhase         int
}

// DoMove applies one of the seven move transitions: plain move, capture, king/queen-side
// castle, en passant, promotion, capture-promotion, double pawn push. It returns false iff the
// move leaves the mover's own king attacked, in which case the position is fully restored before
// returning (I3).
func (p *Position) DoMove(m Move) (Undo, bool) {
	undo := Undo{
		move:              m,
		prevCastling:      p.castlingRights,
		prevEnPassant:     p.enPassantTarget,
		prevHalfmove:      p.halfmoveClock,
		prevZKey:          p.zKey,
		prevPawnKey:       p.pawnKey,
		prevPieceCountKey: p.pieceCountKey,
		prevPhase:         p.phase,
	}

	turn := p.sideToMove
	desc := p.applyMovePieces(m, turn, true)

	// En passant target: clear first (XOR out of key), then re-set only for a double push.
	if sq, ok := p.EnPassantSquare(); ok {
		p.zKey ^= p.zt.EnPassant(sq)
	}
	p.enPassantTarget = 0
	if m.IsDoublePush() {
		target := NewSquare(m.From().File(), Rank((int(m.From().Rank())+int(m.To().Rank()))/2))
		p.enPassantTarget = BitMask(target)
		p.zKey ^= p.zt.EnPassant(target)
	}

	// Castling rights: cleared by a king move, a rook move off a rights square, or a capture
	// landing on a rights square (I6, rules a/b/c).
	oldCastlingKey := p.castlingZobrist()
	switch {
	case m.Piece() == King:
		p.castlingRights = p.castlingRights.WithoutColor(turn)
	case m.Piece() == Rook:
		p.castlingRights = p.castlingRights.Clear(m.From())
	}
	if m.IsCapture() && !m.IsEnPassant() && m.Captured() == Rook {
		p.castlingRights = p.castlingRights.Clear(m.To())
	}
	newCastlingKey := p.castlingZobrist()
	p.zKey ^= oldCastlingKey ^ newCastlingKey

	// Halfmove clock resets on pawn move or capture, increments otherwise.
	if m.Piece() == Pawn || m.IsCapture() {
		p.halfmoveClock = 0
	} else {
		p.halfmoveClock++
	}

	p.zKey ^= p.zt.Turn()
	p.sideToMove = turn.Opponent()
	p.plyClock++

	p.recomputePhase()
	p.recomputePieceCountKey()

	p.QueueUpdate(desc)

	if p.IsAttacked(turn.Opponent(), p.KingSquare(turn)) {
		p.UndoMove(undo)
		return Undo{}, false
	}
	return undo, true
}

// UndoMove reverses the most recent (legal) DoMove, using the Undo it returned.
func (p *Position) UndoMove(u Undo) {
	p.sideToMove = p.sideToMove.Opponent()
	p.applyMovePieces(u.move, p.sideToMove, false)

	p.castlingRights = u.prevCastling
	p.enPassantTarget = u.prevEnPassant
	p.halfmoveClock = u.prevHalfmove
	p.zKey = u.prevZKey
	p.pawnKey = u.prevPawnKey
	p.pieceCountKey = u.prevPieceCountKey
	p.phase = u.prevPhase
	p.plyClock--
	p.pending = nil
}

// applyMovePieces performs (forward=true) or reverses (forward=false) the bitboard-level piece
// movement for m by turn, and, when forward, returns the NNUE update descriptor.
func (p *Position) applyMovePieces(m Move, turn Color, forward bool) *UpdateDescriptor {
	opp := turn.Opponent()
	from, to, piece := m.From(), m.To(), m.Piece()

	var desc UpdateDescriptor
	add := func(c Color, pt PieceType, sq Square) { desc.Adds = append(desc.Adds, PieceSquare{c, pt, sq}) }
	sub := func(c Color, pt PieceType, sq Square) { desc.Subs = append(desc.Subs, PieceSquare{c, pt, sq}) }

	switch {
	case m.IsCastle():
		rookFrom := m.CastleRookFrom()
		rookToFile := File(5) // f-file
		if m.IsQueenCastle() {
			rookToFile = 3 // d-file
		}
		rookTo := NewSquare(rookToFile, from.Rank())

		if forward {
			p.remove(turn, King, from)
			p.remove(turn, Rook, rookFrom)
			p.place(turn, King, to)
			p.place(turn, Rook, rookTo)
			add(turn, King, to)
			sub(turn, King, from)
			add(turn, Rook, rookTo)
			sub(turn, Rook, rookFrom)
		} else {
			p.remove(turn, King, to)
			p.remove(turn, Rook, rookTo)
			p.place(turn, King, from)
			p.place(turn, Rook, rookFrom)
		}
		desc.KingMoved, desc.KingColor, desc.KingFrom, desc.KingTo = true, turn, from, to

	case m.IsEnPassant():
		capSq := NewSquare(to.File(), from.Rank())
		if forward {
			p.remove(turn, Pawn, from)
			p.place(turn, Pawn, to)
			p.remove(opp, Pawn, capSq)
			add(turn, Pawn, to)
			sub(turn, Pawn, from)
			sub(opp, Pawn, capSq)
		} else {
			p.remove(turn, Pawn, to)
			p.place(turn, Pawn, from)
			p.place(opp, Pawn, capSq)
		}

	case m.IsPromotion() && m.IsCapture():
		captured := m.Captured()
		if forward {
			p.remove(turn, Pawn, from)
			p.remove(opp, captured, to)
			p.place(turn, m.Promotion(), to)
			add(turn, m.Promotion(), to)
			sub(turn, Pawn, from)
			sub(opp, captured, to)
		} else {
			p.remove(turn, m.Promotion(), to)
			p.place(opp, captured, to)
			p.place(turn, Pawn, from)
		}

	case m.IsPromotion():
		if forward {
			p.remove(turn, Pawn, from)
			p.place(turn, m.Promotion(), to)
			add(turn, m.Promotion(), to)
			sub(turn, Pawn, from)
		} else {
			p.remove(turn, m.Promotion(), to)
			p.place(turn, Pawn, from)
		}

	case m.IsCapture():
		captured := m.Captured()
		if forward {
			p.remove(turn, piece, from)
			p.remove(opp, captured, to)
			p.place(turn, piece, to)
			add(turn, piece, to)
			sub(turn, piece, from)
			sub(opp, captured, to)
		} else {
			p.remove(turn, piece, to)
			p.place(opp, captured, to)
			p.place(turn, piece, from)
		}

	default: // plain move, push or double push
		if forward {
			p.remove(turn, piece, from)
			p.place(turn, piece, to)
			add(turn, piece, to)
			sub(turn, piece, from)
		} else {
			p.remove(turn, piece, to)
			p.place(turn, piece, from)
		}
		if piece == King {
			desc.KingMoved, desc.KingColor, desc.KingFrom, desc.KingTo = true, turn, from, to
		}
	}

	if !forward {
		return nil
	}
	return &desc
}
