package board

// promotionPieces lists the pieces a pawn may promote to, in the order the generator emits them.
var promotionPieces = [4]PieceType{Queen, Rook, Bishop, Knight}

// GenerateMoves appends pseudo-legal moves for side to move into a freshly allocated slice.
// When capturesOnly is set, quiet moves are restricted to promotions, matching qsearch's
// captures-and-promotions generation mode.
func (p *Position) GenerateMoves(capturesOnly bool) []Move {
	var moves []Move
	c := p.sideToMove
	opp := c.Opponent()
	own := p.allPieces[c]

	moves = p.generatePawnMoves(moves, c, opp, capturesOnly)

	for pt := Knight; pt <= King; pt++ {
		if pt == King {
			continue // king handled after castling below
		}
		bb := p.pieces[c][pt]
		for bb != 0 {
			from := bb.PopLSB()
			targets := p.AttacksFrom(pt, c, from) &^ own
			moves = p.emitTargets(moves, pt, from, targets, opp, capturesOnly)
		}
	}

	kingSq := p.KingSquare(c)
	kingTargets := KingAttackboard(kingSq) &^ own
	moves = p.emitTargets(moves, King, kingSq, kingTargets, opp, capturesOnly)

	if !capturesOnly {
		moves = p.generateCastles(moves, c)
	}
	return moves
}

func (p *Position) emitTargets(moves []Move, pt PieceType, from Square, targets Bitboard, opp Color, capturesOnly bool) []Move {
	for targets != 0 {
		to := targets.PopLSB()
		if p.occupied.IsSet(to) {
			_, captured, _ := p.PieceAt(to)
			moves = append(moves, NewCapture(from, to, pt, captured))
		} else if !capturesOnly {
			moves = append(moves, NewMove(from, to, pt))
		}
	}
	return moves
}

func (p *Position) generatePawnMoves(moves []Move, c, opp Color, capturesOnly bool) []Move {
	pawns := p.pieces[c][Pawn]
	empty := ^p.occupied
	promoRank := PawnPromotionRank(c)
	startRank := PawnStartRank(c)

	dir := 1
	if c == Black {
		dir = -1
	}

	for bb := pawns; bb != 0; {
		from := bb.PopLSB()

		to1 := Square(int(from) + 8*dir)
		if to1 < NumSquares && empty.IsSet(to1) {
			if BitMask(to1)&promoRank != 0 {
				for _, promo := range promotionPieces {
					moves = append(moves, NewPromotion(from, to1, promo))
				}
			} else if !capturesOnly {
				moves = append(moves, NewMove(from, to1, Pawn))
				if BitMask(from)&startRank != 0 {
					to2 := Square(int(to1) + 8*dir)
					if empty.IsSet(to2) {
						moves = append(moves, NewDoublePush(from, to2, c))
					}
				}
			}
		}

		targets := PawnAttackboard(c, BitMask(from))
		for t := targets; t != 0; {
			to := t.PopLSB()
			switch {
			case p.enPassantTarget.IsSet(to):
				moves = append(moves, NewEnPassant(from, to))
			case p.allPieces[opp].IsSet(to):
				_, captured, _ := p.PieceAt(to)
				if BitMask(to)&promoRank != 0 {
					for _, promo := range promotionPieces {
						moves = append(moves, NewCapturePromotion(from, to, captured, promo))
					}
				} else {
					moves = append(moves, NewCapture(from, to, Pawn, captured))
				}
			}
		}
	}
	return moves
}

// generateCastles appends FRC-aware castling moves: the king lands on the g/c file, the
// rook on the f/d file; no piece may occupy the transit union except the two pieces being
// moved, and no king transit square may be attacked.
func (p *Position) generateCastles(moves []Move, c Color) []Move {
	if p.IsInCheck(c) {
		return moves
	}
	kingSq := p.KingSquare(c)
	rank := kingSq.Rank()
	opp := c.Opponent()

	tryCastle := func(kingSide bool) {
		var rookSq Square
		var ok bool
		if kingSide {
			rookSq, ok = p.castlingRights.KingSideRook(c, kingSq)
		} else {
			rookSq, ok = p.castlingRights.QueenSideRook(c, kingSq)
		}
		if !ok {
			return
		}

		kingToFile, rookToFile := File(6), File(5)
		if !kingSide {
			kingToFile, rookToFile = 2, 3
		}
		kingTo := NewSquare(kingToFile, rank)
		rookTo := NewSquare(rookToFile, rank)

		occWithoutMovers := p.occupied &^ BitMask(kingSq) &^ BitMask(rookSq)
		transit := between(kingSq, kingTo) | BitMask(kingTo) | between(rookSq, rookTo) | BitMask(rookTo)
		transit &^= BitMask(kingSq) | BitMask(rookSq)
		if transit&occWithoutMovers != 0 {
			return
		}

		for sq := minSq(kingSq, kingTo); sq <= maxSq(kingSq, kingTo); sq++ {
			if p.SquareAttackedBy(opp, sq, p.occupied) != 0 {
				return
			}
		}

		moves = append(moves, NewCastle(kingSq, kingTo, rookSq, kingSide))
	}

	tryCastle(true)
	tryCastle(false)
	return moves
}

func minSq(a, b Square) Square {
	if a < b {
		return a
	}
	return b
}

func maxSq(a, b Square) Square {
	if a > b {
		return a
	}
	return b
}

// between returns the open bitboard strictly between two squares on the same rank.
func between(a, b Square) Bitboard {
	if a > b {
		a, b = b, a
	}
	var bb Bitboard
	for sq := a + 1; sq < b; sq++ {
		bb |= BitMask(sq)
	}
	return bb
}

// MoveIsPseudoLegal validates a candidate move encoding against the current position without
// regenerating the full move list, used to cheaply validate transposition-table and
// killer/counter-move hints before trying them.
func (p *Position) MoveIsPseudoLegal(m Move) bool {
	if !m.ReservedOK() || m.IsNull() {
		return false
	}
	c := p.sideToMove
	from, to := m.From(), m.To()
	if !from.IsValid() || !to.IsValid() || from == to {
		return false
	}

	col, pt, ok := p.PieceAt(from)
	if !ok || col != c || pt != m.Piece() {
		return false
	}
	if p.allPieces[c].IsSet(to) {
		return false
	}

	if m.IsCapture() {
		if m.IsEnPassant() {
			if pt != Pawn || !p.enPassantTarget.IsSet(to) {
				return false
			}
			capSq := NewSquare(to.File(), from.Rank())
			if ocol, opt, ook := p.PieceAt(capSq); !ook || ocol == c || opt != Pawn {
				return false
			}
		} else {
			ocol, opt, ook := p.PieceAt(to)
			if !ook || ocol == c || opt != m.Captured() {
				return false
			}
		}
	} else if !m.IsCastle() {
		if p.occupied.IsSet(to) {
			return false
		}
	}

	if m.IsPromotion() {
		if pt != Pawn || m.Promotion() == NoPieceType || m.Promotion() == Pawn || m.Promotion() == King {
			return false
		}
		if BitMask(to)&PawnPromotionRank(c) == 0 {
			return false
		}
	}

	if m.IsCastle() {
		if pt != King {
			return false
		}
		kingSide := m.IsKingCastle()
		rookSq, has := p.castlingRights.KingSideRook(c, from)
		if !kingSide {
			rookSq, has = p.castlingRights.QueenSideRook(c, from)
		}
		if !has || rookSq != m.CastleRookFrom() {
			return false
		}
		if p.IsInCheck(c) {
			return false
		}
		kingToFile := File(6)
		if !kingSide {
			kingToFile = 2
		}
		if to != NewSquare(kingToFile, from.Rank()) {
			return false
		}
		rookToFile := File(5)
		if !kingSide {
			rookToFile = 3
		}
		rookTo := NewSquare(rookToFile, from.Rank())
		occWithoutMovers := p.occupied &^ BitMask(from) &^ BitMask(rookSq)
		transit := between(from, to) | BitMask(to) | between(rookSq, rookTo) | BitMask(rookTo)
		transit &^= BitMask(from) | BitMask(rookSq)
		if transit&occWithoutMovers != 0 {
			return false
		}
		for sq := minSq(from, to); sq <= maxSq(from, to); sq++ {
			if p.SquareAttackedBy(c.Opponent(), sq, p.occupied) != 0 {
				return false
			}
		}
		return true
	}

	switch pt {
	case Pawn:
		return p.pawnMoveReachable(m, c, from, to)
	default:
		return p.AttacksFrom(pt, c, from).IsSet(to)
	}
}

func (p *Position) pawnMoveReachable(m Move, c Color, from, to Square) bool {
	dir := 1
	if c == Black {
		dir = -1
	}
	if m.IsCapture() {
		return PawnAttackboard(c, BitMask(from)).IsSet(to)
	}
	expected1 := Square(int(from) + 8*dir)
	if to == expected1 {
		return true
	}
	if m.IsDoublePush() {
		expected2 := Square(int(from) + 16*dir)
		if to != expected2 || BitMask(from)&PawnStartRank(c) == 0 {
			return false
		}
		return !p.occupied.IsSet(expected1)
	}
	return false
}
