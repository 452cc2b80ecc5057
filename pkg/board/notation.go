package board

import "fmt"

// FormatMove renders m in long algebraic notation. In FRC mode, castling is rendered as
// king-to-rook-from (e.g. "e1h1" for a king-side castle with the rook starting on h1); standard
// mode renders the conventional king-to-king-destination squares (e1g1).
func FormatMove(m Move, frc bool) string {
	if m.IsNull() {
		return "0000"
	}
	if m.IsCastle() && frc {
		return fmt.Sprintf("%v%v", m.From(), m.CastleRookFrom())
	}
	return m.String()
}

// ParseMove parses long algebraic notation relative to a legal position, resolving castling
// (FRC or standard) and disambiguating promotion/capture flags from board state.
func ParseMove(p *Position, str string) (Move, error) {
	runes := []rune(str)
	if len(runes) < 4 || len(runes) > 5 {
		return 0, fmt.Errorf("board: invalid move %q", str)
	}
	from, err := ParseSquare(string(runes[0:2]))
	if err != nil {
		return 0, fmt.Errorf("board: invalid from-square in %q: %w", str, err)
	}
	to, err := ParseSquare(string(runes[2:4]))
	if err != nil {
		return 0, fmt.Errorf("board: invalid to-square in %q: %w", str, err)
	}

	col, pt, ok := p.PieceAt(from)
	if !ok || col != p.sideToMove {
		return 0, fmt.Errorf("board: no %v piece on %v", p.sideToMove, from)
	}

	if pt == King {
		if rookSq, has := p.castlingRights.KingSideRook(col, from); has && (to == rookSq || to == NewSquare(6, from.Rank())) {
			return NewCastle(from, NewSquare(6, from.Rank()), rookSq, true), nil
		}
		if rookSq, has := p.castlingRights.QueenSideRook(col, from); has && (to == rookSq || to == NewSquare(2, from.Rank())) {
			return NewCastle(from, NewSquare(2, from.Rank()), rookSq, false), nil
		}
	}

	var promo PieceType
	if len(runes) == 5 {
		promo, ok = ParsePieceType(runes[4])
		if !ok || promo == Pawn || promo == King {
			return 0, fmt.Errorf("board: invalid promotion in %q", str)
		}
	}

	if pt == Pawn && p.enPassantTarget.IsSet(to) && to.File() != from.File() {
		return NewEnPassant(from, to), nil
	}

	if ocol, opt, ook := p.PieceAt(to); ook && ocol != col {
		if promo != NoPieceType {
			return NewCapturePromotion(from, to, opt, promo), nil
		}
		return NewCapture(from, to, pt, opt), nil
	}

	if promo != NoPieceType {
		return NewPromotion(from, to, promo), nil
	}
	if pt == Pawn && absRank(to, from) == 2 {
		return NewDoublePush(from, to, col), nil
	}
	return NewMove(from, to, pt), nil
}

func absRank(a, b Square) int {
	d := int(a.Rank()) - int(b.Rank())
	if d < 0 {
		return -d
	}
	return d
}
