package board

import (
	"fmt"
	"strconv"
	"strings"
)

// InitialFEN is the standard chess starting position.
const InitialFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// NewFromFEN parses a FEN string into a Position. frc enables Chess960 castling-field
// semantics (file letters A..H/a..h in addition to KQkq).
func NewFromFEN(s string, frc bool) (*Position, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 6 {
		return nil, parseErrorf("fen: expected 6 fields, got %d: %q", len(fields), s)
	}

	p := newEmptyPosition(frc)

	if err := p.parsePlacement(fields[0]); err != nil {
		return nil, err
	}
	if p.pieces[White][King].PopCount() != 1 || p.pieces[Black][King].PopCount() != 1 {
		return nil, parseErrorf("fen: each side must have exactly one king: %q", s)
	}

	col, ok := ParseColor(fields[1])
	if !ok {
		return nil, parseErrorf("fen: invalid active color %q", fields[1])
	}
	p.sideToMove = col

	rights, err := p.parseCastling(fields[2])
	if err != nil {
		return nil, err
	}
	p.castlingRights = rights

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return nil, parseErrorf("fen: invalid en passant square %q", fields[3])
		}
		p.enPassantTarget = BitMask(sq)
	}

	hm, err := strconv.Atoi(fields[4])
	if err != nil || hm < 0 {
		return nil, parseErrorf("fen: invalid halfmove clock %q", fields[4])
	}
	p.halfmoveClock = hm

	fm, err := strconv.Atoi(fields[5])
	if err != nil || fm < 1 {
		return nil, parseErrorf("fen: invalid fullmove number %q", fields[5])
	}
	p.plyClock = (fm-1)*2
	if col == Black {
		p.plyClock++
	}

	p.RebuildKeys()
	return p, nil
}

func (p *Position) parsePlacement(field string) error {
	ranks := strings.Split(field, "/")
	if len(ranks) != 8 {
		return parseErrorf("fen: expected 8 ranks, got %d: %q", len(ranks), field)
	}
	for i, rankStr := range ranks {
		r := Rank(7 - i)
		f := File(0)
		for _, ch := range rankStr {
			switch {
			case ch >= '1' && ch <= '8':
				f += File(ch - '0')
			default:
				col, pt, ok := parseFENPiece(ch)
				if !ok {
					return parseErrorf("fen: invalid piece %q in %q", string(ch), field)
				}
				if f >= NumFiles {
					return parseErrorf("fen: rank overflow in %q", field)
				}
				p.place(col, pt, NewSquare(f, r))
				f++
			}
		}
		if f != File(NumFiles) {
			return parseErrorf("fen: rank %q does not sum to 8 files", rankStr)
		}
	}
	return nil
}

func (p *Position) parseCastling(field string) (CastlingRights, error) {
	var rights CastlingRights
	if field == "-" {
		return rights, nil
	}
	for _, ch := range field {
		switch ch {
		case 'K', 'Q':
			sq, ok := p.outermostRook(White, ch == 'K')
			if !ok {
				return 0, parseErrorf("fen: no white rook for castling flag %q", string(ch))
			}
			rights |= CastlingRights(BitMask(sq))
		case 'k', 'q':
			sq, ok := p.outermostRook(Black, ch == 'k')
			if !ok {
				return 0, parseErrorf("fen: no black rook for castling flag %q", string(ch))
			}
			rights |= CastlingRights(BitMask(sq))
		case 'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H':
			f, _ := ParseFile(rune(ch - 'A' + 'a'))
			sq := NewSquare(f, 0)
			if p.pieces[White][Rook]&BitMask(sq) == 0 {
				return 0, parseErrorf("fen: no white rook on %v for FRC castling flag %q", sq, string(ch))
			}
			rights |= CastlingRights(BitMask(sq))
		case 'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h':
			f, _ := ParseFile(ch)
			sq := NewSquare(f, 7)
			if p.pieces[Black][Rook]&BitMask(sq) == 0 {
				return 0, parseErrorf("fen: no black rook on %v for FRC castling flag %q", sq, string(ch))
			}
			rights |= CastlingRights(BitMask(sq))
		default:
			return 0, parseErrorf("fen: invalid castling character %q", string(ch))
		}
	}
	return rights, nil
}

// outermostRook finds the king-side (east) or queen-side (west) rook relative to the king, for
// the standard KQkq castling letters.
func (p *Position) outermostRook(c Color, kingSide bool) (Square, bool) {
	kingSq := p.KingSquare(c)
	rooks := p.pieces[c][Rook]
	best, ok := Square(0), false
	for bb := rooks; bb != 0; {
		sq := bb.PopLSB()
		if kingSide && sq.File() > kingSq.File() {
			if !ok || sq.File() > best.File() {
				best, ok = sq, true
			}
		}
		if !kingSide && sq.File() < kingSq.File() {
			if !ok || sq.File() < best.File() {
				best, ok = sq, true
			}
		}
	}
	return best, ok
}

func parseFENPiece(r rune) (Color, PieceType, bool) {
	col := White
	if r >= 'a' && r <= 'z' {
		col = Black
	}
	pt, ok := ParsePieceType(r)
	return col, pt, ok
}

// ToFEN renders the position in standard (or FRC) FEN notation.
func (p *Position) ToFEN() string {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		blanks := 0
		for f := File(0); f < NumFiles; f++ {
			col, pt, ok := p.PieceAt(NewSquare(f, Rank(r)))
			if !ok {
				blanks++
				continue
			}
			if blanks > 0 {
				sb.WriteString(strconv.Itoa(blanks))
				blanks = 0
			}
			sb.WriteString(printFENPiece(col, pt))
		}
		if blanks > 0 {
			sb.WriteString(strconv.Itoa(blanks))
		}
		if r > 0 {
			sb.WriteRune('/')
		}
	}

	castling := p.castlingFENField()
	ep := "-"
	if sq, ok := p.EnPassantSquare(); ok {
		ep = sq.String()
	}
	fullmove := p.plyClock/2 + 1

	return fmt.Sprintf("%s %v %s %s %d %d", sb.String(), p.sideToMove, castling, ep, p.halfmoveClock, fullmove)
}

func (p *Position) castlingFENField() string {
	if p.castlingRights == 0 {
		return "-"
	}
	if p.frcMode {
		var sb strings.Builder
		for _, sq := range p.castlingRights.Rooks(White) {
			sb.WriteString(strings.ToUpper(sq.File().String()))
		}
		for _, sq := range p.castlingRights.Rooks(Black) {
			sb.WriteString(sq.File().String())
		}
		return sb.String()
	}

	var sb strings.Builder
	wk := p.KingSquare(White)
	bk := p.KingSquare(Black)
	if _, ok := p.castlingRights.KingSideRook(White, wk); ok {
		sb.WriteString("K")
	}
	if _, ok := p.castlingRights.QueenSideRook(White, wk); ok {
		sb.WriteString("Q")
	}
	if _, ok := p.castlingRights.KingSideRook(Black, bk); ok {
		sb.WriteString("k")
	}
	if _, ok := p.castlingRights.QueenSideRook(Black, bk); ok {
		sb.WriteString("q")
	}
	return sb.String()
}

func printFENPiece(c Color, pt PieceType) string {
	s := pt.String()
	if c == White {
		return strings.ToUpper(s)
	}
	return s
}
