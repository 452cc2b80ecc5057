package board

import "fmt"

// Move is a 32-bit packed move record:
//
//	bits 0..5:   from square
//	bits 6..11:  to square
//	bits 12..14: piece type
//	bits 15..17: captured piece type (valid iff FlagCapture set)
//	bits 18..20: promotion piece type (valid iff FlagPromotion set)
//	bits 21..27: flags
//	bits 28..31: reserved, always zero
type Move uint32

// Flag is one bit of Move's flag field.
type Flag uint32

const (
	FlagCapture Flag = 1 << iota
	FlagPromotion
	FlagEnPassant
	FlagDoublePush
	FlagKingCastle
	FlagQueenCastle
	FlagNull
)

const (
	moveFromShift      = 0
	moveToShift        = 6
	movePieceShift     = 12
	moveCapturedShift  = 15
	movePromotionShift = 18
	moveFlagsShift     = 21

	moveFromMask  = 0x3f
	moveToMask    = 0x3f
	movePieceMask = 0x7
	moveFlagsMask = 0x7f

	// ReservedMask is the upper nibble that must be zero in any valid Move.
	ReservedMask Move = 0xf0000000
)

// NullMove is the null-move sentinel used by null-move pruning.
var NullMove = newMove(0, 0, NoPieceType, NoPieceType, NoPieceType, FlagNull)

func newMove(from, to Square, piece, captured, promo PieceType, flags Flag) Move {
	return Move(from)<<moveFromShift |
		Move(to)<<moveToShift |
		Move(piece)<<movePieceShift |
		Move(captured)<<moveCapturedShift |
		Move(promo)<<movePromotionShift |
		Move(flags)<<moveFlagsShift
}

// NewMove builds a plain (non-capture, non-special) move.
func NewMove(from, to Square, piece PieceType) Move {
	return newMove(from, to, piece, NoPieceType, NoPieceType, 0)
}

// NewCapture builds a capturing move.
func NewCapture(from, to Square, piece, captured PieceType) Move {
	return newMove(from, to, piece, captured, NoPieceType, FlagCapture)
}

// NewDoublePush builds a pawn double-step move.
func NewDoublePush(from, to Square, col Color) Move {
	return newMove(from, to, Pawn, NoPieceType, NoPieceType, FlagDoublePush)
}

// NewEnPassant builds an en passant capture.
func NewEnPassant(from, to Square) Move {
	return newMove(from, to, Pawn, Pawn, NoPieceType, FlagCapture|FlagEnPassant)
}

// NewPromotion builds a (non-capturing) promotion move.
func NewPromotion(from, to Square, promo PieceType) Move {
	return newMove(from, to, Pawn, NoPieceType, promo, FlagPromotion)
}

// NewCapturePromotion builds a capturing promotion move.
func NewCapturePromotion(from, to Square, captured, promo PieceType) Move {
	return newMove(from, to, Pawn, captured, promo, FlagCapture|FlagPromotion)
}

// NewCastle builds a castling move; from/to are the king's from/to squares and rookFrom is the
// castling rook's home square (FRC compatible). The rook's file (0..7) is packed into the
// otherwise-unused "captured piece" field, decoded by CastleRookFrom. Castle moves never set
// FlagCapture, so this never collides with a real captured-piece reading.
func NewCastle(kingFrom, kingTo, rookFrom Square, kingSide bool) Move {
	flag := FlagQueenCastle
	if kingSide {
		flag = FlagKingCastle
	}
	return newMove(kingFrom, kingTo, King, PieceType(rookFrom.File()), NoPieceType, flag)
}

// CastleRookFrom returns the castling rook's home square. Only valid when m.IsCastle().
func (m Move) CastleRookFrom() Square {
	return NewSquare(File(m.Captured()), m.From().Rank())
}

func (m Move) From() Square { return Square(m >> moveFromShift & moveFromMask) }
func (m Move) To() Square   { return Square(m >> moveToShift & moveToMask) }
func (m Move) Piece() PieceType {
	return PieceType(m >> movePieceShift & movePieceMask)
}
func (m Move) Captured() PieceType {
	return PieceType(m >> moveCapturedShift & movePieceMask)
}
func (m Move) Promotion() PieceType {
	return PieceType(m >> movePromotionShift & movePieceMask)
}
func (m Move) Flags() Flag {
	return Flag(m >> moveFlagsShift & moveFlagsMask)
}

func (m Move) Has(f Flag) bool    { return m.Flags()&f != 0 }
func (m Move) IsCapture() bool    { return m.Has(FlagCapture) }
func (m Move) IsPromotion() bool  { return m.Has(FlagPromotion) }
func (m Move) IsEnPassant() bool  { return m.Has(FlagEnPassant) }
func (m Move) IsDoublePush() bool { return m.Has(FlagDoublePush) }
func (m Move) IsKingCastle() bool { return m.Has(FlagKingCastle) }
func (m Move) IsQueenCastle() bool {
	return m.Has(FlagQueenCastle)
}
func (m Move) IsCastle() bool { return m.IsKingCastle() || m.IsQueenCastle() }
func (m Move) IsNull() bool   { return m.Has(FlagNull) }

// IsQuiet reports whether the move is neither a capture nor a promotion.
func (m Move) IsQuiet() bool {
	return !m.IsCapture() && !m.IsPromotion()
}

// IsTactical reports whether the move is a capture or promotion (used to gate quiescence).
func (m Move) IsTactical() bool {
	return m.IsCapture() || m.IsPromotion()
}

// ReservedOK reports that the reserved upper nibble is zero, the invariant that keeps every
// encoded move within Move's 32 low bits.
func (m Move) ReservedOK() bool {
	return m&ReservedMask == 0
}

func (m Move) Equals(o Move) bool {
	return m.From() == o.From() && m.To() == o.To() && m.Promotion() == o.Promotion()
}

// String renders the move in long algebraic notation. FRC castling notation (king-to-rook-from)
// is the caller's responsibility since it requires the rook-from square, which isn't carried on
// a plain king-move Move; see FormatMove.
func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}
	if m.IsPromotion() {
		return fmt.Sprintf("%v%v%v", m.From(), m.To(), m.Promotion())
	}
	return fmt.Sprintf("%v%v", m.From(), m.To())
}
