package board_test

import (
	"testing"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/stretchr/testify/assert"
)

func TestMovePacking(t *testing.T) {
	t.Run("plain move", func(t *testing.T) {
		m := board.NewMove(board.E2, board.E3, board.Pawn)
		assert.Equal(t, board.E2, m.From())
		assert.Equal(t, board.E3, m.To())
		assert.Equal(t, board.Pawn, m.Piece())
		assert.True(t, m.IsQuiet())
		assert.False(t, m.IsTactical())
		assert.True(t, m.ReservedOK())
		assert.Equal(t, "e2e3", m.String())
	})

	t.Run("capture", func(t *testing.T) {
		m := board.NewCapture(board.D4, board.E5, board.Bishop, board.Knight)
		assert.True(t, m.IsCapture())
		assert.Equal(t, board.Knight, m.Captured())
		assert.True(t, m.IsTactical())
	})

	t.Run("promotion", func(t *testing.T) {
		m := board.NewPromotion(board.A7, board.A8, board.Queen)
		assert.True(t, m.IsPromotion())
		assert.Equal(t, board.Queen, m.Promotion())
		assert.Equal(t, "a7a8q", m.String())
	})

	t.Run("capture promotion", func(t *testing.T) {
		m := board.NewCapturePromotion(board.B7, board.A8, board.Rook, board.Queen)
		assert.True(t, m.IsCapture())
		assert.True(t, m.IsPromotion())
		assert.Equal(t, board.Rook, m.Captured())
		assert.Equal(t, board.Queen, m.Promotion())
	})

	t.Run("en passant", func(t *testing.T) {
		m := board.NewEnPassant(board.E5, board.D6)
		assert.True(t, m.IsEnPassant())
		assert.True(t, m.IsCapture())
		assert.Equal(t, board.Pawn, m.Captured())
	})

	t.Run("castle packs rook-from file without overflow", func(t *testing.T) {
		for file := board.File(0); file < board.NumFiles; file++ {
			rookFrom := board.NewSquare(file, 0)
			m := board.NewCastle(board.E1, board.G1, rookFrom, true)
			assert.True(t, m.ReservedOK(), "file %v should not overflow into reserved bits", file)
			assert.Equal(t, rookFrom, m.CastleRookFrom())
			assert.False(t, m.IsCapture())
			assert.Equal(t, board.NoPieceType, m.Promotion())
		}
	})

	t.Run("null move", func(t *testing.T) {
		assert.True(t, board.NullMove.IsNull())
		assert.Equal(t, "0000", board.NullMove.String())
	})

	t.Run("equals ignores piece/captured metadata", func(t *testing.T) {
		a := board.NewMove(board.E2, board.E4, board.Pawn)
		b := board.NewDoublePush(board.E2, board.E4, board.White)
		assert.True(t, a.Equals(b))
	})
}
