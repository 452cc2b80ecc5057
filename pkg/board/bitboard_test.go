package board_test

import (
	"testing"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/stretchr/testify/assert"
)

func TestBitboard(t *testing.T) {

	t.Run("popcount", func(t *testing.T) {
		tests := []struct {
			bb       board.Bitboard
			expected int
		}{
			{board.EmptyBitboard, 0},
			{board.BitMask(board.G4), 1},
			{board.BitMask(board.G3) | board.BitMask(board.G4), 2},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.expected, tt.bb.PopCount())
		}
	})

	t.Run("lsb and poplsb", func(t *testing.T) {
		bb := board.BitMask(board.C3) | board.BitMask(board.F6)
		assert.Equal(t, board.C3, bb.LSB())
		sq := bb.PopLSB()
		assert.Equal(t, board.C3, sq)
		assert.Equal(t, board.BitMask(board.F6), bb)
	})

	t.Run("string", func(t *testing.T) {
		tests := []struct {
			bb       board.Bitboard
			expected string
		}{
			{board.EmptyBitboard, "--------/--------/--------/--------/--------/--------/--------/--------"},
			{board.BitMask(board.H1), "--------/--------/--------/--------/--------/--------/--------/-------X"},
			{board.BitMask(board.A8), "X-------/--------/--------/--------/--------/--------/--------/--------"},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.expected, tt.bb.String())
		}
	})

	t.Run("rook attacks on empty board", func(t *testing.T) {
		attacks := board.RookAttackboard(board.EmptyBitboard, board.D4)
		assert.Equal(t, 14, attacks.PopCount())
		assert.True(t, attacks.IsSet(board.D1))
		assert.True(t, attacks.IsSet(board.D8))
		assert.True(t, attacks.IsSet(board.A4))
		assert.True(t, attacks.IsSet(board.H4))
		assert.False(t, attacks.IsSet(board.D4))
	})

	t.Run("rook attacks blocked", func(t *testing.T) {
		occ := board.BitMask(board.D6) | board.BitMask(board.F4)
		attacks := board.RookAttackboard(occ, board.D4)
		assert.True(t, attacks.IsSet(board.D6))
		assert.False(t, attacks.IsSet(board.D7))
		assert.True(t, attacks.IsSet(board.F4))
		assert.False(t, attacks.IsSet(board.G4))
	})

	t.Run("bishop attacks on empty board", func(t *testing.T) {
		attacks := board.BishopAttackboard(board.EmptyBitboard, board.D4)
		assert.Equal(t, 13, attacks.PopCount())
	})

	t.Run("knight attacks corner", func(t *testing.T) {
		attacks := board.KnightAttackboard(board.A1)
		assert.Equal(t, 2, attacks.PopCount())
		assert.True(t, attacks.IsSet(board.B3))
		assert.True(t, attacks.IsSet(board.C2))
	})

	t.Run("king attacks center", func(t *testing.T) {
		attacks := board.KingAttackboard(board.D4)
		assert.Equal(t, 8, attacks.PopCount())
	})

	t.Run("pawn attackboard", func(t *testing.T) {
		white := board.PawnAttackboard(board.White, board.BitMask(board.D4))
		assert.Equal(t, board.BitMask(board.C5)|board.BitMask(board.E5), white)

		black := board.PawnAttackboard(board.Black, board.BitMask(board.D4))
		assert.Equal(t, board.BitMask(board.C3)|board.BitMask(board.E3), black)
	})
}
