package board_test

import (
	"testing"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMove(t *testing.T) {
	t.Run("plain and capture moves", func(t *testing.T) {
		p, err := board.NewFromFEN(board.InitialFEN, false)
		require.NoError(t, err)

		m, err := board.ParseMove(p, "e2e4")
		require.NoError(t, err)
		assert.True(t, m.IsDoublePush())
		assert.Equal(t, board.E2, m.From())
		assert.Equal(t, board.E4, m.To())
	})

	t.Run("promotion", func(t *testing.T) {
		p, err := board.NewFromFEN("8/P6k/8/8/8/8/7K/8 w - - 0 1", false)
		require.NoError(t, err)
		m, err := board.ParseMove(p, "a7a8q")
		require.NoError(t, err)
		assert.True(t, m.IsPromotion())
		assert.Equal(t, board.Queen, m.Promotion())
	})

	t.Run("en passant", func(t *testing.T) {
		p, err := board.NewFromFEN("4k3/8/8/8/3Pp3/8/8/4K3 b - d3 0 1", false)
		require.NoError(t, err)
		m, err := board.ParseMove(p, "e4d3")
		require.NoError(t, err)
		assert.True(t, m.IsEnPassant())
	})

	t.Run("standard castling from king-to-destination notation", func(t *testing.T) {
		p, err := board.NewFromFEN("4k3/8/8/8/8/8/8/4K2R w K - 0 1", false)
		require.NoError(t, err)
		m, err := board.ParseMove(p, "e1g1")
		require.NoError(t, err)
		assert.True(t, m.IsKingCastle())
		assert.Equal(t, board.H1, m.CastleRookFrom())
	})

	t.Run("frc castling from king-to-rook-from notation", func(t *testing.T) {
		p, err := board.NewFromFEN("4k3/8/8/8/8/8/8/4K2R w K - 0 1", true)
		require.NoError(t, err)
		m, err := board.ParseMove(p, "e1h1")
		require.NoError(t, err)
		assert.True(t, m.IsKingCastle())
		assert.Equal(t, "e1h1", board.FormatMove(m, true))
		assert.Equal(t, "e1g1", board.FormatMove(m, false))
	})

	t.Run("rejects malformed text", func(t *testing.T) {
		p, err := board.NewFromFEN(board.InitialFEN, false)
		require.NoError(t, err)
		_, err = board.ParseMove(p, "z9z9")
		assert.Error(t, err)
	})
}
