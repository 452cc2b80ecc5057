package board_test

import (
	"testing"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullMoveFlipsSideAndRestoresExactly(t *testing.T) {
	p, err := board.NewFromFEN("rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2", false)
	require.NoError(t, err)

	before := p.ZKey()
	beforeEP, hadEP := p.EnPassantSquare()
	require.True(t, hadEP)

	ep := p.DoNullMove()
	assert.Equal(t, board.Black, p.SideToMove())
	_, hasEP := p.EnPassantSquare()
	assert.False(t, hasEP, "null move must clear the en passant target")
	assert.NotEqual(t, before, p.ZKey())

	p.UndoNullMove(ep)
	assert.Equal(t, board.White, p.SideToMove())
	assert.Equal(t, before, p.ZKey())
	afterEP, ok := p.EnPassantSquare()
	require.True(t, ok)
	assert.Equal(t, beforeEP, afterEP)
}
