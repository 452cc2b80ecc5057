package board_test

import (
	"testing"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIncrementalKeysMatchRebuild walks a short line of moves and checks, after every move and
// every undo, that the incrementally maintained zKey/pawnKey/pieceCountKey equal a from-scratch
// rebuild (I4, P3).
func TestIncrementalKeysMatchRebuild(t *testing.T) {
	p, err := board.NewFromFEN(board.InitialFEN, false)
	require.NoError(t, err)

	line := []board.Move{
		board.NewDoublePush(board.E2, board.E4, board.White),
		board.NewDoublePush(board.C7, board.C5, board.Black),
		board.NewMove(board.G1, board.F3, board.Knight),
		board.NewMove(board.B8, board.C6, board.Knight),
	}

	var undos []board.Undo
	for _, m := range line {
		undo, ok := p.DoMove(m)
		require.True(t, ok, "move %v should be legal", m)
		undos = append(undos, undo)

		assertKeysMatchRebuild(t, p)
	}

	for i := len(undos) - 1; i >= 0; i-- {
		p.UndoMove(undos[i])
		assertKeysMatchRebuild(t, p)
	}
}

func assertKeysMatchRebuild(t *testing.T, p *board.Position) {
	t.Helper()
	zKey, pawnKey, countKey, phase := p.ZKey(), p.PawnKey(), p.PieceCountKey(), p.Phase()
	p.RebuildKeys()
	assert.Equal(t, zKey, p.ZKey(), "zKey diverged from rebuild")
	assert.Equal(t, pawnKey, p.PawnKey(), "pawnKey diverged from rebuild")
	assert.Equal(t, countKey, p.PieceCountKey(), "pieceCountKey diverged from rebuild")
	assert.Equal(t, phase, p.Phase(), "phase diverged from rebuild")
}

func TestZobristCastlingAndEnPassantAffectKey(t *testing.T) {
	withRights, err := board.NewFromFEN("4k3/8/8/8/8/8/8/R3K2R w KQ - 0 1", false)
	require.NoError(t, err)
	withoutRights, err := board.NewFromFEN("4k3/8/8/8/8/8/8/R3K2R w - - 0 1", false)
	require.NoError(t, err)
	assert.NotEqual(t, withRights.ZKey(), withoutRights.ZKey())

	noEP, err := board.NewFromFEN("4k3/8/8/8/3pP3/8/8/4K3 b - - 0 1", false)
	require.NoError(t, err)
	withEP, err := board.NewFromFEN("4k3/8/8/8/3pP3/8/8/4K3 b - e3 0 1", false)
	require.NoError(t, err)
	assert.NotEqual(t, noEP.ZKey(), withEP.ZKey())
}

func TestPieceCountKeyTracksMaterial(t *testing.T) {
	full, err := board.NewFromFEN(board.InitialFEN, false)
	require.NoError(t, err)

	down, err := board.NewFromFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPP1/RNBQKBNR w KQkq - 0 1", false)
	require.NoError(t, err)
	assert.NotEqual(t, full.PieceCountKey(), down.PieceCountKey())
}
