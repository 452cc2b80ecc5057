package search

import (
	"context"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/nnue"
	"github.com/corvid-chess/corvid/pkg/tt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestNetwork builds a small deterministic pseudo-random network, mirroring the nnue package's
// own test helper, so the first layer isn't all zero.
func newTestNetwork(seed int64) *nnue.Network {
	r := rand.New(rand.NewSource(seed))
	dim := nnue.NumBuckets * 64 * nnue.NumPlanes
	n := &nnue.Network{Weights: make([]int16, dim*nnue.H)}
	for i := range n.Weights {
		n.Weights[i] = int16(r.Intn(200) - 100)
	}
	for i := range n.Biases {
		n.Biases[i] = int16(r.Intn(50) - 25)
	}
	for i := range n.OutWeightsSTM {
		n.OutWeightsSTM[i] = int16(r.Intn(200) - 100)
	}
	for i := range n.OutWeightsOpp {
		n.OutWeightsOpp[i] = int16(r.Intn(200) - 100)
	}
	n.OutputBias = int32(r.Intn(1000) - 500)
	return n
}

func newTestWorker(t *testing.T, fen string) *Worker {
	t.Helper()
	pos, err := board.NewFromFEN(fen, false)
	require.NoError(t, err)
	game := board.NewGame(pos, pos.PlyClock()/2+1)
	net := newTestNetwork(1)
	table := tt.New(8)
	stop := &atomic.Bool{}
	return NewWorker(0, game, net, table, stop)
}

func TestSearchRootFindsMateInOne(t *testing.T) {
	// Fool's mate position after 1. f3 e5 2. g4: black to move, Qd8-h4 is mate.
	w := newTestWorker(t, "rnbqkbnr/pppp1ppp/8/4p3/6P1/5P2/PPPPP2P/RNBQKBNR b KQkq g3 0 2")
	pv, err := w.SearchRoot(context.Background(), 2, 0)
	require.NoError(t, err)
	require.NotEmpty(t, pv.Moves)

	moves, isMate := pv.Mate()
	require.True(t, isMate, "expected a mate score, got %v", pv.Score)
	assert.Equal(t, 1, moves)
	assert.Equal(t, board.D8, pv.Moves[0].From())
	assert.Equal(t, board.H4, pv.Moves[0].To())
}

func TestSearchRootReturnsHaltedWhenStopFlagIsSet(t *testing.T) {
	w := newTestWorker(t, board.InitialFEN)
	w.stop.Store(true)

	// The stop flag is only consulted every nodeCheckMask+1 nodes, so a deep enough search is
	// guaranteed to observe it and unwind with ErrHalted before completing.
	_, err := w.SearchRoot(context.Background(), 6, 0)
	assert.ErrorIs(t, err, ErrHalted)
}

func TestSearchRootProducesLegalPVMove(t *testing.T) {
	w := newTestWorker(t, board.InitialFEN)
	pv, err := w.SearchRoot(context.Background(), 2, 0)
	require.NoError(t, err)
	require.NotEmpty(t, pv.Moves)

	legal := w.Game.Position().GenerateMoves(false)
	found := false
	for _, m := range legal {
		if m == pv.Moves[0] {
			found = true
			break
		}
	}
	assert.True(t, found, "root PV's first move must be pseudo-legal in the searched position")
}
