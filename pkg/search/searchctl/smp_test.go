package searchctl

import (
	"context"
	"math/rand"
	"testing"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/nnue"
	"github.com/corvid-chess/corvid/pkg/tt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNetwork(seed int64) *nnue.Network {
	r := rand.New(rand.NewSource(seed))
	dim := nnue.NumBuckets * 64 * nnue.NumPlanes
	n := &nnue.Network{Weights: make([]int16, dim*nnue.H)}
	for i := range n.Weights {
		n.Weights[i] = int16(r.Intn(200) - 100)
	}
	for i := range n.OutWeightsSTM {
		n.OutWeightsSTM[i] = int16(r.Intn(200) - 100)
	}
	for i := range n.OutWeightsOpp {
		n.OutWeightsOpp[i] = int16(r.Intn(200) - 100)
	}
	return n
}

func TestSMPLaunchReportsDepthLimitedPV(t *testing.T) {
	pos, err := board.NewFromFEN(board.InitialFEN, false)
	require.NoError(t, err)
	game := board.NewGame(pos, 1)
	net := newTestNetwork(3)
	table := tt.New(8)

	smp := &SMP{Threads: 2}
	handle, out := smp.Launch(context.Background(), game, net, table, Options{})

	var last, count int
	for pv := range out {
		last = pv.Depth
		count++
		if pv.Depth >= 2 {
			handle.Halt()
		}
	}
	assert.GreaterOrEqual(t, last, 1)
	assert.Greater(t, count, 0)
}

func TestSMPHandleHaltIsIdempotent(t *testing.T) {
	pos, err := board.NewFromFEN(board.InitialFEN, false)
	require.NoError(t, err)
	game := board.NewGame(pos, 1)
	net := newTestNetwork(4)
	table := tt.New(8)

	smp := &SMP{Threads: 1}
	handle, out := smp.Launch(context.Background(), game, net, table, Options{})

	// Drain one PV before halting so the handle has something to return.
	<-out
	pv1 := handle.Halt()
	pv2 := handle.Halt()
	assert.Equal(t, pv1, pv2)
}
