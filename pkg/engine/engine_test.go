package engine_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/engine"
	"github.com/corvid-chess/corvid/pkg/nnue"
	"github.com/corvid-chess/corvid/pkg/search/searchctl"
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

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	ctx := context.Background()
	net := newTestNetwork(7)
	return engine.New(ctx, "test", "tester", net, engine.WithOptions(engine.Options{Hash: 8, Threads: 1}))
}

func TestEngineResetAndMove(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	assert.Equal(t, board.InitialFEN, e.Position())
	assert.Equal(t, board.White, e.SideToMove())

	require.NoError(t, e.Move(ctx, "e2e4"))
	assert.Equal(t, board.Black, e.SideToMove())

	err := e.Move(ctx, "e2e4")
	assert.Error(t, err, "e2e4 is no longer legal after it was already played")

	fen := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	require.NoError(t, e.Reset(ctx, fen))
	assert.Equal(t, fen, e.Position())
}

func TestEngineResetRejectsInvalidFEN(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	before := e.Position()

	err := e.Reset(ctx, "not a fen")
	assert.Error(t, err)
	assert.Equal(t, before, e.Position(), "a rejected FEN must leave the current position unchanged")
}

func TestEngineAnalyzeThenHalt(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	out, err := e.Analyze(ctx, searchctl.Options{})
	require.NoError(t, err)

	_, ok := <-out
	require.True(t, ok, "expected at least one PV before the channel closes")

	pv, err := e.Halt(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, pv.Moves)

	_, err = e.Halt(ctx)
	assert.Error(t, err, "halting with no active search must fail")
}

func TestEngineAnalyzeFailsWhileAlreadyActive(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	_, err := e.Analyze(ctx, searchctl.Options{})
	require.NoError(t, err)

	_, err = e.Analyze(ctx, searchctl.Options{})
	assert.Error(t, err)

	_, _ = e.Halt(ctx)
}

func TestEngineSetHashClampsToRange(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	e.SetHash(ctx, 1)
	assert.Equal(t, uint(8), e.Options().Hash)

	e.SetHash(ctx, 1_000_000)
	assert.Equal(t, uint(65536), e.Options().Hash)

	e.SetHash(ctx, 64)
	assert.Equal(t, uint(64), e.Options().Hash)
}

func TestEngineSetThreadsClampsToRange(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	e.SetThreads(ctx, 0)
	assert.Equal(t, uint(1), e.Options().Threads)

	e.SetThreads(ctx, 1_000)
	assert.Equal(t, uint(256), e.Options().Threads)
}
