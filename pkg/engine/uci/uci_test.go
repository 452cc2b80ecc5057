package uci_test

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/corvid-chess/corvid/pkg/engine"
	"github.com/corvid-chess/corvid/pkg/engine/uci"
	"github.com/corvid-chess/corvid/pkg/nnue"
	"github.com/stretchr/testify/assert"
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

// readUntil drains out until a line satisfying pred is found, or out closes first.
func readUntil(t *testing.T, out <-chan string, pred func(string) bool) string {
	t.Helper()
	for line := range out {
		if pred(line) {
			return line
		}
	}
	t.Fatal("output channel closed before the expected line was seen")
	return ""
}

func TestDriverHandshakeAndBestMove(t *testing.T) {
	ctx := context.Background()
	net := newTestNetwork(11)
	e := engine.New(ctx, "test", "tester", net, engine.WithOptions(engine.Options{Hash: 8, Threads: 1}))

	in := make(chan string, 10)
	_, out := uci.NewDriver(ctx, e, in)

	readUntil(t, out, func(l string) bool { return l == "uciok" })

	in <- "isready"
	readUntil(t, out, func(l string) bool { return l == "readyok" })

	in <- "setoption name Hash value 32"
	in <- "position startpos"
	in <- "go depth 2"

	best := readUntil(t, out, func(l string) bool { return strings.HasPrefix(l, "bestmove") })
	assert.Regexp(t, `^bestmove [a-h][1-8][a-h][1-8]`, best)

	assert.Equal(t, uint(32), e.Options().Hash)

	close(in)
}

func TestDriverRejectsInvalidPositionMove(t *testing.T) {
	ctx := context.Background()
	net := newTestNetwork(12)
	e := engine.New(ctx, "test", "tester", net, engine.WithOptions(engine.Options{Hash: 8, Threads: 1}))

	in := make(chan string, 10)
	driver, out := uci.NewDriver(ctx, e, in)

	readUntil(t, out, func(l string) bool { return l == "uciok" })

	// An unparseable move in a "position ... moves ..." line is fatal to the driver loop: it
	// has no way to resynchronize on the rest of the line, so it shuts down.
	in <- "position startpos moves e2e4 e7e5 not-a-move"

	for range out {
		// drain until process() closes the channel
	}
	assert.True(t, driver.IsClosed())
}
