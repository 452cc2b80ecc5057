// Package searchctl holds the driver layer around pkg/search: time control, the iterative-
// deepening harness and the lazy-SMP launcher the UCI engine drives (,
//).
package searchctl

import (
	"context"
	"fmt"
	"strings"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/nnue"
	"github.com/corvid-chess/corvid/pkg/search"
	"github.com/corvid-chess/corvid/pkg/tt"
	"github.com/seekerror/stdlib/pkg/lang"
)

// Options hold the dynamic parameters of one `go` command.
type Options struct {
	// DepthLimit, if set, limits the search to the given ply depth (`go depth N`).
	DepthLimit lang.Optional[uint]
	// NodeLimit, if set, halts the search once it has visited at least this many nodes
	// (`go nodes N`).
	NodeLimit lang.Optional[uint64]
	// TimeControl, if set, limits the search to the given time parameters (`go wtime/btime/...`,
	// `go movetime`, `go infinite`).
	TimeControl lang.Optional[TimeControl]
}

func (o Options) String() string {
	var ret []string
	if v, ok := o.DepthLimit.V(); ok {
		ret = append(ret, fmt.Sprintf("depth=%v", v))
	}
	if v, ok := o.NodeLimit.V(); ok {
		ret = append(ret, fmt.Sprintf("nodes=%v", v))
	}
	if v, ok := o.TimeControl.V(); ok {
		ret = append(ret, fmt.Sprintf("time=%v", v))
	}
	return fmt.Sprintf("[%v]", strings.Join(ret, ", "))
}

// Launcher manages searches for the engine.
type Launcher interface {
	// Launch a new search from the given position. game is consumed exclusively by the search
	// (the caller must Fork it first if it still needs the original) and net/table are shared,
	// read-mostly resources. Returns a handle to stop the search and a channel of successively
	// deeper PVs, closed when the search is exhausted.
	Launch(ctx context.Context, game *board.Game, net *nnue.Network, table *tt.Table, opt Options) (Handle, <-chan search.PV)
}

// Handle lets the engine stop a running search and recover its best result so far. The engine
// is expected to spin off searches with forked games and close/abandon them when no longer
// needed, keeping stopping conditions and re-synchronization trivial.
type Handle interface {
	// Halt stops the search, if running, and returns its best PV. Idempotent.
	Halt() search.PV
}
