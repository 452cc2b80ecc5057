package searchctl

import (
	"context"
	"sync"
	"time"

	"github.com/corvid-chess/corvid/pkg/search"
	"github.com/corvid-chess/corvid/pkg/tt"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

// root is the per-worker hook runIterative drives: one depth of aspiration-window search.
// *search.Worker satisfies this directly.
type root interface {
	SearchRoot(ctx context.Context, depth int, prevScore int32) (search.PV, error)
}

// handle is the shared searchctl.Handle for one lazy-SMP launch: Halt closes quit once for every
// worker (main and helpers alike) and returns the main worker's best PV.
type handle struct {
	init, quit iox.AsyncCloser

	pv search.PV
	mu sync.Mutex
}

func (h *handle) Halt() search.PV {
	<-h.init.Closed()
	h.quit.Close()

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pv
}

// runIterative steps depth = 1, 2, ... calling w.SearchRoot until Halt, a configured limit, a
// found mate, or the soft time budget is spent. report, if non-nil, publishes every completed
// PV (the main worker only; helpers search silently to fill the transposition table).
func runIterative(ctx context.Context, w root, h *handle, table *tt.Table, opt Options, soft time.Duration, useSoft bool, report func(search.PV)) {
	wctx, cancel := contextx.WithQuitCancel(ctx, h.quit.Closed())
	defer cancel()

	var prevScore int32
	depth := 1
	for !h.quit.IsClosed() {
		start := time.Now()

		pv, err := w.SearchRoot(wctx, depth, prevScore)
		if err != nil {
			if err == search.ErrHalted {
				return
			}
			logw.Errorf(ctx, "search failed at depth=%v: %v", depth, err)
			return
		}
		pv.Time = time.Since(start)
		if table != nil {
			pv.Hash = table.Used()
		}
		prevScore = pv.Score

		if report != nil {
			logw.Debugf(ctx, "searched: %v", pv)
			report(pv)
		}

		if limit, ok := opt.DepthLimit.V(); ok && uint(depth) == limit {
			return // halt: reached max depth
		}
		if limit, ok := opt.NodeLimit.V(); ok && pv.Nodes >= limit {
			return // halt: reached node budget
		}
		if moves, ok := pv.Mate(); ok && moves != 0 && abs(moves)*2-1 <= depth {
			return // halt: forced mate found within full-width search. Exact result.
		}
		if useSoft && soft < pv.Time {
			return // halt: this iteration alone exceeded the soft time budget
		}
		if depth >= search.MaxPly-8 {
			return
		}
		depth++
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
