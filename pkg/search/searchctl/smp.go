package searchctl

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/nnue"
	"github.com/corvid-chess/corvid/pkg/search"
	"github.com/corvid-chess/corvid/pkg/tt"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

// SMP is the lazy-SMP Launcher: it spawns Threads workers sharing one
// transposition table and one stop flag, each running its own iterative-deepening loop over its
// own forked game and accumulator stack. Only the first worker's PVs are reported; the rest
// exist solely to populate the shared table with entries the main worker's search can reuse.
type SMP struct {
	Threads int
}

func (s *SMP) Launch(ctx context.Context, game *board.Game, net *nnue.Network, table *tt.Table, opt Options) (Handle, <-chan search.PV) {
	n := s.Threads
	if n < 1 {
		n = 1
	}
	table.NewSearch()

	stop := &atomic.Bool{}
	main := search.NewWorker(0, game, net, table, stop)

	helpers := make([]*search.Worker, 0, n-1)
	for id := 1; id < n; id++ {
		helpers = append(helpers, search.NewWorker(id, game.Fork(), net, table, stop))
	}

	h := &handle{init: iox.NewAsyncCloser(), quit: iox.NewAsyncCloser()}
	out := make(chan search.PV, 1)
	soft, useSoft := EnforceTimeControl(ctx, h, opt.TimeControl, game.Position().SideToMove())

	go func() {
		<-h.quit.Closed()
		stop.Store(true)
	}()

	var wg sync.WaitGroup
	for _, w := range helpers {
		wg.Add(1)
		go func(w *search.Worker) {
			defer wg.Done()
			runIterative(ctx, w, h, nil, opt, soft, useSoft, nil)
		}(w)
	}

	go func() {
		defer close(out)
		defer h.init.Close()
		defer wg.Wait()
		defer h.quit.Close()

		runIterative(ctx, main, h, table, opt, soft, useSoft, func(pv search.PV) {
			h.mu.Lock()
			h.pv = pv
			h.mu.Unlock()

			select {
			case <-out:
			default:
			}
			out <- pv
			h.init.Close()
		})
	}()

	return h, out
}
