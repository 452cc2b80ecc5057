// Package engine wires pkg/board, pkg/nnue, pkg/tt and pkg/search/searchctl into the single
// stateful object the UCI driver talks to.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/nnue"
	"github.com/corvid-chess/corvid/pkg/search"
	"github.com/corvid-chess/corvid/pkg/search/searchctl"
	"github.com/corvid-chess/corvid/pkg/tt"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
)

var version = build.NewVersion(0, 1, 0)

const (
	minHashMiB, maxHashMiB     = 8, 65536
	minThreads, maxThreads     = 1, 256
	defaultHashMiB             = 16
	defaultThreads             = 1
)

// Options are the engine's runtime configuration: the complete UCI setoption
// surface.
type Options struct {
	Hash         uint // MiB
	Threads      uint
	OwnBook      bool
	BookPath     string
	UCIChess960  bool
}

func defaultOptions() Options {
	return Options{Hash: defaultHashMiB, Threads: defaultThreads}
}

func (o Options) String() string {
	return fmt.Sprintf("{hash=%vMB, threads=%v, ownbook=%v, book=%q, chess960=%v}",
		o.Hash, o.Threads, o.OwnBook, o.BookPath, o.UCIChess960)
}

// Engine encapsulates game state, the NNUE network and the active search for one UCI session.
type Engine struct {
	name, author string

	net     *nnue.Network
	table   *tt.Table
	book    Book
	opts    Options

	game   *board.Game
	active searchctl.Handle
	mu     sync.Mutex
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithOptions sets the engine's initial runtime options.
func WithOptions(opts Options) Option {
	return func(e *Engine) { e.opts = opts }
}

// WithBook configures an opening book. The default is NoBook, which never offers a move.
func WithBook(book Book) Option {
	return func(e *Engine) { e.book = book }
}

// New constructs an Engine with net already loaded. Loading net is the caller's responsibility
// so a failure there can exit before the engine exists.
func New(ctx context.Context, name, author string, net *nnue.Network, opts ...Option) *Engine {
	e := &Engine{
		name:   name,
		author: author,
		net:    net,
		book:   NoBook,
		opts:   defaultOptions(),
	}
	for _, fn := range opts {
		fn(e)
	}
	e.table = tt.New(int(e.opts.Hash))

	if err := e.Reset(ctx, board.InitialFEN); err != nil {
		logw.Exitf(ctx, "invalid initial position: %v", err)
	}

	logw.Infof(ctx, "initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// Name returns the engine name and version, for the UCI `id name` response.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author, for the UCI `id author` response.
func (e *Engine) Author() string {
	return e.author
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts
}

// SetHash resizes the transposition table, clamped to [minHashMiB, maxHashMiB].
func (e *Engine) SetHash(ctx context.Context, mib uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if mib < minHashMiB {
		mib = minHashMiB
	}
	if mib > maxHashMiB {
		mib = maxHashMiB
	}
	e.opts.Hash = mib
	e.table.Resize(int(mib))
	logw.Infof(ctx, "set Hash=%vMB", mib)
}

// SetThreads sets the lazy-SMP worker count, clamped to [minThreads, maxThreads].
func (e *Engine) SetThreads(ctx context.Context, n uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if n < minThreads {
		n = minThreads
	}
	if n > maxThreads {
		n = maxThreads
	}
	e.opts.Threads = n
	logw.Infof(ctx, "set Threads=%v", n)
}

func (e *Engine) SetOwnBook(ctx context.Context, v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.OwnBook = v
	logw.Infof(ctx, "set OwnBook=%v", v)
}

func (e *Engine) SetBookPath(ctx context.Context, path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.BookPath = path
	logw.Infof(ctx, "set BookPath=%v", path)
}

func (e *Engine) SetChess960(ctx context.Context, v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.UCIChess960 = v
	logw.Infof(ctx, "set UCI_Chess960=%v", v)
}

// Book returns the engine's configured opening book, NoBook if none.
func (e *Engine) Book() Book {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book
}

// Position returns the current position in FEN.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.game.Position().ToFEN()
}

// SideToMove returns the color on move in the current position.
func (e *Engine) SideToMove() board.Color {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.game.Position().SideToMove()
}

// Reset replaces the current game with the one described by the given FEN. An invalid FEN
// leaves the current position unchanged.
func (e *Engine) Reset(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos, err := board.NewFromFEN(position, e.opts.UCIChess960)
	if err != nil {
		return err
	}

	e.haltSearchIfActiveLocked(ctx)
	e.game = board.NewGame(pos, pos.PlyClock()/2+1)
	logw.Infof(ctx, "new position: %v", position)
	return nil
}

// Move applies a move (usually the opponent's) in long algebraic notation.
func (e *Engine) Move(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, err := board.ParseMove(e.game.Position(), move)
	if err != nil {
		return fmt.Errorf("invalid move %q: %w", move, err)
	}
	e.haltSearchIfActiveLocked(ctx)
	if !e.game.PushMove(m) {
		return fmt.Errorf("illegal move %q", move)
	}
	return nil
}

// Analyze launches a search of the current position under opt. Fails if a search is already
// active.
func (e *Engine) Analyze(ctx context.Context, opt searchctl.Options) (<-chan search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != nil {
		return nil, fmt.Errorf("search already active")
	}

	logw.Infof(ctx, "analyze %v, opt=%v", e.game.Position().ToFEN(), opt)

	launcher := &searchctl.SMP{Threads: int(e.opts.Threads)}
	handle, out := launcher.Launch(ctx, e.game.Fork(), e.net, e.table, opt)
	e.active = handle
	return out, nil
}

// Halt stops the active search and returns its best PV so far.
func (e *Engine) Halt(ctx context.Context) (search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pv, ok := e.haltSearchIfActiveLocked(ctx)
	if !ok {
		return search.PV{}, fmt.Errorf("no active search")
	}
	return pv, nil
}

func (e *Engine) haltSearchIfActiveLocked(ctx context.Context) (search.PV, bool) {
	if e.active == nil {
		return search.PV{}, false
	}
	pv := e.active.Halt()
	logw.Infof(ctx, "search halted: %v", pv)
	e.active = nil
	return pv, true
}
