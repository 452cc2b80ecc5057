// Package uci contains a driver for running an engine.Engine under the UCI protocol.
//
// See: http://wbec-ridderkerk.nl/html/UCIProtocol.html
package uci

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/engine"
	"github.com/corvid-chess/corvid/pkg/search"
	"github.com/corvid-chess/corvid/pkg/search/searchctl"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

const ProtocolName = "uci"

// Driver implements a UCI driver for an engine. It is activated if sent "uci".
type Driver struct {
	iox.AsyncCloser

	e   *engine.Engine
	out chan<- string

	active       atomic.Bool    // bestmove is owed for the currently active "go"
	ponder       chan search.PV // intermediate search info
	lastPosition string         // last "position" line, empty if none yet
}

// NewDriver creates a UCI driver reading commands from in and writing UCI protocol lines to the
// returned channel.
func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		AsyncCloser: iox.NewAsyncCloser(),
		e:           e,
		out:         out,
		ponder:      make(chan search.PV, 400),
	}
	go d.process(ctx, in)
	return d, out
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer close(d.out)
	defer d.Close()

	logw.Infof(ctx, "UCI protocol initialized")

	d.out <- fmt.Sprintf("id name %v", d.e.Name())
	d.out <- fmt.Sprintf("id author %v", d.e.Author())

	opt := d.e.Options()
	d.out <- fmt.Sprintf("option name Hash type spin default %v min %v max %v", opt.Hash, 8, 65536)
	d.out <- fmt.Sprintf("option name Threads type spin default %v min %v max %v", opt.Threads, 1, 256)
	d.out <- fmt.Sprintf("option name OwnBook type check default %v", opt.OwnBook)
	d.out <- fmt.Sprintf("option name BookPath type string default %v", orEmpty(opt.BookPath))
	d.out <- fmt.Sprintf("option name UCI_Chess960 type check default %v", opt.UCIChess960)

	d.out <- "uciok"

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "input stream broken, exiting")
				return
			}
			if !d.handle(ctx, line) {
				return
			}

		case pv := <-d.ponder:
			if d.active.Load() {
				d.out <- printPV(pv, d.e.Options().UCIChess960)
			}

		case <-d.Closed():
			d.ensureInactive(ctx)
			logw.Infof(ctx, "driver closed")
			return
		}
	}
}

// handle processes one input line. Returns false if the driver should shut down.
func (d *Driver) handle(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}

	cmd, args := strings.ToLower(parts[0]), parts[1:]
	switch cmd {
	case "isready":
		d.out <- "readyok"

	case "debug":
		// Accepted but not acted on; logw already prints debug-level traffic.

	case "setoption":
		d.handleSetOption(ctx, args)

	case "register":
		// No registration scheme.

	case "ucinewgame":
		d.ensureInactive(ctx)
		d.lastPosition = ""

	case "position":
		if !d.handlePosition(ctx, line, args) {
			return false
		}

	case "go":
		d.handleGo(ctx, line, args)

	case "stop":
		pv, err := d.e.Halt(ctx)
		if err == nil {
			d.searchCompleted(ctx, pv)
		}

	case "ponderhit":
		// Pondering is not implemented: the engine never searches speculatively ahead of
		// ponderhit, so there is nothing to switch from.

	case "quit":
		return false

	default:
		logw.Warningf(ctx, "unknown command %q: %v", cmd, args)
	}
	return true
}

func (d *Driver) handleSetOption(ctx context.Context, args []string) {
	var name, value string
	if len(args) > 1 {
		name = args[1]
	}
	if len(args) > 3 {
		value = strings.Join(args[3:], " ")
	}

	switch name {
	case "Hash":
		if n, err := strconv.Atoi(value); err == nil {
			d.e.SetHash(ctx, uint(n))
		}
	case "Threads":
		if n, err := strconv.Atoi(value); err == nil {
			d.e.SetThreads(ctx, uint(n))
		}
	case "OwnBook":
		if v, err := strconv.ParseBool(value); err == nil {
			d.e.SetOwnBook(ctx, v)
		}
	case "BookPath":
		d.e.SetBookPath(ctx, value)
	case "UCI_Chess960":
		if v, err := strconv.ParseBool(value); err == nil {
			d.e.SetChess960(ctx, v)
		}
	}
}

func (d *Driver) handlePosition(ctx context.Context, line string, args []string) bool {
	d.ensureInactive(ctx)

	if d.lastPosition != "" && strings.HasPrefix(line, d.lastPosition) {
		moves := strings.TrimSpace(strings.TrimPrefix(line, d.lastPosition))
		for _, arg := range strings.Fields(moves) {
			if arg == "moves" {
				continue
			}
			if err := d.e.Move(ctx, arg); err != nil {
				logw.Errorf(ctx, "invalid position move %q: %v: %v", arg, line, err)
				return false
			}
		}
		d.lastPosition = line
		return true
	}

	position := board.InitialFEN
	rest := args
	if len(args) >= 7 && args[0] == "fen" {
		position = strings.Join(args[1:7], " ")
		rest = args[7:]
	} else if len(args) >= 1 && args[0] == "startpos" {
		rest = args[1:]
	}

	if err := d.e.Reset(ctx, position); err != nil {
		logw.Errorf(ctx, "invalid position: %v: %v", line, err)
		return false
	}

	move := false
	for _, arg := range rest {
		if arg == "moves" {
			move = true
			continue
		}
		if !move {
			continue
		}
		if err := d.e.Move(ctx, arg); err != nil {
			logw.Errorf(ctx, "invalid position move %q: %v: %v", arg, line, err)
			return false
		}
	}
	d.lastPosition = line
	return true
}

func (d *Driver) handleGo(ctx context.Context, line string, args []string) {
	d.ensureInactive(ctx)

	var opt searchctl.Options
	var tc searchctl.TimeControl
	haveTC := false
	infinite := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "wtime", "btime", "winc", "binc", "movestogo", "depth", "nodes", "movetime", "mate":
			i++
			if i == len(args) {
				logw.Errorf(ctx, "no argument for %v: %v", args[i-1], line)
				return
			}
			n, err := strconv.Atoi(args[i])
			if err != nil {
				logw.Errorf(ctx, "invalid argument for %v: %v", line, err)
				return
			}
			switch args[i-1] {
			case "depth":
				opt.DepthLimit = lang.Some(uint(n))
			case "nodes":
				opt.NodeLimit = lang.Some(uint64(n))
			case "wtime":
				haveTC = true
				tc.White = time.Millisecond * time.Duration(n)
			case "btime":
				haveTC = true
				tc.Black = time.Millisecond * time.Duration(n)
			case "winc":
				haveTC = true
				tc.WhiteInc = time.Millisecond * time.Duration(n)
			case "binc":
				haveTC = true
				tc.BlackInc = time.Millisecond * time.Duration(n)
			case "movestogo":
				haveTC = true
				tc.Moves = n
			case "movetime":
				haveTC = true
				tc.MoveTime = time.Millisecond * time.Duration(n)
			case "mate":
				// Mate-in-N search restriction is not supported; falls back to a normal search.
			}

		case "infinite":
			infinite = true
			haveTC = true
			tc.Infinite = true

		default:
			// silently ignore searchmoves/ponder and anything else unhandled
		}
	}
	if haveTC {
		opt.TimeControl = lang.Some(tc)
	}

	if book := d.e.Book(); d.e.Options().OwnBook {
		if moves, err := book.Find(ctx, d.e.Position()); err != nil {
			logw.Errorf(ctx, "book lookup failed for %v: %v", d.e.Position(), err)
		} else if len(moves) > 0 {
			pv := search.PV{Moves: moves[:1]}
			d.active.Store(true)
			d.searchCompleted(ctx, pv)
			return
		}
	}

	out, err := d.e.Analyze(ctx, opt)
	if err != nil {
		logw.Errorf(ctx, "analyze failed: %v", err)
		return
	}
	d.active.Store(true)

	go func() {
		var last search.PV
		for pv := range out {
			last = pv
			d.ponder <- pv
		}
		if !infinite {
			d.searchCompleted(ctx, last)
		}
	}()
}

func (d *Driver) ensureInactive(ctx context.Context) {
	d.active.Store(false)
	_, _ = d.e.Halt(ctx)
}

func (d *Driver) searchCompleted(ctx context.Context, pv search.PV) {
	if !d.active.CompareAndSwap(true, false) {
		return // stale or duplicate result
	}
	if len(pv.Moves) == 0 {
		d.out <- "bestmove 0000"
		return
	}

	d.out <- printPV(pv, d.e.Options().UCIChess960)
	d.out <- fmt.Sprintf("bestmove %v", board.FormatMove(pv.Moves[0], d.e.Options().UCIChess960))
}

func printPV(pv search.PV, frc bool) string {
	parts := []string{"info", fmt.Sprintf("depth %v", pv.Depth)}
	if pv.SelDepth > 0 {
		parts = append(parts, fmt.Sprintf("seldepth %v", pv.SelDepth))
	}
	if moves, ok := pv.Mate(); ok {
		parts = append(parts, fmt.Sprintf("score mate %v", moves))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %v", pv.Score))
	}
	if pv.Hash > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %v", int(pv.Hash*1000)))
	}
	if pv.Nodes > 0 {
		parts = append(parts, fmt.Sprintf("nodes %v", pv.Nodes))
	}
	if pv.Time > 0 {
		parts = append(parts, fmt.Sprintf("time %v", pv.Time.Milliseconds()))
	}
	if pv.Nodes > 0 && pv.Time > 0 {
		parts = append(parts, fmt.Sprintf("nps %v", uint64(time.Second)*pv.Nodes/uint64(pv.Time)))
	}
	if len(pv.Moves) > 0 {
		parts = append(parts, "pv", search.FormatMoves(pv.Moves, frc))
	}
	return strings.Join(parts, " ")
}

func orEmpty(s string) string {
	if s == "" {
		return "<empty>"
	}
	return s
}
