package searchctl

import (
	"context"
	"fmt"
	"time"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

// TimeControl represents the UCI `go` command's clock parameters: per-side
// remaining time and increment, an optional moves-to-go count, a fixed move time, or infinite
// search.
type TimeControl struct {
	White, Black       time.Duration
	WhiteInc, BlackInc time.Duration
	Moves              int           // 0 == rest of game
	MoveTime           time.Duration // 0 == unset; overrides the clock-derived limits (`go movetime`)
	Infinite           bool          // `go infinite`: no time limit, stop only on `stop`/Halt
}

// Limits returns the soft and hard search-time budgets for the side to move. After the soft
// limit no new iteration should start; the hard limit force-halts a search in progress.
func (t TimeControl) Limits(c board.Color) (time.Duration, time.Duration) {
	if t.MoveTime > 0 {
		return t.MoveTime, t.MoveTime
	}

	remainder, inc := t.White, t.WhiteInc
	if c == board.Black {
		remainder, inc = t.Black, t.BlackInc
	}

	// Assume 40 moves to the time control if not told otherwise (movestogo+1 if told). The soft
	// budget is remainder/(2*moves) plus half the increment; the hard budget is three times the
	// soft budget plus the increment.
	moves := time.Duration(40)
	if t.Moves > 0 {
		moves = time.Duration(t.Moves) + 1
	}

	soft := remainder/(2*moves) + inc/2
	hard := 3*soft + inc
	return soft, hard
}

func (t TimeControl) String() string {
	if t.Infinite {
		return "infinite"
	}
	if t.MoveTime > 0 {
		return fmt.Sprintf("movetime=%.1f", t.MoveTime.Seconds())
	}
	if t.Moves == 0 {
		return fmt.Sprintf("%.1f<>%.1f", t.White.Seconds(), t.Black.Seconds())
	}
	return fmt.Sprintf("%.1f<>%.1f[moves=%v]", t.White.Seconds(), t.Black.Seconds(), t.Moves)
}

// EnforceTimeControl arms the hard-limit timer (Halt after hard elapses) and returns the soft
// limit to poll against between iterations. Returns ok=false for `go infinite` or an unset
// TimeControl, where no timer is armed at all.
func EnforceTimeControl(ctx context.Context, h Handle, tc lang.Optional[TimeControl], turn board.Color) (time.Duration, bool) {
	c, ok := tc.V()
	if !ok || c.Infinite {
		return 0, false
	}

	soft, hard := c.Limits(turn)
	timer := time.AfterFunc(hard, func() {
		h.Halt()
	})
	go func() {
		<-ctx.Done()
		timer.Stop()
	}()

	logw.Debugf(ctx, "time control limits for %v: [%v; %v]", c, soft, hard)
	return soft, true
}
