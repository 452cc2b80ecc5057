package search

import (
	"math"

	"github.com/corvid-chess/corvid/pkg/ordering"
)

// lmrMaxDepth/lmrMaxMoveIndex bound the precomputed late-move-reduction table; depths/indices
// beyond these clamp to the table's edge.
const (
	lmrMaxDepth      = 64
	lmrMaxMoveIndex  = 128
)

// lmrTable[depth][moveIndex] = round(0.57 + depth^0.10 * moveIndex^0.16 / 2.49): the base
// reduction computed from a precomputed table.
var lmrTable [lmrMaxDepth + 1][lmrMaxMoveIndex + 1]int

func init() {
	for d := 0; d <= lmrMaxDepth; d++ {
		for i := 0; i <= lmrMaxMoveIndex; i++ {
			if d == 0 || i == 0 {
				lmrTable[d][i] = 0
				continue
			}
			v := 0.57 + math.Pow(float64(d), 0.10)*math.Pow(float64(i), 0.16)/2.49
			lmrTable[d][i] = int(math.Round(v))
		}
	}
}

// baseLMR looks up the table entry for (depth, moveIndex), clamping both to the table's range.
func baseLMR(depth, moveIndex int) int {
	d := minInt(maxInt(depth, 0), lmrMaxDepth)
	i := minInt(maxInt(moveIndex, 0), lmrMaxMoveIndex)
	return lmrTable[d][i]
}

// lmrAdjustments carries every additive input to the LMR formula's adjustment terms.
type lmrAdjustments struct {
	quiet                bool
	inCheck              bool
	quietAfterTTCapture  bool
	cutNode              bool
	prevHistoryVeryLow   bool // previous move's history stat < -MaxBonus/2
	improving            bool
	givesCheck           bool
	singularExists       bool
	history              int32
	cmh                  int32
	queenPromotion       bool
	counterOrKillerMatch bool
}

// reduction computes the final LMR depth reduction R for one move. The running total is
// built additively from the base table lookup and then clamped.
func reduction(depth, moveIndex int, a lmrAdjustments) int {
	r := baseLMR(depth, moveIndex)

	if a.quiet {
		r++
	}
	if a.inCheck {
		r++
	}
	if a.quietAfterTTCapture {
		r++
	}
	if a.cutNode {
		r++
	}
	if a.prevHistoryVeryLow {
		r--
	}
	if a.improving {
		r--
	}
	if a.givesCheck {
		r--
	}
	if a.singularExists {
		r--
	}
	r -= int(a.history) / (ordering.MaxBonus / 2)
	r -= int(a.cmh) / (ordering.MaxBonus / 2)
	if a.queenPromotion {
		r--
	}
	if a.counterOrKillerMatch {
		r -= 2
	}

	floor := 0
	switch {
	case !a.quiet && moveIndex <= 2:
		floor = -2
	case a.cutNode || depth <= 2:
		floor = -1
	}
	if r < floor {
		r = floor
	}
	return r
}
