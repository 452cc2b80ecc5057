package search

import (
	"testing"

	"github.com/corvid-chess/corvid/pkg/board"
	"github.com/corvid-chess/corvid/pkg/ordering"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(p *Picker) []board.Move {
	var out []board.Move
	for {
		m, ok := p.Next()
		if !ok {
			return out
		}
		out = append(out, m)
	}
}

func kiwipete(t *testing.T) *board.Position {
	t.Helper()
	p, err := board.NewFromFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", false)
	require.NoError(t, err)
	return p
}

func TestPickerReturnsTTMoveFirstWhenPseudoLegal(t *testing.T) {
	pos := kiwipete(t)
	tables := ordering.New()

	moves := pos.GenerateMoves(false)
	require.NotEmpty(t, moves)
	tt := moves[len(moves)/2]

	p := NewPicker(pos, tables, tt, 0, false, board.NoPieceType, 0, false)
	all := drain(p)
	require.NotEmpty(t, all)
	assert.Equal(t, tt, all[0])
}

func TestPickerDoesNotDuplicateTTMove(t *testing.T) {
	pos := kiwipete(t)
	tables := ordering.New()
	moves := pos.GenerateMoves(false)
	tt := moves[0]

	p := NewPicker(pos, tables, tt, 0, false, board.NoPieceType, 0, false)
	all := drain(p)

	count := 0
	for _, m := range all {
		if m == tt {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestPickerYieldsEveryPseudoLegalMoveExactlyOnce(t *testing.T) {
	pos := kiwipete(t)
	tables := ordering.New()

	p := NewPicker(pos, tables, 0, 0, false, board.NoPieceType, 0, false)
	all := drain(p)

	want := pos.GenerateMoves(false)
	assert.Equal(t, len(want), len(all))

	seen := make(map[board.Move]int)
	for _, m := range all {
		seen[m]++
	}
	for _, m := range want {
		assert.Equal(t, 1, seen[m], "move %v should appear exactly once", m)
	}
}

func TestPickerKillersComeBeforeQuietsButAfterCaptures(t *testing.T) {
	pos := kiwipete(t)
	tables := ordering.New()

	var quiet board.Move
	for _, m := range pos.GenerateMoves(false) {
		if !m.IsCapture() && !m.IsPromotion() {
			quiet = m
			break
		}
	}
	require.NotZero(t, quiet)
	tables.UpdateKillers(0, quiet)

	p := NewPicker(pos, tables, 0, 0, false, board.NoPieceType, 0, false)
	all := drain(p)

	killerIdx, captureIdx := -1, -1
	for i, m := range all {
		if m == quiet && killerIdx == -1 {
			killerIdx = i
		}
		if (m.IsCapture() || m.IsPromotion()) && captureIdx == -1 {
			captureIdx = i
		}
	}
	require.NotEqual(t, -1, killerIdx)
	if captureIdx != -1 {
		assert.Less(t, captureIdx, killerIdx)
	}
}

func TestPickerSkipsKillerNotPseudoLegal(t *testing.T) {
	pos := kiwipete(t)
	tables := ordering.New()

	// A move that is not pseudo-legal in this position (wrong piece/square combo).
	bogus := board.NewMove(board.A1, board.A2, board.Queen)
	tables.UpdateKillers(0, bogus)

	p := NewPicker(pos, tables, 0, 0, false, board.NoPieceType, 0, false)
	all := drain(p)
	for _, m := range all {
		assert.NotEqual(t, bogus, m)
	}
}

func TestPickerCapturesOnlyStopsAfterGoodCaptures(t *testing.T) {
	pos := kiwipete(t)
	tables := ordering.New()

	p := NewPicker(pos, tables, 0, 0, true, board.NoPieceType, 0, false)
	all := drain(p)
	for _, m := range all {
		assert.True(t, m.IsCapture() || m.IsPromotion())
	}
}

func TestPickerDefersBadCaptureToEnd(t *testing.T) {
	pos := kiwipete(t)
	tables := ordering.New()

	var captures []board.Move
	for _, m := range pos.GenerateMoves(true) {
		if m.IsCapture() {
			captures = append(captures, m)
		}
	}
	require.NotEmpty(t, captures)

	// Saturate capture-history for every capturing move so its raw combined score would be
	// positive even for SEE-losing captures, to make sure nextBest defers by the explicit bad
	// flag rather than by score sign.
	for i := 0; i < 10000; i++ {
		for _, m := range captures {
			tables.UpdateCaptureHistory(m.Piece(), m.Captured(), m.To(), ordering.MaxBonus-1)
		}
	}

	p := NewPicker(pos, tables, 0, 0, false, board.NoPieceType, 0, false)
	all := drain(p)

	var badIdx, lastQuietIdx = -1, -1
	for i, m := range all {
		score, bad := scoreCapture(pos, tables, m)
		_ = score
		if m.IsCapture() && bad && badIdx == -1 {
			badIdx = i
		}
		if !m.IsCapture() && !m.IsPromotion() {
			lastQuietIdx = i
		}
	}
	if badIdx != -1 && lastQuietIdx != -1 {
		assert.Greater(t, badIdx, lastQuietIdx, "a bad capture must not be ordered ahead of quiets")
	}
}

func TestNextBestSelectionSortIsDescending(t *testing.T) {
	p := &Picker{}
	moves := []scoredMove{
		{move: board.NewMove(board.A2, board.A3, board.Pawn), score: 10},
		{move: board.NewMove(board.B2, board.B3, board.Pawn), score: 50},
		{move: board.NewMove(board.C2, board.C3, board.Pawn), score: 30},
	}
	idx := 0
	var got []board.Move
	for {
		m, ok := p.nextBest(&moves, &idx, false)
		if !ok {
			break
		}
		got = append(got, m)
	}
	require.Len(t, got, 3)
	assert.Equal(t, board.NewMove(board.B2, board.B3, board.Pawn), got[0])
	assert.Equal(t, board.NewMove(board.C2, board.C3, board.Pawn), got[1])
	assert.Equal(t, board.NewMove(board.A2, board.A3, board.Pawn), got[2])
}

func TestNextBestRoutesBadFlagRegardlessOfScoreSign(t *testing.T) {
	p := &Picker{}
	good := board.NewMove(board.A2, board.A3, board.Pawn)
	bad := board.NewMove(board.B2, board.B3, board.Pawn)
	moves := []scoredMove{
		{move: good, score: -5, bad: false},
		{move: bad, score: 100, bad: true},
	}
	idx := 0
	m, ok := p.nextBest(&moves, &idx, true)
	require.True(t, ok)
	assert.Equal(t, bad, m, "the higher-scored but bad-flagged move sorts first but gets deferred")
	require.Len(t, p.badCaps, 1)
	assert.Equal(t, bad, p.badCaps[0].move)

	m, ok = p.nextBest(&moves, &idx, true)
	require.True(t, ok)
	assert.Equal(t, good, m)
}

func TestScoreQuietIncludesCounterMoveHistory(t *testing.T) {
	pos := kiwipete(t)
	tables := ordering.New()

	var quiet board.Move
	for _, m := range pos.GenerateMoves(false) {
		if !m.IsCapture() && !m.IsPromotion() {
			quiet = m
			break
		}
	}
	require.NotZero(t, quiet)

	p := &Picker{pos: pos, tables: tables}
	base := p.scoreQuiet(quiet)

	p.hasPrev = true
	p.prevPiece = board.Knight
	p.prevTo = board.F6
	idx := ordering.PrevIndex(p.prevPiece, p.prevTo)
	tables.UpdateCounterMoveHistory(pos.SideToMove(), idx, quiet.Piece(), quiet.To(), 500)

	withCMH := p.scoreQuiet(quiet)
	assert.Greater(t, withCMH, base)
}
