package board

import "fmt"

// Square is a little-endian rank-file board index: a1=0, h1=7, a8=56, h8=63. 6 bits.
type Square uint8

const (
	ZeroSquare Square = 0
	NumSquares Square = 64
)

// File is the file (column) 0..7, a..h.
type File uint8

// Rank is the rank (row) 0..7, 1..8.
type Rank uint8

const (
	NumFiles File = 8
	NumRanks Rank = 8
)

func NewSquare(f File, r Rank) Square {
	return Square(r)<<3 | Square(f)
}

func (s Square) File() File {
	return File(s & 7)
}

func (s Square) Rank() Rank {
	return Rank(s >> 3)
}

// Flip mirrors the square vertically (sq ^ 56), used for Black's NNUE perspective.
func (s Square) Flip() Square {
	return s ^ 56
}

// MirrorFile mirrors the square horizontally within its rank (sq ^ 7), used for the
// NNUE king-side/queen-side bucket mirror.
func (s Square) MirrorFile() Square {
	return s ^ 7
}

func (s Square) IsValid() bool {
	return s < NumSquares
}

func ParseFile(r rune) (File, bool) {
	if r < 'a' || r > 'h' {
		return 0, false
	}
	return File(r - 'a'), true
}

func ParseRank(r rune) (Rank, bool) {
	if r < '1' || r > '8' {
		return 0, false
	}
	return Rank(r - '1'), true
}

func (f File) String() string {
	return string(rune('a' + f))
}

func (r Rank) String() string {
	return string(rune('1' + r))
}

func ParseSquare(str string) (Square, error) {
	runes := []rune(str)
	if len(runes) != 2 {
		return 0, fmt.Errorf("invalid square: %q", str)
	}
	f, ok := ParseFile(runes[0])
	if !ok {
		return 0, fmt.Errorf("invalid file in square: %q", str)
	}
	r, ok := ParseRank(runes[1])
	if !ok {
		return 0, fmt.Errorf("invalid rank in square: %q", str)
	}
	return NewSquare(f, Rank(r)), nil
}

func (s Square) String() string {
	if !s.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%v%v", s.File(), s.Rank())
}

const (
	A1 = Square(iota)
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
)
