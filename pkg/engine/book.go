package engine

import (
	"context"

	"github.com/corvid-chess/corvid/pkg/board"
)

// Book represents an opening book. Find returns the candidate moves for the given position, or an
// empty slice when the book has none. The UCI driver consults it on every `go` while OwnBook is
// set; an empty result falls through to a normal search.
type Book interface {
	Find(ctx context.Context, fen string) ([]board.Move, error)
}

// NoBook never offers a move. It is the default when no BookPath is configured.
var NoBook Book = noBook{}

type noBook struct{}

func (noBook) Find(ctx context.Context, fen string) ([]board.Move, error) {
	return nil, nil
}
