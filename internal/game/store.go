package game

import "context"

// Store is the persistence port the engine depends on. Implementations
// must serialize Update calls per game: the closure receives the
// current state, and its mutations become visible only if it returns
// nil. A non-nil error discards everything the closure did, which is
// how every precondition violation rolls back for free.
//
// View runs on a snapshot; it must never block concurrent Updates and
// must never observe a half-applied transaction. Updates for different
// games must not contend with each other.
type Store interface {
	// CreateGame persists a new game aggregate. Returns ErrGameExists
	// if the game ID is taken.
	CreateGame(ctx context.Context, state *State) error

	// View calls fn with a read-only snapshot of the game's state.
	// Returns ErrGameNotFound for unknown IDs.
	View(ctx context.Context, gameID string, fn func(*State) error) error

	// Update calls fn with the game's state inside a transaction
	// serialized per game. Commits iff fn returns nil.
	Update(ctx context.Context, gameID string, fn func(*State) error) error
}
