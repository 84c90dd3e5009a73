// Package game implements the core round and dealing logic for a
// Cards Against Humanity style game.
//
// The main type is Engine, which runs every mutating operation as a
// transaction against a Store and publishes events on commit. The
// aggregate State holds a whole game (players, cards, rounds,
// submissions); the pure transition functions in lifecycle.go and
// dealer.go operate on a State and never touch storage, which is what
// makes them directly testable.
//
// # Basic usage
//
// Create and drive a game:
//
//	eng := game.NewEngine(store, quartz.NewReal(), logger)
//	st, _ := eng.CreateGame(ctx, game.CreateGameParams{
//	    Name:       "friday night",
//	    Selections: selections,
//	    Founders:   []game.UserRef{{UserID: "u1", Name: "Alice"}},
//	})
//	_ = eng.StartGame(ctx, st.Game.ID, adminPlayerID)
//	// players submit, czar judges, next round...
//
// # Concurrency
//
// Store.Update serializes transactions per game. That is the single
// correctness-critical exclusion point: two concurrent submissions by
// the same player must see each other, or both pass the "not yet
// submitted" check. Reads (ProjectState) run on snapshots and never
// block writers.
package game
