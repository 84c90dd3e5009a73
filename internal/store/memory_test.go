package store_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/lox/cardczar/internal/card"
	"github.com/lox/cardczar/internal/game"
	"github.com/lox/cardczar/internal/store"
)

func seedState(id string) *game.State {
	return &game.State{
		Game: game.Game{ID: id, Name: "Stored", Status: game.StatusLobby, WinningScore: 5, HandSize: 7},
		Players: []*game.Player{
			{ID: "p0", UserID: "u0", Name: "Zero", IsActive: true, IsAdmin: true},
		},
	}
}

func TestCreateGame(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.CreateGame(ctx, seedState("g1")))
	require.ErrorIs(t, m.CreateGame(ctx, seedState("g1")), game.ErrGameExists)
	require.ElementsMatch(t, []string{"g1"}, m.GameIDs())
}

func TestUnknownGame(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	err := m.View(ctx, "missing", func(*game.State) error { return nil })
	require.ErrorIs(t, err, game.ErrGameNotFound)

	err = m.Update(ctx, "missing", func(*game.State) error { return nil })
	require.ErrorIs(t, err, game.ErrGameNotFound)
}

func TestUpdateCommitsOnNil(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, m.CreateGame(ctx, seedState("g1")))

	require.NoError(t, m.Update(ctx, "g1", func(s *game.State) error {
		s.Game.Name = "Renamed"
		s.Players[0].Score = 3
		return nil
	}))

	require.NoError(t, m.View(ctx, "g1", func(s *game.State) error {
		require.Equal(t, "Renamed", s.Game.Name)
		require.Equal(t, 3, s.Players[0].Score)
		return nil
	}))
}

func TestUpdateRollsBackOnError(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, m.CreateGame(ctx, seedState("g1")))

	boom := errors.New("boom")
	err := m.Update(ctx, "g1", func(s *game.State) error {
		s.Game.Name = "Mutated"
		s.Players[0].Score = 99
		s.Players = append(s.Players, &game.Player{ID: "ghost"})
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The failed transaction's mutations must be invisible
	require.NoError(t, m.View(ctx, "g1", func(s *game.State) error {
		require.Equal(t, "Stored", s.Game.Name)
		require.Equal(t, 0, s.Players[0].Score)
		require.Len(t, s.Players, 1)
		return nil
	}))
}

func TestViewSnapshotIsIsolated(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, m.CreateGame(ctx, seedState("g1")))

	// Mutating the snapshot a view receives must not leak into the store
	require.NoError(t, m.View(ctx, "g1", func(s *game.State) error {
		s.Game.Name = "Scribbled"
		s.Players[0].Score = 42
		return nil
	}))

	require.NoError(t, m.View(ctx, "g1", func(s *game.State) error {
		require.Equal(t, "Stored", s.Game.Name)
		require.Equal(t, 0, s.Players[0].Score)
		return nil
	}))
}

func TestUpdateHonorsCancelledContext(t *testing.T) {
	m := store.NewMemory()
	require.NoError(t, m.CreateGame(context.Background(), seedState("g1")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err := m.Update(ctx, "g1", func(*game.State) error {
		ran = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, ran)
}

// TestConcurrentDoubleSubmit drives the same submission through many
// goroutines at once: exactly one transaction may win, and the rest
// must fail their already-submitted check against the committed state.
func TestConcurrentDoubleSubmit(t *testing.T) {
	st := store.NewMemory()
	engine := game.NewEngine(st, quartz.NewReal(), log.New(io.Discard))
	ctx := context.Background()

	deck := &card.Deck{ID: "d", Name: "d", Active: true}
	for i := 0; i < 60; i++ {
		deck.Cards = append(deck.Cards, card.Card{ID: fmt.Sprintf("w%d", i), Type: card.White, Content: "w", Active: true})
	}
	for i := 0; i < 10; i++ {
		deck.Cards = append(deck.Cards, card.Card{ID: fmt.Sprintf("b%d", i), Type: card.Black, Content: "b", Pick: 1, Active: true})
	}

	state, err := engine.CreateGame(ctx, game.CreateGameParams{
		Name:       "Race",
		Selections: []card.Selection{{Deck: deck, IncludeWhite: true, IncludeBlack: true, Position: 0}},
		Founders: []game.UserRef{
			{UserID: "u0", Name: "A"}, {UserID: "u1", Name: "B"}, {UserID: "u2", Name: "C"},
		},
	})
	require.NoError(t, err)
	gameID := state.Game.ID

	var submitter, czar string
	require.NoError(t, engine.StartGame(ctx, gameID, state.Players[0].ID))
	require.NoError(t, st.View(ctx, gameID, func(s *game.State) error {
		czar = s.CurrentRound().CzarPlayerID
		for _, p := range s.ActivePlayers() {
			if p.ID != czar {
				submitter = p.ID
				break
			}
		}
		return nil
	}))

	var cardID string
	require.NoError(t, st.View(ctx, gameID, func(s *game.State) error {
		cardID = s.Hand(submitter)[0].ID
		return nil
	}))

	const attempts = 16
	results := make([]error, attempts)
	var g errgroup.Group
	for i := 0; i < attempts; i++ {
		g.Go(func() error {
			_, results[i] = engine.SubmitCards(ctx, gameID, submitter, []string{cardID})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		var stateErr *game.InvalidStateError
		var valErr *game.ValidationError
		require.True(t, errors.As(err, &stateErr) || errors.As(err, &valErr),
			"losing attempt failed with unexpected error: %v", err)
	}
	require.Equal(t, 1, successes, "exactly one submission may commit")

	require.NoError(t, st.View(ctx, gameID, func(s *game.State) error {
		round := s.CurrentRound()
		require.Len(t, s.RoundSubmissions(round.ID), 1)
		require.Equal(t, game.CardSubmitted, s.CardByID(cardID).State)
		return nil
	}))
}
