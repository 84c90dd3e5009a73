package main

import (
	"context"
	"fmt"
	"time"

	rand "math/rand/v2"

	"github.com/coder/quartz"

	"github.com/lox/cardczar/cmd/cardczar/shared"
	"github.com/lox/cardczar/internal/card"
	"github.com/lox/cardczar/internal/game"
	"github.com/lox/cardczar/internal/randutil"
	"github.com/lox/cardczar/internal/server"
	"github.com/lox/cardczar/internal/store"
)

// SimulateCmd plays scripted games against the real engine with random
// submissions and judging. Useful for smoke-testing rule changes and
// for checking that the card accounting holds up over many rounds.
type SimulateCmd struct {
	Games        int    `kong:"default='10',help='Number of games to simulate'"`
	Players      int    `kong:"default='4',help='Players per game'"`
	WinningScore int    `kong:"default='3',help='Score that ends a game'"`
	Seed         *int64 `kong:"help='Deterministic RNG seed (optional)'"`
	Config       string `kong:"default='cardczar.hcl',help='Path to HCL config file'"`
	Debug        bool   `kong:"help='Enable debug logging'"`
}

type gameResult struct {
	Rounds int
	Winner string
	Score  int
}

func (c *SimulateCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)

	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	decks := cfg.CardDecks()

	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("Using deterministic seed", "seed", seed)
	} else {
		seed = time.Now().UnixNano()
		logger.Info("Using random seed", "seed", seed)
	}
	rng := randutil.New(seed)

	ctx := shared.SetupSignalHandler()
	st := store.NewMemory()
	engine := game.NewEngine(st, quartz.NewReal(), logger)

	var results []gameResult
	totalRounds := 0
	start := time.Now()

	for i := 0; i < c.Games; i++ {
		select {
		case <-ctx.Done():
			logger.Warn("Simulation interrupted", "completed", len(results))
			return nil
		default:
		}

		res, err := c.playGame(ctx, engine, st, decks, rng, i)
		if err != nil {
			return fmt.Errorf("game %d: %w", i+1, err)
		}
		results = append(results, *res)
		totalRounds += res.Rounds
		logger.Debug("game finished", "game", i+1, "rounds", res.Rounds, "winner", res.Winner)
	}

	elapsed := time.Since(start)
	fmt.Printf("\nSimulated %d games in %s\n", len(results), elapsed.Round(time.Millisecond))
	fmt.Printf("  players per game: %d\n", c.Players)
	fmt.Printf("  winning score:    %d\n", c.WinningScore)
	fmt.Printf("  total rounds:     %d\n", totalRounds)
	if len(results) > 0 {
		fmt.Printf("  rounds per game:  %.1f\n", float64(totalRounds)/float64(len(results)))
	}
	return nil
}

// playGame drives one game from lobby to completion
func (c *SimulateCmd) playGame(ctx context.Context, engine *game.Engine, st game.Store, decks []*card.Deck, rng *rand.Rand, index int) (*gameResult, error) {
	selections := make([]card.Selection, len(decks))
	for i, d := range decks {
		selections[i] = card.Selection{Deck: d, IncludeWhite: true, IncludeBlack: true, Position: i}
	}

	founders := make([]game.UserRef, c.Players)
	for p := 0; p < c.Players; p++ {
		founders[p] = game.UserRef{
			UserID: fmt.Sprintf("sim-user-%d-%d", index, p),
			Name:   fmt.Sprintf("Player %d", p+1),
		}
	}

	state, err := engine.CreateGame(ctx, game.CreateGameParams{
		Name:         fmt.Sprintf("Simulation %d", index+1),
		Selections:   selections,
		WinningScore: c.WinningScore,
		Founders:     founders,
	})
	if err != nil {
		return nil, err
	}
	gameID := state.Game.ID

	admin := state.ActivePlayers()[0]
	if err := engine.StartGame(ctx, gameID, admin.ID); err != nil {
		return nil, err
	}

	rounds := 0
	for {
		if err := c.playRound(ctx, engine, st, gameID, rng); err != nil {
			return nil, err
		}
		rounds++

		if err := checkCardPartition(ctx, st, gameID); err != nil {
			return nil, fmt.Errorf("after round %d: %w", rounds, err)
		}

		_, ended, err := engine.StartNextRound(ctx, gameID)
		if err != nil {
			return nil, err
		}
		if ended {
			break
		}
	}

	res := &gameResult{Rounds: rounds}
	err = st.View(ctx, gameID, func(s *game.State) error {
		for _, p := range s.Players {
			if p.Score > res.Score {
				res.Score = p.Score
				res.Winner = p.Name
			}
		}
		return nil
	})
	return res, err
}

// playRound submits random cards for every non-czar player, then has
// the czar pick a random winner
func (c *SimulateCmd) playRound(ctx context.Context, engine *game.Engine, st game.Store, gameID string, rng *rand.Rand) error {
	type pick struct {
		playerID string
		cardIDs  []string
	}
	var picks []pick
	var czarID, roundID string

	err := st.View(ctx, gameID, func(s *game.State) error {
		round := s.CurrentRound()
		if round == nil {
			return fmt.Errorf("no round in progress")
		}
		czarID = round.CzarPlayerID
		roundID = round.ID

		for _, p := range s.ActivePlayers() {
			if p.ID == czarID {
				continue
			}
			hand := s.Hand(p.ID)
			if len(hand) < round.Pick {
				return fmt.Errorf("player %s holds %d cards, round needs %d", p.Name, len(hand), round.Pick)
			}
			chosen := make([]string, 0, round.Pick)
			for _, j := range rng.Perm(len(hand))[:round.Pick] {
				chosen = append(chosen, hand[j].ID)
			}
			picks = append(picks, pick{playerID: p.ID, cardIDs: chosen})
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, p := range picks {
		if _, err := engine.SubmitCards(ctx, gameID, p.playerID, p.cardIDs); err != nil {
			return err
		}
	}

	var submissionIDs []string
	err = st.View(ctx, gameID, func(s *game.State) error {
		for _, sub := range s.RoundSubmissions(roundID) {
			submissionIDs = append(submissionIDs, sub.ID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(submissionIDs) == 0 {
		return fmt.Errorf("round %s has no submissions to judge", roundID)
	}

	winner := submissionIDs[rng.IntN(len(submissionIDs))]
	return engine.JudgeSubmission(ctx, gameID, czarID, winner)
}

// checkCardPartition verifies that every card is in exactly one state
// and that holder bookkeeping matches the card states
func checkCardPartition(ctx context.Context, st game.Store, gameID string) error {
	return st.View(ctx, gameID, func(s *game.State) error {
		for _, gc := range s.Cards {
			switch gc.State {
			case game.CardInHand:
				if gc.HolderPlayerID == "" {
					return fmt.Errorf("held card %s has no holder", gc.ID)
				}
			case game.CardSubmitted:
				if gc.SubmittedRoundID == "" {
					return fmt.Errorf("submitted card %s is not tied to a round", gc.ID)
				}
			case game.CardInDrawPile:
				if gc.HolderPlayerID != "" {
					return fmt.Errorf("pile card %s has a holder", gc.ID)
				}
			case game.CardUsed, game.CardDiscarded:
			default:
				return fmt.Errorf("card %s has unknown state %q", gc.ID, gc.State)
			}
		}
		return nil
	})
}
