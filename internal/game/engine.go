package game

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/cardczar/internal/card"
	"github.com/lox/cardczar/internal/gameid"
	"github.com/lox/cardczar/internal/randutil"
)

// MinPlayers is the smallest roster a game can start with: a czar and
// at least two submitters.
const MinPlayers = 3

// DefaultWinningScore is the score that ends a game unless configured
const DefaultWinningScore = 5

// Engine runs every game operation as a transaction against the store
// and publishes events on commit. It holds no game state of its own:
// any number of handlers may call it concurrently, and the store's
// per-game serialization is the only lock involved.
type Engine struct {
	store  Store
	clock  quartz.Clock
	logger *log.Logger
	bus    EventBus
}

// NewEngine creates an engine around a store. The clock is injectable
// so tests can freeze round timestamps.
func NewEngine(store Store, clock quartz.Clock, logger *log.Logger) *Engine {
	return &Engine{
		store:  store,
		clock:  clock,
		logger: logger.WithPrefix("engine"),
		bus:    NewEventBus(),
	}
}

// Bus returns the event bus for subscribing to game events
func (e *Engine) Bus() EventBus {
	return e.bus
}

// CreateGameParams configures a new game
type CreateGameParams struct {
	Name                 string
	Selections           []card.Selection
	WinningScore         int
	HandSize             int
	ShuffleSeed          string
	AllowJoinsAfterStart bool

	// Founders join immediately with contiguous seats; the first one
	// is the game admin.
	Founders []UserRef
}

// CreateGame assembles and shuffles the draw pile, seats the founding
// players, and persists the game in the lobby. The shuffle seed is
// generated when not supplied, and recorded either way so the deal is
// replayable.
func (e *Engine) CreateGame(ctx context.Context, params CreateGameParams) (*State, error) {
	if len(params.Founders) == 0 {
		return nil, &ConfigurationError{Reason: "a game needs at least one founding player"}
	}
	if params.WinningScore <= 0 {
		params.WinningScore = DefaultWinningScore
	}
	if params.HandSize <= 0 {
		params.HandSize = DefaultHandSize
	}
	if params.ShuffleSeed == "" {
		params.ShuffleSeed = gameid.NewSeed()
	}

	cards, err := card.Assemble(params.Selections)
	if err != nil {
		return nil, &ConfigurationError{Reason: "deck selection is unplayable", Err: err}
	}

	shuffled := randutil.ShuffleSeeded(cards, params.ShuffleSeed)

	deckIDs := make([]string, 0, len(params.Selections))
	for _, sel := range params.Selections {
		if sel.Deck != nil {
			deckIDs = append(deckIDs, sel.Deck.ID)
		}
	}

	state := &State{
		Game: Game{
			ID:                   gameid.Generate(),
			Name:                 params.Name,
			Status:               StatusLobby,
			WinningScore:         params.WinningScore,
			HandSize:             params.HandSize,
			ShuffleSeed:          params.ShuffleSeed,
			AllowJoinsAfterStart: params.AllowJoinsAfterStart,
			DeckIDs:              deckIDs,
			CreatedAt:            e.clock.Now(),
		},
	}

	for i, c := range shuffled {
		state.Cards = append(state.Cards, &GameCard{
			ID:        uuid.NewString(),
			Card:      c,
			State:     CardInDrawPile,
			DrawOrder: i,
		})
	}

	for i, f := range params.Founders {
		state.Players = append(state.Players, &Player{
			ID:         uuid.NewString(),
			UserID:     f.UserID,
			Name:       f.Name,
			SeatNumber: i,
			IsActive:   true,
			IsAdmin:    i == 0,
		})
	}

	if err := e.store.CreateGame(ctx, state); err != nil {
		return nil, err
	}

	e.logger.Info("game created",
		"gameID", state.Game.ID,
		"players", len(state.Players),
		"cards", len(state.Cards),
		"seed", state.Game.ShuffleSeed)
	e.bus.Publish(GameCreatedEvent{GameID: state.Game.ID, Name: state.Game.Name, timestamp: e.clock.Now()})

	return state.Clone(), nil
}

// AddPlayer seats a user in the game. Seats are assigned contiguously
// in join order. Joining a started game is only allowed when the game
// was created with AllowJoinsAfterStart; a late joiner is dealt up to a
// full hand when the next round starts.
func (e *Engine) AddPlayer(ctx context.Context, gameID string, user UserRef) (*Player, error) {
	var joined Player
	err := e.store.Update(ctx, gameID, func(s *State) error {
		if s.PlayerByUser(user.UserID) != nil {
			return &InvalidStateError{Op: "join", Reason: "user already has a seat"}
		}
		switch s.Game.Status {
		case StatusLobby:
		case StatusInProgress:
			if !s.Game.AllowJoinsAfterStart {
				return &InvalidStateError{Op: "join", Reason: "game has already started"}
			}
		default:
			return &InvalidStateError{Op: "join", Reason: fmt.Sprintf("game is %s", s.Game.Status)}
		}

		p := &Player{
			ID:         uuid.NewString(),
			UserID:     user.UserID,
			Name:       user.Name,
			SeatNumber: s.NextSeat(),
			IsActive:   true,
		}
		s.Players = append(s.Players, p)
		joined = *p
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("player joined", "gameID", gameID, "player", joined.Name, "seat", joined.SeatNumber)
	e.bus.Publish(PlayerJoinedEvent{GameID: gameID, Player: joined, timestamp: e.clock.Now()})
	return &joined, nil
}

// StartGame moves a lobby game into play: deals every active player a
// full hand and starts round one. Only the game admin may start.
func (e *Engine) StartGame(ctx context.Context, gameID, actorPlayerID string) error {
	var (
		firstRound Round
		players    int
	)
	err := e.store.Update(ctx, gameID, func(s *State) error {
		if s.Game.Status != StatusLobby {
			return &InvalidStateError{Op: "start game", Reason: fmt.Sprintf("game is %s", s.Game.Status)}
		}
		actor := s.Player(actorPlayerID)
		if actor == nil || !actor.IsAdmin {
			return &AuthorizationError{Op: "start game", Reason: "only the game admin starts the game"}
		}
		active := s.ActivePlayers()
		if len(active) < MinPlayers {
			return &InvalidStateError{Op: "start game", Reason: fmt.Sprintf("need at least %d players, have %d", MinPlayers, len(active))}
		}

		s.Game.Status = StatusInProgress
		if err := dealHands(s, s.Game.HandSize); err != nil {
			return err
		}
		round, err := startRound(s, e.clock.Now())
		if err != nil {
			return err
		}
		firstRound = *round
		players = len(active)
		return nil
	})
	if err != nil {
		return err
	}

	e.logger.Info("game started", "gameID", gameID, "players", players)
	now := e.clock.Now()
	e.bus.Publish(GameStartedEvent{GameID: gameID, Players: players, timestamp: now})
	e.bus.Publish(RoundStartedEvent{GameID: gameID, Round: firstRound, timestamp: now})
	return nil
}

// SubmitCards records a player's answer for the current round. When
// the submission fills the quota the round advances to judging inside
// the same transaction.
func (e *Engine) SubmitCards(ctx context.Context, gameID, playerID string, cardIDs []string) (*Submission, error) {
	var (
		submitted Submission
		advanced  bool
	)
	err := e.store.Update(ctx, gameID, func(s *State) error {
		if s.Game.Status != StatusInProgress {
			return &InvalidStateError{Op: "submit", Reason: fmt.Sprintf("game is %s", s.Game.Status)}
		}
		sub, adv, err := submitCards(s, playerID, cardIDs, e.clock.Now())
		if err != nil {
			return err
		}
		submitted = *sub
		submitted.CardIDs = append([]string(nil), sub.CardIDs...)
		advanced = adv
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("cards submitted", "gameID", gameID, "playerID", playerID, "judging", advanced)
	e.bus.Publish(CardsSubmittedEvent{
		GameID:       gameID,
		RoundID:      submitted.RoundID,
		PlayerID:     playerID,
		SubmissionID: submitted.ID,
		AllIn:        advanced,
		timestamp:    e.clock.Now(),
	})
	return &submitted, nil
}

// JudgeSubmission records the czar's winning pick for the current
// round, scoring the winner exactly one point.
func (e *Engine) JudgeSubmission(ctx context.Context, gameID, judgePlayerID, submissionID string) error {
	var (
		roundID string
		winner  Player
	)
	err := e.store.Update(ctx, gameID, func(s *State) error {
		sub, err := judgeSubmission(s, judgePlayerID, submissionID, e.clock.Now())
		if err != nil {
			return err
		}
		roundID = sub.RoundID
		winner = *s.Player(sub.PlayerID)
		return nil
	})
	if err != nil {
		return err
	}

	e.logger.Info("round judged", "gameID", gameID, "winner", winner.Name, "score", winner.Score)
	e.bus.Publish(RoundJudgedEvent{
		GameID:         gameID,
		RoundID:        roundID,
		WinnerPlayerID: winner.ID,
		WinnerScore:    winner.Score,
		timestamp:      e.clock.Now(),
	})
	return nil
}

// StartNextRound performs the end-game check and either completes the
// game (returning gameEnded true) or tops up hands and starts the next
// round.
func (e *Engine) StartNextRound(ctx context.Context, gameID string) (*Round, bool, error) {
	var (
		nextRound *Round
		gameEnded bool
		winner    Player
		lastRound int
	)
	err := e.store.Update(ctx, gameID, func(s *State) error {
		round, ended, err := advanceGame(s, e.clock.Now())
		if err != nil {
			return err
		}
		gameEnded = ended
		if ended {
			for _, p := range s.ActivePlayers() {
				if p.Score >= s.Game.WinningScore {
					winner = *p
					break
				}
			}
			if last := s.LastRound(); last != nil {
				lastRound = last.RoundNumber
			}
			return nil
		}
		cp := *round
		nextRound = &cp
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if gameEnded {
		e.logger.Info("game ended", "gameID", gameID, "winner", winner.Name, "rounds", lastRound)
		e.bus.Publish(GameEndedEvent{
			GameID:         gameID,
			WinnerPlayerID: winner.ID,
			FinalRound:     lastRound,
			timestamp:      e.clock.Now(),
		})
		return nil, true, nil
	}

	e.logger.Info("round started", "gameID", gameID, "round", nextRound.RoundNumber)
	e.bus.Publish(RoundStartedEvent{GameID: gameID, Round: *nextRound, timestamp: e.clock.Now()})
	return nextRound, false, nil
}

// SetPlayerActive toggles a player in or out of the game. Inactive
// players keep their held cards but are skipped by czar rotation,
// dealing, and the submission quota from the next round on.
func (e *Engine) SetPlayerActive(ctx context.Context, gameID, playerID string, active bool) error {
	var updated Player
	err := e.store.Update(ctx, gameID, func(s *State) error {
		p := s.Player(playerID)
		if p == nil {
			return &ValidationError{Reason: "player is not in this game"}
		}
		p.IsActive = active
		updated = *p
		return nil
	})
	if err != nil {
		return err
	}

	e.bus.Publish(PlayerUpdatedEvent{GameID: gameID, Player: updated, timestamp: e.clock.Now()})
	return nil
}

// FindPlayer resolves a user's player in a game. Returns a
// ValidationError when the user has no seat.
func (e *Engine) FindPlayer(ctx context.Context, gameID, userID string) (*Player, error) {
	var found *Player
	err := e.store.View(ctx, gameID, func(s *State) error {
		if p := s.PlayerByUser(userID); p != nil {
			cp := *p
			found = &cp
			return nil
		}
		return &ValidationError{Reason: "user has no seat in this game"}
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// ProjectState computes the game view for one viewer. Read-only.
func (e *Engine) ProjectState(ctx context.Context, gameID, viewerPlayerID string) (*View, error) {
	var view *View
	err := e.store.View(ctx, gameID, func(s *State) error {
		view = Project(s, viewerPlayerID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ProjectStateForUser is ProjectState keyed by user rather than player,
// for callers that only know the viewer's identity. Unknown users get
// the spectator view.
func (e *Engine) ProjectStateForUser(ctx context.Context, gameID, userID string) (*View, error) {
	var view *View
	err := e.store.View(ctx, gameID, func(s *State) error {
		viewerPlayerID := ""
		if p := s.PlayerByUser(userID); p != nil {
			viewerPlayerID = p.ID
		}
		view = Project(s, viewerPlayerID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}
