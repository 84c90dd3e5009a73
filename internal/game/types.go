package game

import (
	"time"

	"github.com/lox/cardczar/internal/card"
)

// GameStatus represents the coarse lifecycle of a game. Transitions are
// monotonic: a game never moves backwards through these states.
type GameStatus int

const (
	StatusLobby GameStatus = iota
	StatusInProgress
	StatusCompleted
	StatusCancelled
)

// String returns the string representation of a game status
func (s GameStatus) String() string {
	switch s {
	case StatusLobby:
		return "LOBBY"
	case StatusInProgress:
		return "IN_PROGRESS"
	case StatusCompleted:
		return "COMPLETED"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// RoundStatus represents the state of a single round
type RoundStatus int

const (
	RoundCollecting RoundStatus = iota
	RoundJudging
	RoundCompleted
)

// String returns the string representation of a round status
func (s RoundStatus) String() string {
	switch s {
	case RoundCollecting:
		return "COLLECTING_SUBMISSIONS"
	case RoundJudging:
		return "JUDGING"
	case RoundCompleted:
		return "COMPLETED"
	default:
		return "UNKNOWN"
	}
}

// CardState tracks where a game card currently lives. Every card is in
// exactly one state; the pile, hands, submissions and the used/discard
// piles partition the assembled deck at all times.
type CardState int

const (
	CardInDrawPile CardState = iota
	CardInHand
	CardSubmitted
	CardUsed
	CardDiscarded
)

// String returns the string representation of a card state
func (s CardState) String() string {
	switch s {
	case CardInDrawPile:
		return "IN_DRAW_PILE"
	case CardInHand:
		return "IN_HAND"
	case CardSubmitted:
		return "SUBMITTED"
	case CardUsed:
		return "USED"
	case CardDiscarded:
		return "DISCARDED"
	default:
		return "UNKNOWN"
	}
}

// Game holds the immutable-ish settings and coarse status of one game
type Game struct {
	ID                   string
	Name                 string
	Status               GameStatus
	WinningScore         int
	HandSize             int
	ShuffleSeed          string
	AllowJoinsAfterStart bool
	DeckIDs              []string
	CreatedAt            time.Time
}

// Player is one seat in one game. Score only ever increases, by exactly
// one per round won. SeatNumber is assigned at join time and drives
// czar rotation.
type Player struct {
	ID         string
	UserID     string
	Name       string
	SeatNumber int
	Score      int
	IsActive   bool
	IsAdmin    bool
}

// GameCard is a card instance scoped to one game. DrawOrder fixes its
// position in the shuffled pile; HolderPlayerID is set while the card
// is in a hand and cleared once it is submitted.
type GameCard struct {
	ID               string
	Card             card.Card
	State            CardState
	DrawOrder        int
	HolderPlayerID   string
	HandPos          int
	SubmittedRoundID string
}

// Round is one judge-and-score cycle. A new Round is created for each
// cycle; completed rounds are never mutated again.
type Round struct {
	ID           string
	RoundNumber  int
	CzarPlayerID string
	BlackCard    card.Card
	Pick         int
	Draw         int
	Status       RoundStatus
	StartedAt    time.Time
	CompletedAt  time.Time
}

// Submission is one player's answer to a round's black card: an ordered
// list of exactly Pick game cards.
type Submission struct {
	ID        string
	RoundID   string
	PlayerID  string
	CardIDs   []string
	IsWinner  bool
	CreatedAt time.Time
}

// UserRef identifies an external user joining a game. Identity beyond a
// name is the surrounding system's problem.
type UserRef struct {
	UserID string
	Name   string
}
