package game

import "time"

// EventType represents a game event type with type safety
type EventType string

// EventType constants for the game domain events published by the
// engine after each committed transaction
const (
	EventTypeGameCreated    EventType = "game_created"
	EventTypePlayerJoined   EventType = "player_joined"
	EventTypePlayerUpdated  EventType = "player_updated"
	EventTypeGameStarted    EventType = "game_started"
	EventTypeRoundStarted   EventType = "round_started"
	EventTypeCardsSubmitted EventType = "cards_submitted"
	EventTypeRoundJudged    EventType = "round_judged"
	EventTypeGameEnded      EventType = "game_ended"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents any state-changed notification from the engine.
// Every event names the game it belongs to so the transport layer can
// fan the new projected state out to that game's viewers.
type GameEvent interface {
	EventType() EventType
	Game() string
	Timestamp() time.Time
}

// GameCreatedEvent is published when a game is created in the lobby
type GameCreatedEvent struct {
	GameID    string
	Name      string
	timestamp time.Time
}

func (e GameCreatedEvent) EventType() EventType { return EventTypeGameCreated }
func (e GameCreatedEvent) Game() string         { return e.GameID }
func (e GameCreatedEvent) Timestamp() time.Time { return e.timestamp }

// PlayerJoinedEvent is published when a player takes a seat
type PlayerJoinedEvent struct {
	GameID    string
	Player    Player
	timestamp time.Time
}

func (e PlayerJoinedEvent) EventType() EventType { return EventTypePlayerJoined }
func (e PlayerJoinedEvent) Game() string         { return e.GameID }
func (e PlayerJoinedEvent) Timestamp() time.Time { return e.timestamp }

// PlayerUpdatedEvent is published when a player's active flag changes
type PlayerUpdatedEvent struct {
	GameID    string
	Player    Player
	timestamp time.Time
}

func (e PlayerUpdatedEvent) EventType() EventType { return EventTypePlayerUpdated }
func (e PlayerUpdatedEvent) Game() string         { return e.GameID }
func (e PlayerUpdatedEvent) Timestamp() time.Time { return e.timestamp }

// GameStartedEvent is published when a game leaves the lobby
type GameStartedEvent struct {
	GameID    string
	Players   int
	timestamp time.Time
}

func (e GameStartedEvent) EventType() EventType { return EventTypeGameStarted }
func (e GameStartedEvent) Game() string         { return e.GameID }
func (e GameStartedEvent) Timestamp() time.Time { return e.timestamp }

// RoundStartedEvent is published when a round begins collecting
// submissions
type RoundStartedEvent struct {
	GameID    string
	Round     Round
	timestamp time.Time
}

func (e RoundStartedEvent) EventType() EventType { return EventTypeRoundStarted }
func (e RoundStartedEvent) Game() string         { return e.GameID }
func (e RoundStartedEvent) Timestamp() time.Time { return e.timestamp }

// CardsSubmittedEvent is published when a player's submission commits.
// AllIn reports whether this submission tripped the level-triggered
// guard that moves the round to judging.
type CardsSubmittedEvent struct {
	GameID       string
	RoundID      string
	PlayerID     string
	SubmissionID string
	AllIn        bool
	timestamp    time.Time
}

func (e CardsSubmittedEvent) EventType() EventType { return EventTypeCardsSubmitted }
func (e CardsSubmittedEvent) Game() string         { return e.GameID }
func (e CardsSubmittedEvent) Timestamp() time.Time { return e.timestamp }

// RoundJudgedEvent is published when the czar picks a winner
type RoundJudgedEvent struct {
	GameID         string
	RoundID        string
	WinnerPlayerID string
	WinnerScore    int
	timestamp      time.Time
}

func (e RoundJudgedEvent) EventType() EventType { return EventTypeRoundJudged }
func (e RoundJudgedEvent) Game() string         { return e.GameID }
func (e RoundJudgedEvent) Timestamp() time.Time { return e.timestamp }

// GameEndedEvent is published when a player reaches the winning score
type GameEndedEvent struct {
	GameID         string
	WinnerPlayerID string
	FinalRound     int
	timestamp      time.Time
}

func (e GameEndedEvent) EventType() EventType { return EventTypeGameEnded }
func (e GameEndedEvent) Game() string         { return e.GameID }
func (e GameEndedEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber receives game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is a basic synchronous in-memory event bus
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &SimpleEventBus{
		subscribers: make([]EventSubscriber, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
