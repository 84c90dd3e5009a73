package server

import (
	"encoding/json"
	"time"

	"github.com/lox/cardczar/internal/game"
)

// MessageType identifies the type of message
type MessageType string

const (
	// Client → Server
	TypeAuth        MessageType = "auth"
	TypeCreateGame  MessageType = "create_game"
	TypeJoinGame    MessageType = "join_game"
	TypeStartGame   MessageType = "start_game"
	TypeSubmitCards MessageType = "submit_cards"
	TypeJudge       MessageType = "judge"
	TypeNextRound   MessageType = "next_round"
	TypeGetState    MessageType = "get_state"
	TypeListDecks   MessageType = "list_decks"

	// Server → Client
	TypeAuthResult  MessageType = "auth_result"
	TypeGameCreated MessageType = "game_created"
	TypeJoined      MessageType = "joined"
	TypeGameState   MessageType = "game_state"
	TypeDeckList    MessageType = "deck_list"
	TypeError       MessageType = "error"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server payloads

type AuthData struct {
	PlayerName string `json:"playerName"`
}

type CreateGameData struct {
	Name                 string   `json:"name"`
	DeckIDs              []string `json:"deckIds"`
	WinningScore         int      `json:"winningScore,omitempty"`
	ShuffleSeed          string   `json:"shuffleSeed,omitempty"`
	AllowJoinsAfterStart bool     `json:"allowJoinsAfterStart,omitempty"`
}

type JoinGameData struct {
	GameID string `json:"gameId"`
}

type StartGameData struct {
	GameID string `json:"gameId"`
}

type SubmitCardsData struct {
	GameID  string   `json:"gameId"`
	CardIDs []string `json:"cardIds"`
}

type JudgeData struct {
	GameID       string `json:"gameId"`
	SubmissionID string `json:"submissionId"`
}

type NextRoundData struct {
	GameID string `json:"gameId"`
}

type GetStateData struct {
	GameID string `json:"gameId"`
}

// Server → Client payloads

type AuthResultData struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId,omitempty"`
	Error   string `json:"error,omitempty"`
}

type GameCreatedData struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

type JoinedData struct {
	GameID     string `json:"gameId"`
	PlayerID   string `json:"playerId"`
	SeatNumber int    `json:"seatNumber"`
}

type DeckInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	WhiteCount int    `json:"whiteCount"`
	BlackCount int    `json:"blackCount"`
}

type DeckListData struct {
	Decks []DeckInfo `json:"decks"`
}

type GameStateData struct {
	View *game.View `json:"view"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes, one per entry in the engine's error taxonomy plus the
// transport-level ones. Stable: clients switch on these.
const (
	CodeConfiguration     = "configuration_error"
	CodeInsufficientCards = "insufficient_cards"
	CodeInvalidState      = "invalid_state"
	CodeUnauthorized      = "unauthorized"
	CodeValidation        = "validation_error"
	CodeNotFound          = "not_found"
	CodeBadRequest        = "bad_request"
	CodeInternal          = "internal"
)
