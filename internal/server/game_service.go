package server

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lox/cardczar/internal/card"
	"github.com/lox/cardczar/internal/game"
)

// GameService routes client messages to engine operations and fans
// engine events back out as per-viewer projected state. It subscribes
// to the engine's bus at construction time; the server is attached
// afterwards because the two reference each other.
type GameService struct {
	engine       *game.Engine
	decks        []*card.Deck
	winningScore int
	handSize     int
	logger       *log.Logger
	server       *Server
}

// NewGameService creates a game service over an engine and a deck
// library. defaultWinningScore applies when create_game omits one.
func NewGameService(engine *game.Engine, decks []*card.Deck, defaultWinningScore int, logger *log.Logger) *GameService {
	gs := &GameService{
		engine:       engine,
		decks:        decks,
		winningScore: defaultWinningScore,
		handSize:     game.DefaultHandSize,
		logger:       logger.WithPrefix("games"),
	}
	engine.Bus().Subscribe(gs)
	return gs
}

// SetHandSize overrides the hand size applied to new games
func (gs *GameService) SetHandSize(n int) {
	if n > 0 {
		gs.handSize = n
	}
}

// AttachServer wires the service to the server it broadcasts through
func (gs *GameService) AttachServer(s *Server) {
	gs.server = s
}

// OnEvent implements game.EventSubscriber: every committed mutation
// re-projects the game for each connected viewer and sends them their
// own view, never anyone else's.
func (gs *GameService) OnEvent(event game.GameEvent) {
	if gs.server == nil {
		return
	}
	gameID := event.Game()
	for _, conn := range gs.server.ConnectionsForGame(gameID) {
		gs.sendState(conn, gameID)
	}
}

// HandleMessage dispatches one client message
func (gs *GameService) HandleMessage(c *Connection, msg *Message) {
	switch msg.Type {
	case TypeAuth:
		gs.handleAuth(c, msg)
		return
	case TypeListDecks:
		gs.handleListDecks(c, msg)
		return
	}

	if c.UserID() == "" {
		gs.sendError(c, msg.RequestID, CodeUnauthorized, "authenticate first")
		return
	}

	switch msg.Type {
	case TypeCreateGame:
		gs.handleCreateGame(c, msg)
	case TypeJoinGame:
		gs.handleJoinGame(c, msg)
	case TypeStartGame:
		gs.handleStartGame(c, msg)
	case TypeSubmitCards:
		gs.handleSubmitCards(c, msg)
	case TypeJudge:
		gs.handleJudge(c, msg)
	case TypeNextRound:
		gs.handleNextRound(c, msg)
	case TypeGetState:
		gs.handleGetState(c, msg)
	default:
		gs.sendError(c, msg.RequestID, CodeBadRequest, "unknown message type")
	}
}

func (gs *GameService) handleAuth(c *Connection, msg *Message) {
	var data AuthData
	if err := json.Unmarshal(msg.Data, &data); err != nil || data.PlayerName == "" {
		gs.sendError(c, msg.RequestID, CodeBadRequest, "auth requires a player name")
		return
	}

	// Name-only identity: the surrounding system owns real auth
	userID := uuid.NewString()
	c.SetIdentity(userID, data.PlayerName)
	gs.logger.Info("player authenticated", "name", data.PlayerName, "userID", userID)
	gs.reply(c, msg, TypeAuthResult, AuthResultData{Success: true, UserID: userID})
}

func (gs *GameService) handleListDecks(c *Connection, msg *Message) {
	out := DeckListData{Decks: make([]DeckInfo, 0, len(gs.decks))}
	for _, d := range gs.decks {
		if !d.Active {
			continue
		}
		white, black := d.Counts()
		out.Decks = append(out.Decks, DeckInfo{ID: d.ID, Name: d.Name, WhiteCount: white, BlackCount: black})
	}
	gs.reply(c, msg, TypeDeckList, out)
}

func (gs *GameService) handleCreateGame(c *Connection, msg *Message) {
	var data CreateGameData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		gs.sendError(c, msg.RequestID, CodeBadRequest, "malformed create_game payload")
		return
	}

	selections, err := gs.selections(data.DeckIDs)
	if err != nil {
		gs.sendError(c, msg.RequestID, CodeValidation, err.Error())
		return
	}
	if data.WinningScore <= 0 {
		data.WinningScore = gs.winningScore
	}

	state, err := gs.engine.CreateGame(c.ctx, game.CreateGameParams{
		Name:                 data.Name,
		Selections:           selections,
		WinningScore:         data.WinningScore,
		HandSize:             gs.handSize,
		ShuffleSeed:          data.ShuffleSeed,
		AllowJoinsAfterStart: data.AllowJoinsAfterStart,
		Founders:             []game.UserRef{{UserID: c.UserID(), Name: c.PlayerName()}},
	})
	if err != nil {
		gs.sendEngineError(c, msg.RequestID, err)
		return
	}

	c.SetGame(state.Game.ID)
	founder := state.PlayerByUser(c.UserID())
	gs.reply(c, msg, TypeGameCreated, GameCreatedData{GameID: state.Game.ID, PlayerID: founder.ID})
	gs.sendState(c, state.Game.ID)
}

func (gs *GameService) handleJoinGame(c *Connection, msg *Message) {
	var data JoinGameData
	if err := json.Unmarshal(msg.Data, &data); err != nil || data.GameID == "" {
		gs.sendError(c, msg.RequestID, CodeBadRequest, "join_game requires a game id")
		return
	}

	player, err := gs.engine.AddPlayer(c.ctx, data.GameID, game.UserRef{UserID: c.UserID(), Name: c.PlayerName()})
	if err != nil {
		gs.sendEngineError(c, msg.RequestID, err)
		return
	}

	c.SetGame(data.GameID)
	gs.reply(c, msg, TypeJoined, JoinedData{GameID: data.GameID, PlayerID: player.ID, SeatNumber: player.SeatNumber})
	gs.sendState(c, data.GameID)
}

func (gs *GameService) handleStartGame(c *Connection, msg *Message) {
	var data StartGameData
	if err := json.Unmarshal(msg.Data, &data); err != nil || data.GameID == "" {
		gs.sendError(c, msg.RequestID, CodeBadRequest, "start_game requires a game id")
		return
	}

	player, err := gs.engine.FindPlayer(c.ctx, data.GameID, c.UserID())
	if err != nil {
		gs.sendEngineError(c, msg.RequestID, err)
		return
	}
	if err := gs.engine.StartGame(c.ctx, data.GameID, player.ID); err != nil {
		gs.sendEngineError(c, msg.RequestID, err)
	}
}

func (gs *GameService) handleSubmitCards(c *Connection, msg *Message) {
	var data SubmitCardsData
	if err := json.Unmarshal(msg.Data, &data); err != nil || data.GameID == "" {
		gs.sendError(c, msg.RequestID, CodeBadRequest, "submit_cards requires a game id")
		return
	}

	player, err := gs.engine.FindPlayer(c.ctx, data.GameID, c.UserID())
	if err != nil {
		gs.sendEngineError(c, msg.RequestID, err)
		return
	}
	if _, err := gs.engine.SubmitCards(c.ctx, data.GameID, player.ID, data.CardIDs); err != nil {
		gs.sendEngineError(c, msg.RequestID, err)
	}
}

func (gs *GameService) handleJudge(c *Connection, msg *Message) {
	var data JudgeData
	if err := json.Unmarshal(msg.Data, &data); err != nil || data.GameID == "" || data.SubmissionID == "" {
		gs.sendError(c, msg.RequestID, CodeBadRequest, "judge requires game and submission ids")
		return
	}

	player, err := gs.engine.FindPlayer(c.ctx, data.GameID, c.UserID())
	if err != nil {
		gs.sendEngineError(c, msg.RequestID, err)
		return
	}
	if err := gs.engine.JudgeSubmission(c.ctx, data.GameID, player.ID, data.SubmissionID); err != nil {
		gs.sendEngineError(c, msg.RequestID, err)
	}
}

func (gs *GameService) handleNextRound(c *Connection, msg *Message) {
	var data NextRoundData
	if err := json.Unmarshal(msg.Data, &data); err != nil || data.GameID == "" {
		gs.sendError(c, msg.RequestID, CodeBadRequest, "next_round requires a game id")
		return
	}

	if _, _, err := gs.engine.StartNextRound(c.ctx, data.GameID); err != nil {
		gs.sendEngineError(c, msg.RequestID, err)
	}
}

func (gs *GameService) handleGetState(c *Connection, msg *Message) {
	var data GetStateData
	if err := json.Unmarshal(msg.Data, &data); err != nil || data.GameID == "" {
		gs.sendError(c, msg.RequestID, CodeBadRequest, "get_state requires a game id")
		return
	}
	gs.sendState(c, data.GameID)
}

// selections resolves deck IDs against the configured library,
// preserving request order as assembly order.
func (gs *GameService) selections(deckIDs []string) ([]card.Selection, error) {
	byID := make(map[string]*card.Deck, len(gs.decks))
	for _, d := range gs.decks {
		byID[d.ID] = d
	}
	var out []card.Selection
	for i, id := range deckIDs {
		d, ok := byID[id]
		if !ok {
			return nil, errors.New("unknown deck: " + id)
		}
		out = append(out, card.Selection{Deck: d, IncludeWhite: true, IncludeBlack: true, Position: i})
	}
	return out, nil
}

// sendState projects the game for the connection's user and sends it
func (gs *GameService) sendState(c *Connection, gameID string) {
	view, err := gs.engine.ProjectStateForUser(context.Background(), gameID, c.UserID())
	if err != nil {
		gs.logger.Error("failed to project state", "gameID", gameID, "error", err)
		return
	}
	msg, err := NewMessage(TypeGameState, GameStateData{View: view})
	if err != nil {
		gs.logger.Error("failed to encode state", "gameID", gameID, "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

func (gs *GameService) reply(c *Connection, req *Message, t MessageType, data interface{}) {
	msg, err := NewMessage(t, data)
	if err != nil {
		gs.logger.Error("failed to encode reply", "type", t, "error", err)
		return
	}
	msg.RequestID = req.RequestID
	_ = c.SendMessage(msg)
}

func (gs *GameService) sendError(c *Connection, requestID, code, message string) {
	msg, err := NewMessage(TypeError, ErrorData{Code: code, Message: message})
	if err != nil {
		return
	}
	msg.RequestID = requestID
	_ = c.SendMessage(msg)
}

// sendEngineError maps the engine's error taxonomy onto wire codes.
// Every rejection reaches the caller verbatim; nothing is retried.
func (gs *GameService) sendEngineError(c *Connection, requestID string, err error) {
	var (
		cfgErr   *game.ConfigurationError
		cardsErr *game.InsufficientCardsError
		stateErr *game.InvalidStateError
		authErr  *game.AuthorizationError
		valErr   *game.ValidationError
	)
	code := CodeInternal
	switch {
	case errors.As(err, &cfgErr):
		code = CodeConfiguration
	case errors.As(err, &cardsErr):
		code = CodeInsufficientCards
	case errors.As(err, &stateErr):
		code = CodeInvalidState
	case errors.As(err, &authErr):
		code = CodeUnauthorized
	case errors.As(err, &valErr):
		code = CodeValidation
	case errors.Is(err, game.ErrGameNotFound):
		code = CodeNotFound
	}
	gs.sendError(c, requestID, code, err.Error())
}
