package game

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lox/cardczar/internal/card"
)

// testState builds an in-progress game with the given number of active
// players, each holding a full hand, plus plenty of cards in both draw
// piles. No round is started.
func testState(players, whitePile, blackPile int) *State {
	s := &State{
		Game: Game{
			ID:           "game-1",
			Name:         "Test Game",
			Status:       StatusInProgress,
			WinningScore: 5,
			HandSize:     DefaultHandSize,
		},
	}

	for i := 0; i < players; i++ {
		s.Players = append(s.Players, &Player{
			ID:         fmt.Sprintf("p%d", i),
			UserID:     fmt.Sprintf("u%d", i),
			Name:       fmt.Sprintf("Player %d", i),
			SeatNumber: i,
			IsActive:   true,
			IsAdmin:    i == 0,
		})
	}

	order := 0
	addCard := func(t card.Type, state CardState, holder string, pos int) *GameCard {
		gc := &GameCard{
			ID:             fmt.Sprintf("c%d", order),
			Card:           card.Card{ID: fmt.Sprintf("src%d", order), Type: t, Content: "card", Active: true},
			State:          state,
			DrawOrder:      order,
			HolderPlayerID: holder,
			HandPos:        pos,
		}
		order++
		s.Cards = append(s.Cards, gc)
		return gc
	}

	for _, p := range s.Players {
		for pos := 0; pos < s.Game.HandSize; pos++ {
			addCard(card.White, CardInHand, p.ID, pos)
		}
	}
	for i := 0; i < whitePile; i++ {
		addCard(card.White, CardInDrawPile, "", 0)
	}
	for i := 0; i < blackPile; i++ {
		gc := addCard(card.Black, CardInDrawPile, "", 0)
		gc.Card.Pick = 1
	}
	return s
}

func mustStartRound(t *testing.T, s *State) *Round {
	t.Helper()
	round, err := startRound(s, time.Now())
	if err != nil {
		t.Fatalf("startRound: %v", err)
	}
	return round
}

// submitFor submits the first Pick cards from the player's hand
func submitFor(t *testing.T, s *State, playerID string) (*Submission, bool) {
	t.Helper()
	round := s.CurrentRound()
	hand := s.Hand(playerID)
	ids := make([]string, 0, round.Pick)
	for _, gc := range hand[:round.Pick] {
		ids = append(ids, gc.ID)
	}
	sub, advanced, err := submitCards(s, playerID, ids, time.Now())
	if err != nil {
		t.Fatalf("submitCards(%s): %v", playerID, err)
	}
	return sub, advanced
}

func TestCzarRotationBySeat(t *testing.T) {
	s := testState(3, 60, 10)

	// Rounds 1..6 rotate the czar through seats 0,1,2,0,1,2
	want := []string{"p0", "p1", "p2", "p0", "p1", "p2"}
	for i, expected := range want {
		round := mustStartRound(t, s)
		if round.RoundNumber != i+1 {
			t.Fatalf("round %d numbered %d", i+1, round.RoundNumber)
		}
		if round.CzarPlayerID != expected {
			t.Errorf("round %d czar = %s, want %s", round.RoundNumber, round.CzarPlayerID, expected)
		}
		round.Status = RoundCompleted
	}
}

func TestStartRoundConsumesBlackCard(t *testing.T) {
	s := testState(3, 60, 2)

	before := len(s.DrawPile(card.Black))
	round := mustStartRound(t, s)
	if len(s.DrawPile(card.Black)) != before-1 {
		t.Errorf("black pile should shrink by one")
	}
	if round.Pick != 1 {
		t.Errorf("expected pick 1, got %d", round.Pick)
	}
	if round.Status != RoundCollecting {
		t.Errorf("new round should collect submissions, got %s", round.Status)
	}
}

func TestStartRoundRejectsOpenRound(t *testing.T) {
	s := testState(3, 60, 10)
	mustStartRound(t, s)

	_, err := startRound(s, time.Now())
	var stateErr *InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
}

func TestStartRoundRequiresBlackCards(t *testing.T) {
	s := testState(3, 60, 0)

	_, err := startRound(s, time.Now())
	var cardsErr *InsufficientCardsError
	if !errors.As(err, &cardsErr) {
		t.Fatalf("expected InsufficientCardsError, got %v", err)
	}
}

func TestSubmitCardsMovesToJudgingWhenQuotaMet(t *testing.T) {
	s := testState(3, 60, 10)
	round := mustStartRound(t, s)

	// Czar is p0; p1 and p2 must submit
	_, advanced := submitFor(t, s, "p1")
	if advanced {
		t.Error("first of two submissions should not close collection")
	}
	if round.Status != RoundCollecting {
		t.Errorf("round status = %s, want collecting", round.Status)
	}

	_, advanced = submitFor(t, s, "p2")
	if !advanced {
		t.Error("final submission should close collection")
	}
	if round.Status != RoundJudging {
		t.Errorf("round status = %s, want judging", round.Status)
	}
}

func TestSubmitCardsStateTransitions(t *testing.T) {
	s := testState(3, 60, 10)
	mustStartRound(t, s)

	sub, _ := submitFor(t, s, "p1")
	for _, id := range sub.CardIDs {
		gc := s.CardByID(id)
		if gc.State != CardSubmitted {
			t.Errorf("card %s state = %s, want submitted", id, gc.State)
		}
		if gc.HolderPlayerID != "" {
			t.Errorf("submitted card %s still has holder %s", id, gc.HolderPlayerID)
		}
		if gc.SubmittedRoundID != sub.RoundID {
			t.Errorf("card %s not tagged with round", id)
		}
	}
	if len(s.Hand("p1")) != DefaultHandSize-1 {
		t.Errorf("hand should shrink by pick, has %d", len(s.Hand("p1")))
	}
}

func TestSubmitCardsPreconditions(t *testing.T) {
	now := time.Now()

	t.Run("czar cannot submit", func(t *testing.T) {
		s := testState(3, 60, 10)
		mustStartRound(t, s)
		hand := s.Hand("p0")
		_, _, err := submitCards(s, "p0", []string{hand[0].ID}, now)
		var authErr *AuthorizationError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthorizationError, got %v", err)
		}
	})

	t.Run("double submit", func(t *testing.T) {
		s := testState(3, 60, 10)
		mustStartRound(t, s)
		submitFor(t, s, "p1")
		hand := s.Hand("p1")
		_, _, err := submitCards(s, "p1", []string{hand[0].ID}, now)
		var stateErr *InvalidStateError
		if !errors.As(err, &stateErr) {
			t.Fatalf("expected InvalidStateError, got %v", err)
		}
	})

	t.Run("wrong card count", func(t *testing.T) {
		s := testState(3, 60, 10)
		mustStartRound(t, s)
		hand := s.Hand("p1")
		_, _, err := submitCards(s, "p1", []string{hand[0].ID, hand[1].ID}, now)
		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		// Nothing moved
		if len(s.Hand("p1")) != DefaultHandSize {
			t.Errorf("failed submission mutated the hand")
		}
		if len(s.Submissions) != 0 {
			t.Errorf("failed submission was recorded")
		}
	})

	t.Run("card not in hand", func(t *testing.T) {
		s := testState(3, 60, 10)
		mustStartRound(t, s)
		other := s.Hand("p2")[0]
		_, _, err := submitCards(s, "p1", []string{other.ID}, now)
		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("inactive player", func(t *testing.T) {
		s := testState(4, 60, 10)
		mustStartRound(t, s)
		s.Player("p3").IsActive = false
		hand := s.Hand("p3")
		_, _, err := submitCards(s, "p3", []string{hand[0].ID}, now)
		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("no round collecting", func(t *testing.T) {
		s := testState(3, 60, 10)
		hand := s.Hand("p1")
		_, _, err := submitCards(s, "p1", []string{hand[0].ID}, now)
		var stateErr *InvalidStateError
		if !errors.As(err, &stateErr) {
			t.Fatalf("expected InvalidStateError, got %v", err)
		}
	})
}

func TestSubmitMultiPickRejectsDuplicates(t *testing.T) {
	s := testState(3, 60, 10)
	round := mustStartRound(t, s)
	round.Pick = 2

	hand := s.Hand("p1")
	_, _, err := submitCards(s, "p1", []string{hand[0].ID, hand[0].ID}, time.Now())
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError for duplicate cards, got %v", err)
	}
}

func TestQuotaIgnoresInactivePlayers(t *testing.T) {
	s := testState(4, 60, 10)
	round := mustStartRound(t, s)

	// Deactivate one submitter; quota drops from 3 to 2
	s.Player("p3").IsActive = false

	submitFor(t, s, "p1")
	_, advanced := submitFor(t, s, "p2")
	if !advanced {
		t.Error("quota should exclude inactive players")
	}
	if round.Status != RoundJudging {
		t.Errorf("round status = %s, want judging", round.Status)
	}
}

func TestJudgeSubmission(t *testing.T) {
	s := testState(3, 60, 10)
	round := mustStartRound(t, s)
	winner, _ := submitFor(t, s, "p1")
	loser, _ := submitFor(t, s, "p2")

	got, err := judgeSubmission(s, "p0", winner.ID, time.Now())
	if err != nil {
		t.Fatalf("judgeSubmission: %v", err)
	}
	if !got.IsWinner {
		t.Error("winning submission not flagged")
	}
	if round.Status != RoundCompleted {
		t.Errorf("round status = %s, want completed", round.Status)
	}
	if round.CompletedAt.IsZero() {
		t.Error("CompletedAt not set")
	}
	if s.Player("p1").Score != 1 {
		t.Errorf("winner score = %d, want 1", s.Player("p1").Score)
	}
	if s.Player("p2").Score != 0 {
		t.Errorf("loser score = %d, want 0", s.Player("p2").Score)
	}

	for _, id := range winner.CardIDs {
		if st := s.CardByID(id).State; st != CardUsed {
			t.Errorf("winning card %s state = %s, want used", id, st)
		}
	}
	for _, id := range loser.CardIDs {
		if st := s.CardByID(id).State; st != CardDiscarded {
			t.Errorf("losing card %s state = %s, want discarded", id, st)
		}
	}
}

func TestJudgePreconditions(t *testing.T) {
	now := time.Now()

	t.Run("only while judging", func(t *testing.T) {
		s := testState(3, 60, 10)
		mustStartRound(t, s)
		sub, _ := submitFor(t, s, "p1")
		_, err := judgeSubmission(s, "p0", sub.ID, now)
		var stateErr *InvalidStateError
		if !errors.As(err, &stateErr) {
			t.Fatalf("expected InvalidStateError while collecting, got %v", err)
		}
	})

	t.Run("only the czar", func(t *testing.T) {
		s := testState(3, 60, 10)
		mustStartRound(t, s)
		sub, _ := submitFor(t, s, "p1")
		submitFor(t, s, "p2")
		_, err := judgeSubmission(s, "p1", sub.ID, now)
		var authErr *AuthorizationError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthorizationError, got %v", err)
		}
	})

	t.Run("double judge", func(t *testing.T) {
		s := testState(3, 60, 10)
		mustStartRound(t, s)
		sub, _ := submitFor(t, s, "p1")
		other, _ := submitFor(t, s, "p2")
		if _, err := judgeSubmission(s, "p0", sub.ID, now); err != nil {
			t.Fatal(err)
		}
		_, err := judgeSubmission(s, "p0", other.ID, now)
		var stateErr *InvalidStateError
		if !errors.As(err, &stateErr) {
			t.Fatalf("expected InvalidStateError after completion, got %v", err)
		}
		if s.Player("p2").Score != 0 {
			t.Error("second judge call changed a score")
		}
	})

	t.Run("submission from another round", func(t *testing.T) {
		s := testState(3, 60, 10)
		mustStartRound(t, s)
		submitFor(t, s, "p1")
		submitFor(t, s, "p2")
		_, err := judgeSubmission(s, "p0", "no-such-submission", now)
		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestAdvanceGameEndCheck(t *testing.T) {
	s := testState(3, 60, 10)
	mustStartRound(t, s)
	sub, _ := submitFor(t, s, "p1")
	submitFor(t, s, "p2")
	if _, err := judgeSubmission(s, "p0", sub.ID, time.Now()); err != nil {
		t.Fatal(err)
	}

	s.Player("p1").Score = s.Game.WinningScore

	round, ended, err := advanceGame(s, time.Now())
	if err != nil {
		t.Fatalf("advanceGame: %v", err)
	}
	if !ended {
		t.Fatal("game should end at winning score")
	}
	if round != nil {
		t.Error("no round should start after the game ends")
	}
	if s.Game.Status != StatusCompleted {
		t.Errorf("game status = %s, want completed", s.Game.Status)
	}
	if len(s.Rounds) != 1 {
		t.Errorf("extra round recorded after game end: %d rounds", len(s.Rounds))
	}
}

func TestAdvanceGameTopsUpAndStartsNextRound(t *testing.T) {
	s := testState(3, 60, 10)
	mustStartRound(t, s)
	sub, _ := submitFor(t, s, "p1")
	submitFor(t, s, "p2")
	if _, err := judgeSubmission(s, "p0", sub.ID, time.Now()); err != nil {
		t.Fatal(err)
	}

	round, ended, err := advanceGame(s, time.Now())
	if err != nil {
		t.Fatalf("advanceGame: %v", err)
	}
	if ended {
		t.Fatal("game should continue below winning score")
	}
	if round.RoundNumber != 2 {
		t.Errorf("next round numbered %d, want 2", round.RoundNumber)
	}
	for _, p := range s.ActivePlayers() {
		if got := len(s.Hand(p.ID)); got != s.Game.HandSize {
			t.Errorf("player %s holds %d cards after top-up, want %d", p.ID, got, s.Game.HandSize)
		}
	}
}

func TestAdvanceGameRejectsOpenRound(t *testing.T) {
	s := testState(3, 60, 10)
	mustStartRound(t, s)

	_, _, err := advanceGame(s, time.Now())
	var stateErr *InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
}
