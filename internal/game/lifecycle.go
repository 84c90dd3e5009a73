package game

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// The functions in this file are the round state machine. They mutate a
// State in place and report precondition violations with the typed
// errors from errors.go; they are only ever called inside a store
// transaction, so an error means nothing happened.

// startRound begins round len(Rounds)+1: rotates the czar by seat,
// draws the prompt card, and opens submission collection.
func startRound(s *State, now time.Time) (*Round, error) {
	if s.Game.Status != StatusInProgress {
		return nil, &InvalidStateError{Op: "start round", Reason: fmt.Sprintf("game is %s", s.Game.Status)}
	}
	if cur := s.CurrentRound(); cur != nil {
		return nil, &InvalidStateError{Op: "start round", Reason: fmt.Sprintf("round %d is still %s", cur.RoundNumber, cur.Status)}
	}
	active := s.ActivePlayers()
	if len(active) == 0 {
		return nil, &InvalidStateError{Op: "start round", Reason: "no active players"}
	}

	number := len(s.Rounds) + 1
	czar := active[(number-1)%len(active)]

	black, err := drawBlackCard(s)
	if err != nil {
		return nil, err
	}

	round := &Round{
		ID:           uuid.NewString(),
		RoundNumber:  number,
		CzarPlayerID: czar.ID,
		BlackCard:    black.Card,
		Pick:         black.Card.EffectivePick(),
		Draw:         black.Card.Draw,
		Status:       RoundCollecting,
		StartedAt:    now,
	}
	s.Rounds = append(s.Rounds, round)
	return round, nil
}

// submitCards records a player's answer for the current round. Every
// precondition is checked before any card changes state. The returned
// bool reports whether this submission completed the quota and moved
// the round to judging; the guard is level-triggered and re-evaluated
// on every submission, not just the one that could trip it.
func submitCards(s *State, playerID string, cardIDs []string, now time.Time) (*Submission, bool, error) {
	round := s.CurrentRound()
	if round == nil || round.Status != RoundCollecting {
		return nil, false, &InvalidStateError{Op: "submit", Reason: "no round collecting submissions"}
	}

	player := s.Player(playerID)
	if player == nil {
		return nil, false, &ValidationError{Reason: "player is not in this game"}
	}
	if !player.IsActive {
		return nil, false, &ValidationError{Reason: "player is not active"}
	}
	if player.ID == round.CzarPlayerID {
		return nil, false, &AuthorizationError{Op: "submit", Reason: "the czar does not submit cards"}
	}
	if s.SubmissionBy(round.ID, player.ID) != nil {
		return nil, false, &InvalidStateError{Op: "submit", Reason: "already submitted this round"}
	}
	if len(cardIDs) != round.Pick {
		return nil, false, &ValidationError{Reason: fmt.Sprintf("must submit exactly %d cards, got %d", round.Pick, len(cardIDs))}
	}

	seen := make(map[string]bool, len(cardIDs))
	picked := make([]*GameCard, 0, len(cardIDs))
	for _, id := range cardIDs {
		if seen[id] {
			return nil, false, &ValidationError{Reason: "duplicate card in submission"}
		}
		seen[id] = true
		gc := s.CardByID(id)
		if gc == nil || gc.State != CardInHand || gc.HolderPlayerID != player.ID {
			return nil, false, &ValidationError{Reason: "card is not in your hand"}
		}
		picked = append(picked, gc)
	}

	// All checks passed; mutate.
	sub := &Submission{
		ID:        uuid.NewString(),
		RoundID:   round.ID,
		PlayerID:  player.ID,
		CardIDs:   slices.Clone(cardIDs),
		CreatedAt: now,
	}
	for _, gc := range picked {
		gc.State = CardSubmitted
		gc.SubmittedRoundID = round.ID
		gc.HolderPlayerID = ""
	}
	s.Submissions = append(s.Submissions, sub)

	advanced := false
	if len(s.RoundSubmissions(round.ID)) >= submissionQuota(s, round) {
		round.Status = RoundJudging
		advanced = true
	}
	return sub, advanced, nil
}

// submissionQuota is the number of submissions that closes collection:
// every active player except the czar.
func submissionQuota(s *State, round *Round) int {
	quota := 0
	for _, p := range s.ActivePlayers() {
		if p.ID != round.CzarPlayerID {
			quota++
		}
	}
	return quota
}

// judgeSubmission records the czar's pick: the submission wins, its
// player scores one point, and the round completes. Winning cards end
// up used, losing ones discarded.
func judgeSubmission(s *State, judgePlayerID, submissionID string, now time.Time) (*Submission, error) {
	round := s.CurrentRound()
	if round == nil {
		return nil, &InvalidStateError{Op: "judge", Reason: "no active round"}
	}
	if round.Status != RoundJudging {
		return nil, &InvalidStateError{Op: "judge", Reason: fmt.Sprintf("round is %s", round.Status)}
	}
	if judgePlayerID != round.CzarPlayerID {
		return nil, &AuthorizationError{Op: "judge", Reason: "only the czar votes"}
	}

	sub := s.Submission(submissionID)
	if sub == nil || sub.RoundID != round.ID {
		return nil, &ValidationError{Reason: "submission does not belong to the current round"}
	}

	sub.IsWinner = true
	round.Status = RoundCompleted
	round.CompletedAt = now

	winner := s.Player(sub.PlayerID)
	winner.Score++

	for _, rs := range s.RoundSubmissions(round.ID) {
		final := CardDiscarded
		if rs.ID == sub.ID {
			final = CardUsed
		}
		for _, id := range rs.CardIDs {
			if gc := s.CardByID(id); gc != nil {
				gc.State = final
			}
		}
	}
	return sub, nil
}

// advanceGame runs the end-game check and, when the game continues,
// tops up hands and starts the next round. Returns the new round, or
// nil with gameEnded true when a player has reached the winning score.
func advanceGame(s *State, now time.Time) (*Round, bool, error) {
	if s.Game.Status != StatusInProgress {
		return nil, false, &InvalidStateError{Op: "next round", Reason: fmt.Sprintf("game is %s", s.Game.Status)}
	}
	if cur := s.CurrentRound(); cur != nil {
		return nil, false, &InvalidStateError{Op: "next round", Reason: fmt.Sprintf("round %d is still %s", cur.RoundNumber, cur.Status)}
	}

	if s.MaxScore() >= s.Game.WinningScore {
		s.Game.Status = StatusCompleted
		return nil, true, nil
	}

	if err := topUpHands(s, s.Game.HandSize); err != nil {
		return nil, false, err
	}
	round, err := startRound(s, now)
	if err != nil {
		return nil, false, err
	}
	return round, false, nil
}
