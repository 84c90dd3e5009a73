package game

import (
	"slices"
	"sort"

	"github.com/lox/cardczar/internal/card"
)

// State is the full aggregate for one game: everything a transaction
// reads or writes. The store hands transactions a deep copy, so
// transition functions can mutate freely and a failed transaction
// leaves nothing behind.
type State struct {
	Game        Game
	Players     []*Player
	Cards       []*GameCard
	Rounds      []*Round
	Submissions []*Submission
}

// Clone returns a deep copy of the state
func (s *State) Clone() *State {
	out := &State{
		Game:        s.Game,
		Players:     make([]*Player, len(s.Players)),
		Cards:       make([]*GameCard, len(s.Cards)),
		Rounds:      make([]*Round, len(s.Rounds)),
		Submissions: make([]*Submission, len(s.Submissions)),
	}
	out.Game.DeckIDs = slices.Clone(s.Game.DeckIDs)
	for i, p := range s.Players {
		cp := *p
		out.Players[i] = &cp
	}
	for i, c := range s.Cards {
		cp := *c
		out.Cards[i] = &cp
	}
	for i, r := range s.Rounds {
		cp := *r
		out.Rounds[i] = &cp
	}
	for i, sub := range s.Submissions {
		cp := *sub
		cp.CardIDs = slices.Clone(sub.CardIDs)
		out.Submissions[i] = &cp
	}
	return out
}

// Player returns the player with the given ID, or nil
func (s *State) Player(id string) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerByUser returns the player belonging to a user, or nil. There is
// at most one player per (game, user).
func (s *State) PlayerByUser(userID string) *Player {
	for _, p := range s.Players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// ActivePlayers returns the active players ordered by seat number
func (s *State) ActivePlayers() []*Player {
	var out []*Player
	for _, p := range s.Players {
		if p.IsActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SeatNumber < out[j].SeatNumber
	})
	return out
}

// NextSeat returns the next contiguous seat number for a joining player
func (s *State) NextSeat() int {
	return len(s.Players)
}

// MaxScore returns the highest score among active players
func (s *State) MaxScore() int {
	max := 0
	for _, p := range s.ActivePlayers() {
		if p.Score > max {
			max = p.Score
		}
	}
	return max
}

// CurrentRound returns the single non-completed round, or nil between
// rounds and before the game starts.
func (s *State) CurrentRound() *Round {
	for _, r := range s.Rounds {
		if r.Status != RoundCompleted {
			return r
		}
	}
	return nil
}

// LastRound returns the highest-numbered round, or nil
func (s *State) LastRound() *Round {
	if len(s.Rounds) == 0 {
		return nil
	}
	return s.Rounds[len(s.Rounds)-1]
}

// CardByID returns the game card with the given ID, or nil
func (s *State) CardByID(id string) *GameCard {
	for _, c := range s.Cards {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// DrawPile returns the undealt cards of the given type in draw order
func (s *State) DrawPile(t card.Type) []*GameCard {
	var out []*GameCard
	for _, c := range s.Cards {
		if c.State == CardInDrawPile && c.Card.Type == t {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DrawOrder < out[j].DrawOrder
	})
	return out
}

// Hand returns a player's held cards ordered by hand position
func (s *State) Hand(playerID string) []*GameCard {
	var out []*GameCard
	for _, c := range s.Cards {
		if c.State == CardInHand && c.HolderPlayerID == playerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].HandPos < out[j].HandPos
	})
	return out
}

// RoundSubmissions returns the submissions for a round in creation order
func (s *State) RoundSubmissions(roundID string) []*Submission {
	var out []*Submission
	for _, sub := range s.Submissions {
		if sub.RoundID == roundID {
			out = append(out, sub)
		}
	}
	return out
}

// SubmissionBy returns a player's submission for a round, or nil
func (s *State) SubmissionBy(roundID, playerID string) *Submission {
	for _, sub := range s.Submissions {
		if sub.RoundID == roundID && sub.PlayerID == playerID {
			return sub
		}
	}
	return nil
}

// Submission returns the submission with the given ID, or nil
func (s *State) Submission(id string) *Submission {
	for _, sub := range s.Submissions {
		if sub.ID == id {
			return sub
		}
	}
	return nil
}
