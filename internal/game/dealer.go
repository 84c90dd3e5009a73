package game

import "github.com/lox/cardczar/internal/card"

// DefaultHandSize is the standard CAH hand size
const DefaultHandSize = 7

// dealHands gives every active player handSize cards off the front of
// the white draw pile, in seat order. The shortfall check runs before
// any card moves so a failed deal changes nothing.
func dealHands(s *State, handSize int) error {
	active := s.ActivePlayers()
	pile := s.DrawPile(card.White)

	needed := len(active) * handSize
	if len(pile) < needed {
		return &InsufficientCardsError{Needed: needed, Available: len(pile)}
	}

	i := 0
	for _, p := range active {
		for pos := 0; pos < handSize; pos++ {
			gc := pile[i]
			i++
			gc.State = CardInHand
			gc.HolderPlayerID = p.ID
			gc.HandPos = pos
		}
	}
	return nil
}

// topUpHands deals only the shortfall to players holding fewer than
// handSize cards. Held cards keep their positions; new cards append
// after the player's current highest position.
func topUpHands(s *State, handSize int) error {
	active := s.ActivePlayers()
	pile := s.DrawPile(card.White)

	needed := 0
	for _, p := range active {
		if short := handSize - len(s.Hand(p.ID)); short > 0 {
			needed += short
		}
	}
	if len(pile) < needed {
		return &InsufficientCardsError{Needed: needed, Available: len(pile)}
	}

	i := 0
	for _, p := range active {
		hand := s.Hand(p.ID)
		short := handSize - len(hand)
		if short <= 0 {
			continue
		}
		pos := 0
		for _, held := range hand {
			if held.HandPos >= pos {
				pos = held.HandPos + 1
			}
		}
		for ; short > 0; short-- {
			gc := pile[i]
			i++
			gc.State = CardInHand
			gc.HolderPlayerID = p.ID
			gc.HandPos = pos
			pos++
		}
	}
	return nil
}

// drawBlackCard takes the front black card out of the pile, marking it
// used. Black cards are consumed the moment they are shown.
func drawBlackCard(s *State) (*GameCard, error) {
	pile := s.DrawPile(card.Black)
	if len(pile) == 0 {
		return nil, &InsufficientCardsError{Needed: 1, Available: 0}
	}
	gc := pile[0]
	gc.State = CardUsed
	return gc, nil
}
