package card

import (
	"errors"
	"sort"
)

// Selection pairs a deck with per-color include flags and its ordering
// position within the game's deck list.
type Selection struct {
	Deck         *Deck
	IncludeWhite bool
	IncludeBlack bool
	Position     int
}

var (
	// ErrNoBlackCards is returned when an assembled pile has no prompt cards
	ErrNoBlackCards = errors.New("assembled pile contains no black cards")

	// ErrNoWhiteCards is returned when an assembled pile has no answer cards
	ErrNoWhiteCards = errors.New("assembled pile contains no white cards")
)

// Assemble merges the selected decks into a single flat draw pile,
// ordered by selection position then by each deck's own card order.
// The result is a pure function of the selections: no clock, no
// randomness. Duplicate cards across decks are preserved as separate
// entries. Every produced card carries the ID of the deck it came from.
func Assemble(selections []Selection) ([]Card, error) {
	ordered := make([]Selection, len(selections))
	copy(ordered, selections)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	var cards []Card
	for _, sel := range ordered {
		if sel.Deck == nil || !sel.Deck.Active {
			continue
		}
		for _, c := range sel.Deck.Cards {
			if !c.Active {
				continue
			}
			if c.Type == White && !sel.IncludeWhite {
				continue
			}
			if c.Type == Black && !sel.IncludeBlack {
				continue
			}
			c.DeckID = sel.Deck.ID
			cards = append(cards, c)
		}
	}

	var white, black int
	for _, c := range cards {
		if c.Type == Black {
			black++
		} else {
			white++
		}
	}
	if black == 0 {
		return nil, ErrNoBlackCards
	}
	if white == 0 {
		return nil, ErrNoWhiteCards
	}
	return cards, nil
}
