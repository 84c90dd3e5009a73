package card

// Type distinguishes prompt cards from answer cards.
type Type int

const (
	White Type = iota
	Black
)

// String returns the string representation of a card type
func (t Type) String() string {
	switch t {
	case White:
		return "WHITE"
	case Black:
		return "BLACK"
	default:
		return "?"
	}
}

// Card is a single prompt or answer card. Pick and Draw are only
// meaningful on black cards: Pick is the number of white cards a
// submission must contain, Draw the number of extra cards dealt to
// compensate for a multi-pick prompt.
type Card struct {
	ID      string
	DeckID  string
	Type    Type
	Content string
	Pick    int
	Draw    int
	Active  bool
}

// IsBlack returns true if the card is a prompt card
func (c Card) IsBlack() bool {
	return c.Type == Black
}

// EffectivePick returns the number of answer cards the card demands,
// defaulting to 1 when unset.
func (c Card) EffectivePick() int {
	if c.Pick < 1 {
		return 1
	}
	return c.Pick
}

// Deck is a named collection of cards. Inactive decks are skipped
// during assembly, as are inactive cards within an active deck.
type Deck struct {
	ID     string
	Name   string
	Active bool
	Cards  []Card
}

// Counts returns the number of active white and black cards in the deck
func (d *Deck) Counts() (white, black int) {
	for _, c := range d.Cards {
		if !c.Active {
			continue
		}
		if c.Type == Black {
			black++
		} else {
			white++
		}
	}
	return white, black
}
