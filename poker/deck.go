package poker

import (
	"fmt"
	rand "math/rand/v2"
)

// FullDeck returns all 52 cards in ascending order.
func FullDeck() []Card {
	cards := make([]Card, NumCards)
	for i := range cards {
		cards[i] = Card(i)
	}
	return cards
}

// RemainingDeck returns the 52-card universe minus known, in ascending order.
// It fails if known holds an invalid card or the same card twice.
func RemainingDeck(known ...Card) ([]Card, error) {
	used, err := KnownSet(known...)
	if err != nil {
		return nil, err
	}

	cards := make([]Card, 0, NumCards-len(known))
	for i := range Card(NumCards) {
		if !used.HasCard(i) {
			cards = append(cards, i)
		}
	}
	return cards, nil
}

// KnownSet folds cards into a Hand, rejecting invalid and repeated cards.
func KnownSet(cards ...Card) (Hand, error) {
	var used Hand
	for _, c := range cards {
		if !c.Valid() {
			return 0, fmt.Errorf("%w: value %d out of range", ErrInvalidCard, uint8(c))
		}
		if used.HasCard(c) {
			return 0, &DuplicateCardError{Card: c}
		}
		used |= c.Mask()
	}
	return used, nil
}

// Deck draws cards without replacement from a private copy of a card list.
type Deck struct {
	cards []Card
	next  int
	rng   *rand.Rand // Random source for deterministic draws
}

// NewDeck creates a deck over a copy of cards using rng for every draw.
func NewDeck(cards []Card, rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, len(cards)),
		rng:   rng,
	}
	copy(d.cards, cards)
	return d
}

// DrawOne draws a single card uniformly from the cards not yet drawn.
// The second result is false once the deck is exhausted.
func (d *Deck) DrawOne() (Card, bool) {
	if d.next >= len(d.cards) {
		return 0, false
	}
	// Partial Fisher-Yates: pick from the undrawn suffix and swap it forward.
	j := d.next + d.rng.IntN(len(d.cards)-d.next)
	d.cards[d.next], d.cards[j] = d.cards[j], d.cards[d.next]
	card := d.cards[d.next]
	d.next++
	return card, true
}

// Draw draws n cards. The returned slice aliases the deck and is only valid
// until the next Reset. It returns nil if fewer than n cards remain.
func (d *Deck) Draw(n int) []Card {
	if d.next+n > len(d.cards) {
		return nil
	}
	start := d.next
	for range n {
		d.DrawOne()
	}
	return d.cards[start:d.next]
}

// DrawHand draws n cards and returns them as a Hand.
func (d *Deck) DrawHand(n int) (Hand, bool) {
	if d.next+n > len(d.cards) {
		return 0, false
	}
	var h Hand
	for range n {
		c, _ := d.DrawOne()
		h |= c.Mask()
	}
	return h, true
}

// Reset returns every drawn card to the deck. The order left behind by
// earlier draws does not bias later ones since each draw is uniform over the
// undrawn cards.
func (d *Deck) Reset() {
	d.next = 0
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.cards) - d.next
}
